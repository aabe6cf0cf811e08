// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dicomio

import (
	"fmt"

	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// UndefinedLength is the sentinel 32-bit length value denoting that a
// container element's length is determined by a terminating delimiter
// rather than a byte count. http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_7.1.1
const UndefinedLength uint32 = 0xFFFFFFFF

// DataElementHeader is the tag/VR/length triple preceding a Data Element's
// value field. For item and sequence delimiters, VR is vr.UN by convention.
type DataElementHeader struct {
	Tag    tag.Tag
	VR     vr.VR
	Length uint32
}

// IsDelimiter reports whether h describes one of the three special item/
// sequence delimiter tags rather than an ordinary data element.
func (h DataElementHeader) IsDelimiter() bool {
	return tag.IsSequenceItemTag(h.Tag)
}

// SequenceItemHeader is the tag/length pair preceding an Item, Item
// Delimitation Item, or Sequence Delimitation Item.
type SequenceItemHeader struct {
	Tag    tag.Tag
	Length uint32
}

// NewSequenceItemHeader validates t as one of the three legal item tags and
// constructs a SequenceItemHeader. It fails (spec.md section 3) if t is not
// Item, ItemDelimitationItem, or SequenceDelimitationItem.
func NewSequenceItemHeader(t tag.Tag, length uint32) (SequenceItemHeader, error) {
	if !tag.IsSequenceItemTag(t) {
		return SequenceItemHeader{}, fmt.Errorf("dicomio: %s is not a valid sequence item tag", t)
	}
	return SequenceItemHeader{Tag: t, Length: length}, nil
}
