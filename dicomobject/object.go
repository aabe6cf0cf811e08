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

// Package dicomobject provides the in-memory, randomly-addressable Data Set
// representation: a Tag-keyed map of Elements with ascending-tag iteration,
// generalizing the teacher's DataSet type to carry a DataDictionary
// collaborator for implicit-VR re-serialization.
package dicomobject

import (
	"sort"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dictionary"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomvalue"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// Element is one Data Element stored in an Object: its tag, VR, and value.
// Sequence elements store their nested Items as Object values instead of a
// dicomvalue.Value, since SQ content is itself a data set, not a primitive.
// Encapsulated Pixel Data elements store their fragments instead of a
// dicomvalue.Value, mirroring the teacher's encapsulatedFormatBuffer versus
// bytesValue split (bulkdata.go) one level up, at the object layer.
type Element struct {
	Tag   tag.Tag
	VR    vr.VR
	Value dicomvalue.Value
	Items []*Object // non-nil only when VR == vr.SQ

	// OffsetTable and Fragments are set instead of Value when this element
	// is encapsulated (undefined-length) Pixel Data: OffsetTable holds the
	// Basic Offset Table item's raw bytes (possibly empty), Fragments holds
	// every subsequent pixel fragment item in wire order.
	OffsetTable []byte
	Fragments   [][]byte
}

// IsEncapsulated reports whether e holds encapsulated Pixel Data fragments
// rather than a primitive value.
func (e *Element) IsEncapsulated() bool {
	return e.Fragments != nil || e.OffsetTable != nil
}

// Object is an in-memory Data Set: an unordered collection of Elements
// addressable by Tag, iterable in ascending tag order. Grounded on the
// teacher's DataSet{Elements map[uint32]*DataElement}, generalized from a
// uint32 group<<16|element key to tag.Tag directly.
type Object struct {
	dict     dictionary.Dictionary
	elements map[tag.Tag]*Element
}

// NewEmptyWithDictionary returns an empty Object that consults dict to
// resolve VRs for Implicit VR re-serialization. dict may be nil, in which
// case dictionary.Stub{} is used and every tag resolves to vr.UN.
func NewEmptyWithDictionary(dict dictionary.Dictionary) *Object {
	if dict == nil {
		dict = dictionary.Stub{}
	}
	return &Object{dict: dict, elements: make(map[tag.Tag]*Element)}
}

// Dictionary returns the Object's DataDictionary collaborator.
func (o *Object) Dictionary() dictionary.Dictionary { return o.dict }

// Put inserts e, overwriting any existing Element with the same Tag.
func (o *Object) Put(e *Element) {
	o.elements[e.Tag] = e
}

// Get returns the Element stored under t, and whether it was present.
func (o *Object) Get(t tag.Tag) (*Element, bool) {
	e, ok := o.elements[t]
	return e, ok
}

// Delete removes the Element stored under t, if any.
func (o *Object) Delete(t tag.Tag) {
	delete(o.elements, t)
}

// Len returns the number of Elements in the Object.
func (o *Object) Len() int {
	return len(o.elements)
}

// Elements returns every Element in ascending tag order (group, then
// element). The returned slice is a new copy; mutating it does not affect
// the Object.
func (o *Object) Elements() []*Element {
	out := make([]*Element, 0, len(o.elements))
	for _, e := range o.elements {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tag.Group != out[j].Tag.Group {
			return out[i].Tag.Group < out[j].Tag.Group
		}
		return out[i].Tag.Element < out[j].Tag.Element
	})
	return out
}
