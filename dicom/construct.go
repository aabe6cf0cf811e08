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

package dicom

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomio"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomvalue"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dictionary"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// Construct drains r's Token stream into an in-memory Object, recursing
// into nested sequence Items and collecting encapsulated Pixel Data
// fragments, grounded on the teacher's Parse/CollectDataElements/
// CollectSequence/CollectFragments family (parse.go) collapsed onto this
// module's single Reader/Token abstraction instead of three cooperating
// iterator types.
func Construct(r *dicomio.Reader, order binary.ByteOrder, dict dictionary.Dictionary) (*dicomobject.Object, error) {
	obj := dicomobject.NewEmptyWithDictionary(dict)
	for {
		tok, err := r.Next()
		if err == io.EOF {
			return obj, nil
		}
		if err != nil {
			return nil, err
		}
		if tok.Kind != dicomio.TokenElementHeader {
			return nil, fmt.Errorf("dicom: unexpected token kind %d at data set level", tok.Kind)
		}
		elem, err := readElement(r, tok.Header, order, dict)
		if err != nil {
			return nil, err
		}
		obj.Put(elem)
	}
}

func readElement(r *dicomio.Reader, h dicomio.DataElementHeader, order binary.ByteOrder, dict dictionary.Dictionary) (*dicomobject.Element, error) {
	switch {
	case h.VR == vr.SQ:
		return readSequenceElement(r, h, order, dict)
	case vr.MayBeEncapsulated(h.VR) && h.Length == dicomio.UndefinedLength:
		return readEncapsulatedElement(r, h)
	default:
		tok, err := r.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind != dicomio.TokenPrimitiveValueBytes {
			return nil, fmt.Errorf("dicom: expected primitive value bytes for tag %s, got token kind %d", h.Tag, tok.Kind)
		}
		val, err := dicomvalue.DecodeBinary(tok.Bytes, h.VR, order)
		if err != nil {
			return nil, fmt.Errorf("dicom: decoding value for tag %s: %v", h.Tag, err)
		}
		return &dicomobject.Element{Tag: h.Tag, VR: h.VR, Value: val}, nil
	}
}

func readSequenceElement(r *dicomio.Reader, h dicomio.DataElementHeader, order binary.ByteOrder, dict dictionary.Dictionary) (*dicomobject.Element, error) {
	var items []*dicomobject.Object
	for {
		tok, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case dicomio.TokenItemStart:
			item, err := readItemContent(r, order, dict)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		case dicomio.TokenSequenceEnd:
			return &dicomobject.Element{Tag: h.Tag, VR: h.VR, Items: items}, nil
		default:
			return nil, fmt.Errorf("dicom: unexpected token kind %d inside sequence %s", tok.Kind, h.Tag)
		}
	}
}

func readItemContent(r *dicomio.Reader, order binary.ByteOrder, dict dictionary.Dictionary) (*dicomobject.Object, error) {
	obj := dicomobject.NewEmptyWithDictionary(dict)
	for {
		tok, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case dicomio.TokenElementHeader:
			elem, err := readElement(r, tok.Header, order, dict)
			if err != nil {
				return nil, err
			}
			obj.Put(elem)
		case dicomio.TokenItemEnd:
			return obj, nil
		default:
			return nil, fmt.Errorf("dicom: unexpected token kind %d inside sequence item", tok.Kind)
		}
	}
}

func readEncapsulatedElement(r *dicomio.Reader, h dicomio.DataElementHeader) (*dicomobject.Element, error) {
	tok, err := r.Next()
	if err != nil {
		return nil, err
	}
	if tok.Kind != dicomio.TokenItemStart {
		return nil, fmt.Errorf("dicom: expected Basic Offset Table item for encapsulated tag %s, got token kind %d", h.Tag, tok.Kind)
	}
	offsetTable := tok.Bytes

	var fragments [][]byte
	for {
		tok, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case dicomio.TokenPixelFragment:
			fragments = append(fragments, tok.Bytes)
		case dicomio.TokenSequenceEnd:
			return &dicomobject.Element{Tag: h.Tag, VR: h.VR, OffsetTable: offsetTable, Fragments: fragments}, nil
		default:
			return nil, fmt.Errorf("dicom: unexpected token kind %d inside encapsulated tag %s", tok.Kind, h.Tag)
		}
	}
}
