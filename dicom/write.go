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

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomio"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomvalue"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// Write re-serializes obj's Elements, in ascending tag order, as a Token
// stream consumed by w. It is the mirror image of Construct: any Object
// Construct can build, Write can re-emit under enc's transfer syntax.
// Grounded on the teacher's write.go/writer.go pre-order element walk.
func Write(obj *dicomobject.Object, w *dicomio.Writer, enc dicomio.Encoder) error {
	order := enc.ByteOrder()
	for _, elem := range obj.Elements() {
		if err := writeElement(w, elem, order); err != nil {
			return err
		}
	}
	return nil
}

func writeElement(w *dicomio.Writer, elem *dicomobject.Element, order binary.ByteOrder) error {
	switch {
	case elem.VR == vr.SQ:
		return writeSequenceElement(w, elem, order)
	case elem.IsEncapsulated():
		return writeEncapsulatedElement(w, elem)
	default:
		raw, err := valueBytes(elem.Value, elem.VR, order)
		if err != nil {
			return err
		}
		if err := w.Write(dicomio.Token{
			Kind:   dicomio.TokenElementHeader,
			Header: dicomio.DataElementHeader{Tag: elem.Tag, VR: elem.VR, Length: uint32(len(raw))},
		}); err != nil {
			return err
		}
		return w.Write(dicomio.Token{Kind: dicomio.TokenPrimitiveValueBytes, Bytes: raw})
	}
}

func valueBytes(v dicomvalue.Value, elemVR vr.VR, order binary.ByteOrder) ([]byte, error) {
	if vr.IsTextual(elemVR) || vr.IsUniqueIdentifier(elemVR) {
		s, err := dicomvalue.EncodeText(v, elemVR)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}
	return dicomvalue.EncodeBinary(v, elemVR, order)
}

// writeSequenceElement always emits undefined length plus explicit item/
// sequence delimiters: dicomio.Writer adds those automatically for any
// container token whose header/item carries UndefinedLength, so this is
// the simplest form that is always valid regardless of how the data was
// originally encoded.
func writeSequenceElement(w *dicomio.Writer, elem *dicomobject.Element, order binary.ByteOrder) error {
	if err := w.Write(dicomio.Token{
		Kind:   dicomio.TokenElementHeader,
		Header: dicomio.DataElementHeader{Tag: elem.Tag, VR: vr.SQ, Length: dicomio.UndefinedLength},
	}); err != nil {
		return err
	}
	for _, item := range elem.Items {
		if err := w.Write(dicomio.Token{
			Kind: dicomio.TokenItemStart,
			Item: dicomio.SequenceItemHeader{Tag: tag.Item, Length: dicomio.UndefinedLength},
		}); err != nil {
			return err
		}
		for _, childElem := range item.Elements() {
			if err := writeElement(w, childElem, order); err != nil {
				return err
			}
		}
		if err := w.Write(dicomio.Token{Kind: dicomio.TokenItemEnd}); err != nil {
			return err
		}
	}
	return w.Write(dicomio.Token{Kind: dicomio.TokenSequenceEnd})
}

func writeEncapsulatedElement(w *dicomio.Writer, elem *dicomobject.Element) error {
	if err := w.Write(dicomio.Token{
		Kind:   dicomio.TokenElementHeader,
		Header: dicomio.DataElementHeader{Tag: elem.Tag, VR: elem.VR, Length: dicomio.UndefinedLength},
	}); err != nil {
		return err
	}
	if err := w.Write(dicomio.Token{
		Kind:  dicomio.TokenItemStart,
		Item:  dicomio.SequenceItemHeader{Tag: tag.Item, Length: uint32(len(elem.OffsetTable))},
		Bytes: elem.OffsetTable,
	}); err != nil {
		return err
	}
	for _, frag := range elem.Fragments {
		if err := w.Write(dicomio.Token{
			Kind:  dicomio.TokenPixelFragment,
			Item:  dicomio.SequenceItemHeader{Tag: tag.Item, Length: uint32(len(frag))},
			Bytes: frag,
		}); err != nil {
			return err
		}
	}
	return w.Write(dicomio.Token{Kind: dicomio.TokenSequenceEnd})
}
