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
	"bytes"
	"fmt"
	"io"

	"github.com/GoogleCloudPlatform/go-dicom-codec/charset"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomio"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomvalue"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/transfersyntax"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

const preambleSize = 128

// Parse reads a complete DICOM file from r: the preamble, the "DICM"
// signature, the File Meta Information group, and the data set itself,
// returning one Object holding every element from both the meta group and
// the data set (the meta group's tags, all group 0002, always sort first).
// Grounded on the teacher's Parse (parse.go) plus readDicomSignature/
// bufferMetadataHeader/findSyntax (iterator.go).
func Parse(r io.Reader, opts ...Option) (*dicomobject.Object, string, error) {
	o := newOptions(opts)

	if err := readSignature(r); err != nil {
		return nil, "", newFileError(ErrSignature, err)
	}

	metaObj, metaLen, err := readMetaGroup(r)
	if err != nil {
		return nil, "", newFileError(ErrMetaHeader, err)
	}

	tsElem, ok := metaObj.Get(tag.TransferSyntaxUID)
	if !ok {
		return nil, "", newFileError(ErrUnknownTransferSyntax, fmt.Errorf("no (0002,0010) element in file meta group"))
	}
	uids, err := tsElem.Value.ToStrings()
	if err != nil || len(uids) == 0 {
		return nil, "", newFileError(ErrUnknownTransferSyntax, fmt.Errorf("malformed TransferSyntaxUID value"))
	}
	uid := uids[0]

	desc, ok := o.registry.Get(uid)
	if !ok {
		return nil, "", newFileError(ErrUnsupportedTransferSyntax, fmt.Errorf("transfer syntax %q not in registry", uid))
	}

	dec := desc.Codec.Decoder
	if uid == transfersyntax.ImplicitVRLittleEndianUID {
		dec = dicomio.NewImplicitVRLittleEndianDecoder(o.dict)
	}

	reader := dicomio.NewReader(r, dec)
	dataSet, err := Construct(reader, dec.ByteOrder(), o.dict)
	if err != nil {
		return nil, "", newFileError(ErrConstruct, err)
	}

	for _, e := range dataSet.Elements() {
		metaObj.Put(e)
	}

	if err := applyTransforms(metaObj, o.transforms); err != nil {
		return nil, "", newFileError(ErrConstruct, err)
	}

	_ = metaLen
	return metaObj, uid, nil
}

func readSignature(r io.Reader) error {
	preamble := make([]byte, preambleSize)
	if _, err := io.ReadFull(r, preamble); err != nil {
		return fmt.Errorf("reading preamble: %v", err)
	}
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("reading DICOM signature: %v", err)
	}
	if string(magic) != "DICM" {
		return fmt.Errorf("wrong DICOM signature: %q", magic)
	}
	return nil
}

// readMetaGroup reads the File Meta Information group (PS3.10 section 7.1):
// (0002,0000) FileMetaInformationGroupLength first (always Explicit VR
// Little Endian, VR UL), then exactly that many more bytes holding the rest
// of the group, parsed with a nested Explicit VR LE Reader.
func readMetaGroup(r io.Reader) (*dicomobject.Object, uint32, error) {
	dec := dicomio.NewExplicitVRLittleEndianDecoder()
	reader := dicomio.NewReader(r, dec)

	tok, err := reader.Next()
	if err != nil {
		return nil, 0, fmt.Errorf("reading group length header: %v", err)
	}
	if tok.Kind != dicomio.TokenElementHeader || tok.Header.Tag != tag.FileMetaInformationGroupLength {
		return nil, 0, fmt.Errorf("expected (0002,0000) FileMetaInformationGroupLength, got tag %s", tok.Header.Tag)
	}
	valTok, err := reader.Next()
	if err != nil {
		return nil, 0, fmt.Errorf("reading group length value: %v", err)
	}
	lenVal, err := dicomvalue.DecodeBinary(valTok.Bytes, vr.UL, dec.ByteOrder())
	if err != nil {
		return nil, 0, fmt.Errorf("decoding group length: %v", err)
	}
	lens, err := lenVal.ToInts()
	if err != nil || len(lens) == 0 {
		return nil, 0, fmt.Errorf("malformed FileMetaInformationGroupLength value")
	}
	groupLen := uint32(lens[0])

	rest := make([]byte, groupLen)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, 0, fmt.Errorf("reading %d bytes of file meta group: %v", groupLen, err)
	}

	metaReader := dicomio.NewReader(bytes.NewReader(rest), dec)
	metaObj, err := Construct(metaReader, dec.ByteOrder(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing file meta group: %v", err)
	}
	return metaObj, groupLen, nil
}

func applyTransforms(obj *dicomobject.Object, transforms []Transform) error {
	if len(transforms) == 0 {
		return nil
	}
	for _, e := range obj.Elements() {
		if e.VR == vr.SQ {
			for _, item := range e.Items {
				if err := applyTransforms(item, transforms); err != nil {
					return err
				}
			}
		}
		cur := e
		for _, t := range transforms {
			if cur == nil {
				break
			}
			next, err := t(cur)
			if err != nil {
				return err
			}
			cur = next
		}
		if cur == nil {
			obj.Delete(e.Tag)
		} else if cur != e {
			obj.Put(cur)
		}
	}
	return nil
}

// WithUTF8TextDecoding returns a Transform that decodes every textual
// Element's value to UTF-8 according to the data set's (0008,0005) Specific
// Character Set, tracking it as elements are walked in ascending tag order
// (0008,0005 always sorts before the textual elements it governs).
// Grounded on the teacher's UTF8TextOption (options.go).
func WithUTF8TextDecoding() Option {
	sys := charset.Default()
	return WithTransform(func(e *dicomobject.Element) (*dicomobject.Element, error) {
		if e.Tag == tag.SpecificCharacterSet {
			terms, err := e.Value.ToStrings()
			if err != nil {
				return e, nil
			}
			newSys, err := charset.New(terms)
			if err == nil {
				sys = newSys
			}
			return e, nil
		}
		if !vr.IsTextual(e.VR) || vr.IsUniqueIdentifier(e.VR) {
			return e, nil
		}
		strs, err := e.Value.ToStrings()
		if err != nil {
			return e, nil
		}
		decoded := make([]string, len(strs))
		for i, s := range strs {
			if e.VR == vr.PN {
				decoded[i] = sys.DecodePersonName(s)
			} else {
				decoded[i] = sys.DecodeText(s)
			}
		}
		e.Value = dicomvalue.NewStrings(decoded...)
		return e, nil
	})
}
