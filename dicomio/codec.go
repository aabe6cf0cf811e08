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
	"encoding/binary"
	"io"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dictionary"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// Decoder decodes element and item headers under one transfer syntax's wire
// encoding. The three standard transfer syntaxes share this contract;
// dispatch between them happens once, at registry lookup time (spec.md
// section 9), not per call inside a single open-ended implementation.
type Decoder interface {
	// DecodeHeader reads one Data Element header (or item/sequence
	// delimiter, which decodes to VR UN) and returns it along with the
	// number of bytes consumed.
	DecodeHeader(r io.Reader) (DataElementHeader, int, error)
	// DecodeItemHeader reads one Item/ItemDelimitationItem/
	// SequenceDelimitationItem header.
	DecodeItemHeader(r io.Reader) (SequenceItemHeader, error)
	// ByteOrder is the decoder's wire byte order.
	ByteOrder() binary.ByteOrder
	// Implicit reports whether this decoder uses Implicit VR encoding.
	Implicit() bool
}

// Encoder mirrors Decoder for writing.
type Encoder interface {
	EncodeHeader(w io.Writer, h DataElementHeader) (int, error)
	EncodeItemHeader(w io.Writer, h SequenceItemHeader) error
	ByteOrder() binary.ByteOrder
	Implicit() bool
}

// -- Implicit VR Little Endian -------------------------------------------

type implicitVRLittleEndianCodec struct {
	basicDec BasicDecoder
	basicEnc BasicEncoder
	dict     dictionary.Dictionary
}

// NewImplicitVRLittleEndianDecoder returns the Decoder for Implicit VR
// Little Endian (1.2.840.10008.1.2). dict resolves the VR for each tag,
// since Implicit VR does not carry it on the wire; an unresolved tag
// decodes to vr.UN.
func NewImplicitVRLittleEndianDecoder(dict dictionary.Dictionary) Decoder {
	if dict == nil {
		dict = dictionary.Stub{}
	}
	return &implicitVRLittleEndianCodec{
		basicDec: NewBasicDecoder(binary.LittleEndian),
		dict:     dict,
	}
}

// NewImplicitVRLittleEndianEncoder returns the matching Encoder. Implicit VR
// writes no VR on the wire, so the encoder takes no dictionary.
func NewImplicitVRLittleEndianEncoder() Encoder {
	return &implicitVRLittleEndianCodec{basicEnc: NewBasicEncoder(binary.LittleEndian)}
}

func (c *implicitVRLittleEndianCodec) ByteOrder() binary.ByteOrder { return binary.LittleEndian }
func (c *implicitVRLittleEndianCodec) Implicit() bool              { return true }

func (c *implicitVRLittleEndianCodec) DecodeHeader(r io.Reader) (DataElementHeader, int, error) {
	t, err := c.basicDec.Tag(r)
	if err != nil {
		return DataElementHeader{}, 0, newHeaderError(ErrReadHeaderTag, err)
	}

	length, err := c.basicDec.UL(r)
	if err != nil {
		return DataElementHeader{}, 0, newHeaderError(ErrReadLength, err)
	}

	elemVR := vr.UN
	if tag.IsSequenceItemTag(t) {
		elemVR = vr.UN
	} else if v, ok := c.dict.LookupVR(t); ok {
		elemVR = v
	}

	return DataElementHeader{Tag: t, VR: elemVR, Length: length}, 8, nil
}

func (c *implicitVRLittleEndianCodec) DecodeItemHeader(r io.Reader) (SequenceItemHeader, error) {
	return decodeItemHeaderCommon(c.basicDec, r)
}

func (c *implicitVRLittleEndianCodec) EncodeHeader(w io.Writer, h DataElementHeader) (int, error) {
	if err := c.basicEnc.Tag(w, h.Tag); err != nil {
		return 0, err
	}
	if err := c.basicEnc.UL(w, h.Length); err != nil {
		return 0, err
	}
	return 8, nil
}

func (c *implicitVRLittleEndianCodec) EncodeItemHeader(w io.Writer, h SequenceItemHeader) error {
	return encodeItemHeaderCommon(c.basicEnc, w, h)
}

// -- Explicit VR Little Endian --------------------------------------------

type explicitVRLittleEndianCodec struct {
	basicDec BasicDecoder
	basicEnc BasicEncoder
}

// NewExplicitVRLittleEndianDecoder returns the Decoder for Explicit VR
// Little Endian (1.2.840.10008.1.2.1), the default transfer syntax for the
// DICOM File Meta group and the conditional default per PS3.5 Annex A.4.
func NewExplicitVRLittleEndianDecoder() Decoder {
	return &explicitVRLittleEndianCodec{basicDec: NewBasicDecoder(binary.LittleEndian)}
}

// NewExplicitVRLittleEndianEncoder returns the matching Encoder.
func NewExplicitVRLittleEndianEncoder() Encoder {
	return &explicitVRLittleEndianCodec{basicEnc: NewBasicEncoder(binary.LittleEndian)}
}

func (c *explicitVRLittleEndianCodec) ByteOrder() binary.ByteOrder { return binary.LittleEndian }
func (c *explicitVRLittleEndianCodec) Implicit() bool              { return false }

func (c *explicitVRLittleEndianCodec) DecodeHeader(r io.Reader) (DataElementHeader, int, error) {
	return decodeExplicitHeader(c.basicDec, r)
}

func (c *explicitVRLittleEndianCodec) DecodeItemHeader(r io.Reader) (SequenceItemHeader, error) {
	return decodeItemHeaderCommon(c.basicDec, r)
}

func (c *explicitVRLittleEndianCodec) EncodeHeader(w io.Writer, h DataElementHeader) (int, error) {
	return encodeExplicitHeader(c.basicEnc, w, h)
}

func (c *explicitVRLittleEndianCodec) EncodeItemHeader(w io.Writer, h SequenceItemHeader) error {
	return encodeItemHeaderCommon(c.basicEnc, w, h)
}

// -- Explicit VR Big Endian ------------------------------------------------

type explicitVRBigEndianCodec struct {
	basicDec BasicDecoder
	basicEnc BasicEncoder
}

// NewExplicitVRBigEndianDecoder returns the Decoder for Explicit VR Big
// Endian (1.2.840.10008.1.2.2), retired by the standard but still present
// in the wild and required by spec.md.
func NewExplicitVRBigEndianDecoder() Decoder {
	return &explicitVRBigEndianCodec{basicDec: NewBasicDecoder(binary.BigEndian)}
}

// NewExplicitVRBigEndianEncoder returns the matching Encoder.
func NewExplicitVRBigEndianEncoder() Encoder {
	return &explicitVRBigEndianCodec{basicEnc: NewBasicEncoder(binary.BigEndian)}
}

func (c *explicitVRBigEndianCodec) ByteOrder() binary.ByteOrder { return binary.BigEndian }
func (c *explicitVRBigEndianCodec) Implicit() bool              { return false }

func (c *explicitVRBigEndianCodec) DecodeHeader(r io.Reader) (DataElementHeader, int, error) {
	return decodeExplicitHeader(c.basicDec, r)
}

func (c *explicitVRBigEndianCodec) DecodeItemHeader(r io.Reader) (SequenceItemHeader, error) {
	return decodeItemHeaderCommon(c.basicDec, r)
}

func (c *explicitVRBigEndianCodec) EncodeHeader(w io.Writer, h DataElementHeader) (int, error) {
	return encodeExplicitHeader(c.basicEnc, w, h)
}

func (c *explicitVRBigEndianCodec) EncodeItemHeader(w io.Writer, h SequenceItemHeader) error {
	return encodeItemHeaderCommon(c.basicEnc, w, h)
}

// -- shared Explicit VR logic (byte-order parameterized via BasicDecoder) --

func decodeExplicitHeader(dec BasicDecoder, r io.Reader) (DataElementHeader, int, error) {
	t, err := dec.Tag(r)
	if err != nil {
		return DataElementHeader{}, 0, newHeaderError(ErrReadHeaderTag, err)
	}

	if tag.IsSequenceItemTag(t) {
		length, err := dec.UL(r)
		if err != nil {
			return DataElementHeader{}, 0, newHeaderError(ErrReadLength, err)
		}
		return DataElementHeader{Tag: t, VR: vr.UN, Length: length}, 8, nil
	}

	vrBytes, err := readBytes(&countReader{r: r}, 2)
	if err != nil {
		return DataElementHeader{}, 0, newHeaderError(ErrReadVr, err)
	}
	elemVR := vr.VR(vrBytes)

	if vr.HasLongLengthField(elemVR) {
		if _, err := dec.US(r); err != nil { // 2 reserved bytes
			return DataElementHeader{}, 0, newHeaderError(ErrReadReserved, err)
		}
		length, err := dec.UL(r)
		if err != nil {
			return DataElementHeader{}, 0, newHeaderError(ErrReadLength, err)
		}
		return DataElementHeader{Tag: t, VR: elemVR, Length: length}, 12, nil
	}

	length, err := dec.US(r)
	if err != nil {
		return DataElementHeader{}, 0, newHeaderError(ErrReadLength, err)
	}
	return DataElementHeader{Tag: t, VR: elemVR, Length: uint32(length)}, 8, nil
}

func encodeExplicitHeader(enc BasicEncoder, w io.Writer, h DataElementHeader) (int, error) {
	if err := enc.Tag(w, h.Tag); err != nil {
		return 0, err
	}

	if tag.IsSequenceItemTag(h.Tag) {
		if err := enc.UL(w, h.Length); err != nil {
			return 0, err
		}
		return 8, nil
	}

	if _, err := w.Write([]byte(h.VR)); err != nil {
		return 0, err
	}

	if vr.HasLongLengthField(h.VR) {
		if err := enc.US(w, 0); err != nil {
			return 0, err
		}
		if err := enc.UL(w, h.Length); err != nil {
			return 0, err
		}
		return 12, nil
	}

	if err := enc.US(w, uint16(h.Length)); err != nil {
		return 0, err
	}
	return 8, nil
}

// -- shared item/delimiter header logic -------------------------------

func decodeItemHeaderCommon(dec BasicDecoder, r io.Reader) (SequenceItemHeader, error) {
	t, err := dec.Tag(r)
	if err != nil {
		return SequenceItemHeader{}, newHeaderError(ErrReadItemHeader, err)
	}
	if !tag.IsSequenceItemTag(t) {
		return SequenceItemHeader{}, newHeaderError(ErrBadSequenceHeader, nil)
	}
	length, err := dec.UL(r)
	if err != nil {
		return SequenceItemHeader{}, newHeaderError(ErrReadItemLength, err)
	}
	return SequenceItemHeader{Tag: t, Length: length}, nil
}

func encodeItemHeaderCommon(enc BasicEncoder, w io.Writer, h SequenceItemHeader) error {
	if err := enc.Tag(w, h.Tag); err != nil {
		return err
	}
	return enc.UL(w, h.Length)
}
