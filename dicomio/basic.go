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

// Package dicomio provides the binary codec layer: endian-parametric
// integer/float I/O (C2), per-transfer-syntax element and item header
// codecs (C3), and a pull-based data-set traversal reader/writer (C4).
package dicomio

import (
	"encoding/binary"
	"io"

	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
)

// BasicDecoder reads fixed-width binary numbers from a source, parameterized
// once at construction by byte order rather than branching on endianness per
// call (spec.md section 9 design note). It is deliberately not an interface:
// there are, and only ever will be, two instantiations (little and big
// endian), so static dispatch is cheaper and keeps call sites straight-line.
type BasicDecoder struct {
	Order binary.ByteOrder
}

// NewBasicDecoder returns a BasicDecoder for the given byte order.
func NewBasicDecoder(order binary.ByteOrder) BasicDecoder {
	return BasicDecoder{Order: order}
}

// US decodes an unsigned short (uint16).
func (d BasicDecoder) US(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, d.Order, &v)
	return v, err
}

// UL decodes an unsigned long (uint32).
func (d BasicDecoder) UL(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, d.Order, &v)
	return v, err
}

// UV decodes an unsigned very long (uint64).
func (d BasicDecoder) UV(r io.Reader) (uint64, error) {
	var v uint64
	err := binary.Read(r, d.Order, &v)
	return v, err
}

// SS decodes a signed short (int16).
func (d BasicDecoder) SS(r io.Reader) (int16, error) {
	var v int16
	err := binary.Read(r, d.Order, &v)
	return v, err
}

// SL decodes a signed long (int32).
func (d BasicDecoder) SL(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, d.Order, &v)
	return v, err
}

// SV decodes a signed very long (int64).
func (d BasicDecoder) SV(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, d.Order, &v)
	return v, err
}

// FL decodes a single-precision float.
func (d BasicDecoder) FL(r io.Reader) (float32, error) {
	var v float32
	err := binary.Read(r, d.Order, &v)
	return v, err
}

// FD decodes a double-precision float.
func (d BasicDecoder) FD(r io.Reader) (float64, error) {
	var v float64
	err := binary.Read(r, d.Order, &v)
	return v, err
}

// USInto bulk-decodes into dst, sequentially. binary.Read reads the whole
// run before filling dst, so a partial-read failure leaves dst unchanged.
func (d BasicDecoder) USInto(r io.Reader, dst []uint16) error {
	return binary.Read(r, d.Order, dst)
}

// ULInto bulk-decodes into dst.
func (d BasicDecoder) ULInto(r io.Reader, dst []uint32) error {
	return binary.Read(r, d.Order, dst)
}

// SSInto bulk-decodes into dst.
func (d BasicDecoder) SSInto(r io.Reader, dst []int16) error {
	return binary.Read(r, d.Order, dst)
}

// SLInto bulk-decodes into dst.
func (d BasicDecoder) SLInto(r io.Reader, dst []int32) error {
	return binary.Read(r, d.Order, dst)
}

// FLInto bulk-decodes into dst.
func (d BasicDecoder) FLInto(r io.Reader, dst []float32) error {
	return binary.Read(r, d.Order, dst)
}

// FDInto bulk-decodes into dst.
func (d BasicDecoder) FDInto(r io.Reader, dst []float64) error {
	return binary.Read(r, d.Order, dst)
}

// Tag decodes two USs and returns them combined as a tag.Tag.
func (d BasicDecoder) Tag(r io.Reader) (tag.Tag, error) {
	group, err := d.US(r)
	if err != nil {
		return tag.Tag{}, err
	}
	element, err := d.US(r)
	if err != nil {
		return tag.Tag{}, err
	}
	return tag.New(group, element), nil
}

// BasicEncoder mirrors BasicDecoder for writing.
type BasicEncoder struct {
	Order binary.ByteOrder
}

// NewBasicEncoder returns a BasicEncoder for the given byte order.
func NewBasicEncoder(order binary.ByteOrder) BasicEncoder {
	return BasicEncoder{Order: order}
}

func (e BasicEncoder) US(w io.Writer, v uint16) error  { return binary.Write(w, e.Order, v) }
func (e BasicEncoder) UL(w io.Writer, v uint32) error  { return binary.Write(w, e.Order, v) }
func (e BasicEncoder) UV(w io.Writer, v uint64) error  { return binary.Write(w, e.Order, v) }
func (e BasicEncoder) SS(w io.Writer, v int16) error   { return binary.Write(w, e.Order, v) }
func (e BasicEncoder) SL(w io.Writer, v int32) error   { return binary.Write(w, e.Order, v) }
func (e BasicEncoder) SV(w io.Writer, v int64) error   { return binary.Write(w, e.Order, v) }
func (e BasicEncoder) FL(w io.Writer, v float32) error { return binary.Write(w, e.Order, v) }
func (e BasicEncoder) FD(w io.Writer, v float64) error { return binary.Write(w, e.Order, v) }

// USFrom bulk-encodes src.
func (e BasicEncoder) USFrom(w io.Writer, src []uint16) error { return binary.Write(w, e.Order, src) }

// ULFrom bulk-encodes src.
func (e BasicEncoder) ULFrom(w io.Writer, src []uint32) error { return binary.Write(w, e.Order, src) }

// SSFrom bulk-encodes src.
func (e BasicEncoder) SSFrom(w io.Writer, src []int16) error { return binary.Write(w, e.Order, src) }

// SLFrom bulk-encodes src.
func (e BasicEncoder) SLFrom(w io.Writer, src []int32) error { return binary.Write(w, e.Order, src) }

// FLFrom bulk-encodes src.
func (e BasicEncoder) FLFrom(w io.Writer, src []float32) error { return binary.Write(w, e.Order, src) }

// FDFrom bulk-encodes src.
func (e BasicEncoder) FDFrom(w io.Writer, src []float64) error { return binary.Write(w, e.Order, src) }

// Tag encodes t as two USs.
func (e BasicEncoder) Tag(w io.Writer, t tag.Tag) error {
	if err := e.US(w, t.Group); err != nil {
		return err
	}
	return e.US(w, t.Element)
}
