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

package dicomvalue

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// spacePad and nullPad are the two padding bytes the standard permits to
// achieve an even-length value field: a space for most textual VRs, a NUL
// for UI. http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
const (
	spacePad byte = 0x20
	nullPad  byte = 0x00
)

// CalculateByteLength returns the exact, even-padded wire length v would
// occupy when encoded under the given VR. This is authoritative for header
// emission: the encoder must write exactly this many bytes of value field.
func (v Value) CalculateByteLength(elemVR vr.VR) (uint32, error) {
	switch {
	case vr.IsTextual(elemVR) || vr.IsUniqueIdentifier(elemVR):
		strs, err := v.ToStrings()
		if err != nil {
			return 0, err
		}
		n := joinedLength(strs)
		return uint32(evenLength(n)), nil
	case vr.IsSequence(elemVR):
		return 0, fmt.Errorf("dicomvalue: CalculateByteLength does not apply to SQ (use undefined length or sum item lengths)")
	case elemVR == vr.AT:
		tags, err := v.ToTags()
		if err != nil {
			return 0, err
		}
		return uint32(len(tags) * 4), nil
	case vr.IsBinaryNumber(elemVR):
		n, err := binaryNumberByteLength(v, elemVR)
		if err != nil {
			return 0, err
		}
		return uint32(n), nil
	default: // OB, OD, OF, OL, OV, OW, UN and similar bulk-data VRs
		b, err := v.ToBytes()
		if err != nil {
			return 0, err
		}
		return uint32(evenLength(len(b))), nil
	}
}

func joinedLength(strs []string) int {
	if len(strs) == 0 {
		return 0
	}
	n := len(strs) - 1 // '\' separators
	for _, s := range strs {
		n += len(s)
	}
	return n
}

func evenLength(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

func binaryNumberByteLength(v Value, elemVR vr.VR) (int, error) {
	switch elemVR {
	case vr.SS:
		return v.Len() * 2, nil
	case vr.US:
		return v.Len() * 2, nil
	case vr.SL:
		return v.Len() * 4, nil
	case vr.UL:
		return v.Len() * 4, nil
	case vr.SV:
		return v.Len() * 8, nil
	case vr.UV:
		return v.Len() * 8, nil
	case vr.FL:
		return v.Len() * 4, nil
	case vr.FD:
		return v.Len() * 8, nil
	default:
		return 0, fmt.Errorf("dicomvalue: %s is not a binary-number VR", elemVR)
	}
}

// EncodeText renders v (which must be Strings) as the '\'-joined,
// even-length-padded wire form for elemVR. elemVR selects the padding byte:
// NUL for UI, space otherwise.
func EncodeText(v Value, elemVR vr.VR) (string, error) {
	strs, err := v.ToStrings()
	if err != nil {
		return "", err
	}
	joined := strings.Join(strs, "\\")
	if len(joined)%2 != 0 {
		pad := spacePad
		if vr.IsUniqueIdentifier(elemVR) {
			pad = nullPad
		}
		joined += string(rune(pad))
	}
	return joined, nil
}

// DecodeText splits raw (the exact value-field bytes already read off the
// wire) on '\' and strips padding, producing the Strings variant. UI strips
// NUL and space from both ends; all other textual VRs strip space on both
// ends, except LT/ST/UT which per the standard are only trimmed on the
// right (leading spaces are significant).
func DecodeText(raw string, elemVR vr.VR) Value {
	if len(raw) == 0 {
		return NewStrings()
	}
	parts := strings.Split(raw, "\\")

	isPadding := func(r rune) bool { return unicode.IsSpace(r) }
	if vr.IsUniqueIdentifier(elemVR) {
		isPadding = func(r rune) bool { return r == 0x00 || r == ' ' }
	}

	rightOnly := elemVR == vr.LT || elemVR == vr.ST || elemVR == vr.UT

	for i, p := range parts {
		if rightOnly {
			parts[i] = strings.TrimRightFunc(p, isPadding)
		} else {
			parts[i] = strings.TrimFunc(p, isPadding)
		}
	}
	return NewStrings(parts...)
}

// EncodeBinary renders v as its exact wire value-field bytes under elemVR,
// using order for any multi-byte numeric field. It is the write-side
// counterpart to DecodeBinary, covering every VR DecodeBinary does not hand
// off to DecodeText (AT, the binary-number VRs, and the bulk-data VRs).
func EncodeBinary(v Value, elemVR vr.VR, order binary.ByteOrder) ([]byte, error) {
	switch {
	case elemVR == vr.AT:
		tags, err := v.ToTags()
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(tags)*4)
		for i, t := range tags {
			order.PutUint16(out[i*4:], t.Group)
			order.PutUint16(out[i*4+2:], t.Element)
		}
		return out, nil
	case vr.IsBinaryNumber(elemVR):
		return encodeBinaryNumbers(v, elemVR, order)
	default: // OB, OD, OF, OL, OV, OW, UN and similar bulk-data VRs
		b, err := v.ToBytes()
		if err != nil {
			return nil, err
		}
		if len(b)%2 != 0 {
			b = append(b, 0x00)
		}
		return b, nil
	}
}

func encodeBinaryNumbers(v Value, elemVR vr.VR, order binary.ByteOrder) ([]byte, error) {
	width := binaryNumberWidth(elemVR)
	if width == 0 {
		return nil, fmt.Errorf("dicomvalue: %s is not a binary-number VR", elemVR)
	}
	out := make([]byte, v.Len()*width)

	switch elemVR {
	case vr.SS, vr.US:
		ns, err := v.ToInts()
		if err != nil {
			return nil, err
		}
		for i, n := range ns {
			order.PutUint16(out[i*width:], uint16(n))
		}
	case vr.SL, vr.UL:
		ns, err := v.ToInts()
		if err != nil {
			return nil, err
		}
		for i, n := range ns {
			order.PutUint32(out[i*width:], uint32(n))
		}
	case vr.SV, vr.UV:
		ns, err := v.ToInts()
		if err != nil {
			return nil, err
		}
		for i, n := range ns {
			order.PutUint64(out[i*width:], uint64(n))
		}
	case vr.FL:
		fs, err := v.ToFloats()
		if err != nil {
			return nil, err
		}
		for i, f := range fs {
			order.PutUint32(out[i*width:], math.Float32bits(float32(f)))
		}
	case vr.FD:
		fs, err := v.ToFloats()
		if err != nil {
			return nil, err
		}
		for i, f := range fs {
			order.PutUint64(out[i*width:], math.Float64bits(f))
		}
	}
	return out, nil
}

// DecodeBinary parses raw (the exact value-field bytes already read off the
// wire, always even-length) into the Value variant elemVR's type dictates,
// using order for any multi-byte numeric field. This is the read-side
// counterpart to CalculateByteLength/EncodeText: together they let the
// object layer round-trip a Data Element through any transfer syntax's byte
// order without the rest of the module ever touching a raw []byte directly.
func DecodeBinary(raw []byte, elemVR vr.VR, order binary.ByteOrder) (Value, error) {
	switch {
	case vr.IsTextual(elemVR) || vr.IsUniqueIdentifier(elemVR):
		return DecodeText(string(raw), elemVR), nil
	case elemVR == vr.AT:
		if len(raw)%4 != 0 {
			return Value{}, fmt.Errorf("dicomvalue: AT value length %d is not a multiple of 4", len(raw))
		}
		tags := make([]tag.Tag, len(raw)/4)
		for i := range tags {
			tags[i] = tag.Tag{
				Group:   order.Uint16(raw[i*4:]),
				Element: order.Uint16(raw[i*4+2:]),
			}
		}
		return NewTags(tags...), nil
	case vr.IsBinaryNumber(elemVR):
		return decodeBinaryNumbers(raw, elemVR, order)
	default: // OB, OD, OF, OL, OV, OW, UN and similar bulk-data VRs
		return NewBytes(append([]byte{}, raw...)), nil
	}
}

func decodeBinaryNumbers(raw []byte, elemVR vr.VR, order binary.ByteOrder) (Value, error) {
	width := binaryNumberWidth(elemVR)
	if width == 0 {
		return Value{}, fmt.Errorf("dicomvalue: %s is not a binary-number VR", elemVR)
	}
	if len(raw)%width != 0 {
		return Value{}, fmt.Errorf("dicomvalue: value length %d is not a multiple of %d for %s", len(raw), width, elemVR)
	}
	n := len(raw) / width

	switch elemVR {
	case vr.SS:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(order.Uint16(raw[i*width:]))
		}
		return NewInt16s(out...), nil
	case vr.US:
		out := make([]uint16, n)
		for i := range out {
			out[i] = order.Uint16(raw[i*width:])
		}
		return NewUint16s(out...), nil
	case vr.SL:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(order.Uint32(raw[i*width:]))
		}
		return NewInt32s(out...), nil
	case vr.UL:
		out := make([]uint32, n)
		for i := range out {
			out[i] = order.Uint32(raw[i*width:])
		}
		return NewUint32s(out...), nil
	case vr.SV:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(order.Uint64(raw[i*width:]))
		}
		return NewInt64s(out...), nil
	case vr.UV:
		out := make([]uint64, n)
		for i := range out {
			out[i] = order.Uint64(raw[i*width:])
		}
		return NewUint64s(out...), nil
	case vr.FL:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(raw[i*width:]))
		}
		return NewFloat32s(out...), nil
	case vr.FD:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(raw[i*width:]))
		}
		return NewFloat64s(out...), nil
	default:
		return Value{}, fmt.Errorf("dicomvalue: %s is not a binary-number VR", elemVR)
	}
}

func binaryNumberWidth(elemVR vr.VR) int {
	switch elemVR {
	case vr.SS, vr.US:
		return 2
	case vr.SL, vr.UL, vr.FL:
		return 4
	case vr.SV, vr.UV, vr.FD:
		return 8
	default:
		return 0
	}
}
