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
	"fmt"
	"strconv"

	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
)

// ToStrings converts v to its string-list form. Numeric variants format each
// element with its natural decimal representation, matching the DS/IS
// text encoding the standard itself would use. Tags format as 8-hex-digit
// strings. Empty returns an empty, non-nil slice.
func (v Value) ToStrings() ([]string, error) {
	switch v.kind {
	case KindEmpty:
		return []string{}, nil
	case KindStrings:
		return append([]string{}, v.strings...), nil
	case KindTags:
		out := make([]string, len(v.tags))
		for i, t := range v.tags {
			out[i] = t.String()
		}
		return out, nil
	case KindInt16s:
		return formatInts(len(v.i16), func(i int) int64 { return int64(v.i16[i]) }), nil
	case KindUint16s:
		return formatInts(len(v.u16), func(i int) int64 { return int64(v.u16[i]) }), nil
	case KindInt32s:
		return formatInts(len(v.i32), func(i int) int64 { return int64(v.i32[i]) }), nil
	case KindUint32s:
		return formatInts(len(v.u32), func(i int) int64 { return int64(v.u32[i]) }), nil
	case KindInt64s:
		return formatInts(len(v.i64), func(i int) int64 { return v.i64[i] }), nil
	case KindUint64s:
		out := make([]string, len(v.u64))
		for i := range v.u64 {
			out[i] = strconv.FormatUint(v.u64[i], 10)
		}
		return out, nil
	case KindFloat32s:
		out := make([]string, len(v.f32))
		for i := range v.f32 {
			out[i] = strconv.FormatFloat(float64(v.f32[i]), 'g', -1, 32)
		}
		return out, nil
	case KindFloat64s:
		out := make([]string, len(v.f64))
		for i := range v.f64 {
			out[i] = strconv.FormatFloat(v.f64[i], 'g', -1, 64)
		}
		return out, nil
	case KindDates:
		out := make([]string, len(v.dates))
		for i := range v.dates {
			out[i] = v.dates[i].String()
		}
		return out, nil
	case KindTimes:
		out := make([]string, len(v.times))
		for i := range v.times {
			out[i] = v.times[i].String()
		}
		return out, nil
	case KindDateTimes:
		out := make([]string, len(v.dateTimes))
		for i := range v.dateTimes {
			out[i] = v.dateTimes[i].String()
		}
		return out, nil
	default:
		return nil, convErr("Strings", v.kind, nil)
	}
}

func formatInts(n int, at func(int) int64) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = strconv.FormatInt(at(i), 10)
	}
	return out
}

// ToInts converts v to a []int64. Strings are parsed with the DICOM
// IS/DS grammar (ParseIS/ParseDS semantics; a DS with a fractional part is
// truncated, matching the original implementation's documented lossy
// widening). Floating point variants are truncated toward zero.
func (v Value) ToInts() ([]int64, error) {
	switch v.kind {
	case KindEmpty:
		return []int64{}, nil
	case KindStrings:
		out := make([]int64, len(v.strings))
		for i, s := range v.strings {
			f, err := ParseDS(s)
			if err != nil {
				return nil, convErr("Ints", v.kind, fmt.Errorf("element %d (%q): %w", i, s, err))
			}
			out[i] = int64(f)
		}
		return out, nil
	case KindInt16s:
		return widenInt(len(v.i16), func(i int) int64 { return int64(v.i16[i]) }), nil
	case KindUint16s:
		return widenInt(len(v.u16), func(i int) int64 { return int64(v.u16[i]) }), nil
	case KindInt32s:
		return widenInt(len(v.i32), func(i int) int64 { return int64(v.i32[i]) }), nil
	case KindUint32s:
		return widenInt(len(v.u32), func(i int) int64 { return int64(v.u32[i]) }), nil
	case KindInt64s:
		return append([]int64{}, v.i64...), nil
	case KindUint64s:
		return widenInt(len(v.u64), func(i int) int64 { return int64(v.u64[i]) }), nil
	case KindFloat32s:
		return widenInt(len(v.f32), func(i int) int64 { return int64(v.f32[i]) }), nil
	case KindFloat64s:
		return widenInt(len(v.f64), func(i int) int64 { return int64(v.f64[i]) }), nil
	default:
		return nil, convErr("Ints", v.kind, nil)
	}
}

func widenInt(n int, at func(int) int64) []int64 {
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		out[i] = at(i)
	}
	return out
}

// ToFloats converts v to a []float64. Strings are parsed with the DS
// grammar (ParseDS). Integer variants widen exactly.
func (v Value) ToFloats() ([]float64, error) {
	switch v.kind {
	case KindEmpty:
		return []float64{}, nil
	case KindStrings:
		out := make([]float64, len(v.strings))
		for i, s := range v.strings {
			f, err := ParseDS(s)
			if err != nil {
				return nil, convErr("Floats", v.kind, fmt.Errorf("element %d (%q): %w", i, s, err))
			}
			out[i] = f
		}
		return out, nil
	case KindInt16s:
		return widenFloat(len(v.i16), func(i int) float64 { return float64(v.i16[i]) }), nil
	case KindUint16s:
		return widenFloat(len(v.u16), func(i int) float64 { return float64(v.u16[i]) }), nil
	case KindInt32s:
		return widenFloat(len(v.i32), func(i int) float64 { return float64(v.i32[i]) }), nil
	case KindUint32s:
		return widenFloat(len(v.u32), func(i int) float64 { return float64(v.u32[i]) }), nil
	case KindInt64s:
		return widenFloat(len(v.i64), func(i int) float64 { return float64(v.i64[i]) }), nil
	case KindUint64s:
		return widenFloat(len(v.u64), func(i int) float64 { return float64(v.u64[i]) }), nil
	case KindFloat32s:
		return widenFloat(len(v.f32), func(i int) float64 { return float64(v.f32[i]) }), nil
	case KindFloat64s:
		return append([]float64{}, v.f64...), nil
	default:
		return nil, convErr("Floats", v.kind, nil)
	}
}

func widenFloat(n int, at func(int) float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = at(i)
	}
	return out
}

// ToTags converts v to a []tag.Tag. Only the Tags and Strings variants are
// supported; strings are parsed with tag.Parse (8 hex digits).
func (v Value) ToTags() ([]tag.Tag, error) {
	switch v.kind {
	case KindEmpty:
		return []tag.Tag{}, nil
	case KindTags:
		return append([]tag.Tag{}, v.tags...), nil
	case KindStrings:
		out := make([]tag.Tag, len(v.strings))
		for i, s := range v.strings {
			t, err := tag.Parse(s)
			if err != nil {
				return nil, convErr("Tags", v.kind, err)
			}
			out[i] = t
		}
		return out, nil
	default:
		return nil, convErr("Tags", v.kind, nil)
	}
}

// ToBytes returns the raw byte form of v. Only the Bytes variant is
// supported.
func (v Value) ToBytes() ([]byte, error) {
	if v.kind == KindEmpty {
		return []byte{}, nil
	}
	if v.kind != KindBytes {
		return nil, convErr("Bytes", v.kind, nil)
	}
	return append([]byte{}, v.bytes...), nil
}

// ToDates converts v to a []Date. Only Dates and Strings (parsed as DA)
// are supported.
func (v Value) ToDates() ([]Date, error) {
	switch v.kind {
	case KindEmpty:
		return []Date{}, nil
	case KindDates:
		return append([]Date{}, v.dates...), nil
	case KindStrings:
		out := make([]Date, len(v.strings))
		for i, s := range v.strings {
			d, err := ParseDate(s)
			if err != nil {
				return nil, convErr("Dates", v.kind, err)
			}
			out[i] = d
		}
		return out, nil
	default:
		return nil, convErr("Dates", v.kind, nil)
	}
}

// ToTimes converts v to a []Time. Only Times and Strings (parsed as TM)
// are supported.
func (v Value) ToTimes() ([]Time, error) {
	switch v.kind {
	case KindEmpty:
		return []Time{}, nil
	case KindTimes:
		return append([]Time{}, v.times...), nil
	case KindStrings:
		out := make([]Time, len(v.strings))
		for i, s := range v.strings {
			t, err := ParseTime(s)
			if err != nil {
				return nil, convErr("Times", v.kind, err)
			}
			out[i] = t
		}
		return out, nil
	default:
		return nil, convErr("Times", v.kind, nil)
	}
}

// ToDateTimes converts v to a []DateTime. Only DateTimes and Strings
// (parsed as DT) are supported.
func (v Value) ToDateTimes() ([]DateTime, error) {
	switch v.kind {
	case KindEmpty:
		return []DateTime{}, nil
	case KindDateTimes:
		return append([]DateTime{}, v.dateTimes...), nil
	case KindStrings:
		out := make([]DateTime, len(v.strings))
		for i, s := range v.strings {
			t, err := ParseDateTime(s)
			if err != nil {
				return nil, convErr("DateTimes", v.kind, err)
			}
			out[i] = t
		}
		return out, nil
	default:
		return nil, convErr("DateTimes", v.kind, nil)
	}
}
