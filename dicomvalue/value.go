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

// Package dicomvalue is the primitive value model (component C1). A Value
// is a tagged union over the variants listed in spec.md section 3:
// Empty, Strings, Tags, and one variant per fixed-width numeric type, plus
// Dates/Times/DateTimes. Unlike the original Rust implementation this
// package represents the union as a single struct with a Kind discriminant
// rather than one Go type per variant: Go slices already avoid the
// single-value allocation that motivated the Rust Str/Strs split, so that
// split collapses into one Strings variant without losing any observable
// behavior.
//
// Every conversion method is total: it either returns a value (with
// explicit, documented lossiness) or a *ConvertError. None of them panic.
package dicomvalue

import (
	"fmt"

	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
)

// Kind discriminates the variant held by a Value.
type Kind int

// The closed set of Value variants.
const (
	KindEmpty Kind = iota
	KindStrings
	KindTags
	KindBytes
	KindInt16s
	KindUint16s
	KindInt32s
	KindUint32s
	KindInt64s
	KindUint64s
	KindFloat32s
	KindFloat64s
	KindDates
	KindTimes
	KindDateTimes
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindStrings:
		return "Strings"
	case KindTags:
		return "Tags"
	case KindBytes:
		return "Bytes"
	case KindInt16s:
		return "Int16s"
	case KindUint16s:
		return "Uint16s"
	case KindInt32s:
		return "Int32s"
	case KindUint32s:
		return "Uint32s"
	case KindInt64s:
		return "Int64s"
	case KindUint64s:
		return "Uint64s"
	case KindFloat32s:
		return "Float32s"
	case KindFloat64s:
		return "Float64s"
	case KindDates:
		return "Dates"
	case KindTimes:
		return "Times"
	case KindDateTimes:
		return "DateTimes"
	default:
		return "Unknown"
	}
}

// Value is the in-memory, typed representation of a Data Element's
// primitive value field. The zero Value is Empty.
type Value struct {
	kind Kind

	strings   []string
	tags      []tag.Tag
	bytes     []byte
	i16       []int16
	u16       []uint16
	i32       []int32
	u32       []uint32
	i64       []int64
	u64       []uint64
	f32       []float32
	f64       []float64
	dates     []Date
	times     []Time
	dateTimes []DateTime
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Len returns the value multiplicity (number of elements in the underlying
// list). Empty has length 0.
func (v Value) Len() int {
	switch v.kind {
	case KindEmpty:
		return 0
	case KindStrings:
		return len(v.strings)
	case KindTags:
		return len(v.tags)
	case KindBytes:
		return len(v.bytes)
	case KindInt16s:
		return len(v.i16)
	case KindUint16s:
		return len(v.u16)
	case KindInt32s:
		return len(v.i32)
	case KindUint32s:
		return len(v.u32)
	case KindInt64s:
		return len(v.i64)
	case KindUint64s:
		return len(v.u64)
	case KindFloat32s:
		return len(v.f32)
	case KindFloat64s:
		return len(v.f64)
	case KindDates:
		return len(v.dates)
	case KindTimes:
		return len(v.times)
	case KindDateTimes:
		return len(v.dateTimes)
	default:
		return 0
	}
}

// Empty returns the Empty variant.
func Empty() Value { return Value{kind: KindEmpty} }

// NewStrings returns the Strings variant.
func NewStrings(ss ...string) Value { return Value{kind: KindStrings, strings: ss} }

// NewTags returns the Tags variant.
func NewTags(ts ...tag.Tag) Value { return Value{kind: KindTags, tags: ts} }

// NewBytes returns the Bytes variant (used for OB/OW/UN raw data, VR US/OW
// pixel words collapsed to bytes, and similar binary blobs).
func NewBytes(b []byte) Value { return Value{kind: KindBytes, bytes: b} }

// NewInt16s returns the Int16s variant (VR SS).
func NewInt16s(vs ...int16) Value { return Value{kind: KindInt16s, i16: vs} }

// NewUint16s returns the Uint16s variant (VR US).
func NewUint16s(vs ...uint16) Value { return Value{kind: KindUint16s, u16: vs} }

// NewInt32s returns the Int32s variant (VR SL).
func NewInt32s(vs ...int32) Value { return Value{kind: KindInt32s, i32: vs} }

// NewUint32s returns the Uint32s variant (VR UL).
func NewUint32s(vs ...uint32) Value { return Value{kind: KindUint32s, u32: vs} }

// NewInt64s returns the Int64s variant (VR SV).
func NewInt64s(vs ...int64) Value { return Value{kind: KindInt64s, i64: vs} }

// NewUint64s returns the Uint64s variant (VR UV).
func NewUint64s(vs ...uint64) Value { return Value{kind: KindUint64s, u64: vs} }

// NewFloat32s returns the Float32s variant (VR FL).
func NewFloat32s(vs ...float32) Value { return Value{kind: KindFloat32s, f32: vs} }

// NewFloat64s returns the Float64s variant (VR FD).
func NewFloat64s(vs ...float64) Value { return Value{kind: KindFloat64s, f64: vs} }

// NewDates returns the Dates variant (VR DA).
func NewDates(ds ...Date) Value { return Value{kind: KindDates, dates: ds} }

// NewTimes returns the Times variant (VR TM).
func NewTimes(ts ...Time) Value { return Value{kind: KindTimes, times: ts} }

// NewDateTimes returns the DateTimes variant (VR DT).
func NewDateTimes(ts ...DateTime) Value { return Value{kind: KindDateTimes, dateTimes: ts} }

// ConvertError reports that a requested conversion cannot be performed on
// the original Value variant.
type ConvertError struct {
	Requested string
	Original  Kind
	Cause     error
}

func (e *ConvertError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dicomvalue: cannot convert %s to %s: %v", e.Original, e.Requested, e.Cause)
	}
	return fmt.Sprintf("dicomvalue: cannot convert %s to %s", e.Original, e.Requested)
}

func (e *ConvertError) Unwrap() error { return e.Cause }

func convErr(requested string, kind Kind, cause error) error {
	return &ConvertError{Requested: requested, Original: kind, Cause: cause}
}
