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

package dicomjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// Encode renders o as the DICOM JSON Model (PS3.18 Annex F): a top-level
// object keyed by 8-hex-digit tag, each value itself an object whose first
// key is always "vr".
func Encode(o *dicomobject.Object) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	elems := o.Elements()
	for i, e := range elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Tag.String())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := encodeElement(&buf, e); err != nil {
			return nil, fmt.Errorf("dicomjson: encoding %s: %w", e.Tag, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func encodeElement(buf *bytes.Buffer, e *dicomobject.Element) error {
	buf.WriteByte('{')
	vrKey, _ := json.Marshal(string(e.VR))
	buf.WriteString(`"vr":`)
	buf.Write(vrKey)

	if e.VR == vr.SQ {
		buf.WriteString(`,"Value":[`)
		for i, item := range e.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			nested, err := Encode(item)
			if err != nil {
				return err
			}
			buf.Write(nested)
		}
		buf.WriteByte(']')
		buf.WriteByte('}')
		return nil
	}

	if e.Value.Len() == 0 {
		buf.WriteByte('}')
		return nil
	}

	switch classify(e.VR) {
	case groupTextual:
		ss, err := e.Value.ToStrings()
		if err != nil {
			return err
		}
		buf.WriteString(`,"Value":`)
		if err := writeStringArray(buf, ss); err != nil {
			return err
		}
	case groupDSIS:
		ss, err := e.Value.ToStrings()
		if err != nil {
			return err
		}
		buf.WriteString(`,"Value":`)
		if err := writeStringArray(buf, ss); err != nil {
			return err
		}
	case groupNumber:
		ns, err := e.Value.ToInts()
		if err != nil {
			return err
		}
		buf.WriteString(`,"Value":`)
		if err := writeIntArray(buf, ns); err != nil {
			return err
		}
	case groupFloat:
		fs, err := e.Value.ToFloats()
		if err != nil {
			return err
		}
		buf.WriteString(`,"Value":`)
		writeFloatArray(buf, fs)
	case groupTag:
		ts, err := e.Value.ToTags()
		if err != nil {
			return err
		}
		strs := make([]string, len(ts))
		for i, t := range ts {
			strs[i] = t.String()
		}
		buf.WriteString(`,"Value":`)
		if err := writeStringArray(buf, strs); err != nil {
			return err
		}
	case groupPersonName:
		ss, err := e.Value.ToStrings()
		if err != nil {
			return err
		}
		buf.WriteString(`,"Value":[`)
		for i, s := range ss {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writePersonNameObject(buf, s); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case groupBinary:
		b, err := e.Value.ToBytes()
		if err != nil {
			return err
		}
		buf.WriteString(`,"InlineBinary":`)
		encoded, _ := json.Marshal(encodeInlineBinary(b))
		buf.Write(encoded)
	default:
		return newInvalid("no JSON encoding rule for VR %s", e.VR)
	}

	buf.WriteByte('}')
	return nil
}

func writeStringArray(buf *bytes.Buffer, ss []string) error {
	buf.WriteByte('[')
	for i, s := range ss {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := json.Marshal(s)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return nil
}

func writeIntArray(buf *bytes.Buffer, ns []int64) error {
	buf.WriteByte('[')
	for i, n := range ns {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(buf, "%d", n)
	}
	buf.WriteByte(']')
	return nil
}

// writeFloatArray renders each float as a JSON number, or as one of the
// literal strings "NaN"/"Infinity"/"-Infinity" for values JSON numbers
// cannot express, matching the original implementation's NumberOrText
// handling for FL/FD/OF/OD.
func writeFloatArray(buf *bytes.Buffer, fs []float64) {
	buf.WriteByte('[')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		switch {
		case math.IsNaN(f):
			buf.WriteString(`"NaN"`)
		case math.IsInf(f, 1):
			buf.WriteString(`"Infinity"`)
		case math.IsInf(f, -1):
			buf.WriteString(`"-Infinity"`)
		default:
			b, _ := json.Marshal(f)
			buf.Write(b)
		}
	}
	buf.WriteByte(']')
}

func writePersonNameObject(buf *bytes.Buffer, raw string) error {
	pn := parsePersonNameComponents(raw)
	buf.WriteByte('{')
	first := true
	writeField := func(name, val string) error {
		if val == "" {
			return nil
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		fmt.Fprintf(buf, "%q:", name)
		buf.Write(b)
		return nil
	}
	if err := writeField("Alphabetic", pn.Alphabetic); err != nil {
		return err
	}
	if err := writeField("Ideographic", pn.Ideographic); err != nil {
		return err
	}
	if err := writeField("Phonetic", pn.Phonetic); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

// parsePersonNameComponents splits a wire-form PN value ("Alphabetic=
// Ideographic=Phonetic") on '='.
func parsePersonNameComponents(raw string) PersonName {
	parts := splitN(raw, '=', 3)
	var pn PersonName
	if len(parts) > 0 {
		pn.Alphabetic = parts[0]
	}
	if len(parts) > 1 {
		pn.Ideographic = parts[1]
	}
	if len(parts) > 2 {
		pn.Phonetic = parts[2]
	}
	return pn
}

func splitN(s string, sep byte, n int) []string {
	var out []string
	start := 0
	for i := 0; i < len(s) && len(out) < n-1; i++ {
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
