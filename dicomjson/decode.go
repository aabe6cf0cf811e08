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
	"io"
	"math"
	"strings"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dictionary"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomvalue"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// Decode parses data as the DICOM JSON Model into a new Object backed by
// dict (for any Implicit-VR re-serialization the caller later performs; the
// JSON form itself always carries its own "vr").
//
// encoding/json's reflection-based Unmarshal cannot express "vr must be the
// first key" or "Value and InlineBinary are mutually exclusive", so each
// element object is walked by hand with a json.Decoder token stream instead
// of unmarshalling into a struct.
func Decode(data []byte, dict dictionary.Dictionary) (*dicomobject.Object, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("dicomjson: %w", err)
	}

	obj := dicomobject.NewEmptyWithDictionary(dict)
	for key, raw := range top {
		t, err := tag.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("dicomjson: key %q: %w", key, err)
		}
		e, err := decodeElement(t, raw, dict)
		if err != nil {
			return nil, err
		}
		obj.Put(e)
	}
	return obj, nil
}

func decodeElement(t tag.Tag, raw json.RawMessage, dict dictionary.Dictionary) (*dicomobject.Element, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("dicomjson: %s: %w", t, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, newInvalid("%s: expected JSON object", t)
	}

	tok, err = dec.Token()
	if err != nil {
		return nil, fmt.Errorf("dicomjson: %s: %w", t, err)
	}
	firstKey, ok := tok.(string)
	if !ok || firstKey != "vr" {
		return nil, newInvalid("%s: \"vr\" must be the first key", t)
	}

	var vrStr string
	if err := dec.Decode(&vrStr); err != nil {
		return nil, fmt.Errorf("dicomjson: %s: decoding vr: %w", t, err)
	}
	elemVR := vr.VR(vrStr)
	if !vr.Valid(elemVR) {
		elemVR = vr.UN // unknown VR strings decode to UN, per spec
	}

	var rawValue, rawInline json.RawMessage
	var haveValue, haveInline bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dicomjson: %s: %w", t, err)
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			break
		}
		key, ok := tok.(string)
		if !ok {
			return nil, newInvalid("%s: expected object key", t)
		}
		switch key {
		case "Value":
			if haveValue {
				return nil, newInvalid("%s: duplicate Value key", t)
			}
			haveValue = true
			if err := dec.Decode(&rawValue); err != nil {
				return nil, fmt.Errorf("dicomjson: %s: decoding Value: %w", t, err)
			}
		case "InlineBinary":
			if haveInline {
				return nil, newInvalid("%s: duplicate InlineBinary key", t)
			}
			haveInline = true
			if err := dec.Decode(&rawInline); err != nil {
				return nil, fmt.Errorf("dicomjson: %s: decoding InlineBinary: %w", t, err)
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("dicomjson: %s: skipping key %q: %w", t, key, err)
			}
		}
	}

	if haveValue && haveInline {
		return nil, newInvalid("%s: Value and InlineBinary are mutually exclusive", t)
	}
	if elemVR == vr.UN && haveValue {
		return nil, newInvalid("%s: UN with Value is invalid", t)
	}

	e := &dicomobject.Element{Tag: t, VR: elemVR}

	switch {
	case elemVR == vr.SQ:
		items, err := decodeSequenceValue(t, rawValue, dict)
		if err != nil {
			return nil, err
		}
		e.Items = items
		return e, nil
	case haveInline:
		b, err := decodeInlineBinary(string(trimQuotes(rawInline)))
		if err != nil {
			return nil, fmt.Errorf("dicomjson: %s: %w", t, err)
		}
		e.Value = dicomvalue.NewBytes(b)
		return e, nil
	case !haveValue:
		e.Value = dicomvalue.Empty()
		return e, nil
	}

	val, err := decodePrimitiveValue(t, elemVR, rawValue)
	if err != nil {
		return nil, err
	}
	e.Value = val
	return e, nil
}

func trimQuotes(raw json.RawMessage) json.RawMessage {
	s := strings.Trim(string(raw), `"`)
	return json.RawMessage(s)
}

func decodeSequenceValue(t tag.Tag, rawValue json.RawMessage, dict dictionary.Dictionary) ([]*dicomobject.Object, error) {
	if rawValue == nil {
		return nil, nil
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(rawValue, &rawItems); err != nil {
		return nil, fmt.Errorf("dicomjson: %s: decoding sequence Value: %w", t, err)
	}
	items := make([]*dicomobject.Object, len(rawItems))
	for i, raw := range rawItems {
		obj, err := Decode(raw, dict)
		if err != nil {
			return nil, fmt.Errorf("dicomjson: %s: item %d: %w", t, i, err)
		}
		items[i] = obj
	}
	return items, nil
}

func decodePrimitiveValue(t tag.Tag, elemVR vr.VR, rawValue json.RawMessage) (dicomvalue.Value, error) {
	if rawValue == nil {
		return dicomvalue.Empty(), nil
	}

	switch classify(elemVR) {
	case groupTextual, groupDSIS:
		var ss []string
		if err := json.Unmarshal(rawValue, &ss); err != nil {
			return dicomvalue.Value{}, fmt.Errorf("dicomjson: %s: %w", t, err)
		}
		return dicomvalue.NewStrings(ss...), nil

	case groupTag:
		var ss []string
		if err := json.Unmarshal(rawValue, &ss); err != nil {
			return dicomvalue.Value{}, fmt.Errorf("dicomjson: %s: %w", t, err)
		}
		ts := make([]tag.Tag, len(ss))
		for i, s := range ss {
			parsed, err := tag.Parse(s)
			if err != nil {
				return dicomvalue.Value{}, fmt.Errorf("dicomjson: %s: parsing AT element %q: %w", t, s, err)
			}
			ts[i] = parsed
		}
		return dicomvalue.NewTags(ts...), nil

	case groupNumber:
		var ns []int64
		if err := json.Unmarshal(rawValue, &ns); err != nil {
			return dicomvalue.Value{}, fmt.Errorf("dicomjson: %s: %w", t, err)
		}
		switch elemVR {
		case vr.SS:
			vs := make([]int16, len(ns))
			for i, n := range ns {
				vs[i] = int16(n)
			}
			return dicomvalue.NewInt16s(vs...), nil
		case vr.US:
			vs := make([]uint16, len(ns))
			for i, n := range ns {
				vs[i] = uint16(n)
			}
			return dicomvalue.NewUint16s(vs...), nil
		case vr.SL:
			vs := make([]int32, len(ns))
			for i, n := range ns {
				vs[i] = int32(n)
			}
			return dicomvalue.NewInt32s(vs...), nil
		case vr.UL:
			vs := make([]uint32, len(ns))
			for i, n := range ns {
				vs[i] = uint32(n)
			}
			return dicomvalue.NewUint32s(vs...), nil
		case vr.SV:
			return dicomvalue.NewInt64s(ns...), nil
		case vr.UV:
			vs := make([]uint64, len(ns))
			for i, n := range ns {
				vs[i] = uint64(n)
			}
			return dicomvalue.NewUint64s(vs...), nil
		default:
			return dicomvalue.Value{}, newInvalid("%s: unexpected numeric VR %s", t, elemVR)
		}

	case groupFloat:
		var raws []json.RawMessage
		if err := json.Unmarshal(rawValue, &raws); err != nil {
			return dicomvalue.Value{}, fmt.Errorf("dicomjson: %s: %w", t, err)
		}
		fs := make([]float64, len(raws))
		for i, r := range raws {
			s := strings.TrimSpace(string(r))
			if len(s) > 0 && s[0] == '"' {
				switch strings.Trim(s, `"`) {
				case "NaN":
					fs[i] = math.NaN()
				case "Infinity":
					fs[i] = math.Inf(1)
				case "-Infinity":
					fs[i] = math.Inf(-1)
				default:
					return dicomvalue.Value{}, newInvalid("%s: unrecognized float string %s", t, s)
				}
				continue
			}
			var f float64
			if err := json.Unmarshal(r, &f); err != nil {
				return dicomvalue.Value{}, fmt.Errorf("dicomjson: %s: %w", t, err)
			}
			fs[i] = f
		}
		if elemVR == vr.FL || elemVR == vr.OF {
			vs := make([]float32, len(fs))
			for i, f := range fs {
				vs[i] = float32(f)
			}
			return dicomvalue.NewFloat32s(vs...), nil
		}
		return dicomvalue.NewFloat64s(fs...), nil

	case groupPersonName:
		var objs []map[string]string
		if err := json.Unmarshal(rawValue, &objs); err != nil {
			return dicomvalue.Value{}, fmt.Errorf("dicomjson: %s: %w", t, err)
		}
		ss := make([]string, len(objs))
		for i, o := range objs {
			ss[i] = joinPersonName(PersonName{
				Alphabetic:  o["Alphabetic"],
				Ideographic: o["Ideographic"],
				Phonetic:    o["Phonetic"],
			})
		}
		return dicomvalue.NewStrings(ss...), nil

	default:
		return dicomvalue.Value{}, newInvalid("%s: VR %s cannot carry a Value array (expected InlineBinary)", t, elemVR)
	}
}

// joinPersonName re-assembles the "Alphabetic=Ideographic=Phonetic" wire
// form, omitting trailing empty components.
func joinPersonName(pn PersonName) string {
	if pn.Phonetic != "" {
		return pn.Alphabetic + "=" + pn.Ideographic + "=" + pn.Phonetic
	}
	if pn.Ideographic != "" {
		return pn.Alphabetic + "=" + pn.Ideographic
	}
	return pn.Alphabetic
}
