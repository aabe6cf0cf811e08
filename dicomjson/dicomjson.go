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

// Package dicomjson bridges an in-memory Object to and from the DICOM JSON
// Model (PS3.18 Annex F): an object whose keys are 8-hex-digit tags and
// whose values are {"vr": "XX", "Value"|"InlineBinary": ...}. The teacher
// has no JSON support; this package is grounded on the teacher's VR
// grouping (which VRs are textual, binary, sequence, ...) generalized to
// the JSON shape table, and on the original Rust implementation's
// NumberOrText handling for the FL/FD/OF/OD "number or special string"
// array elements.
package dicomjson

import (
	"encoding/base64"
	"fmt"

	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// PersonName is the DICOM JSON Model's decomposition of a PN value into its
// Alphabetic/Ideographic/Phonetic components. Absent components are omitted
// from the encoded JSON rather than emitted as empty strings.
type PersonName struct {
	Alphabetic  string
	Ideographic string
	Phonetic    string
}

// vrGroup classifies a VR for the purposes of JSON shape selection, mirror-
// ing the table in the JSON Bridge design.
type vrGroup int

const (
	groupSequence vrGroup = iota
	groupTextual
	groupNumber
	groupFloat
	groupDSIS
	groupPersonName
	groupTag
	groupBinary
)

func classify(v vr.VR) vrGroup {
	switch v {
	case "SQ":
		return groupSequence
	case "PN":
		return groupPersonName
	case "AT":
		return groupTag
	case "DS", "IS":
		return groupDSIS
	case "FL", "FD", "OF", "OD":
		return groupFloat
	case "SS", "US", "SL", "UL", "SV", "UV":
		return groupNumber
	case "OB", "OW":
		// PS3.18 Annex F also allows OB/OW to encode as an array of
		// numbers under "Value"; this implementation always represents
		// OB/OW/UN bulk data as raw bytes (dicomvalue.Value's Bytes
		// variant) and always round-trips them through InlineBinary,
		// never the numeric-array alternative. This is narrower than the
		// full JSON Model but preserves the mutual-exclusion invariant
		// and exact round-tripping for every value this package produces.
		return groupBinary
	case "UN":
		return groupBinary
	default:
		if vr.IsTextual(v) || vr.IsUniqueIdentifier(v) {
			return groupTextual
		}
		return groupBinary
	}
}

// errInvalid wraps a PS3.18 Annex F structural invariant violation.
type errInvalid struct{ msg string }

func (e *errInvalid) Error() string { return "dicomjson: " + e.msg }

func newInvalid(format string, args ...any) error {
	return &errInvalid{msg: fmt.Sprintf(format, args...)}
}

func encodeInlineBinary(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func decodeInlineBinary(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("dicomjson: decoding InlineBinary: %w", err)
	}
	return b, nil
}
