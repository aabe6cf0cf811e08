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

// Package charset decodes textual Data Element values from their DICOM
// Specific Character Set encoding to UTF-8, as the (0008,0005) element
// directs. Generalized from the teacher's encodingSystem
// (charactersets.go), which decodes the teacher's own DataElement type
// in place; this package instead hands back plain decoded strings so any
// caller (the root dicom facade, in this module) can apply them to
// whichever in-memory representation it holds.
package charset

import (
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var defaultCharacterRepertoire = &namedEncoding{charmap.Windows1252, "windows-1252"}

// lookupLabelByTerm maps a Specific Character Set defined term (PS3.2
// Annex D.6.2) to the golang.org/x/net/html/charset label that implements
// it.
var lookupLabelByTerm = map[string]string{
	"ISO_IR 100": "iso-ir-100",
	"ISO_IR 101": "iso-ir-101",
	"ISO_IR 109": "iso-ir-109",
	"ISO_IR 110": "iso-ir-110",
	"ISO_IR 144": "iso-ir-144",
	"ISO_IR 127": "iso-ir-127",
	"ISO_IR 126": "iso-ir-126",
	"ISO_IR 138": "iso-ir-138",
	"ISO_IR 148": "iso-ir-148",
	"ISO_IR 13":  "shift-jis",
	"ISO_IR 166": "tis-620",
	"ISO_IR 192": "utf-8",
	"GB18030":    "gb18030",
	"GBK":        "gbk",
	// TODO: properly support ISO 2022 escape-sequence switching mid-value
	// instead of treating the whole value as one fixed repertoire.
	"ISO 2022 IR 6":   "us-ascii",
	"":                "us-ascii", // empty value maps to the default repertoire
	"ISO 2022 IR 100": "iso-ir-100",
	"ISO 2022 IR 101": "iso-ir-101",
	"ISO 2022 IR 109": "iso-ir-109",
	"ISO 2022 IR 110": "iso-ir-110",
	"ISO 2022 IR 144": "iso-ir-144",
	"ISO 2022 IR 127": "iso-ir-127",
	"ISO 2022 IR 126": "iso-ir-126",
	"ISO 2022 IR 138": "iso-ir-138",
	"ISO 2022 IR 148": "iso-ir-148",
	"ISO 2022 IR 13":  "shift-jis",
	"ISO 2022 IR 166": "tis-620",
	"ISO 2022 IR 87":  "iso-2022-jp",
	"ISO 2022 IR 159": "iso-2022-jp",
	"ISO 2022 IR 149": "euc-kr",
}

type namedEncoding struct {
	encoding.Encoding
	canonicalName string
}

func lookupEncoding(term string) (*namedEncoding, error) {
	label, ok := lookupLabelByTerm[term]
	if !ok {
		return nil, fmt.Errorf("charset: specific character set defined term not found: %v", term)
	}
	coding, canonicalName := charset.Lookup(label)
	if coding == nil {
		return nil, fmt.Errorf("charset: missing encoding for label %q", label)
	}
	return &namedEncoding{Encoding: coding, canonicalName: canonicalName}, nil
}

// System decodes textual element values to UTF-8 per a resolved
// (0008,0005) Specific Character Set value. Its three slots hold the
// alphabetic, ideographic, and phonetic repertoires a PN value's
// "="-separated component groups may each use; every other textual VR
// always decodes with the alphabetic (first) slot.
type System struct {
	encodings [3]*namedEncoding
}

// Default returns a System that assumes ISO 2022 IR 6 (plain ASCII,
// approximated here as windows-1252), matching the standard's rule for
// a data set with no (0008,0005) element.
func Default() *System {
	return &System{encodings: [3]*namedEncoding{
		defaultCharacterRepertoire,
		defaultCharacterRepertoire,
		defaultCharacterRepertoire,
	}}
}

// New builds a System from the raw string values of a (0008,0005)
// Specific Character Set element (one to three defined terms). An empty
// terms slice returns Default().
func New(terms []string) (*System, error) {
	sys := Default()
	if len(terms) == 0 {
		return sys, nil
	}

	for i, term := range terms {
		coding, err := lookupEncoding(term)
		if err != nil {
			return nil, err
		}
		if i >= len(sys.encodings) {
			break
		}
		sys.encodings[i] = coding
	}

	// A single defined term governs all three component groups; two
	// defined terms govern alphabetic and (ideographic=phonetic).
	switch len(terms) {
	case 1:
		sys.encodings[1] = sys.encodings[0]
		sys.encodings[2] = sys.encodings[0]
	case 2:
		sys.encodings[2] = sys.encodings[1]
	}
	return sys, nil
}

// DecodeText decodes s (an SH/LO/ST/LT/UC/UT value) using the alphabetic
// repertoire, falling back to the original string if decoding fails rather
// than aborting the whole parse.
func (sys *System) DecodeText(s string) string {
	return decodeWith(s, sys.encodings[0])
}

// DecodePersonName decodes a PN value's "="-separated component groups
// (alphabetic, ideographic, phonetic), each against its own repertoire.
func (sys *System) DecodePersonName(raw string) string {
	groups := strings.Split(raw, "=")
	for i, group := range groups {
		if i >= len(sys.encodings) {
			break
		}
		groups[i] = decodeWith(group, sys.encodings[i])
	}
	return strings.Join(groups, "=")
}

func decodeWith(s string, coding *namedEncoding) string {
	decoded, err := coding.NewDecoder().String(s)
	if err != nil {
		return s
	}
	if coding.canonicalName == "euc-kr" {
		// golang.org/x/text has no ISO 2022 escape-sequence support for
		// switching into the GR half of KS X 1001; EUC-KR decoding leaves
		// the raw escape bytes in place, so strip them explicitly.
		decoded = strings.Replace(decoded, "\x1B\x24\x29\x43", "", -1)
	}
	return decoded
}
