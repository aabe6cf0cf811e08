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

package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithNoTermsIsDefault(t *testing.T) {
	sys, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, "Bob", sys.DecodeText("Bob"))
}

func TestNewRejectsUnknownTerm(t *testing.T) {
	_, err := New([]string{"NOT_A_REAL_TERM"})
	assert.Error(t, err)
}

func TestNewSingleTermAppliesToAllThreeSlots(t *testing.T) {
	sys, err := New([]string{"ISO_IR 192"}) // utf-8
	require.NoError(t, err)
	assert.Equal(t, sys.encodings[0], sys.encodings[1])
	assert.Equal(t, sys.encodings[1], sys.encodings[2])
}

func TestDecodePersonNameDecodesEachComponentGroup(t *testing.T) {
	sys, err := New([]string{"ISO_IR 192"})
	require.NoError(t, err)
	got := sys.DecodePersonName("Yamada^Tarou=山田^太郎")
	assert.Equal(t, "Yamada^Tarou=山田^太郎", got)
}

func TestDecodeTextPassesThroughASCII(t *testing.T) {
	sys := Default()
	// windows-1252 has no undefined bytes that Decoder.String rejects, so
	// this exercises the pass-through path for already-ASCII input rather
	// than a forced decode failure.
	assert.Equal(t, "plain text", sys.DecodeText("plain text"))
}
