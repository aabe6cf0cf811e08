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

package dicom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomvalue"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/transfersyntax"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

func TestWriteFileThenParseRoundTrip(t *testing.T) {
	obj := buildSampleObject()

	buf := &bytes.Buffer{}
	require.NoError(t, WriteFile(obj, transfersyntax.ExplicitVRLittleEndianUID, buf))

	got, uid, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, transfersyntax.ExplicitVRLittleEndianUID, uid)

	nameElem, ok := got.Get(patientName)
	require.True(t, ok)
	strs, err := nameElem.Value.ToStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"Doe^Jane"}, strs)

	tsElem, ok := got.Get(tag.TransferSyntaxUID)
	require.True(t, ok)
	tsUIDs, err := tsElem.Value.ToStrings()
	require.NoError(t, err)
	assert.Equal(t, transfersyntax.ExplicitVRLittleEndianUID, tsUIDs[0])

	pixelElem, ok := got.Get(tag.PixelData)
	require.True(t, ok)
	assert.True(t, pixelElem.IsEncapsulated())
}

func TestParseRejectsBadSignature(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 128))
	buf.WriteString("NOPE")
	_, _, err := Parse(buf)
	assert.Error(t, err)
}

func TestParseRejectsUnknownTransferSyntax(t *testing.T) {
	obj := buildSampleObject()
	buf := &bytes.Buffer{}
	require.NoError(t, WriteFile(obj, transfersyntax.ExplicitVRLittleEndianUID, buf))

	reg := transfersyntax.NewBuilder().Build() // empty registry
	_, _, err := Parse(buf, WithRegistry(reg))
	assert.Error(t, err)
}

func TestParseAppliesDropGroupLengths(t *testing.T) {
	obj := buildSampleObject()
	identifyingGroupLength := tag.Tag{Group: 0x0010, Element: 0x0000}
	obj.Put(&dicomobject.Element{Tag: identifyingGroupLength, VR: vr.UL, Value: dicomvalue.NewUint32s(0)})

	buf := &bytes.Buffer{}
	require.NoError(t, WriteFile(obj, transfersyntax.ExplicitVRLittleEndianUID, buf))

	got, _, err := Parse(buf, DropGroupLengths)
	require.NoError(t, err)
	_, ok := got.Get(identifyingGroupLength)
	assert.False(t, ok)

	buf2 := &bytes.Buffer{}
	require.NoError(t, WriteFile(obj, transfersyntax.ExplicitVRLittleEndianUID, buf2))
	gotUnfiltered, _, err := Parse(buf2)
	require.NoError(t, err)
	_, ok = gotUnfiltered.Get(identifyingGroupLength)
	assert.True(t, ok)
}

func TestWriteFileUnknownTransferSyntaxFails(t *testing.T) {
	obj := buildSampleObject()
	err := WriteFile(obj, "1.2.3.bogus", &bytes.Buffer{})
	assert.Error(t, err)
}
