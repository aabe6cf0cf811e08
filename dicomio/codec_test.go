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

package dicomio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dictionary"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

func TestImplicitVRLittleEndianRoundTrip(t *testing.T) {
	dict := dictionary.Map{tag.New(0x0010, 0x0010): vr.PN}
	dec := NewImplicitVRLittleEndianDecoder(dict)
	enc := NewImplicitVRLittleEndianEncoder()

	var buf bytes.Buffer
	want := DataElementHeader{Tag: tag.New(0x0010, 0x0010), VR: vr.PN, Length: 8}
	n, err := enc.EncodeHeader(&buf, want)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	got, n, err := dec.DecodeHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, want, got)
}

func TestImplicitVRLittleEndianUnknownTagIsUN(t *testing.T) {
	dec := NewImplicitVRLittleEndianDecoder(dictionary.Stub{})
	enc := NewImplicitVRLittleEndianEncoder()

	var buf bytes.Buffer
	_, err := enc.EncodeHeader(&buf, DataElementHeader{Tag: tag.New(0x0009, 0x0001), Length: 4})
	require.NoError(t, err)

	got, _, err := dec.DecodeHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, vr.UN, got.VR)
}

func TestExplicitVRLittleEndianShortLength(t *testing.T) {
	dec := NewExplicitVRLittleEndianDecoder()
	enc := NewExplicitVRLittleEndianEncoder()

	var buf bytes.Buffer
	want := DataElementHeader{Tag: tag.New(0x0010, 0x0010), VR: vr.PN, Length: 10}
	n, err := enc.EncodeHeader(&buf, want)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, 8, buf.Len())

	got, n, err := dec.DecodeHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, want, got)
}

func TestExplicitVRLittleEndianLongLengthReservedBytes(t *testing.T) {
	dec := NewExplicitVRLittleEndianDecoder()
	enc := NewExplicitVRLittleEndianEncoder()

	var buf bytes.Buffer
	want := DataElementHeader{Tag: tag.PixelData, VR: vr.OB, Length: 128}
	n, err := enc.EncodeHeader(&buf, want)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, 12, buf.Len())

	raw := buf.Bytes()
	assert.Equal(t, byte(0), raw[6])
	assert.Equal(t, byte(0), raw[7])

	got, n, err := dec.DecodeHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, want, got)
}

func TestExplicitVRBigEndianRoundTrip(t *testing.T) {
	dec := NewExplicitVRBigEndianDecoder()
	enc := NewExplicitVRBigEndianEncoder()

	var buf bytes.Buffer
	want := DataElementHeader{Tag: tag.Rows, VR: vr.US, Length: 2}
	_, err := enc.EncodeHeader(&buf, want)
	require.NoError(t, err)

	got, _, err := dec.DecodeHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeItemHeaderRejectsNonItemTag(t *testing.T) {
	dec := NewExplicitVRLittleEndianDecoder()
	enc := NewExplicitVRLittleEndianEncoder()

	var buf bytes.Buffer
	_, err := enc.EncodeHeader(&buf, DataElementHeader{Tag: tag.Rows, VR: vr.US, Length: 2})
	require.NoError(t, err)

	_, err = dec.DecodeItemHeader(&buf)
	assert.Error(t, err)
	var headerErr *HeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, ErrBadSequenceHeader, headerErr.Kind)
}

func TestSequenceItemHeaderRoundTrip(t *testing.T) {
	dec := NewExplicitVRLittleEndianDecoder()
	enc := NewExplicitVRLittleEndianEncoder()

	var buf bytes.Buffer
	want, err := NewSequenceItemHeader(tag.Item, 42)
	require.NoError(t, err)
	require.NoError(t, enc.EncodeItemHeader(&buf, want))

	got, err := dec.DecodeItemHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
