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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

func TestReaderFlatPrimitiveElements(t *testing.T) {
	enc := NewExplicitVRLittleEndianEncoder()
	var buf bytes.Buffer
	require.NoError(t, writeElement(t, enc, &buf, tag.Rows, vr.US, []byte{0x10, 0x00}))
	require.NoError(t, writeElement(t, enc, &buf, tag.Columns, vr.US, []byte{0x10, 0x00}))

	rd := NewReader(&buf, NewExplicitVRLittleEndianDecoder())

	tok, err := rd.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenElementHeader, tok.Kind)
	assert.Equal(t, tag.Rows, tok.Header.Tag)

	tok, err = rd.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenPrimitiveValueBytes, tok.Kind)
	assert.Equal(t, []byte{0x10, 0x00}, tok.Bytes)

	tok, err = rd.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenElementHeader, tok.Kind)
	assert.Equal(t, tag.Columns, tok.Header.Tag)

	_, err = rd.Next()
	require.NoError(t, err)

	tok, err = rd.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, TokenEnd, tok.Kind)

	// subsequent calls keep returning EOF
	_, err = rd.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderDefinedLengthSequenceWithOneItem(t *testing.T) {
	enc := NewExplicitVRLittleEndianEncoder()
	var itemBuf bytes.Buffer
	require.NoError(t, writeElement(t, enc, &itemBuf, tag.Rows, vr.US, []byte{0x02, 0x00}))

	var buf bytes.Buffer
	itemHeader, err := NewSequenceItemHeader(tag.Item, uint32(itemBuf.Len()))
	require.NoError(t, err)
	_, err = enc.EncodeHeader(&buf, DataElementHeader{Tag: tag.New(0x0008, 0x1140), VR: vr.SQ, Length: uint32(8 + itemBuf.Len())})
	require.NoError(t, err)
	require.NoError(t, enc.EncodeItemHeader(&buf, itemHeader))
	buf.Write(itemBuf.Bytes())

	rd := NewReader(&buf, NewExplicitVRLittleEndianDecoder())

	tok, err := rd.Next() // sequence header
	require.NoError(t, err)
	assert.Equal(t, TokenElementHeader, tok.Kind)
	assert.Equal(t, vr.SQ, tok.Header.VR)

	tok, err = rd.Next() // item start
	require.NoError(t, err)
	assert.Equal(t, TokenItemStart, tok.Kind)

	tok, err = rd.Next() // Rows header within item
	require.NoError(t, err)
	assert.Equal(t, TokenElementHeader, tok.Kind)
	assert.Equal(t, tag.Rows, tok.Header.Tag)

	tok, err = rd.Next() // Rows value
	require.NoError(t, err)
	assert.Equal(t, TokenPrimitiveValueBytes, tok.Kind)

	tok, err = rd.Next() // item end (synthetic, defined length exhausted)
	require.NoError(t, err)
	assert.Equal(t, TokenItemEnd, tok.Kind)

	tok, err = rd.Next() // sequence end (synthetic, defined length exhausted)
	require.NoError(t, err)
	assert.Equal(t, TokenSequenceEnd, tok.Kind)

	tok, err = rd.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, TokenEnd, tok.Kind)
}

func TestReaderUndefinedLengthSequenceWithDelimiters(t *testing.T) {
	enc := NewExplicitVRLittleEndianEncoder()
	var buf bytes.Buffer
	_, err := enc.EncodeHeader(&buf, DataElementHeader{Tag: tag.New(0x0008, 0x1140), VR: vr.SQ, Length: UndefinedLength})
	require.NoError(t, err)

	itemHeader, err := NewSequenceItemHeader(tag.Item, UndefinedLength)
	require.NoError(t, err)
	require.NoError(t, enc.EncodeItemHeader(&buf, itemHeader))
	require.NoError(t, writeElement(t, enc, &buf, tag.Rows, vr.US, []byte{0x02, 0x00}))
	itemDelim, err := NewSequenceItemHeader(tag.ItemDelimitationItem, 0)
	require.NoError(t, err)
	require.NoError(t, enc.EncodeItemHeader(&buf, itemDelim))

	seqDelim, err := NewSequenceItemHeader(tag.SequenceDelimitationItem, 0)
	require.NoError(t, err)
	require.NoError(t, enc.EncodeItemHeader(&buf, seqDelim))

	rd := NewReader(&buf, NewExplicitVRLittleEndianDecoder())

	kinds := []TokenKind{}
	for {
		tok, err := rd.Next()
		kinds = append(kinds, tok.Kind)
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
	}
	assert.Equal(t, []TokenKind{
		TokenElementHeader, // SQ
		TokenItemStart,
		TokenElementHeader, // Rows
		TokenPrimitiveValueBytes,
		TokenItemEnd,
		TokenSequenceEnd,
		TokenEnd,
	}, kinds)
}

func TestReaderEncapsulatedPixelDataFragments(t *testing.T) {
	enc := NewExplicitVRLittleEndianEncoder()
	var buf bytes.Buffer
	_, err := enc.EncodeHeader(&buf, DataElementHeader{Tag: tag.PixelData, VR: vr.OB, Length: UndefinedLength})
	require.NoError(t, err)

	bot, err := NewSequenceItemHeader(tag.Item, 0)
	require.NoError(t, err)
	require.NoError(t, enc.EncodeItemHeader(&buf, bot))

	frag, err := NewSequenceItemHeader(tag.Item, 4)
	require.NoError(t, err)
	require.NoError(t, enc.EncodeItemHeader(&buf, frag))
	buf.Write([]byte{1, 2, 3, 4})

	seqDelim, err := NewSequenceItemHeader(tag.SequenceDelimitationItem, 0)
	require.NoError(t, err)
	require.NoError(t, enc.EncodeItemHeader(&buf, seqDelim))

	rd := NewReader(&buf, NewExplicitVRLittleEndianDecoder())

	tok, err := rd.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenElementHeader, tok.Kind)

	tok, err = rd.Next() // BOT item
	require.NoError(t, err)
	assert.Equal(t, TokenItemStart, tok.Kind)
	assert.Empty(t, tok.Bytes)

	tok, err = rd.Next() // fragment
	require.NoError(t, err)
	assert.Equal(t, TokenPixelFragment, tok.Kind)
	assert.Equal(t, []byte{1, 2, 3, 4}, tok.Bytes)

	tok, err = rd.Next()
	require.NoError(t, err)
	assert.Equal(t, TokenSequenceEnd, tok.Kind)

	_, err = rd.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderRejectsUndefinedLengthOutsideSQOrPixelData(t *testing.T) {
	enc := NewExplicitVRLittleEndianEncoder()
	var buf bytes.Buffer
	_, err := enc.EncodeHeader(&buf, DataElementHeader{Tag: tag.Rows, VR: vr.UT, Length: UndefinedLength})
	require.NoError(t, err)

	rd := NewReader(&buf, NewExplicitVRLittleEndianDecoder())
	_, err = rd.Next()
	assert.Error(t, err)
	var headerErr *HeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, ErrUndefinedLengthNotAllowed, headerErr.Kind)
}

func writeElement(t *testing.T, enc Encoder, w io.Writer, tg tag.Tag, elemVR vr.VR, value []byte) error {
	t.Helper()
	if _, err := enc.EncodeHeader(w, DataElementHeader{Tag: tg, VR: elemVR, Length: uint32(len(value))}); err != nil {
		return err
	}
	_, err := w.Write(value)
	return err
}
