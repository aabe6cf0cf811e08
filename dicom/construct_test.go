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

	"github.com/GoogleCloudPlatform/go-dicom-codec/dictionary"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomio"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomvalue"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

var patientName = tag.Tag{Group: 0x0010, Element: 0x0010}
var referencedSequence = tag.Tag{Group: 0x0008, Element: 0x1140}
var referencedSOPInstanceUID = tag.Tag{Group: 0x0008, Element: 0x1155}

func buildSampleObject() *dicomobject.Object {
	obj := dicomobject.NewEmptyWithDictionary(nil)
	obj.Put(&dicomobject.Element{Tag: patientName, VR: vr.PN, Value: dicomvalue.NewStrings("Doe^Jane")})
	obj.Put(&dicomobject.Element{Tag: tag.Rows, VR: vr.US, Value: dicomvalue.NewUint16s(2)})

	item := dicomobject.NewEmptyWithDictionary(nil)
	item.Put(&dicomobject.Element{Tag: referencedSOPInstanceUID, VR: vr.UI, Value: dicomvalue.NewStrings("1.2.3.4")})
	obj.Put(&dicomobject.Element{Tag: referencedSequence, VR: vr.SQ, Items: []*dicomobject.Object{item}})

	obj.Put(&dicomobject.Element{
		Tag:         tag.PixelData,
		VR:          vr.OB,
		OffsetTable: []byte{},
		Fragments:   [][]byte{{0xAA, 0xBB, 0xCC, 0xDD}},
	})
	return obj
}

func TestConstructWriteRoundTrip(t *testing.T) {
	obj := buildSampleObject()

	enc := dicomio.NewExplicitVRLittleEndianEncoder()
	buf := &bytes.Buffer{}
	w := dicomio.NewWriter(buf, enc)
	require.NoError(t, Write(obj, w, enc))

	dec := dicomio.NewExplicitVRLittleEndianDecoder()
	r := dicomio.NewReader(buf, dec)
	got, err := Construct(r, dec.ByteOrder(), nil)
	require.NoError(t, err)

	nameElem, ok := got.Get(patientName)
	require.True(t, ok)
	strs, err := nameElem.Value.ToStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"Doe^Jane"}, strs)

	rowsElem, ok := got.Get(tag.Rows)
	require.True(t, ok)
	ns, err := rowsElem.Value.ToInts()
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ns)

	seqElem, ok := got.Get(referencedSequence)
	require.True(t, ok)
	require.Len(t, seqElem.Items, 1)
	uidElem, ok := seqElem.Items[0].Get(referencedSOPInstanceUID)
	require.True(t, ok)
	uidStrs, err := uidElem.Value.ToStrings()
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2.3.4"}, uidStrs)

	pixelElem, ok := got.Get(tag.PixelData)
	require.True(t, ok)
	assert.True(t, pixelElem.IsEncapsulated())
	require.Len(t, pixelElem.Fragments, 1)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0xDD}, pixelElem.Fragments[0])
}

func TestConstructImplicitVRUsesDictionary(t *testing.T) {
	dict := dictionary.Map{patientName: vr.PN}

	buf := &bytes.Buffer{}
	enc := dicomio.NewImplicitVRLittleEndianEncoder()
	w := dicomio.NewWriter(buf, enc)
	require.NoError(t, writeElement(w, &dicomobject.Element{
		Tag: patientName, VR: vr.PN, Value: dicomvalue.NewStrings("Roe^Rick"),
	}, enc.ByteOrder()))

	dec := dicomio.NewImplicitVRLittleEndianDecoder(dict)
	r := dicomio.NewReader(buf, dec)
	obj, err := Construct(r, dec.ByteOrder(), dict)
	require.NoError(t, err)

	elem, ok := obj.Get(patientName)
	require.True(t, ok)
	assert.Equal(t, vr.PN, elem.VR)
}
