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

package pixeldata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomio"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomvalue"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/transfersyntax"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

func nativeRegistry() *transfersyntax.Registry {
	b := transfersyntax.NewBuilder()
	b.Submit(transfersyntax.Descriptor{
		UID:  transfersyntax.ExplicitVRLittleEndianUID,
		Name: "Explicit VR Little Endian",
		Codec: transfersyntax.Codec{
			Kind:    transfersyntax.CodecDataset,
			Decoder: dicomio.NewExplicitVRLittleEndianDecoder(),
			Encoder: dicomio.NewExplicitVRLittleEndianEncoder(),
		},
	})
	return b.Build()
}

func objectWithCommonAttrs(rows, cols, samplesPerPixel, bitsAllocated int) *dicomobject.Object {
	o := dicomobject.NewEmptyWithDictionary(nil)
	o.Put(&dicomobject.Element{Tag: tag.TransferSyntaxUID, VR: vr.UI, Value: dicomvalue.NewStrings(transfersyntax.ExplicitVRLittleEndianUID)})
	o.Put(&dicomobject.Element{Tag: tag.Rows, VR: vr.US, Value: dicomvalue.NewUint16s(uint16(rows))})
	o.Put(&dicomobject.Element{Tag: tag.Columns, VR: vr.US, Value: dicomvalue.NewUint16s(uint16(cols))})
	o.Put(&dicomobject.Element{Tag: tag.SamplesPerPixel, VR: vr.US, Value: dicomvalue.NewUint16s(uint16(samplesPerPixel))})
	o.Put(&dicomobject.Element{Tag: tag.BitsAllocated, VR: vr.US, Value: dicomvalue.NewUint16s(uint16(bitsAllocated))})
	o.Put(&dicomobject.Element{Tag: tag.BitsStored, VR: vr.US, Value: dicomvalue.NewUint16s(uint16(bitsAllocated))})
	o.Put(&dicomobject.Element{Tag: tag.HighBit, VR: vr.US, Value: dicomvalue.NewUint16s(uint16(bitsAllocated - 1))})
	o.Put(&dicomobject.Element{Tag: tag.PixelRepresentation, VR: vr.US, Value: dicomvalue.NewUint16s(0)})
	o.Put(&dicomobject.Element{Tag: tag.PhotometricInterpretation, VR: vr.CS, Value: dicomvalue.NewStrings("MONOCHROME1")})
	return o
}

// TestDecodeNativeUncompressed covers scenario S7: an uncompressed
// single-frame monochrome image decodes to its raw bytes with the
// photometric interpretation rewritten per samples-per-pixel.
func TestDecodeNativeUncompressed(t *testing.T) {
	o := objectWithCommonAttrs(2, 2, 1, 8)
	o.Put(&dicomobject.Element{Tag: tag.PixelData, VR: vr.OB, Value: dicomvalue.NewBytes([]byte{0, 1, 2, 3})})

	out, err := Decode(o, nativeRegistry())
	require.NoError(t, err)
	require.Len(t, out.Data, 1)
	assert.Equal(t, []byte{0, 1, 2, 3}, out.Data[0])
	assert.Equal(t, "MONOCHROME2", out.PhotometricInterpretation)
	assert.Equal(t, 2, out.Rows)
	assert.Equal(t, 2, out.Columns)
	assert.Equal(t, 1, out.NumberOfFrames)
}

func TestDecodeRGBPhotometricRewrite(t *testing.T) {
	o := objectWithCommonAttrs(1, 1, 3, 8)
	o.Put(&dicomobject.Element{Tag: tag.PhotometricInterpretation, VR: vr.CS, Value: dicomvalue.NewStrings("YBR_FULL")})
	o.Put(&dicomobject.Element{Tag: tag.PixelData, VR: vr.OB, Value: dicomvalue.NewBytes([]byte{10, 20, 30})})

	out, err := Decode(o, nativeRegistry())
	require.NoError(t, err)
	assert.Equal(t, "RGB", out.PhotometricInterpretation)
}

func TestDecodeMultiFrameNativeSplitsEvenly(t *testing.T) {
	o := objectWithCommonAttrs(1, 2, 1, 8)
	o.Put(&dicomobject.Element{Tag: tag.NumberOfFrames, VR: vr.IS, Value: dicomvalue.NewStrings("2")})
	o.Put(&dicomobject.Element{Tag: tag.PixelData, VR: vr.OB, Value: dicomvalue.NewBytes([]byte{1, 2, 3, 4})})

	out, err := Decode(o, nativeRegistry())
	require.NoError(t, err)
	require.Len(t, out.Data, 2)
	assert.Equal(t, []byte{1, 2}, out.Data[0])
	assert.Equal(t, []byte{3, 4}, out.Data[1])
}

func TestDecodeDerivesWindowLevelOnlyWhenBothPresent(t *testing.T) {
	o := objectWithCommonAttrs(1, 1, 1, 8)
	o.Put(&dicomobject.Element{Tag: tag.PixelData, VR: vr.OB, Value: dicomvalue.NewBytes([]byte{5})})
	o.Put(&dicomobject.Element{Tag: tag.WindowCenter, VR: vr.DS, Value: dicomvalue.NewStrings("40")})

	out, err := Decode(o, nativeRegistry())
	require.NoError(t, err)
	assert.Nil(t, out.Window)

	o.Put(&dicomobject.Element{Tag: tag.WindowWidth, VR: vr.DS, Value: dicomvalue.NewStrings("400")})
	out, err = Decode(o, nativeRegistry())
	require.NoError(t, err)
	require.NotNil(t, out.Window)
	assert.Equal(t, 40.0, out.Window.Center)
	assert.Equal(t, 400.0, out.Window.Width)
}

func TestDecodeUnknownTransferSyntax(t *testing.T) {
	o := objectWithCommonAttrs(1, 1, 1, 8)
	o.Put(&dicomobject.Element{Tag: tag.TransferSyntaxUID, VR: vr.UI, Value: dicomvalue.NewStrings("1.2.3.4.5")})
	o.Put(&dicomobject.Element{Tag: tag.PixelData, VR: vr.OB, Value: dicomvalue.NewBytes([]byte{1})})

	_, err := Decode(o, nativeRegistry())
	require.Error(t, err)
	var pe *PixelError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrUnknownTransferSyntax, pe.Kind)
}

func TestDecodeMissingAttributeIsGetAttributeError(t *testing.T) {
	o := dicomobject.NewEmptyWithDictionary(nil)
	o.Put(&dicomobject.Element{Tag: tag.TransferSyntaxUID, VR: vr.UI, Value: dicomvalue.NewStrings(transfersyntax.ExplicitVRLittleEndianUID)})

	_, err := Decode(o, nativeRegistry())
	require.Error(t, err)
	var pe *PixelError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrGetAttribute, pe.Kind)
}

func TestDecodePixelDataAsPlainSequenceIsInvalid(t *testing.T) {
	o := objectWithCommonAttrs(1, 1, 1, 8)
	child := dicomobject.NewEmptyWithDictionary(nil)
	o.Put(&dicomobject.Element{Tag: tag.PixelData, VR: vr.SQ, Items: []*dicomobject.Object{child}})

	_, err := Decode(o, nativeRegistry())
	require.Error(t, err)
	var pe *PixelError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrInvalidPixelData, pe.Kind)
}

type fakeDecoder struct{}

func (fakeDecoder) DecodeFrame(fragments [][]byte, meta FrameMeta) ([]byte, error) {
	var out []byte
	for _, f := range fragments {
		out = append(out, f...)
	}
	return out, nil
}

func (fakeDecoder) EncodeFrame(data []byte, meta FrameMeta) ([][]byte, error) {
	return [][]byte{data}, nil
}

func TestDecodeEncapsulatedDispatchesToRegisteredAdapter(t *testing.T) {
	RegisterAdapter("fake-test-adapter", fakeDecoder{})

	b := transfersyntax.NewBuilder()
	b.Submit(transfersyntax.Descriptor{
		UID:  "1.2.840.10008.1.2.5.9999.fake",
		Name: "Fake Encapsulated",
		Codec: transfersyntax.Codec{
			Kind:             transfersyntax.CodecEncapsulatedPixelData,
			Decoder:          dicomio.NewExplicitVRLittleEndianDecoder(),
			Encoder:          dicomio.NewExplicitVRLittleEndianEncoder(),
			PixelAdapterName: "fake-test-adapter",
		},
	})
	reg := b.Build()

	o := objectWithCommonAttrs(1, 2, 1, 8)
	o.Put(&dicomobject.Element{Tag: tag.TransferSyntaxUID, VR: vr.UI, Value: dicomvalue.NewStrings("1.2.840.10008.1.2.5.9999.fake")})
	o.Put(&dicomobject.Element{
		Tag:         tag.PixelData,
		VR:          vr.OB,
		OffsetTable: []byte{},
		Fragments:   [][]byte{{1, 2}},
	})

	out, err := Decode(o, reg)
	require.NoError(t, err)
	require.Len(t, out.Data, 1)
	assert.Equal(t, []byte{1, 2}, out.Data[0])
}

func TestDecodeEncapsulatedWithoutAdapterIsUnsupported(t *testing.T) {
	b := transfersyntax.NewBuilder()
	b.Submit(transfersyntax.Descriptor{
		UID:  "1.2.840.10008.1.2.5.9999.noadapter",
		Name: "Fake Encapsulated No Adapter",
		Codec: transfersyntax.Codec{
			Kind:    transfersyntax.CodecEncapsulatedPixelData,
			Decoder: dicomio.NewExplicitVRLittleEndianDecoder(),
			Encoder: dicomio.NewExplicitVRLittleEndianEncoder(),
		},
	})
	reg := b.Build()

	o := objectWithCommonAttrs(1, 1, 1, 8)
	o.Put(&dicomobject.Element{Tag: tag.TransferSyntaxUID, VR: vr.UI, Value: dicomvalue.NewStrings("1.2.840.10008.1.2.5.9999.noadapter")})
	o.Put(&dicomobject.Element{
		Tag:         tag.PixelData,
		VR:          vr.OB,
		OffsetTable: []byte{},
		Fragments:   [][]byte{{1}},
	})

	_, err := Decode(o, reg)
	require.Error(t, err)
	var pe *PixelError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrUnsupportedTransferSyntax, pe.Kind)
}
