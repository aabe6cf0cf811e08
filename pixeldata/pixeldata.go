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

// Package pixeldata decodes the Pixel Data element of an in-memory Object
// into canonical-layout frames, dispatching encapsulated transfer syntaxes
// to a pluggable FrameDecoder. It has no teacher counterpart (the teacher
// only collects and re-serializes pixel fragments, never decodes them); the
// fragment-assembly half is grounded on the teacher's BulkDataIterator /
// encapsulatedFormatIterator (bulkdata.go), and the pluggable-decoder shape
// is grounded on jpfielding-dicos.go's pkg/compress/{jpeg2k,jpegls,rle}
// adapter interfaces.
package pixeldata

import (
	"fmt"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/transfersyntax"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// WindowLevel is a single VOI LUT window, derived only when both
// WindowCenter and WindowWidth are present on the object.
type WindowLevel struct {
	Center float64
	Width  float64
}

// DecodedPixelData is the output of Decode: every frame in canonical
// (uncompressed, native byte order) layout, plus the image-pixel module
// attributes needed to interpret it.
type DecodedPixelData struct {
	Data                      [][]byte
	Columns                   int
	Rows                      int
	NumberOfFrames            int
	PhotometricInterpretation string
	SamplesPerPixel           int
	PlanarConfiguration       int
	BitsAllocated             int
	BitsStored                int
	HighBit                   int
	PixelRepresentation       int
	RescaleIntercept          *float64
	RescaleSlope              *float64
	VOILUTFunction            string
	Window                    *WindowLevel
}

// FrameMeta is the dimensional and sample-format context a FrameDecoder
// needs to turn raw fragments into canonical pixel bytes; it never exposes
// the transfer syntax UID itself, so adapters stay UID-agnostic.
type FrameMeta struct {
	Columns             int
	Rows                int
	SamplesPerPixel     int
	BitsAllocated       int
	BitsStored          int
	HighBit             int
	PixelRepresentation int
	PlanarConfiguration int
}

// FrameDecoder turns the concatenated fragments of one encapsulated frame
// into rows*cols*samplesPerPixel*(bitsAllocated/8) bytes of canonical pixel
// data, and back. Registered adapters are looked up by the
// PixelAdapterName the transfer-syntax registry resolved for the element's
// transfer syntax.
type FrameDecoder interface {
	DecodeFrame(fragments [][]byte, meta FrameMeta) ([]byte, error)
	// EncodeFrame is the write-side inverse of DecodeFrame: it takes one
	// frame of canonical pixel bytes and produces the fragments an
	// encapsulated Pixel Data element would carry for that frame.
	EncodeFrame(data []byte, meta FrameMeta) ([][]byte, error)
}

var adapters = map[string]FrameDecoder{}

// RegisterAdapter makes dec available under name for any transfer syntax
// descriptor whose PixelAdapterName equals name. Called from adapter
// packages' init(), mirroring how transfersyntax.Submit lets external
// packages extend the registry.
func RegisterAdapter(name string, dec FrameDecoder) {
	adapters[name] = dec
}

// PixelError is the taxonomy spec.md §4.8 names for this pipeline, carried
// as a Kind-discriminated struct rather than a sealed enum, matching the
// typed-error-struct pattern used throughout this module.
type PixelError struct {
	Kind  PixelErrorKind
	Tag   tag.Tag
	Cause error
	Msg   string
}

// PixelErrorKind enumerates the pipeline's error taxonomy.
type PixelErrorKind int

const (
	ErrGetAttribute PixelErrorKind = iota
	ErrUnknownTransferSyntax
	ErrUnsupportedTransferSyntax
	ErrUnsupportedPhotometricInterpretation
	ErrInvalidPixelData
	ErrDecodePixelData
)

func (e *PixelError) Error() string {
	switch e.Kind {
	case ErrGetAttribute:
		return fmt.Sprintf("pixeldata: reading attribute %s: %v", e.Tag, e.Cause)
	case ErrUnknownTransferSyntax:
		return fmt.Sprintf("pixeldata: unknown transfer syntax: %s", e.Msg)
	case ErrUnsupportedTransferSyntax:
		return fmt.Sprintf("pixeldata: unsupported transfer syntax: %s", e.Msg)
	case ErrUnsupportedPhotometricInterpretation:
		return fmt.Sprintf("pixeldata: unsupported photometric interpretation: %s", e.Msg)
	case ErrInvalidPixelData:
		return fmt.Sprintf("pixeldata: invalid pixel data: %s", e.Msg)
	case ErrDecodePixelData:
		return fmt.Sprintf("pixeldata: decoding pixel data: %s: %v", e.Msg, e.Cause)
	default:
		return fmt.Sprintf("pixeldata: error: %s", e.Msg)
	}
}

func (e *PixelError) Unwrap() error { return e.Cause }

func errGetAttribute(t tag.Tag, cause error) error {
	return &PixelError{Kind: ErrGetAttribute, Tag: t, Cause: cause}
}

// Decode resolves obj's transfer syntax against reg and produces its
// canonical-layout pixel frames, per spec.md §4.8's algorithm.
func Decode(obj *dicomobject.Object, reg *transfersyntax.Registry) (*DecodedPixelData, error) {
	uid, err := requiredString(obj, tag.TransferSyntaxUID)
	if err != nil {
		return nil, err
	}
	desc, ok := reg.Get(uid)
	if !ok {
		return nil, &PixelError{Kind: ErrUnknownTransferSyntax, Msg: uid}
	}

	attrs, err := readImagePixelModule(obj)
	if err != nil {
		return nil, err
	}

	pixelElem, ok := obj.Get(tag.PixelData)
	if !ok {
		return nil, errGetAttribute(tag.PixelData, fmt.Errorf("element not present"))
	}

	var frames [][]byte
	switch {
	case pixelElem.VR == vr.SQ:
		return nil, &PixelError{Kind: ErrInvalidPixelData, Msg: "Pixel Data encoded as an ordinary Sequence"}

	case pixelElem.IsEncapsulated():
		if desc.Codec.Kind != transfersyntax.CodecEncapsulatedPixelData {
			return nil, &PixelError{Kind: ErrUnsupportedTransferSyntax, Msg: uid}
		}
		if desc.Codec.UnsupportedPixelEncapsulation() {
			return nil, &PixelError{Kind: ErrUnsupportedTransferSyntax, Msg: uid + ": no pixel adapter registered"}
		}
		dec, ok := adapters[desc.Codec.PixelAdapterName]
		if !ok {
			return nil, &PixelError{Kind: ErrUnsupportedTransferSyntax, Msg: uid + ": adapter " + desc.Codec.PixelAdapterName + " not registered"}
		}

		meta := FrameMeta{
			Columns:             attrs.columns,
			Rows:                attrs.rows,
			SamplesPerPixel:     attrs.samplesPerPixel,
			BitsAllocated:       attrs.bitsAllocated,
			BitsStored:          attrs.bitsStored,
			HighBit:             attrs.highBit,
			PixelRepresentation: attrs.pixelRepresentation,
			PlanarConfiguration: attrs.planarConfiguration,
		}

		groups := groupFragmentsByFrame(pixelElem.Fragments, attrs.numberOfFrames)
		frames = make([][]byte, len(groups))
		for i, frags := range groups {
			decoded, err := dec.DecodeFrame(frags, meta)
			if err != nil {
				return nil, &PixelError{Kind: ErrDecodePixelData, Cause: err, Msg: fmt.Sprintf("frame %d", i)}
			}
			frames[i] = decoded
		}

	default:
		raw, err := pixelElem.Value.ToBytes()
		if err != nil {
			return nil, &PixelError{Kind: ErrInvalidPixelData, Msg: err.Error()}
		}
		frames = splitNativeFrames(raw, attrs.numberOfFrames)
	}

	photometric := attrs.photometricInterpretation
	switch attrs.samplesPerPixel {
	case 1:
		photometric = "MONOCHROME2"
	case 3:
		photometric = "RGB"
	}

	out := &DecodedPixelData{
		Data:                      frames,
		Columns:                   attrs.columns,
		Rows:                      attrs.rows,
		NumberOfFrames:            attrs.numberOfFrames,
		PhotometricInterpretation: photometric,
		SamplesPerPixel:           attrs.samplesPerPixel,
		PlanarConfiguration:       attrs.planarConfiguration,
		BitsAllocated:             attrs.bitsAllocated,
		BitsStored:                attrs.bitsStored,
		HighBit:                   attrs.highBit,
		PixelRepresentation:       attrs.pixelRepresentation,
		RescaleIntercept:          attrs.rescaleIntercept,
		RescaleSlope:              attrs.rescaleSlope,
		VOILUTFunction:            attrs.voiLUTFunction,
	}
	if attrs.windowCenter != nil && attrs.windowWidth != nil {
		out.Window = &WindowLevel{Center: *attrs.windowCenter, Width: *attrs.windowWidth}
	}
	return out, nil
}

// groupFragmentsByFrame concatenates consecutive fragments belonging to the
// same frame. When numberOfFrames is at most 1 or there is at most one
// fragment, every fragment is treated as belonging to a single frame; the
// Basic Offset Table is not consulted. Otherwise fragments
// are split evenly across numberOfFrames, matching the common encoder
// convention of one fragment per frame.
func groupFragmentsByFrame(frags [][]byte, numberOfFrames int) [][][]byte {
	if numberOfFrames <= 1 || len(frags) <= 1 {
		return [][][]byte{frags}
	}
	if len(frags) == numberOfFrames {
		groups := make([][][]byte, numberOfFrames)
		for i, f := range frags {
			groups[i] = [][]byte{f}
		}
		return groups
	}
	// More fragments than frames: distribute as evenly as possible,
	// concatenating any remainder into the final frame.
	per := len(frags) / numberOfFrames
	if per == 0 {
		per = 1
	}
	groups := make([][][]byte, 0, numberOfFrames)
	for i := 0; i < len(frags); i += per {
		end := i + per
		if end > len(frags) || len(groups) == numberOfFrames-1 {
			end = len(frags)
		}
		groups = append(groups, frags[i:end])
		if end == len(frags) {
			break
		}
	}
	return groups
}

// splitNativeFrames slices a contiguous native Pixel Data buffer into
// numberOfFrames equal-sized frames. A NumberOfFrames of 0 or 1 is treated
// as a single frame spanning the whole buffer.
func splitNativeFrames(raw []byte, numberOfFrames int) [][]byte {
	if numberOfFrames <= 1 || len(raw) == 0 {
		return [][]byte{raw}
	}
	frameLen := len(raw) / numberOfFrames
	if frameLen == 0 {
		return [][]byte{raw}
	}
	frames := make([][]byte, numberOfFrames)
	for i := 0; i < numberOfFrames; i++ {
		start := i * frameLen
		end := start + frameLen
		if i == numberOfFrames-1 {
			end = len(raw)
		}
		frames[i] = raw[start:end]
	}
	return frames
}

func requiredString(obj *dicomobject.Object, t tag.Tag) (string, error) {
	e, ok := obj.Get(t)
	if !ok {
		return "", errGetAttribute(t, fmt.Errorf("element not present"))
	}
	ss, err := e.Value.ToStrings()
	if err != nil {
		return "", errGetAttribute(t, err)
	}
	if len(ss) == 0 {
		return "", errGetAttribute(t, fmt.Errorf("empty value"))
	}
	return ss[0], nil
}
