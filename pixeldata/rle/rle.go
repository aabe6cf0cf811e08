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

// Package rle implements DICOM RLE Lossless (PS3.5 Annex G), the one
// compressed transfer syntax this module ships end-to-end rather than
// leaving as an external collaborator stub. The byte-oriented PackBits
// scheme itself is grounded on jpfielding-dicos.go's
// pkg/compress/rle/packbits.go; the segment framing (an RLE Header of up
// to 15 segment offsets, one segment per color-plane/byte-plane) is
// grounded on PS3.5 Annex G directly, since the pack's vendored rle package
// only reaches image.Image, not the DICOM segment header.
//
// Importing this package registers it as the "rle" pixeldata.FrameDecoder
// for transfersyntax.RLELosslessUID; link it in with a blank import
// (`import _ ".../pixeldata/rle"`) wherever RLE Lossless support is needed.
package rle

import (
	"encoding/binary"
	"fmt"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomio"
	"github.com/GoogleCloudPlatform/go-dicom-codec/pixeldata"
	"github.com/GoogleCloudPlatform/go-dicom-codec/transfersyntax"
)

const adapterName = "rle"

func init() {
	pixeldata.RegisterAdapter(adapterName, Adapter{})

	d := transfersyntax.WithPixelAdapter(transfersyntax.Descriptor{
		UID:  transfersyntax.RLELosslessUID,
		Name: "RLE Lossless",
		Codec: transfersyntax.Codec{
			Kind:    transfersyntax.CodecEncapsulatedPixelData,
			Decoder: dicomio.NewExplicitVRLittleEndianDecoder(),
			Encoder: dicomio.NewExplicitVRLittleEndianEncoder(),
		},
	}, adapterName)
	transfersyntax.Submit(d)
}

// Adapter implements pixeldata.FrameDecoder for DICOM RLE Lossless.
type Adapter struct{}

const rleHeaderSize = 64
const maxSegments = 15

// DecodeFrame reassembles one RLE-compressed frame's fragments into
// canonical little-endian, sample-interleaved-per-meta.PlanarConfiguration
// pixel bytes.
//
// A DICOM RLE frame is the concatenation of its fragments (PS3.5 G.2 only
// specifies fragments may not split a frame's RLE Header). It starts with an
// RLE Header of 16 little-endian uint32s (segment count, then up to 15
// segment byte-offsets from the start of the header; unused offsets are
// zero), followed by that many PackBits-compressed segments, each
// decompressing to exactly meta.Rows*meta.Columns bytes: one byte-plane,
// most-significant byte first, ordered by sample (PS3.5 G.4).
func (Adapter) DecodeFrame(fragments [][]byte, meta pixeldata.FrameMeta) ([]byte, error) {
	var frame []byte
	for _, f := range fragments {
		frame = append(frame, f...)
	}
	if len(frame) < rleHeaderSize {
		return nil, fmt.Errorf("rle: frame too short for RLE Header: %d bytes", len(frame))
	}

	numSegments := int(binary.LittleEndian.Uint32(frame[0:4]))
	if numSegments < 1 || numSegments > maxSegments {
		return nil, fmt.Errorf("rle: invalid segment count %d", numSegments)
	}

	bytesPerSample := meta.BitsAllocated / 8
	if bytesPerSample < 1 {
		bytesPerSample = 1
	}
	wantSegments := meta.SamplesPerPixel * bytesPerSample
	if wantSegments != numSegments {
		return nil, fmt.Errorf("rle: segment count %d does not match samplesPerPixel=%d * bytesPerSample=%d",
			numSegments, meta.SamplesPerPixel, bytesPerSample)
	}

	pixelsPerPlane := meta.Rows * meta.Columns
	planes := make([][]byte, numSegments)
	for i := 0; i < numSegments; i++ {
		offset := int(binary.LittleEndian.Uint32(frame[4+4*i : 8+4*i]))
		if offset <= 0 || offset >= len(frame) {
			return nil, fmt.Errorf("rle: segment %d has invalid offset %d", i, offset)
		}
		end := len(frame)
		if i+1 < numSegments {
			next := int(binary.LittleEndian.Uint32(frame[4+4*(i+1) : 8+4*(i+1)]))
			if next > offset && next <= len(frame) {
				end = next
			}
		}
		decoded, err := decodePackBits(frame[offset:end], pixelsPerPlane)
		if err != nil {
			return nil, fmt.Errorf("rle: segment %d: %w", i, err)
		}
		if len(decoded) != pixelsPerPlane {
			return nil, fmt.Errorf("rle: segment %d decoded to %d bytes, want %d", i, len(decoded), pixelsPerPlane)
		}
		planes[i] = decoded
	}

	return assembleCanonical(planes, meta, bytesPerSample, pixelsPerPlane), nil
}

// assembleCanonical reconstructs little-endian, per-pixel pixel bytes from
// RLE's big-endian-byte-plane-major layout, honoring meta.PlanarConfiguration
// for how samples are interleaved in the output.
func assembleCanonical(planes [][]byte, meta pixeldata.FrameMeta, bytesPerSample, pixelsPerPlane int) []byte {
	out := make([]byte, pixelsPerPlane*meta.SamplesPerPixel*bytesPerSample)

	for s := 0; s < meta.SamplesPerPixel; s++ {
		for px := 0; px < pixelsPerPlane; px++ {
			var value uint32
			for b := 0; b < bytesPerSample; b++ {
				value = value<<8 | uint32(planes[s*bytesPerSample+b][px])
			}

			var dst int
			if meta.PlanarConfiguration == 1 {
				dst = (s*pixelsPerPlane + px) * bytesPerSample
			} else {
				dst = (px*meta.SamplesPerPixel + s) * bytesPerSample
			}
			for b := 0; b < bytesPerSample; b++ {
				out[dst+b] = byte(value >> (8 * b))
			}
		}
	}
	return out
}

// disassembleCanonical is the exact inverse of assembleCanonical: it splits
// little-endian, per-pixel canonical bytes back into one big-endian
// byte-plane per sample per byte-of-sample, ordered by sample (PS3.5 G.4).
func disassembleCanonical(canonical []byte, meta pixeldata.FrameMeta, bytesPerSample, pixelsPerPlane int) [][]byte {
	planes := make([][]byte, meta.SamplesPerPixel*bytesPerSample)
	for i := range planes {
		planes[i] = make([]byte, pixelsPerPlane)
	}

	for s := 0; s < meta.SamplesPerPixel; s++ {
		for px := 0; px < pixelsPerPlane; px++ {
			var dst int
			if meta.PlanarConfiguration == 1 {
				dst = (s*pixelsPerPlane + px) * bytesPerSample
			} else {
				dst = (px*meta.SamplesPerPixel + s) * bytesPerSample
			}
			for b := 0; b < bytesPerSample; b++ {
				planes[s*bytesPerSample+b][px] = canonical[dst+bytesPerSample-1-b]
			}
		}
	}
	return planes
}

// EncodeFrame compresses one frame of canonical pixel bytes into a single
// RLE-encapsulated fragment: an RLE Header (PS3.5 G.3) giving each segment's
// byte offset, followed by the segments themselves, one per byte-plane,
// each PackBits-compressed (PS3.5 G.2).
func (Adapter) EncodeFrame(data []byte, meta pixeldata.FrameMeta) ([][]byte, error) {
	bytesPerSample := meta.BitsAllocated / 8
	if bytesPerSample < 1 {
		bytesPerSample = 1
	}
	numSegments := meta.SamplesPerPixel * bytesPerSample
	if numSegments < 1 || numSegments > maxSegments {
		return nil, fmt.Errorf("rle: samplesPerPixel=%d * bytesPerSample=%d yields invalid segment count %d",
			meta.SamplesPerPixel, bytesPerSample, numSegments)
	}

	pixelsPerPlane := meta.Rows * meta.Columns
	wantLen := pixelsPerPlane * meta.SamplesPerPixel * bytesPerSample
	if len(data) != wantLen {
		return nil, fmt.Errorf("rle: frame data is %d bytes, want %d (rows=%d cols=%d samplesPerPixel=%d bytesPerSample=%d)",
			len(data), wantLen, meta.Rows, meta.Columns, meta.SamplesPerPixel, bytesPerSample)
	}

	planes := disassembleCanonical(data, meta, bytesPerSample, pixelsPerPlane)
	segments := make([][]byte, numSegments)
	for i, p := range planes {
		segments[i] = encodePackBits(p)
	}

	header := make([]byte, rleHeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], uint32(numSegments))
	offset := uint32(rleHeaderSize)
	for i, seg := range segments {
		binary.LittleEndian.PutUint32(header[4+4*i:8+4*i], offset)
		offset += uint32(len(seg))
	}

	frame := make([]byte, 0, offset)
	frame = append(frame, header...)
	for _, seg := range segments {
		frame = append(frame, seg...)
	}
	if len(frame)%2 != 0 {
		frame = append(frame, 0x00)
	}

	return [][]byte{frame}, nil
}
