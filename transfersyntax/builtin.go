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

package transfersyntax

import (
	"sync"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomio"
)

// Well-known transfer syntax UIDs, from PS3.6 Annex A. Grounded on the
// teacher's transfersyntax.go constant block, extended with the full
// encapsulated set spec.md section 4.5 requires at minimum.
const (
	ImplicitVRLittleEndianUID      = "1.2.840.10008.1.2"
	ExplicitVRLittleEndianUID      = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndianUID         = "1.2.840.10008.1.2.2"
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"

	JPEGBaselineUID                   = "1.2.840.10008.1.2.4.50"
	JPEGExtendedUID                   = "1.2.840.10008.1.2.4.51"
	JPEGLosslessNonHierarchicalUID    = "1.2.840.10008.1.2.4.57"
	JPEGLosslessFirstOrderPredictionUID = "1.2.840.10008.1.2.4.70"
	JPEGLSLosslessUID                 = "1.2.840.10008.1.2.4.80"
	JPEGLSNearLosslessUID             = "1.2.840.10008.1.2.4.81"
	JPEG2000LosslessOnlyUID           = "1.2.840.10008.1.2.4.90"
	JPEG2000UID                       = "1.2.840.10008.1.2.4.91"
	RLELosslessUID                    = "1.2.840.10008.1.2.5"
)

// encapsulatedUIDs is the full JPEG/JPEG-LS/JPEG 2000/RLE Lossless set
// spec.md section 4.5 requires as a minimum baseline, each registered as
// CodecEncapsulatedPixelData with no adapter. Adapters are wired in
// separately (see WithPixelAdapter) by packages that implement a given
// compression scheme; an unwired entry is simply UnsupportedPixelEncapsulation
// until then. package pixeldata/rle contributes a fully adapter-wired
// Descriptor for RLELosslessUID from its own init() (see Default(), which
// submits Contributions before builtins() precisely so an imported adapter
// package can shadow this package's bare fallback for the same UID).
var encapsulatedUIDs = map[string]string{
	JPEGBaselineUID:                     "JPEG Baseline (Process 1)",
	JPEGExtendedUID:                     "JPEG Extended (Process 2 & 4)",
	JPEGLosslessNonHierarchicalUID:      "JPEG Lossless, Non-Hierarchical (Process 14)",
	JPEGLosslessFirstOrderPredictionUID: "JPEG Lossless, Non-Hierarchical, First-Order Prediction (Process 14, Selection Value 1)",
	JPEGLSLosslessUID:                   "JPEG-LS Lossless",
	JPEGLSNearLosslessUID:               "JPEG-LS Lossy (Near-Lossless)",
	JPEG2000LosslessOnlyUID:             "JPEG 2000 (Lossless Only)",
	JPEG2000UID:                         "JPEG 2000",
	RLELosslessUID:                      "RLE Lossless",
}

// contributionsMu guards Contributions, which external packages append to
// from their own init() functions before Default() is first called. This
// is the Go realization of spec.md's "Registry extension ABI":
// submit_transfer_syntax(uid, name, codec) called during static
// initialization, collected into the union Default() builds.
var contributionsMu sync.Mutex

// Contributions accumulates Descriptors submitted by external packages'
// init() functions, ahead of Default() assembling the frozen registry. Go's
// init() ordering (package dependency order, then file name within a
// package) stands in for "link order" in spec.md's phrasing: whichever
// package's init() runs first effectively wins ties via Builder.Submit's
// first-submission-wins rule.
var Contributions []Descriptor

// Submit appends d to Contributions for inclusion in the next Default()
// build. Safe to call from init().
func Submit(d Descriptor) {
	contributionsMu.Lock()
	defer contributionsMu.Unlock()
	Contributions = append(Contributions, d)
}

// builtins returns the built-in descriptor set: Implicit/Explicit VR LE,
// Explicit VR BE, Deflated Explicit VR LE, and the encapsulated UID set.
func builtins() []Descriptor {
	ds := []Descriptor{
		{
			UID:  ImplicitVRLittleEndianUID,
			Name: "Implicit VR Little Endian",
			Codec: Codec{
				Kind:    CodecDataset,
				Decoder: dicomio.NewImplicitVRLittleEndianDecoder(nil),
				Encoder: dicomio.NewImplicitVRLittleEndianEncoder(),
			},
		},
		{
			UID:  ExplicitVRLittleEndianUID,
			Name: "Explicit VR Little Endian",
			Codec: Codec{
				Kind:    CodecDataset,
				Decoder: dicomio.NewExplicitVRLittleEndianDecoder(),
				Encoder: dicomio.NewExplicitVRLittleEndianEncoder(),
			},
		},
		{
			UID:  ExplicitVRBigEndianUID,
			Name: "Explicit VR Big Endian",
			Codec: Codec{
				Kind:    CodecDataset,
				Decoder: dicomio.NewExplicitVRBigEndianDecoder(),
				Encoder: dicomio.NewExplicitVRBigEndianEncoder(),
			},
		},
		{
			// Deflated Explicit VR LE wraps the whole stream after the
			// File Meta group in DEFLATE; the header codec itself is
			// identical to plain Explicit VR LE once the stream is
			// inflated. Nothing in this module inflates it, so this
			// descriptor only decodes a data set that is already inflated.
			UID:  DeflatedExplicitVRLittleEndian,
			Name: "Deflated Explicit VR Little Endian",
			Codec: Codec{
				Kind:    CodecDataset,
				Decoder: dicomio.NewExplicitVRLittleEndianDecoder(),
				Encoder: dicomio.NewExplicitVRLittleEndianEncoder(),
			},
		},
	}

	for uid, name := range encapsulatedUIDs {
		ds = append(ds, Descriptor{
			UID:  uid,
			Name: name,
			Codec: Codec{
				Kind:    CodecEncapsulatedPixelData,
				Decoder: dicomio.NewExplicitVRLittleEndianDecoder(),
				Encoder: dicomio.NewExplicitVRLittleEndianEncoder(),
			},
		})
	}

	return ds
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default assembles and returns the process-wide frozen registry: anything
// appended to Contributions by other packages' init() functions, plus the
// built-in descriptors. Contributions are submitted first so that an
// imported adapter package (e.g. pixeldata/rle, contributing an
// adapter-wired Descriptor for RLELosslessUID) shadows this package's bare,
// adapter-less fallback for the same UID; Submit's first-submission-wins
// rule then means builtins() only fills in UIDs nothing else claimed. The
// result is cached for the life of the process.
func Default() *Registry {
	defaultOnce.Do(func() {
		b := NewBuilder()
		contributionsMu.Lock()
		extra := append([]Descriptor(nil), Contributions...)
		contributionsMu.Unlock()
		for _, d := range extra {
			b.Submit(d)
		}
		for _, d := range builtins() {
			b.Submit(d)
		}
		defaultReg = b.Build()
	})
	return defaultReg
}

// WithPixelAdapter returns a copy of d with its Codec's PixelAdapterName set,
// for packages (like pixeldata/rle) that want to contribute a decompressor
// for an already-built-in encapsulated UID via Submit — since Submit is
// first-submission-wins, adapter packages must Submit before Default() is
// first called, typically from their own init().
func WithPixelAdapter(d Descriptor, adapterName string) Descriptor {
	d.Codec.PixelAdapterName = adapterName
	return d
}
