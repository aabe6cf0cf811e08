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

// Package transfersyntax holds the registry mapping a DICOM Transfer Syntax
// UID to its codec capabilities, generalizing the teacher's single
// lookupTransferSyntax free function into the frozen, extensible registry
// spec.md section 4.5 calls for.
package transfersyntax

import (
	"strings"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomio"
)

// CodecKind discriminates the ways a transfer syntax may encode a data set.
type CodecKind int

const (
	// CodecNone is the zero value; a Descriptor should never carry it.
	CodecNone CodecKind = iota
	// CodecDataset means Pixel Data (and everything else) is encoded as
	// ordinary native Data Elements; Decoder/Encoder drive the header codec.
	CodecDataset
	// CodecEncapsulatedPixelData means Pixel Data is carried as an
	// undefined-length OB sequence of compressed fragments; the rest of the
	// data set is still native and uses Decoder/Encoder normally. A
	// PixelAdapter, if present, can decompress the fragments into frames.
	CodecEncapsulatedPixelData
)

// Codec is the tagged union of a transfer syntax's capabilities: which
// DataElementHeader codec to use for native elements, and (for encapsulated
// syntaxes) an optional pixel adapter name used by package pixeldata to look
// up a decompressor. Dispatch between the three concrete header codecs is
// resolved once here, at registry-build time, rather than through an
// open-ended interface hierarchy walked on every element (spec.md section 9
// design note).
type Codec struct {
	Kind CodecKind

	// Decoder/Encoder are set when Kind == CodecDataset or
	// CodecEncapsulatedPixelData: every transfer syntax's non-pixel
	// elements are always native, so both kinds need a header codec.
	Decoder dicomio.Decoder
	Encoder dicomio.Encoder

	// PixelAdapterName, set only for CodecEncapsulatedPixelData, names the
	// compression scheme (e.g. "rle") that package pixeldata's adapter
	// registry resolves to a concrete FrameDecoder. Empty means no adapter
	// is registered for this syntax yet; the descriptor is still usable to
	// decode the surrounding data set, just not the pixel data itself.
	PixelAdapterName string
}

// UnsupportedPixelEncapsulation reports whether c describes an encapsulated
// transfer syntax with no pixel adapter wired in, matching spec.md section
// 4.5: the data set decoder remains usable, only frame decoding is not.
func (c Codec) UnsupportedPixelEncapsulation() bool {
	return c.Kind == CodecEncapsulatedPixelData && c.PixelAdapterName == ""
}

// Descriptor is one entry in the registry: a UID, its human-readable name,
// and its codec capabilities.
type Descriptor struct {
	UID   string
	Name  string
	Codec Codec
}

// FullySupported reports whether d's data set AND pixel data (if
// encapsulated) can both be handled, matching scenario S5's
// fully_supported() query.
func (d Descriptor) FullySupported() bool {
	return !d.Codec.UnsupportedPixelEncapsulation()
}

// Registry is an immutable, read-only set of Descriptors keyed by UID. It is
// safe for concurrent reads by many goroutines since it is never mutated
// after Build.
type Registry struct {
	byUID map[string]Descriptor
}

// Get looks up uid, trimming one trailing NUL padding byte first (DICOM
// pads UIDs to even length with 0x00; spec.md invariant 4 / scenario S5).
func (r *Registry) Get(uid string) (Descriptor, bool) {
	uid = strings.TrimSuffix(uid, "\x00")
	d, ok := r.byUID[uid]
	return d, ok
}

// Builder accumulates Descriptors before Build freezes them into a Registry.
// First submission for a given UID wins (Open Question resolved in
// DESIGN.md): Submit reports false, without mutating the builder, if uid is
// already present.
type Builder struct {
	byUID map[string]Descriptor
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byUID: make(map[string]Descriptor)}
}

// Submit adds d to the builder, keyed by d.UID. It returns false, leaving
// the builder unchanged, if d.UID already has an entry — link order (the
// order init() functions run in) determines which submission that is,
// giving deterministic, if caller-order-dependent, behavior rather than
// panicking or silently preferring the latest writer.
func (b *Builder) Submit(d Descriptor) bool {
	if _, exists := b.byUID[d.UID]; exists {
		return false
	}
	b.byUID[d.UID] = d
	return true
}

// Build freezes the accumulated descriptors into an immutable Registry.
// The Builder should not be reused after calling Build.
func (b *Builder) Build() *Registry {
	frozen := make(map[string]Descriptor, len(b.byUID))
	for k, v := range b.byUID {
		frozen[k] = v
	}
	return &Registry{byUID: frozen}
}
