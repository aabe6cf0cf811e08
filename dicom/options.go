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

// Package dicom is the file-level facade tying the codec layers (C1-C8)
// together: reading and writing the 128-byte preamble, the File Meta
// Information group, and the data set itself, against whichever transfer
// syntax the file names. It has no single teacher file to mirror one to
// one; it is grounded on the teacher's parse.go (Parse/CollectDataElements/
// applyOptions), iterator.go (readDicomSignature/bufferMetadataHeader/
// findSyntax), options.go (the ParseOption functional-options pattern), and
// write.go/writer.go for the mirror-image write path.
package dicom

import (
	"os"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomio"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dictionary"
	"github.com/GoogleCloudPlatform/go-dicom-codec/transfersyntax"
)

// CaptureBacktrace controls whether FileError (and, by assignment below,
// dicomio.HeaderError) capture a runtime/debug.Stack() trace at
// construction. Populated once from the DICOM_CAPTURE_TRACE environment
// variable, mirroring the Rust original's Backtrace: Option<Backtrace>
// fields (Go has no equivalent built-in type).
var CaptureBacktrace = false

func init() {
	if os.Getenv("DICOM_CAPTURE_TRACE") != "" {
		CaptureBacktrace = true
		dicomio.CaptureBacktrace = true
	}
}

// Transform is applied to every Element of a parsed Object, in post-order
// (an SQ element's nested Items are transformed before the SQ element
// itself). Returning a nil Element drops it from the result; returning an
// error aborts Parse. Grounded on the teacher's ParseOption/WithTransform.
type Transform func(*dicomobject.Element) (*dicomobject.Element, error)

// Options configures Parse and WriteFile.
type Options struct {
	registry   *transfersyntax.Registry
	dict       dictionary.Dictionary
	transforms []Transform
}

// Option configures an Options value, following the teacher's functional-
// options pattern (ParseOption/ConstructOption generalized into one type
// since this facade's read and write paths share the same config shape).
type Option func(*Options)

func newOptions(opts []Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = transfersyntax.Default()
	}
	if o.dict == nil {
		o.dict = dictionary.Stub{}
	}
	return o
}

// WithRegistry overrides the transfersyntax.Registry consulted to resolve
// (0002,0010). Defaults to transfersyntax.Default().
func WithRegistry(reg *transfersyntax.Registry) Option {
	return func(o *Options) { o.registry = reg }
}

// WithDictionary supplies the dictionary.Dictionary used to resolve VRs
// when the data set's transfer syntax is Implicit VR Little Endian.
// Defaults to dictionary.Stub{} (every tag resolves to vr.UN).
func WithDictionary(dict dictionary.Dictionary) Option {
	return func(o *Options) { o.dict = dict }
}

// WithTransform adds t to the chain of post-order Element transforms Parse
// applies before returning. Transforms run in the order they were added.
func WithTransform(t Transform) Option {
	return func(o *Options) { o.transforms = append(o.transforms, t) }
}

// DropGroupLengths is an Option adding a Transform that excludes every
// group-length element (gggg,0000) from the returned Object, matching the
// teacher's DropGroupLengths option.
var DropGroupLengths = WithTransform(func(e *dicomobject.Element) (*dicomobject.Element, error) {
	if e.Tag.Element == 0x0000 {
		return nil, nil
	}
	return e, nil
})
