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
	"fmt"
	"runtime/debug"
)

// ErrorKind is the file-level failure taxonomy of the root package: the
// pieces of a DICOM file that sit above the codec layer (C1-C8) and have no
// natural home in any one of them.
type ErrorKind int

const (
	// ErrSignature means the 128-byte preamble was not followed by the
	// "DICM" magic.
	ErrSignature ErrorKind = iota
	// ErrMetaHeader means the File Meta Information group could not be
	// read (missing/short FileMetaInformationGroupLength, truncated
	// group, or a malformed element within it).
	ErrMetaHeader
	// ErrUnknownTransferSyntax means (0002,0010) was absent from the File
	// Meta Information group.
	ErrUnknownTransferSyntax
	// ErrUnsupportedTransferSyntax means (0002,0010)'s value was not found
	// in the supplied Registry.
	ErrUnsupportedTransferSyntax
	// ErrConstruct means building the in-memory Object from the data set's
	// Token stream failed.
	ErrConstruct
	// ErrWrite means re-serializing an Object back to its wire form
	// failed.
	ErrWrite
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSignature:
		return "Signature"
	case ErrMetaHeader:
		return "MetaHeader"
	case ErrUnknownTransferSyntax:
		return "UnknownTransferSyntax"
	case ErrUnsupportedTransferSyntax:
		return "UnsupportedTransferSyntax"
	case ErrConstruct:
		return "Construct"
	case ErrWrite:
		return "Write"
	default:
		return "Unknown"
	}
}

// FileError wraps a file-level failure with its kind and, optionally, a
// captured backtrace (see CaptureBacktrace).
type FileError struct {
	Kind  ErrorKind
	Cause error
	Trace []byte
}

func (e *FileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dicom: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("dicom: %s", e.Kind)
}

func (e *FileError) Unwrap() error { return e.Cause }

func newFileError(kind ErrorKind, cause error) *FileError {
	e := &FileError{Kind: kind, Cause: cause}
	if CaptureBacktrace {
		e.Trace = debug.Stack()
	}
	return e
}
