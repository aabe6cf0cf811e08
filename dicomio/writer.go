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
	"fmt"
	"io"

	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
)

// Writer accepts the same Token stream Reader produces and re-serializes it
// under enc's transfer syntax. It mirrors Reader's frame-stack bookkeeping
// so the two stay symmetric: anything Reader can yield, Writer can consume.
type Writer struct {
	enc    Encoder
	w      io.Writer
	frames []writerFrame
}

type writerFrameKind int

const (
	writerFrameRoot writerFrameKind = iota
	writerFrameSequence
	writerFrameItem
	writerFramePixelSequence
)

type writerFrame struct {
	kind      writerFrameKind
	undefined bool // true if this container was opened with UndefinedLength
}

// NewWriter constructs a Writer over w, encoding headers with enc.
func NewWriter(w io.Writer, enc Encoder) *Writer {
	return &Writer{enc: enc, w: w, frames: []writerFrame{{kind: writerFrameRoot}}}
}

func (wr *Writer) top() writerFrameKind { return wr.frames[len(wr.frames)-1].kind }

func (wr *Writer) topUndefined() bool { return wr.frames[len(wr.frames)-1].undefined }

// Write consumes one Token, emitting its wire representation. Tokens must be
// supplied in the same order Reader.Next would yield them for a well-formed
// stream; Write only checks that each item, fragment, and end token arrives
// inside a matching open container, and does not otherwise validate the
// stream.
func (wr *Writer) Write(t Token) error {
	switch t.Kind {
	case TokenElementHeader:
		if _, err := wr.enc.EncodeHeader(wr.w, t.Header); err != nil {
			return err
		}
		switch {
		case t.Header.VR == "SQ":
			wr.frames = append(wr.frames, writerFrame{kind: writerFrameSequence, undefined: t.Header.Length == UndefinedLength})
		case t.Header.Length == UndefinedLength:
			wr.frames = append(wr.frames, writerFrame{kind: writerFramePixelSequence, undefined: true})
		}
		return nil
	case TokenPrimitiveValueBytes:
		_, err := wr.w.Write(t.Bytes)
		return err
	case TokenItemStart:
		if wr.top() != writerFrameSequence && wr.top() != writerFramePixelSequence {
			return fmt.Errorf("dicomio: TokenItemStart outside sequence/pixel-sequence context")
		}
		if err := wr.enc.EncodeItemHeader(wr.w, t.Item); err != nil {
			return err
		}
		if _, err := wr.w.Write(t.Bytes); err != nil {
			return err
		}
		if wr.top() == writerFrameSequence {
			wr.frames = append(wr.frames, writerFrame{kind: writerFrameItem, undefined: t.Item.Length == UndefinedLength})
		}
		return nil
	case TokenPixelFragment:
		if wr.top() != writerFramePixelSequence {
			return fmt.Errorf("dicomio: TokenPixelFragment outside pixel-sequence context")
		}
		if err := wr.enc.EncodeItemHeader(wr.w, t.Item); err != nil {
			return err
		}
		_, err := wr.w.Write(t.Bytes)
		return err
	case TokenItemEnd:
		if wr.top() != writerFrameItem {
			return fmt.Errorf("dicomio: TokenItemEnd outside item context")
		}
		undefined := wr.topUndefined()
		wr.frames = wr.frames[:len(wr.frames)-1]
		if !undefined {
			return nil
		}
		delim, err := NewSequenceItemHeader(tag.ItemDelimitationItem, 0)
		if err != nil {
			return err
		}
		return wr.enc.EncodeItemHeader(wr.w, delim)
	case TokenSequenceEnd:
		if wr.top() != writerFrameSequence && wr.top() != writerFramePixelSequence {
			return fmt.Errorf("dicomio: TokenSequenceEnd outside sequence context")
		}
		undefined := wr.topUndefined()
		wr.frames = wr.frames[:len(wr.frames)-1]
		if !undefined {
			return nil
		}
		delim, err := NewSequenceItemHeader(tag.SequenceDelimitationItem, 0)
		if err != nil {
			return err
		}
		return wr.enc.EncodeItemHeader(wr.w, delim)
	case TokenEnd:
		return nil
	default:
		return fmt.Errorf("dicomio: unknown token kind %d", t.Kind)
	}
}
