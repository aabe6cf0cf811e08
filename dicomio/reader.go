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
	"errors"
	"fmt"
	"io"

	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// TokenKind discriminates the members of the Token event union (spec.md
// section 4.4). A single sum type replaces the teacher's three separate
// iterator interfaces (DataElementIterator, SequenceIterator,
// BulkDataIterator): callers drive one Next() loop and switch on Kind,
// rather than juggling which iterator is active.
type TokenKind int

const (
	// TokenElementHeader carries a just-read DataElementHeader. For
	// primitive VRs it precedes one TokenPrimitiveValueBytes; for SQ it
	// precedes a run of TokenItemStart/TokenItemEnd pairs terminated by
	// TokenSequenceEnd; for encapsulated Pixel Data it precedes a Basic
	// Offset Table item then a run of TokenPixelFragment tokens.
	TokenElementHeader TokenKind = iota
	// TokenPrimitiveValueBytes carries the raw, not-yet-decoded value
	// bytes of a primitive element.
	TokenPrimitiveValueBytes
	// TokenItemStart opens one Item within a sequence or pixel fragment
	// stream.
	TokenItemStart
	// TokenItemEnd closes the most recently opened Item.
	TokenItemEnd
	// TokenSequenceEnd closes the most recently opened sequence or
	// encapsulated pixel-data element.
	TokenSequenceEnd
	// TokenPixelFragment carries one fragment's raw bytes within an
	// encapsulated Pixel Data element (after the Basic Offset Table item).
	TokenPixelFragment
	// TokenEnd signals that the data set is exhausted; Next returns
	// (Token{Kind: TokenEnd}, io.EOF) forever after.
	TokenEnd
)

// Token is one event in the pull-based data-set traversal stream.
type Token struct {
	Kind   TokenKind
	Header DataElementHeader
	Item   SequenceItemHeader
	Bytes  []byte
}

type frameKind int

const (
	frameRoot frameKind = iota
	frameSequenceContent
	framePixelSequenceContent
	frameItemContent
)

type frame struct {
	kind     frameKind
	cr       *countReader
	bounded  bool // true if this frame was limit()-ed to a defined length
	elemVR   vr.VR
	seenItem bool // for framePixelSequenceContent: has the BOT item been consumed
}

// Reader pulls a flat Token stream out of an encoded data set, unifying
// element, sequence, item, and pixel-fragment traversal behind one cursor
// (spec.md section 4.4). It is not safe for concurrent use.
type Reader struct {
	dec        Decoder
	frames     []frame
	state      readerState
	done       bool
	pendingLen int64
}

type readerState int

const (
	stateAwaitElement readerState = iota
	stateAwaitValue
	stateAwaitBOT
)

// NewReader constructs a Reader over r, decoding headers with dec. r's
// entire remaining content is treated as one data set at the top level
// (frameRoot), ending at io.EOF.
func NewReader(r io.Reader, dec Decoder) *Reader {
	return &Reader{
		dec:    dec,
		frames: []frame{{kind: frameRoot, cr: &countReader{r: r}}},
		state:  stateAwaitElement,
	}
}

func (rd *Reader) top() *frame { return &rd.frames[len(rd.frames)-1] }

func (rd *Reader) push(f frame) { rd.frames = append(rd.frames, f) }

func (rd *Reader) pop() { rd.frames = rd.frames[:len(rd.frames)-1] }

// Next returns the next Token in the stream. Once the stream is exhausted
// it returns (Token{Kind: TokenEnd}, io.EOF) on every subsequent call.
func (rd *Reader) Next() (Token, error) {
	if rd.done {
		return Token{Kind: TokenEnd}, io.EOF
	}

	switch rd.state {
	case stateAwaitValue:
		return rd.readValue()
	case stateAwaitBOT:
		return rd.readBOTOrFragment()
	default:
		return rd.readElement()
	}
}

func (rd *Reader) readElement() (Token, error) {
	top := rd.top()

	h, _, err := rd.dec.DecodeHeader(top.cr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			switch {
			case len(rd.frames) == 1:
				rd.done = true
				return Token{Kind: TokenEnd}, io.EOF
			case top.kind == frameItemContent && top.bounded:
				rd.pop()
				return Token{Kind: TokenItemEnd}, nil
			case top.kind == frameSequenceContent && top.bounded:
				rd.pop()
				return Token{Kind: TokenSequenceEnd}, nil
			}
		}
		return Token{}, err
	}

	if h.IsDelimiter() {
		return rd.handleDelimiter(h)
	}

	switch {
	case h.VR == vr.SQ:
		rd.pushSequence(h)
		return Token{Kind: TokenElementHeader, Header: h}, nil
	case vr.MayBeEncapsulated(h.VR) && h.Length == UndefinedLength:
		rd.pushPixelSequence(h)
		rd.state = stateAwaitBOT
		return Token{Kind: TokenElementHeader, Header: h}, nil
	case h.Length == UndefinedLength:
		return Token{}, newHeaderError(ErrUndefinedLengthNotAllowed, fmt.Errorf("tag %s VR %s", h.Tag, h.VR))
	default:
		rd.state = stateAwaitValue
		rd.pendingLen = int64(h.Length)
		return Token{Kind: TokenElementHeader, Header: h}, nil
	}
}

func (rd *Reader) handleDelimiter(h DataElementHeader) (Token, error) {
	switch h.Tag {
	case tag.Item:
		if len(rd.frames) == 1 || rd.top().kind != frameSequenceContent {
			return Token{}, newHeaderError(ErrBadSequenceHeader, fmt.Errorf("unexpected Item tag outside sequence content"))
		}
		top := rd.top()
		f := frame{kind: frameItemContent}
		if h.Length == UndefinedLength {
			f.cr = top.cr
			f.bounded = false
		} else {
			f.cr = top.cr.limit(int64(h.Length))
			f.bounded = true
		}
		rd.push(f)
		rd.state = stateAwaitElement
		ih, err := NewSequenceItemHeader(h.Tag, h.Length)
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenItemStart, Item: ih}, nil
	case tag.ItemDelimitationItem:
		if len(rd.frames) == 1 || rd.top().kind != frameItemContent {
			return Token{}, newHeaderError(ErrBadSequenceHeader, fmt.Errorf("unexpected ItemDelimitationItem"))
		}
		rd.pop()
		rd.state = stateAwaitElement
		return Token{Kind: TokenItemEnd}, nil
	case tag.SequenceDelimitationItem:
		if len(rd.frames) == 1 || rd.top().kind != frameSequenceContent {
			return Token{}, newHeaderError(ErrBadSequenceHeader, fmt.Errorf("unexpected SequenceDelimitationItem"))
		}
		rd.pop()
		rd.state = stateAwaitElement
		return Token{Kind: TokenSequenceEnd}, nil
	default:
		return Token{}, newHeaderError(ErrBadSequenceHeader, fmt.Errorf("unexpected item tag %s outside item context", h.Tag))
	}
}

func (rd *Reader) pushSequence(h DataElementHeader) {
	top := rd.top()
	f := frame{kind: frameSequenceContent, elemVR: h.VR}
	if h.Length == UndefinedLength {
		f.cr = top.cr
		f.bounded = false
	} else {
		f.cr = top.cr.limit(int64(h.Length))
		f.bounded = true
	}
	rd.push(f)
	rd.state = stateAwaitElement
}

func (rd *Reader) pushPixelSequence(h DataElementHeader) {
	top := rd.top()
	rd.push(frame{kind: framePixelSequenceContent, cr: top.cr, elemVR: h.VR})
}

func (rd *Reader) readValue() (Token, error) {
	top := rd.top()
	b, err := readBytes(top.cr, rd.pendingLen)
	rd.state = stateAwaitElement
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: TokenPrimitiveValueBytes, Bytes: b}, nil
}

func (rd *Reader) readBOTOrFragment() (Token, error) {
	top := rd.top()
	ih, err := rd.dec.DecodeItemHeader(top.cr)
	if err != nil {
		return Token{}, err
	}

	if ih.Tag == tag.SequenceDelimitationItem {
		rd.pop()
		rd.state = stateAwaitElement
		return Token{Kind: TokenSequenceEnd}, nil
	}

	b, err := readBytes(top.cr, int64(ih.Length))
	if err != nil {
		return Token{}, err
	}

	if !top.seenItem {
		top.seenItem = true
		rd.state = stateAwaitBOT
		return Token{Kind: TokenItemStart, Item: ih, Bytes: b}, nil
	}
	rd.state = stateAwaitBOT
	return Token{Kind: TokenPixelFragment, Item: ih, Bytes: b}, nil
}
