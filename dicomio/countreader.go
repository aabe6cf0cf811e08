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
	"io"
)

// countReader is an io.Reader that tracks how many bytes have been read
// through it, grounded on the teacher's identically named helper.
type countReader struct {
	r         io.Reader
	bytesRead int64
}

func (cr *countReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.bytesRead += int64(n)
	return n, err
}

// limit returns a *countReader that reads from cr and reports io.EOF after
// n bytes (or cr itself reaches EOF), continuing cr's running byte count.
func (cr *countReader) limit(n int64) *countReader {
	return &countReader{r: io.LimitReader(cr, n), bytesRead: cr.bytesRead}
}

// readBytes reads whole values (strings, byte slices) off a countReader.
func readBytes(cr *countReader, n int64) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(cr, b); err != nil {
		return nil, err
	}
	return b, nil
}

func skip(cr *countReader, n int64) error {
	_, err := io.CopyN(io.Discard, cr, n)
	return err
}
