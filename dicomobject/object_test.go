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

package dicomobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomvalue"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

func TestPutGetDelete(t *testing.T) {
	o := NewEmptyWithDictionary(nil)
	assert.Equal(t, 0, o.Len())

	e := &Element{Tag: tag.Rows, VR: vr.US, Value: dicomvalue.NewUint16s(512)}
	o.Put(e)
	assert.Equal(t, 1, o.Len())

	got, ok := o.Get(tag.Rows)
	require.True(t, ok)
	assert.Equal(t, e, got)

	o.Delete(tag.Rows)
	assert.Equal(t, 0, o.Len())
	_, ok = o.Get(tag.Rows)
	assert.False(t, ok)
}

func TestPutOverwrites(t *testing.T) {
	o := NewEmptyWithDictionary(nil)
	o.Put(&Element{Tag: tag.Rows, VR: vr.US, Value: dicomvalue.NewUint16s(1)})
	o.Put(&Element{Tag: tag.Rows, VR: vr.US, Value: dicomvalue.NewUint16s(2)})

	assert.Equal(t, 1, o.Len())
	got, ok := o.Get(tag.Rows)
	require.True(t, ok)
	vals, err := got.Value.ToInts()
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, vals)
}

func TestElementsAscendingTagOrder(t *testing.T) {
	o := NewEmptyWithDictionary(nil)
	o.Put(&Element{Tag: tag.Columns, VR: vr.US, Value: dicomvalue.NewUint16s(1)})
	o.Put(&Element{Tag: tag.Rows, VR: vr.US, Value: dicomvalue.NewUint16s(1)})
	o.Put(&Element{Tag: tag.BitsAllocated, VR: vr.US, Value: dicomvalue.NewUint16s(8)})

	elems := o.Elements()
	require.Len(t, elems, 3)
	assert.Equal(t, tag.Rows, elems[0].Tag)
	assert.Equal(t, tag.Columns, elems[1].Tag)
	assert.Equal(t, tag.BitsAllocated, elems[2].Tag)
}
