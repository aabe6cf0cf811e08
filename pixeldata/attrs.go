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

package pixeldata

import (
	"errors"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
)

var (
	errNotPresent = errors.New("element not present")
	errEmptyValue = errors.New("empty value")
)

// imagePixelModule is the subset of the Image Pixel module spec.md §4.8
// requires as input, read once up front so the rest of Decode works with
// plain Go values instead of re-querying the Object.
type imagePixelModule struct {
	columns                   int
	rows                      int
	bitsAllocated             int
	bitsStored                int
	highBit                   int
	samplesPerPixel           int
	photometricInterpretation string
	pixelRepresentation       int
	planarConfiguration       int
	numberOfFrames            int
	rescaleIntercept          *float64
	rescaleSlope              *float64
	windowCenter              *float64
	windowWidth               *float64
	voiLUTFunction            string
}

func readImagePixelModule(obj *dicomobject.Object) (*imagePixelModule, error) {
	attrs := &imagePixelModule{numberOfFrames: 1, planarConfiguration: 0}

	var err error
	if attrs.columns, err = requiredInt(obj, tag.Columns); err != nil {
		return nil, err
	}
	if attrs.rows, err = requiredInt(obj, tag.Rows); err != nil {
		return nil, err
	}
	if attrs.bitsAllocated, err = requiredInt(obj, tag.BitsAllocated); err != nil {
		return nil, err
	}
	if attrs.bitsStored, err = requiredInt(obj, tag.BitsStored); err != nil {
		return nil, err
	}
	if attrs.highBit, err = requiredInt(obj, tag.HighBit); err != nil {
		return nil, err
	}
	if attrs.samplesPerPixel, err = requiredInt(obj, tag.SamplesPerPixel); err != nil {
		return nil, err
	}
	if attrs.pixelRepresentation, err = requiredInt(obj, tag.PixelRepresentation); err != nil {
		return nil, err
	}
	if attrs.photometricInterpretation, err = requiredString(obj, tag.PhotometricInterpretation); err != nil {
		return nil, err
	}

	if n, ok, err := optionalInt(obj, tag.NumberOfFrames); err != nil {
		return nil, err
	} else if ok {
		attrs.numberOfFrames = n
	}
	if n, ok, err := optionalInt(obj, tag.PlanarConfiguration); err != nil {
		return nil, err
	} else if ok {
		attrs.planarConfiguration = n
	}
	if f, ok, err := optionalFloat(obj, tag.RescaleIntercept); err != nil {
		return nil, err
	} else if ok {
		attrs.rescaleIntercept = &f
	}
	if f, ok, err := optionalFloat(obj, tag.RescaleSlope); err != nil {
		return nil, err
	} else if ok {
		attrs.rescaleSlope = &f
	}
	if f, ok, err := optionalFloat(obj, tag.WindowCenter); err != nil {
		return nil, err
	} else if ok {
		attrs.windowCenter = &f
	}
	if f, ok, err := optionalFloat(obj, tag.WindowWidth); err != nil {
		return nil, err
	} else if ok {
		attrs.windowWidth = &f
	}
	if s, ok, err := optionalString(obj, tag.VOILUTFunction); err != nil {
		return nil, err
	} else if ok {
		attrs.voiLUTFunction = s
	}

	return attrs, nil
}

func requiredInt(obj *dicomobject.Object, t tag.Tag) (int, error) {
	e, ok := obj.Get(t)
	if !ok {
		return 0, errGetAttribute(t, errNotPresent)
	}
	ns, err := e.Value.ToInts()
	if err != nil {
		return 0, errGetAttribute(t, err)
	}
	if len(ns) == 0 {
		return 0, errGetAttribute(t, errEmptyValue)
	}
	return int(ns[0]), nil
}

func optionalInt(obj *dicomobject.Object, t tag.Tag) (int, bool, error) {
	e, ok := obj.Get(t)
	if !ok || e.Value.Len() == 0 {
		return 0, false, nil
	}
	ns, err := e.Value.ToInts()
	if err != nil {
		return 0, false, errGetAttribute(t, err)
	}
	return int(ns[0]), true, nil
}

func optionalFloat(obj *dicomobject.Object, t tag.Tag) (float64, bool, error) {
	e, ok := obj.Get(t)
	if !ok || e.Value.Len() == 0 {
		return 0, false, nil
	}
	fs, err := e.Value.ToFloats()
	if err != nil {
		return 0, false, errGetAttribute(t, err)
	}
	return fs[0], true, nil
}

func optionalString(obj *dicomobject.Object, t tag.Tag) (string, bool, error) {
	e, ok := obj.Get(t)
	if !ok || e.Value.Len() == 0 {
		return "", false, nil
	}
	ss, err := e.Value.ToStrings()
	if err != nil {
		return "", false, errGetAttribute(t, err)
	}
	return ss[0], true, nil
}
