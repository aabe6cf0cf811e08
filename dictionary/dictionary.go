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

// Package dictionary declares the collaborator Implicit VR decoding needs
// to resolve a Tag to a VR: the DICOM Data Dictionary. The full standard
// dictionary is out of scope for this core (spec.md Non-goals); this
// package provides only the Dictionary interface plus a Stub implementation
// sufficient to test the codec layer in isolation.
package dictionary

import "github.com/GoogleCloudPlatform/go-dicom-codec/tag"
import "github.com/GoogleCloudPlatform/go-dicom-codec/vr"

// Dictionary resolves a Tag's canonical Value Representation. Implicit VR
// Little Endian decoding depends on this collaborator since the VR is not
// present on the wire.
type Dictionary interface {
	// LookupVR returns the VR associated with t, and false if t is unknown
	// to this dictionary.
	LookupVR(t tag.Tag) (vr.VR, bool)
}

// Stub is a Dictionary that always reports the tag unknown, so callers fall
// back to vr.UN. It is useful for testing the codec layer without pulling
// in the full standard dictionary.
type Stub struct{}

// LookupVR always returns (vr.UN, false).
func (Stub) LookupVR(tag.Tag) (vr.VR, bool) {
	return vr.UN, false
}

// Map is a Dictionary backed by a plain lookup table, suitable for callers
// that only need to resolve a small, known set of tags (as in the core's own
// tests) without constructing the full standard dictionary.
type Map map[tag.Tag]vr.VR

// LookupVR looks t up in the map.
func (m Map) LookupVR(t tag.Tag) (vr.VR, bool) {
	v, ok := m[t]
	return v, ok
}
