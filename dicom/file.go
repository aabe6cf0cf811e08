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
	"bytes"
	"fmt"
	"io"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomio"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomvalue"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/transfersyntax"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// WriteFile re-serializes obj as a complete DICOM file under
// transferSyntaxUID: the 128-byte preamble, "DICM", the File Meta
// Information group (always Explicit VR Little Endian, per PS3.10 section
// 7.1, regardless of the data set's own transfer syntax), and the data set.
// obj's own (0002,0010) element, if any, is ignored in favor of
// transferSyntaxUID, so a caller can freely transcode between transfer
// syntaxes by just changing this argument. Grounded on the teacher's
// write.go/writer.go preamble-and-meta-group emission.
func WriteFile(obj *dicomobject.Object, transferSyntaxUID string, w io.Writer, opts ...Option) error {
	o := newOptions(opts)

	desc, ok := o.registry.Get(transferSyntaxUID)
	if !ok {
		return newFileError(ErrUnsupportedTransferSyntax, fmt.Errorf("transfer syntax %q not in registry", transferSyntaxUID))
	}

	metaObj := dicomobject.NewEmptyWithDictionary(nil)
	for _, e := range obj.Elements() {
		if e.Tag.Group == 0x0002 && e.Tag.Element != 0x0000 {
			metaObj.Put(e)
		}
	}
	metaObj.Put(&dicomobject.Element{
		Tag:   tag.TransferSyntaxUID,
		VR:    vr.UI,
		Value: dicomvalue.NewStrings(transferSyntaxUID),
	})

	metaBuf := &bytes.Buffer{}
	metaEnc := dicomio.NewExplicitVRLittleEndianEncoder()
	metaWriter := dicomio.NewWriter(metaBuf, metaEnc)
	if err := Write(metaObj, metaWriter, metaEnc); err != nil {
		return newFileError(ErrWrite, fmt.Errorf("writing file meta group: %v", err))
	}

	if _, err := w.Write(make([]byte, preambleSize)); err != nil {
		return newFileError(ErrWrite, fmt.Errorf("writing preamble: %v", err))
	}
	if _, err := w.Write([]byte("DICM")); err != nil {
		return newFileError(ErrWrite, fmt.Errorf("writing signature: %v", err))
	}

	groupLenHeaderWriter := dicomio.NewWriter(w, metaEnc)
	groupLenBytes, err := dicomvalue.EncodeBinary(dicomvalue.NewUint32s(uint32(metaBuf.Len())), vr.UL, metaEnc.ByteOrder())
	if err != nil {
		return newFileError(ErrWrite, err)
	}
	if err := groupLenHeaderWriter.Write(dicomio.Token{
		Kind:   dicomio.TokenElementHeader,
		Header: dicomio.DataElementHeader{Tag: tag.FileMetaInformationGroupLength, VR: vr.UL, Length: uint32(len(groupLenBytes))},
	}); err != nil {
		return newFileError(ErrWrite, err)
	}
	if err := groupLenHeaderWriter.Write(dicomio.Token{Kind: dicomio.TokenPrimitiveValueBytes, Bytes: groupLenBytes}); err != nil {
		return newFileError(ErrWrite, err)
	}
	if _, err := w.Write(metaBuf.Bytes()); err != nil {
		return newFileError(ErrWrite, fmt.Errorf("writing file meta group: %v", err))
	}

	dataSetObj := dicomobject.NewEmptyWithDictionary(nil)
	for _, e := range obj.Elements() {
		if e.Tag.Group != 0x0002 {
			dataSetObj.Put(e)
		}
	}

	enc := desc.Codec.Encoder
	if transferSyntaxUID == transfersyntax.ImplicitVRLittleEndianUID {
		enc = dicomio.NewImplicitVRLittleEndianEncoder()
	}
	dataWriter := dicomio.NewWriter(w, enc)
	if err := Write(dataSetObj, dataWriter, enc); err != nil {
		return newFileError(ErrWrite, fmt.Errorf("writing data set: %v", err))
	}
	return nil
}
