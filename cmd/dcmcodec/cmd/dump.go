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

package cmd

import (
	"fmt"
	"math/big"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicom"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomjson"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomobject"
	"github.com/GoogleCloudPlatform/go-dicom-codec/dicomvalue"
	"github.com/GoogleCloudPlatform/go-dicom-codec/tag"
	"github.com/GoogleCloudPlatform/go-dicom-codec/vr"
)

// newDumpCmd builds "dcmcodec dump <file>", grounded on jpfielding-dicos.go's
// NewDecodeCmd (cmd/ctl/cmd/root.go): read the file, parse it, print the
// result as JSON.
func newDumpCmd() *cobra.Command {
	var studyUID bool
	c := &cobra.Command{
		Use:   "dump <file>",
		Short: "parse a DICOM file and print it as DICOM JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			logger.Debug("parsing file", "path", args[0])
			obj, uid, err := dicom.Parse(f, dicom.WithUTF8TextDecoding())
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			logger.Info("parsed file", "path", args[0], "transferSyntax", uid, "elements", obj.Len())

			if studyUID {
				injectStudyUIDIfAbsent(obj)
			}

			out, err := dicomjson.Encode(obj)
			if err != nil {
				return fmt.Errorf("encoding %s as DICOM JSON: %w", args[0], err)
			}
			_, err = cmd.OutOrStdout().Write(append(out, '\n'))
			return err
		},
	}
	c.Flags().BoolVar(&studyUID, "study-uid", false, "synthesize a (0020,000D) StudyInstanceUID if the file has none")
	return c
}

// injectStudyUIDIfAbsent adds a synthetic StudyInstanceUID derived from a
// random UUID (PS3.5 Annex B permits any UID-formatted value; this is a
// CLI convenience, never something the core codec does on a caller's
// behalf). Grounded on jpfielding-dicos.go's reliance on google/uuid for
// synthetic identifiers in its DICOS tooling.
func injectStudyUIDIfAbsent(obj *dicomobject.Object) {
	if _, ok := obj.Get(tag.StudyInstanceUID); ok {
		return
	}
	id := uuid.New()
	synthetic := "2.25." + new(big.Int).SetBytes(id[:]).String()
	obj.Put(&dicomobject.Element{
		Tag:   tag.StudyInstanceUID,
		VR:    vr.UI,
		Value: dicomvalue.NewStrings(synthetic),
	})
	logger.Warn("synthesized StudyInstanceUID", "uid", synthetic)
}
