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
	"os"

	"github.com/spf13/cobra"

	"github.com/GoogleCloudPlatform/go-dicom-codec/dicom"
	"github.com/GoogleCloudPlatform/go-dicom-codec/pixeldata"
	_ "github.com/GoogleCloudPlatform/go-dicom-codec/pixeldata/rle"
	"github.com/GoogleCloudPlatform/go-dicom-codec/transfersyntax"
)

// newPixelCmd builds "dcmcodec pixel <file> <out.raw>": parse the file,
// decode its Pixel Data to canonical layout via pixeldata.Decode, and
// write every frame concatenated to out.raw. The blank rle import
// registers the one shipped FrameDecoder adapter, mirroring how a
// transfer-syntax adapter package wires itself in via init() rather than
// this command needing to know adapter names.
func newPixelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pixel <file> <out.raw>",
		Short: "decode a DICOM file's Pixel Data to canonical layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer in.Close()

			logger.Debug("parsing file", "path", args[0])
			obj, uid, err := dicom.Parse(in)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			logger.Info("parsed file", "path", args[0], "transferSyntax", uid)

			decoded, err := pixeldata.Decode(obj, transfersyntax.Default())
			if err != nil {
				return fmt.Errorf("decoding pixel data: %w", err)
			}
			logger.Info("decoded pixel data",
				"frames", decoded.NumberOfFrames,
				"rows", decoded.Rows,
				"columns", decoded.Columns,
				"photometricInterpretation", decoded.PhotometricInterpretation,
			)

			out, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[1], err)
			}
			defer out.Close()

			for i, frame := range decoded.Data {
				if _, err := out.Write(frame); err != nil {
					return fmt.Errorf("writing frame %d: %w", i, err)
				}
			}
			logger.Info("wrote canonical pixel data", "path", args[1], "frames", len(decoded.Data))
			return nil
		},
	}
}
