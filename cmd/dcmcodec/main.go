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

// Command dcmcodec is a thin CLI over the dicom/dicomjson/pixeldata
// packages: dump a file as DICOM JSON, or decode its Pixel Data to
// canonical layout. It is a consumer of the core codec, never imported by
// it. Grounded on jpfielding-dicos.go's cmd/ctl/main.go.
package main

import (
	"fmt"
	"os"

	"github.com/GoogleCloudPlatform/go-dicom-codec/cmd/dcmcodec/cmd"
)

var gitSHA = "NA"

func main() {
	if err := cmd.NewRoot(gitSHA).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
