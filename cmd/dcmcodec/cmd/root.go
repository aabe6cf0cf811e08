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

// Package cmd holds the dcmcodec command tree: a thin Cobra CLI over the
// dicom/dicomjson/pixeldata packages, grounded on jpfielding-dicos.go's
// cmd/ctl/cmd package (the pack's only DICOM repo with a real command
// tree) for its command-per-file layout and PersistentPreRun logging
// setup.
package cmd

import (
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *log.Logger

// NewRoot builds the dcmcodec command tree.
func NewRoot(gitSHA string) *cobra.Command {
	root := &cobra.Command{
		Use:   "dcmcodec",
		Short: "inspect and decode DICOM files",
		Long:  "dcmcodec dumps DICOM files as JSON and extracts canonical pixel data.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "rotate logs to this file instead of stderr (via lumberjack)")

	root.AddCommand(
		newVersionCmd(gitSHA),
		newDumpCmd(),
		newPixelCmd(),
	)
	return root
}

// newLogger builds the charmbracelet/log logger for this invocation,
// optionally rotating to a file via lumberjack.v2 when --log-file is set.
// Grounded on codeninja55-go-radx's log.Default()/logger.Info(msg, k, v...)
// structured-pairs style; the rotating-file sink is this module's own
// ambient-config addition (jpfielding-dicos.go's CLI logs to stdout only).
func newLogger(cmd *cobra.Command) *log.Logger {
	levelStr, _ := cmd.Flags().GetString("log-level")
	logFile, _ := cmd.Flags().GetString("log-file")

	var w = cmd.ErrOrStderr()
	if logFile != "" {
		w = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}

	level, err := log.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true, Level: level})
}

func newVersionCmd(gitSHA string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build's git SHA",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(gitSHA + "\n"))
			return err
		},
	}
}
