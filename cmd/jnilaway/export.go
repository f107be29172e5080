//  Copyright (c) 2023 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/jnilaway"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		output   string
		binaries []string
	)
	cmd := &cobra.Command{
		Use:   "export [flags] UNIT_FILE...",
		Short: "Write the nullness contracts, defaults and sealed facts of units as binary metadata",
		Long: `export analyzes the given units and writes their binary metadata to the output file,
to be passed with --binary to later runs that depend on them. Diagnostics are logged at the
warn level but do not fail the export.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			conf, err := opts.config(cmd.Flags())
			if err != nil {
				return err
			}
			res, err := jnilaway.Analyze(cmd.Context(), jnilaway.Request{
				Units:    args,
				Binaries: binaries,
				Config:   conf,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			if n := len(res.Diagnostics); n > 0 {
				logger.Warn("exported units have diagnostics", "count", n)
			}

			store := jnilaway.Export(res)
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := store.Write(f); err != nil {
				_ = f.Close()
				return fmt.Errorf("write %s: %w", output, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			logger.Info("exported binary metadata", "path", output, "types", store.Types.Len())
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&output, "output", "o", "jnilaway.bin", "output file")
	fs.StringSliceVar(&binaries, "binary", nil, "binary metadata of dependencies, as written by export")
	addConfigFlags(fs)
	return cmd
}
