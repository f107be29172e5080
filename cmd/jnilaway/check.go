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
	"github.com/spf13/cobra"
	"go.uber.org/jnilaway"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/diagnostic"
)

type checkOptions struct {
	binaries      []string
	baseline      string
	writeBaseline bool
	// includeErrorsInFiles and excludeErrorsInFiles filter reported diagnostics by file prefix.
	includeErrorsInFiles []string
	excludeErrorsInFiles []string
}

func newCheckCmd(opts *options) *cobra.Command {
	co := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [flags] UNIT_FILE...",
		Short: "Analyze bound compilation units and report diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, co, args)
		},
	}
	fs := cmd.Flags()
	fs.StringSliceVar(&co.binaries, "binary", nil, "binary metadata of dependencies, as written by export")
	fs.StringVar(&co.baseline, "baseline", "", "TOML baseline of accepted diagnostics")
	fs.BoolVar(&co.writeBaseline, "write-baseline", false, "write the current diagnostics to --baseline instead of reporting them")
	fs.StringSliceVar(&co.includeErrorsInFiles, "include-errors-in-files", nil, "only report diagnostics in files with these prefixes")
	fs.StringSliceVar(&co.excludeErrorsInFiles, "exclude-errors-in-files", nil, "do not report diagnostics in files with these prefixes")
	addConfigFlags(fs)
	return cmd
}

func runCheck(cmd *cobra.Command, opts *options, co *checkOptions, args []string) error {
	logger, err := opts.logger()
	if err != nil {
		return err
	}
	conf, err := opts.config(cmd.Flags())
	if err != nil {
		return err
	}
	if co.writeBaseline && co.baseline == "" {
		return &ExitError{Code: _exitFailure, Err: errMissingBaseline}
	}
	printer, err := jnilaway.NewPrinter(opts.stdout, jnilaway.Format(opts.format), opts.pretty(conf))
	if err != nil {
		return err
	}

	res, err := jnilaway.Analyze(cmd.Context(), jnilaway.Request{
		Units:    args,
		Binaries: co.binaries,
		Config:   conf,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	ds := filterFiles(res.Diagnostics, co.includeErrorsInFiles, co.excludeErrorsInFiles)

	if co.writeBaseline {
		if err := diagnostic.WriteBaseline(co.baseline, ds); err != nil {
			return err
		}
		logger.Info("wrote baseline", "path", co.baseline, "diagnostics", len(ds))
		return nil
	}
	baseline, err := diagnostic.LoadBaseline(co.baseline)
	if err != nil {
		return err
	}
	ds = baseline.Filter(ds)

	if err := printer.Print(ds); err != nil {
		return err
	}
	for _, d := range ds {
		if d.Severity == config.Error {
			return &ExitError{Code: _exitFindings}
		}
	}
	return nil
}
