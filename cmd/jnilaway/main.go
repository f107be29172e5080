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


// main package makes it possible to run jnilaway as a standalone checker over bound compilation
// unit documents, and to export the analyzed units as binary metadata for later runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/jnilaway"
	"go.uber.org/jnilaway/config"
)

// ExitError carries a non-zero exit code out of a command without calling os.Exit in it.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Exit codes.
const (
	// _exitFindings is returned when error-severity diagnostics remain after filtering.
	_exitFindings = 1
	// _exitFailure is returned when the analysis could not run.
	_exitFailure = 2
)

// options holds the flags shared by every command.
type options struct {
	logLevel   string
	configFile string
	format     string

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "jnilaway",
		Short: "Null-safety and sealed-hierarchy checker for bound compilation units",
		Long: `jnilaway checks bound compilation unit documents (YAML or JSON) for nullness
annotation violations, potential null dereferences and sealed-hierarchy errors.

Configuration is read from .jnilaway.{yaml,toml,json} in the working directory or the
file given by --config, then from JNILAWAY_* environment variables and finally from
command line flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	pf.StringVar(&opts.configFile, "config", "", "configuration file (default is .jnilaway.* in the working directory)")
	pf.StringVar(&opts.format, "format", string(jnilaway.FormatText), "output format: text or json")

	root.AddCommand(newCheckCmd(opts), newExportCmd(opts))
	return root
}

// addConfigFlags registers one flag per configuration key so that config.Load can bind them.
func addConfigFlags(fs *pflag.FlagSet) {
	def := config.Default()
	for _, o := range config.Options {
		fs.String(string(o), def.Severity(o).String(), fmt.Sprintf("severity of %s diagnostics: error, warning, info or ignore", o))
	}
	fs.String(config.NonNullAnnotationKey, def.NonNullName, "fully qualified name of the non-null annotation")
	fs.String(config.NullableAnnotationKey, def.NullableName, "fully qualified name of the nullable annotation")
	fs.String(config.NonNullByDefaultAnnotationKey, def.NonNullByDefaultName, "fully qualified name of the default annotation")
	fs.StringSlice(config.InjectAnnotationsKey, def.InjectNames, "injection annotations exempting fields from initialization checks")
	fs.Bool(config.SyntacticFieldAnalysisKey, def.SyntacticFieldAnalysis, "protect fields after null checks until they expire")
	fs.Bool(config.SuppressOptionalErrorsKey, def.SuppressOptionalErrors, "let @SuppressWarnings(\"null\") silence configurable errors")
	fs.Bool(config.SuppressWarningsKey, def.SuppressWarnings, "honour @SuppressWarnings(\"null\")")
	fs.StringSlice(config.IncludePkgsKey, nil, "package prefixes to analyze (default all)")
	fs.StringSlice(config.ExcludePkgsKey, nil, "package prefixes to skip")
	fs.Bool(config.PrettyPrintKey, def.PrettyPrint, "colour the output on terminals")
	fs.Int(config.ParallelismKey, def.Parallelism, "number of units analyzed concurrently (default GOMAXPROCS)")
}

func (o *options) logger() (*log.Logger, error) {
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	return log.NewWithOptions(o.stderr, log.Options{
		Prefix: "jnilaway",
		Level:  level,
	}), nil
}

func (o *options) config(fs *pflag.FlagSet) (*config.Config, error) {
	return config.Load(config.LoadOptions{File: o.configFile, Flags: fs})
}

// pretty reports whether coloured output is both configured and going to a terminal.
func (o *options) pretty(conf *config.Config) bool {
	if !conf.PrettyPrint {
		return false
	}
	f, ok := o.stdout.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(stderr, "jnilaway:", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintln(stderr, "jnilaway:", err)
	return _exitFailure
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
