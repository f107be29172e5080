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

// Package accumulation coordinates the entire workflow: it indexes the batch, runs the default
// pre-pass, then runs the sub-analyses (annotation checks, flow analysis, inheritance contracts
// and sealed hierarchies) over every unit in scope and collects their diagnostics.
package accumulation

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/binary"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/defaults"
	"go.uber.org/jnilaway/diagnostic"
	"go.uber.org/jnilaway/flow"
	"go.uber.org/jnilaway/inherit"
	"go.uber.org/jnilaway/program"
	"go.uber.org/jnilaway/sealed"
	"go.uber.org/jnilaway/util/runhelper"
	"golang.org/x/sync/errgroup"
)

// Options configures one analysis batch.
type Options struct {
	// Config is the configuration of the batch; nil means config.Default().
	Config *config.Config
	// Store holds the binary metadata of the dependencies, possibly nil.
	Store *binary.Store
	// Logger receives progress and internal errors; nil discards them.
	Logger *log.Logger
}

// Result is the outcome of a batch.
type Result struct {
	// Diagnostics are the diagnostics of every analyzed unit, sorted.
	Diagnostics []diagnostic.Diagnostic
	// Analyzed lists the paths of the analyzed units, in input order.
	Analyzed []string
	// Program is the index of the batch.
	Program *program.Program
	// Table holds the resolved defaults of the batch.
	Table *defaults.Table
}

// unit is the input of the sub-analyses of one compilation unit.
type unit struct {
	u      *ast.CompilationUnit
	engine *diagnostic.Engine
}

// Run analyzes the linked units. It fails without partial results if a configured annotation
// type or a required binary dependency cannot be resolved, or if ctx is cancelled. Any other
// failure of a sub-analysis, panics included, becomes an InternalError diagnostic of its unit
// and does not affect the other units.
func Run(ctx context.Context, units []*ast.CompilationUnit, opts Options) (*Result, error) {
	conf := opts.Config
	if conf == nil {
		conf = config.Default()
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	prog := program.New(units, opts.Store)
	if err := prog.CheckAnnotationTypes(conf); err != nil {
		return nil, err
	}
	table := defaults.NewTable(prog, annotation.NewNames(conf))
	res := &Result{Program: prog, Table: table}

	var inScope []*ast.CompilationUnit
	for _, u := range units {
		if conf.IsPkgInScope(u.Package) {
			inScope = append(inScope, u)
			res.Analyzed = append(res.Analyzed, u.Path)
		} else {
			logger.Debug("skipping unit out of scope", "path", u.Path, "package", u.Package)
		}
	}

	subs := subAnalyses(conf, prog, table)
	perUnit := make([][]diagnostic.Diagnostic, len(inScope))
	g, ctx := errgroup.WithContext(ctx)
	if conf.Parallelism > 0 {
		g.SetLimit(conf.Parallelism)
	}
	for i, u := range inScope {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			logger.Debug("analyzing unit", "path", u.Path)
			ds, err := analyzeUnit(conf, logger, subs, u)
			if err != nil {
				return err
			}
			perUnit[i] = ds
			logger.Debug("analyzed unit", "path", u.Path, "diagnostics", len(ds))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, ds := range perUnit {
		res.Diagnostics = append(res.Diagnostics, ds...)
	}
	diagnostic.Sort(res.Diagnostics)
	return res, nil
}

type subAnalysis struct {
	name string
	run  func(unit) runhelper.Result[struct{}]
}

// subAnalyses returns the sub-analyses run over every unit, in order.
func subAnalyses(conf *config.Config, prog *program.Program, table *defaults.Table) []subAnalysis {
	wrap := func(name string, f func(unit) error) subAnalysis {
		return subAnalysis{name: name, run: runhelper.WrapRun(name, func(in unit) (struct{}, error) {
			return struct{}{}, f(in)
		})}
	}
	return []subAnalysis{
		wrap("defaults", func(in unit) error {
			table.For(in.u).Check(in.engine)
			return nil
		}),
		wrap("flow", func(in unit) error {
			return flow.New(conf, prog, table, in.u, in.engine).Run()
		}),
		wrap("inherit", func(in unit) error {
			return inherit.New(prog, table, in.u, in.engine).Run()
		}),
		wrap("sealed", func(in unit) error {
			sealed.New(prog, in.u, in.engine).Run()
			return nil
		}),
	}
}

// analyzeUnit runs every sub-analysis over u. Resolution errors abort the batch; other errors
// are converted to diagnostics.
func analyzeUnit(conf *config.Config, logger *log.Logger, subs []subAnalysis, u *ast.CompilationUnit) ([]diagnostic.Diagnostic, error) {
	in := unit{u: u, engine: diagnostic.NewEngine(conf, u)}
	for _, sub := range subs {
		err := sub.run(in).Err
		if err == nil {
			continue
		}
		var rerr *program.ResolutionError
		if errors.As(err, &rerr) {
			return nil, fmt.Errorf("analyze %s: %w", u.Path, err)
		}
		logger.Error("sub-analysis failed", "path", u.Path, "analysis", sub.name, "error", err)
		errorToDiagnostic(in.engine, sub.name, err)
	}
	return in.engine.Diagnostics(), nil
}

// errorToDiagnostic reports an internal error of the sub-analysis name at the start of the unit.
// The errors joined in err are reported one by one.
func errorToDiagnostic(e *diagnostic.Engine, name string, err error) {
	at := ast.Pos{Line: 1, Col: 1}
	var perr *runhelper.PanicError
	if errors.As(err, &perr) {
		e.ReportError(diagnostic.InternalError, diagnostic.ReasonPanic, at, fmt.Sprintf("%s: %v", perr.Name, perr.Value))
		return
	}
	errs := []error{err}
	if joined, ok := errors.Unwrap(err).(interface{ Unwrap() []error }); ok {
		errs = nil
		for _, single := range joined.Unwrap() {
			errs = append(errs, fmt.Errorf("%s: %w", name, single))
		}
	}
	for _, single := range errs {
		e.ReportError(diagnostic.InternalError, "", at, single.Error())
	}
}
