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

// Package jnilaway implements the top-level entry point: it loads the bound compilation units
// and the binary dependencies of a batch, retrieves the diagnostics from the accumulation
// coordinator, and renders them.
package jnilaway

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"go.uber.org/jnilaway/accumulation"
	"go.uber.org/jnilaway/ast"
	"go.uber.org/jnilaway/binary"
	"go.uber.org/jnilaway/config"
	"golang.org/x/sync/errgroup"
)

// Request describes one analysis batch read from disk.
type Request struct {
	// Units are the files holding the bound compilation unit documents, YAML or JSON.
	Units []string
	// Binaries are the binary stores of the dependencies. Earlier files take precedence.
	Binaries []string
	// Config is the batch configuration; nil means config.Default().
	Config *config.Config
	// Logger receives progress; nil discards it.
	Logger *log.Logger
}

// Result is the outcome of a batch.
type Result = accumulation.Result

// LoadUnits decodes the unit files concurrently and returns their units in file order.
func LoadUnits(ctx context.Context, paths []string) ([]*ast.CompilationUnit, error) {
	perFile := make([][]*ast.CompilationUnit, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			units, err := ast.DecodeFile(p)
			if err != nil {
				return err
			}
			perFile[i] = units
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var units []*ast.CompilationUnit
	for _, us := range perFile {
		units = append(units, us...)
	}
	return units, nil
}

// Analyze loads the units and binary dependencies of req and analyzes them.
func Analyze(ctx context.Context, req Request) (*Result, error) {
	units, err := LoadUnits(ctx, req.Units)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}

	var store *binary.Store
	if len(req.Binaries) > 0 {
		store, err = binary.Load(req.Binaries...)
		if err != nil {
			return nil, fmt.Errorf("load binary dependencies: %w", err)
		}
		if req.Logger != nil {
			req.Logger.Info("loaded binary dependencies", "files", len(req.Binaries), "types", store.Types.Len())
		}
	}

	return accumulation.Run(ctx, units, accumulation.Options{
		Config: req.Config,
		Store:  store,
		Logger: req.Logger,
	})
}
