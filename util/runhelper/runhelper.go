//  Copyright (c) 2024 Uber Technologies, Inc.
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

// Package runhelper provides a panic-safe wrapper for the sub-analyses run over each
// compilation unit.
package runhelper

import (
	"fmt"
	"runtime/debug"
)

// Result is the result of a sub-analysis where the actual result is accompanied by an optional
// error.
type Result[T any] struct {
	// Res is the actual result from the sub-analysis.
	Res T
	// Err is the optional error from the sub-analysis.
	Err error
}

// PanicError is the error of a sub-analysis that panicked.
type PanicError struct {
	// Name is the name of the sub-analysis.
	Name  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("INTERNAL PANIC from %q: %v\n%s", e.Name, e.Value, string(e.Stack))
}

// WrapRun wraps the run function of a sub-analysis to:
// (1) put the error in the Result[T].Err field in order to _not_ stop the analysis of other
// units and let the coordinator decide what to do;
// (2) recover from a panic and convert it to a *PanicError with stack traces for easier debugging.
// This is to ensure that jnilaway _never_ panics during the analysis.
// The error is prefixed with the name of the sub-analysis to make it easier to identify its source.
func WrapRun[In, T any](name string, f func(In) (T, error)) func(In) Result[T] {
	return func(in In) (result Result[T]) {
		defer func() {
			if r := recover(); r != nil {
				result.Err = &PanicError{Name: name, Value: r, Stack: debug.Stack()}
			}
		}()

		r, err := f(in)
		if err != nil {
			err = fmt.Errorf("%s: %w", name, err)
		}
		result.Res = r
		result.Err = err
		return result
	}
}
