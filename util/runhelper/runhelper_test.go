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

package runhelper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapRun_Panic(t *testing.T) {
	t.Parallel()

	panicking := func(string) (int, error) { panic("panic") }
	r := WrapRun("sealed", panicking)("unit")

	require.Empty(t, r.Res)
	require.ErrorContains(t, r.Err, "INTERNAL PANIC")
	require.ErrorContains(t, r.Err, `"sealed"`)
	var perr *PanicError
	require.ErrorAs(t, r.Err, &perr)
	require.Equal(t, "panic", perr.Value)
}

func TestWrapRun_Error(t *testing.T) {
	t.Parallel()

	myErr := errors.New("my error")
	failing := func(string) (int, error) { return 0, myErr }
	r := WrapRun("flow", failing)("unit")

	require.Empty(t, r.Res)
	require.ErrorIs(t, r.Err, myErr)
	require.ErrorContains(t, r.Err, "flow: my error")
}

func TestWrapRun_NoPanic(t *testing.T) {
	t.Parallel()

	ok := func(in string) (int, error) { return len(in), nil }
	r := WrapRun("defaults", ok)("unit")

	require.NoError(t, r.Err)
	require.Equal(t, 4, r.Res)
}
