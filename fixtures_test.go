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

package jnilaway_test

import (
	"testing"

	"go.uber.org/jnilaway/jnilawaytest"
)

// For descriptions of the purpose of each of the following tests, consult the comment at the
// top of the fixture archives located in testdata/fixtures/<suite>/*.txtar

const _fixtures = "testdata/fixtures"

func TestScenarios(t *testing.T) {
	t.Parallel()

	jnilawaytest.Run(t, _fixtures, "scenarios")
}

func TestFlow(t *testing.T) {
	t.Parallel()

	jnilawaytest.Run(t, _fixtures, "flow")
}

func TestInherit(t *testing.T) {
	t.Parallel()

	jnilawaytest.Run(t, _fixtures, "inherit")
}

func TestSealed(t *testing.T) {
	t.Parallel()

	jnilawaytest.Run(t, _fixtures, "sealed")
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	jnilawaytest.Run(t, _fixtures, "defaults")
}

func TestBinaryDependencies(t *testing.T) {
	t.Parallel()

	jnilawaytest.Run(t, _fixtures, "deps")
}

func TestConfig(t *testing.T) {
	t.Parallel()

	jnilawaytest.Run(t, _fixtures, "config")
}
