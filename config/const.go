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

package config

// This file hosts non-user-configurable parameters --- these are for development and testing purposes only.

// LoopPasses is the number of times a loop body is analyzed. The first pass is silent and only
// computes the back-edge state; the second pass starts from the meet of the loop entry and the
// back-edge and reports. This is intentionally not a full fixed-point: nullness facts that need
// more than one round trip through a loop to settle are not tracked.
const LoopPasses = 2

// DefaultAnnotationPackage is the package of the built-in nullness annotations.
const DefaultAnnotationPackage = "org.eclipse.jdt.annotation"

// DefaultInjectNames are the injection annotations recognized by default.
var DefaultInjectNames = []string{"javax.inject.Inject", "jakarta.inject.Inject", "com.google.inject.Inject"}

// SuppressWarningsName is the simple name of the suppression annotation, and SuppressWarningsToken
// the token that silences nullness diagnostics.
const (
	SuppressWarningsName  = "SuppressWarnings"
	SuppressWarningsToken = "null"
)

// DirLevelsToPrintForDiagnostics controls the number of enclosing directories to print when
// referring to the file of a diagnostic in pretty output.
const DirLevelsToPrintForDiagnostics = 1

// ConfigFileName is the base name (without extension) of the configuration file looked up in the
// working directory.
const ConfigFileName = ".jnilaway"

// EnvPrefix is the prefix of environment variables overriding configuration keys.
const EnvPrefix = "JNILAWAY"
