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

// Package config holds the configuration of one jnilaway batch. A Config is built once (see
// Default and Load) and then passed by pointer through every analysis stage; it must not be
// modified once analysis has started.
package config

import (
	"fmt"
	"slices"
	"strings"
)

// Severity is the reporting level of a diagnostic. The zero value is Ignore.
type Severity int

// Severities, ordered from least to most severe.
const (
	Ignore Severity = iota
	Info
	Warning
	Error
)

var _severityNames = [...]string{Ignore: "ignore", Info: "info", Warning: "warning", Error: "error"}

func (s Severity) String() string {
	if s < Ignore || s > Error {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return _severityNames[s]
}

// ParseSeverity parses a severity name, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	for sev, name := range _severityNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Severity(sev), nil
		}
	}
	return Ignore, fmt.Errorf("invalid severity %q: must be one of error, warning, info, ignore", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	sev, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// Option names a configurable diagnostic severity.
type Option string

// Configurable severity options.
const (
	NullSpecViolation       Option = "null-specification-violation"
	UncheckedConversion     Option = "unchecked-conversion"
	RedundantNullCheck      Option = "redundant-null-check"
	RedundantNullAnnotation Option = "redundant-null-annotation"
	MissingNonNullByDefault Option = "missing-nonnull-by-default-annotation"
	NonNullParameterDropped Option = "nonnull-parameter-annotation-dropped"
	PotentialNullReference  Option = "potential-null-reference"
)

// Options lists every configurable severity option in a stable order.
var Options = []Option{
	NullSpecViolation,
	UncheckedConversion,
	RedundantNullCheck,
	RedundantNullAnnotation,
	MissingNonNullByDefault,
	NonNullParameterDropped,
	PotentialNullReference,
}

// Config is the configuration of one analysis batch.
type Config struct {
	// NonNullName, NullableName and NonNullByDefaultName are the fully qualified names of the
	// nullness annotation types.
	NonNullName          string
	NullableName         string
	NonNullByDefaultName string
	// InjectNames are the fully qualified names of injection annotations whose fields are exempt
	// from the uninitialized field check.
	InjectNames []string

	// Severities maps each configurable option to its severity.
	Severities map[Option]Severity

	// SyntacticFieldAnalysis enables null-check protection of fields, with expiry.
	SyntacticFieldAnalysis bool
	// SuppressOptionalErrors lets @SuppressWarnings("null") also silence configurable
	// diagnostics configured as errors.
	SuppressOptionalErrors bool
	// SuppressWarnings enables @SuppressWarnings("null") handling.
	SuppressWarnings bool

	// IncludePkgs and ExcludePkgs are package prefixes limiting which units are analyzed. An empty
	// IncludePkgs includes everything.
	IncludePkgs []string
	ExcludePkgs []string

	// PrettyPrint enables coloured output.
	PrettyPrint bool
	// Parallelism bounds the number of units analyzed concurrently; <= 0 means GOMAXPROCS.
	Parallelism int
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		NonNullName:          DefaultAnnotationPackage + ".NonNull",
		NullableName:         DefaultAnnotationPackage + ".Nullable",
		NonNullByDefaultName: DefaultAnnotationPackage + ".NonNullByDefault",
		InjectNames:          slices.Clone(DefaultInjectNames),
		Severities: map[Option]Severity{
			NullSpecViolation:       Error,
			UncheckedConversion:     Warning,
			RedundantNullCheck:      Warning,
			RedundantNullAnnotation: Warning,
			MissingNonNullByDefault: Ignore,
			NonNullParameterDropped: Warning,
			PotentialNullReference:  Warning,
		},
		SyntacticFieldAnalysis: true,
		SuppressWarnings:       true,
		PrettyPrint:            true,
	}
}

// Severity returns the configured severity of o.
func (c *Config) Severity(o Option) Severity {
	return c.Severities[o]
}

// Enabled reports whether diagnostics governed by o are reported at all. Checks whose option is
// ignored are skipped entirely.
func (c *Config) Enabled(o Option) bool {
	return c.Severity(o) != Ignore
}

// IsPkgInScope reports whether units of the package are analyzed. Units outside the scope still
// contribute type information.
func (c *Config) IsPkgInScope(pkg string) bool {
	for _, excl := range c.ExcludePkgs {
		if hasPkgPrefix(pkg, excl) {
			return false
		}
	}
	if len(c.IncludePkgs) == 0 {
		return true
	}
	for _, incl := range c.IncludePkgs {
		if hasPkgPrefix(pkg, incl) {
			return true
		}
	}
	return false
}

// hasPkgPrefix reports whether pkg is prefix or a subpackage of it.
func hasPkgPrefix(pkg, prefix string) bool {
	return pkg == prefix || strings.HasPrefix(pkg, prefix+".")
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	names := map[string]string{
		"nonnull":          c.NonNullName,
		"nullable":         c.NullableName,
		"nonnullbydefault": c.NonNullByDefaultName,
	}
	seen := make(map[string]string, len(names))
	for _, key := range []string{"nonnull", "nullable", "nonnullbydefault"} {
		name := names[key]
		if name == "" {
			return fmt.Errorf("annotation name %q must not be empty", key)
		}
		if other, ok := seen[name]; ok {
			return fmt.Errorf("annotation names %q and %q are both %q", other, key, name)
		}
		seen[name] = key
	}
	for o, s := range c.Severities {
		if !slices.Contains(Options, o) {
			return fmt.Errorf("unknown option %q", o)
		}
		if s < Ignore || s > Error {
			return fmt.Errorf("invalid severity %d for %q", s, o)
		}
	}
	return nil
}
