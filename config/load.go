//  Copyright (c) 2026 Uber Technologies, Inc.
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

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys of the non-severity settings. Severity options use their Option name as key. Command line
// flags bound through LoadOptions.Flags must use the same names.
const (
	NonNullAnnotationKey          = "nonnull-annotation"
	NullableAnnotationKey         = "nullable-annotation"
	NonNullByDefaultAnnotationKey = "nonnullbydefault-annotation"
	InjectAnnotationsKey          = "inject-annotations"
	SyntacticFieldAnalysisKey     = "syntactic-null-analysis-for-fields"
	SuppressOptionalErrorsKey     = "suppress-optional-errors"
	SuppressWarningsKey           = "suppress-warnings"
	IncludePkgsKey                = "include-pkgs"
	ExcludePkgsKey                = "exclude-pkgs"
	PrettyPrintKey                = "pretty-print"
	ParallelismKey                = "parallelism"
)

// LoadOptions selects the sources layered on top of the defaults.
type LoadOptions struct {
	// File is an explicit configuration file (YAML, JSON or TOML). When empty, ConfigFileName is
	// looked up in Dir.
	File string
	// Dir is the directory searched for ConfigFileName; defaults to the working directory.
	Dir string
	// Flags, when set, override every other source for the flags the user changed.
	Flags *pflag.FlagSet
}

// Load builds a configuration from, in increasing priority: defaults, the configuration file,
// JNILAWAY_* environment variables, and command line flags.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault(NonNullAnnotationKey, def.NonNullName)
	v.SetDefault(NullableAnnotationKey, def.NullableName)
	v.SetDefault(NonNullByDefaultAnnotationKey, def.NonNullByDefaultName)
	v.SetDefault(InjectAnnotationsKey, def.InjectNames)
	for _, o := range Options {
		v.SetDefault(string(o), def.Severity(o).String())
	}
	v.SetDefault(SyntacticFieldAnalysisKey, def.SyntacticFieldAnalysis)
	v.SetDefault(SuppressOptionalErrorsKey, def.SuppressOptionalErrors)
	v.SetDefault(SuppressWarningsKey, def.SuppressWarnings)
	v.SetDefault(IncludePkgsKey, []string{})
	v.SetDefault(ExcludePkgsKey, []string{})
	v.SetDefault(PrettyPrintKey, def.PrettyPrint)
	v.SetDefault(ParallelismKey, def.Parallelism)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", opts.File, err)
		}
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		if err := v.BindPFlags(opts.Flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	conf := &Config{
		NonNullName:            v.GetString(NonNullAnnotationKey),
		NullableName:           v.GetString(NullableAnnotationKey),
		NonNullByDefaultName:   v.GetString(NonNullByDefaultAnnotationKey),
		InjectNames:            splitList(v.GetStringSlice(InjectAnnotationsKey)),
		Severities:             make(map[Option]Severity, len(Options)),
		SyntacticFieldAnalysis: v.GetBool(SyntacticFieldAnalysisKey),
		SuppressOptionalErrors: v.GetBool(SuppressOptionalErrorsKey),
		SuppressWarnings:       v.GetBool(SuppressWarningsKey),
		IncludePkgs:            splitList(v.GetStringSlice(IncludePkgsKey)),
		ExcludePkgs:            splitList(v.GetStringSlice(ExcludePkgsKey)),
		PrettyPrint:            v.GetBool(PrettyPrintKey),
		Parallelism:            v.GetInt(ParallelismKey),
	}
	for _, o := range Options {
		sev, err := ParseSeverity(v.GetString(string(o)))
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", o, err)
		}
		conf.Severities[o] = sev
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return conf, nil
}

// splitList flattens comma-separated entries, as given in environment variables and flags.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
