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

package jnilaway

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"

	"github.com/fatih/color"
	"go.uber.org/jnilaway/config"
	"go.uber.org/jnilaway/diagnostic"
)

// Format selects how diagnostics are rendered.
type Format string

// Output formats.
const (
	// FormatText prints one grouped diagnostic per paragraph.
	FormatText Format = "text"
	// FormatJSON prints one JSON object per diagnostic and line.
	FormatJSON Format = "json"
)

// Printer renders diagnostics.
type Printer struct {
	w      io.Writer
	format Format
	pretty bool
}

// NewPrinter returns a printer writing to w. Pretty enables colours in the text format.
func NewPrinter(w io.Writer, format Format, pretty bool) (*Printer, error) {
	switch format {
	case FormatText, FormatJSON:
	case "":
		format = FormatText
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return &Printer{w: w, format: format, pretty: pretty}, nil
}

// Print renders the sorted diagnostics ds.
func (p *Printer) Print(ds []diagnostic.Diagnostic) error {
	if p.format == FormatJSON {
		return p.printJSON(ds)
	}
	for _, g := range diagnostic.GroupDiagnostics(ds) {
		msg := g.String()
		if p.pretty {
			msg = prettyPrintErrorMessage(msg)
		}
		if _, err := fmt.Fprintf(p.w, "%s: %s: %s [%s]\n", g.Span, p.severity(g.Severity), msg, g.Kind); err != nil {
			return err
		}
	}
	return nil
}

// jsonDiagnostic is the JSON line of one diagnostic.
type jsonDiagnostic struct {
	diagnostic.Diagnostic
	Message string `json:"message"`
}

func (p *Printer) printJSON(ds []diagnostic.Diagnostic) error {
	enc := json.NewEncoder(p.w)
	for _, d := range ds {
		if err := enc.Encode(jsonDiagnostic{Diagnostic: d, Message: d.Message()}); err != nil {
			return fmt.Errorf("encode diagnostic: %w", err)
		}
	}
	return nil
}

var (
	_errorColor   = []color.Attribute{color.FgRed, color.Bold}
	_warningColor = []color.Attribute{color.FgYellow}
	_infoColor    = []color.Attribute{color.FgCyan}
	_codeColor    = []color.Attribute{color.FgHiMagenta}
	_quoteColor   = []color.Attribute{color.FgCyan}
)

func (p *Printer) severity(s config.Severity) string {
	if !p.pretty {
		return s.String()
	}
	attrs := _infoColor
	switch s {
	case config.Error:
		attrs = _errorColor
	case config.Warning:
		attrs = _warningColor
	}
	return colored(attrs, s.String())
}

// colored renders text with the given attributes even if stdout is not a terminal: the caller
// decides whether to pretty print.
func colored(attrs []color.Attribute, text string) string {
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

var codeReferencePattern = regexp.MustCompile(`'(.*?)'`)
var positionPattern = regexp.MustCompile(`"(.*?)"`)

// prettyPrintErrorMessage highlights the code references and positions of a message.
func prettyPrintErrorMessage(msg string) string {
	msg = codeReferencePattern.ReplaceAllStringFunc(msg, func(s string) string {
		return colored(_codeColor, s)
	})
	msg = positionPattern.ReplaceAllStringFunc(msg, func(s string) string {
		return colored(_quoteColor, s)
	})
	return msg
}
