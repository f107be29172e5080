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

package ast

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// This file parses the compact string forms accepted in documents:
//
//	type:        "@NonNull List<@Nullable String> @NonNull []"
//	annotation:  "@NonNullByDefault({PARAMETER, RETURN})", "Inject(optional=true)"
//	declaration: "@Nullable Object o"
//
// Leading annotations of a type string annotate the element type; annotations before a `[]`
// annotate that array level, outermost first.

// ParseType parses a type string.
func ParseType(s string) (*Type, error) {
	p := newShorthandParser(s)
	t := p.typ()
	p.expectEnd()
	if p.err != nil {
		return nil, fmt.Errorf("parse type %q: %w", s, p.err)
	}
	return t, nil
}

// ParseAnnotation parses an annotation string; the leading `@` is optional.
func ParseAnnotation(s string) (*Annotation, error) {
	p := newShorthandParser(s)
	p.accept("@")
	a := p.annotationBody()
	p.expectEnd()
	if p.err != nil {
		return nil, fmt.Errorf("parse annotation %q: %w", s, p.err)
	}
	return a, nil
}

// ParseDecl parses a declaration string: declaration annotations, a type and a name.
func ParseDecl(s string) (anns []*Annotation, typ *Type, name string, err error) {
	p := newShorthandParser(s)
	anns = p.annotations()
	typ = p.typ()
	name = p.ident()
	p.expectEnd()
	if p.err != nil {
		return nil, nil, "", fmt.Errorf("parse declaration %q: %w", s, p.err)
	}
	return anns, typ, name, nil
}

type shorthandParser struct {
	toks []string
	i    int
	err  error
}

func newShorthandParser(s string) *shorthandParser {
	return &shorthandParser{toks: tokenize(s)}
}

// tokenize splits s into qualified identifiers, quoted strings and single punctuation runes.
func tokenize(s string) []string {
	var toks []string
	rs := []rune(s)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '"' || r == '\'':
			j := i + 1
			for j < len(rs) && rs[j] != r {
				j++
			}
			if j < len(rs) {
				j++
			}
			toks = append(toks, string(rs[i:j]))
			i = j
		case isIdentRune(r) || r == '-':
			j := i + 1
			for j < len(rs) && (isIdentRune(rs[j]) || rs[j] == '.') {
				j++
			}
			toks = append(toks, string(rs[i:j]))
			i = j
		default:
			toks = append(toks, string(r))
			i++
		}
	}
	return toks
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *shorthandParser) peek() string {
	if p.i < len(p.toks) {
		return p.toks[p.i]
	}
	return ""
}

func (p *shorthandParser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf(format, args...)
	}
	p.i = len(p.toks)
}

func (p *shorthandParser) accept(tok string) bool {
	if p.peek() == tok {
		p.i++
		return true
	}
	return false
}

func (p *shorthandParser) expect(tok string) {
	if !p.accept(tok) {
		p.fail("expected %q, found %q", tok, p.peek())
	}
}

func (p *shorthandParser) expectEnd() {
	if p.i < len(p.toks) {
		p.fail("unexpected %q", p.peek())
	}
}

func (p *shorthandParser) ident() string {
	tok := p.peek()
	if tok == "" || !isIdentRune([]rune(tok)[0]) {
		p.fail("expected identifier, found %q", tok)
		return ""
	}
	p.i++
	return tok
}

func (p *shorthandParser) annotations() []*Annotation {
	var anns []*Annotation
	for p.accept("@") {
		anns = append(anns, p.annotationBody())
	}
	return anns
}

func (p *shorthandParser) annotationBody() *Annotation {
	a := &Annotation{Name: p.ident()}
	if !p.accept("(") {
		return a
	}
	a.Args = make(map[string]any)
	if p.accept(")") {
		return a
	}
	// Named arguments look like `key = value`.
	if p.i+1 < len(p.toks) && p.toks[p.i+1] == "=" {
		for {
			key := p.ident()
			p.expect("=")
			a.Args[key] = p.value()
			if !p.accept(",") {
				break
			}
		}
	} else {
		a.Args["value"] = p.value()
	}
	p.expect(")")
	return a
}

func (p *shorthandParser) value() any {
	if p.accept("{") {
		list := []any{}
		if p.accept("}") {
			return list
		}
		for {
			list = append(list, p.value())
			if !p.accept(",") {
				break
			}
		}
		p.expect("}")
		return list
	}
	tok := p.peek()
	p.i++
	switch {
	case tok == "":
		p.fail("expected value")
		return nil
	case tok == "true" || tok == "false":
		return tok == "true"
	case strings.HasPrefix(tok, `"`) || strings.HasPrefix(tok, "'"):
		return strings.Trim(tok, `"'`)
	}
	if n, err := strconv.Atoi(tok); err == nil {
		return n
	}
	return tok
}

func (p *shorthandParser) typ() *Type {
	anns := p.annotations()
	t := &Type{Name: p.ident(), Annotations: anns}
	if p.accept("<") {
		for {
			if p.accept("?") {
				w := &Type{Name: "?"}
				if p.accept("extends") || p.accept("super") {
					w.Args = []*Type{p.typ()}
				}
				t.Args = append(t.Args, w)
			} else {
				t.Args = append(t.Args, p.typ())
			}
			if !p.accept(",") {
				break
			}
		}
		p.expect(">")
	}

	// Array dimensions, outermost first.
	var levels [][]*Annotation
	for {
		save := p.i
		dimAnns := p.annotations()
		if !p.accept("[") {
			p.i = save
			break
		}
		p.expect("]")
		levels = append(levels, dimAnns)
	}
	for i := len(levels) - 1; i >= 0; i-- {
		t = &Type{Elem: t, Annotations: levels[i]}
	}
	return t
}
