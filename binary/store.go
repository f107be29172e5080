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

// Package binary holds the metadata of already-compiled dependencies: for every binary type its
// hierarchy, sealed facts, resolved member nullness, and the NonNullByDefault metadata of types
// and packages. A Store is immutable once loaded and may be shared by concurrent analyses.
package binary

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/s2"
	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/util/orderedmap"
)

// Default is stored NonNullByDefault metadata. Declared is false if the declaration carries no
// default annotation; a declared empty location set cancels the enclosing default.
type Default struct {
	Declared  bool
	Locations annotation.LocationSet
}

// Module describes a named module and the modules it reads.
type Module struct {
	Name     string
	Requires []string
}

// Package describes a package of a binary dependency.
type Package struct {
	Name    string
	Module  string
	Default Default
}

// Field is a field of a binary type. Nullness is the explicit annotation of the field.
type Field struct {
	Name     string
	Type     string
	Static   bool
	Nullness annotation.Nullness
}

// Method is a method or constructor of a binary type. Params holds the erased simple names of the
// parameter types, used for signature matching. Returns holds the qualified erased name of the
// return type so that it resolves without imports. Contract holds the explicit
// nullness annotations only; defaults are resolved from the Default metadata of the enclosing
// declarations.
type Method struct {
	Name        string
	Params      []string
	ParamNames  []string
	Returns     string
	Constructor bool
	Static      bool
	Abstract    bool
	Contract    annotation.Contract
	Default     Default
}

// Type is a binary type.
type Type struct {
	Name       string
	Package    string
	Module     string
	Kind       string
	Modifiers  []string
	Outer      string
	Super      string
	Interfaces []string
	Permits    []string
	Default    Default
	Fields     []*Field
	Methods    []*Method
}

// Store is the binary metadata of a set of dependencies, keyed by qualified name. Iteration
// follows insertion order so that encodings are deterministic.
type Store struct {
	Modules  *orderedmap.OrderedMap[string, *Module]
	Packages *orderedmap.OrderedMap[string, *Package]
	Types    *orderedmap.OrderedMap[string, *Type]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		Modules:  orderedmap.New[string, *Module](),
		Packages: orderedmap.New[string, *Package](),
		Types:    orderedmap.New[string, *Type](),
	}
}

// Type returns the binary type with the given qualified name.
func (s *Store) Type(name string) (*Type, bool) {
	if s == nil {
		return nil, false
	}
	return s.Types.Load(name)
}

// Package returns the binary package with the given name.
func (s *Store) Package(name string) (*Package, bool) {
	if s == nil {
		return nil, false
	}
	return s.Packages.Load(name)
}

// Module returns the binary module with the given name.
func (s *Store) Module(name string) (*Module, bool) {
	if s == nil {
		return nil, false
	}
	return s.Modules.Load(name)
}

// Merge adds the entries of other that are not yet present in s. Entries already present win,
// so stores given first take precedence.
func (s *Store) Merge(other *Store) {
	other.Modules.OrderedRange(func(k string, v *Module) bool {
		if !s.Modules.Has(k) {
			s.Modules.Store(k, v)
		}
		return true
	})
	other.Packages.OrderedRange(func(k string, v *Package) bool {
		if !s.Packages.Has(k) {
			s.Packages.Store(k, v)
		}
		return true
	})
	other.Types.OrderedRange(func(k string, v *Type) bool {
		if !s.Types.Has(k) {
			s.Types.Store(k, v)
		}
		return true
	})
}

// GobEncode encodes the store via gob encoding, compressed with s2.
func (s *Store) GobEncode() (b []byte, err error) {
	var buf bytes.Buffer
	writer := s2.NewWriter(&buf)
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	enc := gob.NewEncoder(writer)
	for _, m := range []gob.GobEncoder{s.Modules, s.Packages, s.Types} {
		if err := enc.Encode(m); err != nil {
			return nil, err
		}
	}

	// Close the s2 writer before getting the bytes such that we have complete information.
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode decodes a store produced by GobEncode.
func (s *Store) GobDecode(input []byte) error {
	*s = *NewStore()
	dec := gob.NewDecoder(s2.NewReader(bytes.NewReader(input)))
	for _, m := range []gob.GobDecoder{s.Modules, s.Packages, s.Types} {
		if err := dec.Decode(m); err != nil {
			return err
		}
	}
	return nil
}

// Write encodes the store to w.
func (s *Store) Write(w io.Writer) error {
	b, err := s.GobEncode()
	if err != nil {
		return fmt.Errorf("encode binary store: %w", err)
	}
	_, err = w.Write(b)
	return err
}

// Read decodes a store from r.
func Read(r io.Reader) (*Store, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read binary store: %w", err)
	}
	s := NewStore()
	if err := s.GobDecode(b); err != nil {
		return nil, fmt.Errorf("decode binary store: %w", err)
	}
	return s, nil
}

// Load reads and merges the stores in the given files. Earlier files take precedence.
func Load(paths ...string) (*Store, error) {
	s := NewStore()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open binary store: %w", err)
		}
		other, err := Read(f)
		cerr := f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		if cerr != nil {
			return nil, fmt.Errorf("close %s: %w", p, cerr)
		}
		s.Merge(other)
	}
	return s, nil
}
