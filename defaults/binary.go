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

package defaults

import (
	"sync"

	"go.uber.org/jnilaway/annotation"
	"go.uber.org/jnilaway/binary"
	"go.uber.org/jnilaway/program"
	"golang.org/x/sync/singleflight"
)

// BinaryCache resolves the effective NonNullByDefault location set of binary types from the
// stored metadata: the type's own default, else the one of its enclosing types, else the one of
// its package. Results are computed on first demand and cached by qualified name, so resolution
// does not depend on the order in which units ask. It is safe for concurrent use.
type BinaryCache struct {
	store *binary.Store

	group    singleflight.Group
	mu       sync.RWMutex
	resolved map[string]annotation.LocationSet
}

// NewBinaryCache returns a cache over store, which may be nil.
func NewBinaryCache(store *binary.Store) *BinaryCache {
	return &BinaryCache{store: store, resolved: make(map[string]annotation.LocationSet)}
}

// TypeDefault returns the effective default location set inside the binary type name. A binary
// type whose package metadata is absent cannot be resolved: the result is a
// *program.ResolutionError.
func (c *BinaryCache) TypeDefault(name string) (annotation.LocationSet, error) {
	c.mu.RLock()
	set, ok := c.resolved[name]
	c.mu.RUnlock()
	if ok {
		return set, nil
	}

	v, err, _ := c.group.Do(name, func() (any, error) {
		set, err := c.computeType(name)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.resolved[name] = set
		c.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(annotation.LocationSet), nil
}

func (c *BinaryCache) computeType(name string) (annotation.LocationSet, error) {
	t, ok := c.store.Type(name)
	if !ok {
		return 0, &program.ResolutionError{Name: name, From: "nullness default resolution"}
	}
	if t.Default.Declared {
		return t.Default.Locations, nil
	}
	if t.Outer != "" {
		return c.TypeDefault(t.Outer)
	}
	pkg, ok := c.store.Package(t.Package)
	if !ok {
		return 0, &program.ResolutionError{Name: t.Package, From: name}
	}
	return pkg.Default.Locations, nil
}

// MethodDefault returns the effective default location set inside the binary method m of t.
func (c *BinaryCache) MethodDefault(t *binary.Type, m *binary.Method) (annotation.LocationSet, error) {
	if m.Default.Declared {
		return m.Default.Locations, nil
	}
	return c.TypeDefault(t.Name)
}

// PackageDefault returns the stored default of a package, if the store knows the package.
func (c *BinaryCache) PackageDefault(pkg string) (binary.Default, bool) {
	p, ok := c.store.Package(pkg)
	if !ok {
		return binary.Default{}, false
	}
	return p.Default, true
}
