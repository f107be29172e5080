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

// Package annotation models the nullness annotations of the analyzed language: the NonNull and
// Nullable markers, NonNullByDefault location sets, the sites annotations attach to, and the
// injection annotations that exempt fields from initialization checks.
package annotation

import (
	"strings"
)

// Nullness is the nullness specified for one location. The zero value is None (unannotated).
type Nullness uint8

// Nullness values.
const (
	None Nullness = iota
	NonNull
	Nullable
)

func (n Nullness) String() string {
	switch n {
	case NonNull:
		return "@NonNull"
	case Nullable:
		return "@Nullable"
	default:
		return "unannotated"
	}
}

// Location is a syntactic location category a NonNullByDefault annotation can apply to.
type Location uint8

// Location categories.
const (
	Parameter Location = 1 << iota
	Return
	Field
	TypeParameter
	TypeBound
	TypeArgument
	ArrayContents
)

var _locationNames = []struct {
	loc   Location
	names []string
}{
	{Parameter, []string{"PARAMETER"}},
	{Return, []string{"RETURN_TYPE", "RETURN"}},
	{Field, []string{"FIELD"}},
	{TypeParameter, []string{"TYPE_PARAMETER"}},
	{TypeBound, []string{"TYPE_BOUND"}},
	{TypeArgument, []string{"TYPE_ARGUMENT"}},
	{ArrayContents, []string{"ARRAY_CONTENTS"}},
}

// ParseLocation parses a location name such as "PARAMETER" or "DefaultLocation.RETURN_TYPE".
func ParseLocation(s string) (Location, bool) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	for _, ln := range _locationNames {
		for _, name := range ln.names {
			if strings.EqualFold(s, name) {
				return ln.loc, true
			}
		}
	}
	return 0, false
}

func (l Location) String() string {
	for _, ln := range _locationNames {
		if ln.loc == l {
			return ln.names[0]
		}
	}
	return "UNKNOWN"
}

// LocationSet is a set of location categories.
type LocationSet uint8

// DefaultLocations is the location set of a NonNullByDefault annotation without arguments.
const DefaultLocations = LocationSet(Parameter | Return | Field | TypeBound | TypeArgument)

// Has reports whether l is in the set.
func (s LocationSet) Has(l Location) bool { return s&LocationSet(l) != 0 }

// With returns the set extended with l.
func (s LocationSet) With(l Location) LocationSet { return s | LocationSet(l) }

// IsEmpty returns true for the empty set, which cancels any enclosing default.
func (s LocationSet) IsEmpty() bool { return s == 0 }

func (s LocationSet) String() string {
	if s.IsEmpty() {
		return "{}"
	}
	var names []string
	for _, ln := range _locationNames {
		if s.Has(ln.loc) {
			names = append(names, ln.names[0])
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Contract is the resolved nullness of a method: one entry per parameter, plus the return.
type Contract struct {
	Params []Nullness
	Return Nullness
}

// Param returns the nullness of parameter i, None if out of range.
func (c Contract) Param(i int) Nullness {
	if i < 0 || i >= len(c.Params) {
		return None
	}
	return c.Params[i]
}
