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

package flow

import (
	"golang.org/x/tools/container/intsets"
)

// State is the nullness of one tracked variable at a program point.
type State uint8

// Lattice values. NonNull on a field key is a protection subject to expiry.
const (
	Unknown State = iota
	NonNull
	PotentiallyNull
	DefinitelyNull
)

func (s State) String() string {
	switch s {
	case NonNull:
		return "non-null"
	case PotentiallyNull:
		return "potentially null"
	case DefinitelyNull:
		return "null"
	default:
		return "unknown"
	}
}

// MeetState combines the states of two incoming edges.
func MeetState(a, b State) State {
	switch {
	case a == b:
		return a
	case a == DefinitelyNull || b == DefinitelyNull || a == PotentiallyNull || b == PotentiallyNull:
		return PotentiallyNull
	default:
		return Unknown
	}
}

// Info is the flow information at one program point: the state of every tracked variable, stored
// as bit vectors indexed by variable id. A variable in none of the vectors is Unknown. spec marks
// the potentially null variables whose nullness comes from a Nullable specification; assigned
// marks the fields definitely assigned so far (constructors and initializers only).
type Info struct {
	dead bool

	nonNull  intsets.Sparse
	null     intsets.Sparse
	potNull  intsets.Sparse
	spec     intsets.Sparse
	assigned intsets.Sparse
}

// NewInfo returns the information of a reachable program point with nothing known.
func NewInfo() *Info { return &Info{} }

// DeadInfo returns the information of an unreachable program point: the identity of Meet.
func DeadInfo() *Info { return &Info{dead: true} }

// IsDead reports whether the program point is unreachable.
func (i *Info) IsDead() bool { return i.dead }

// Clone returns an independent copy of i.
func (i *Info) Clone() *Info {
	c := &Info{dead: i.dead}
	c.nonNull.Copy(&i.nonNull)
	c.null.Copy(&i.null)
	c.potNull.Copy(&i.potNull)
	c.spec.Copy(&i.spec)
	c.assigned.Copy(&i.assigned)
	return c
}

// State returns the state of variable v.
func (i *Info) State(v int) State {
	switch {
	case i.nonNull.Has(v):
		return NonNull
	case i.null.Has(v):
		return DefinitelyNull
	case i.potNull.Has(v):
		return PotentiallyNull
	default:
		return Unknown
	}
}

// Tracked reports whether the state of v is known at this point.
func (i *Info) Tracked(v int) bool {
	return i.nonNull.Has(v) || i.null.Has(v) || i.potNull.Has(v)
}

// IsSpec reports whether the potential nullness of v comes from a specification.
func (i *Info) IsSpec(v int) bool { return i.spec.Has(v) }

// Set records the state of v. spec is only meaningful for PotentiallyNull.
func (i *Info) Set(v int, s State, spec bool) {
	i.Forget(v)
	switch s {
	case NonNull:
		i.nonNull.Insert(v)
	case DefinitelyNull:
		i.null.Insert(v)
	case PotentiallyNull:
		i.potNull.Insert(v)
		if spec {
			i.spec.Insert(v)
		}
	}
}

// Forget makes v Unknown.
func (i *Info) Forget(v int) {
	i.nonNull.Remove(v)
	i.null.Remove(v)
	i.potNull.Remove(v)
	i.spec.Remove(v)
}

// ForgetAll makes every variable of vs Unknown. Assignment facts are kept.
func (i *Info) ForgetAll(vs *intsets.Sparse) {
	i.nonNull.DifferenceWith(vs)
	i.null.DifferenceWith(vs)
	i.potNull.DifferenceWith(vs)
	i.spec.DifferenceWith(vs)
}

// Assign marks the field v as definitely assigned.
func (i *Info) Assign(v int) { i.assigned.Insert(v) }

// Assigned reports whether the field v is definitely assigned.
func (i *Info) Assigned(v int) bool { return i.assigned.Has(v) }

// MeetWith merges o into i: a variable stays NonNull (DefinitelyNull) only if it is NonNull
// (DefinitelyNull) on both edges, becomes PotentiallyNull if either edge may hold null, and is
// Unknown otherwise. Unreachable edges do not contribute.
func (i *Info) MeetWith(o *Info) {
	if o.dead {
		return
	}
	if i.dead {
		i.Replace(o)
		return
	}

	var bothNull intsets.Sparse
	bothNull.Intersection(&i.null, &o.null)

	i.potNull.UnionWith(&o.potNull)
	i.potNull.UnionWith(&i.null)
	i.potNull.UnionWith(&o.null)
	i.potNull.DifferenceWith(&bothNull)

	i.null.Copy(&bothNull)
	i.nonNull.IntersectionWith(&o.nonNull)

	i.spec.UnionWith(&o.spec)
	i.spec.IntersectionWith(&i.potNull)

	i.assigned.IntersectionWith(&o.assigned)
}

// Replace overwrites i with a copy of o.
func (i *Info) Replace(o *Info) {
	i.dead = o.dead
	i.nonNull.Copy(&o.nonNull)
	i.null.Copy(&o.null)
	i.potNull.Copy(&o.potNull)
	i.spec.Copy(&o.spec)
	i.assigned.Copy(&o.assigned)
}

// copyAssigned replaces the assignment facts of i with those of o.
func (i *Info) copyAssigned(o *Info) { i.assigned.Copy(&o.assigned) }

// Meet returns the merge of the given edges, dead if there are none.
func Meet(edges ...*Info) *Info {
	out := DeadInfo()
	for _, e := range edges {
		out.MeetWith(e)
	}
	return out
}
