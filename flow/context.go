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

type frameKind uint8

const (
	loopFrame frameKind = iota
	switchFrame
	labelFrame
	tryFrame
)

// frame is a flow context: it collects the states leaving a statement through jumps (break,
// continue) or exceptions.
type frame struct {
	kind  frameKind
	label string

	breaks    []*Info
	continues []*Info
	// throws are the states at the points of the try block that may throw, try entry included.
	throws []*Info
	// catches is set for try frames with catch clauses: exceptions do not propagate further out.
	catches bool
	// finally is set for try frames with a finally block. Returns and jumps leaving such a frame
	// are held in pending until the finally block has run.
	finally bool
	pending []pendingExit
}

// pendingExit is a return, break or continue waiting for a finally block.
type pendingExit struct {
	state *Info
	ret   bool
	cont  bool
	label string
}

func (f *fn) push(kind frameKind, label string) *frame {
	fr := &frame{kind: kind, label: label}
	f.frames = append(f.frames, fr)
	return fr
}

func (f *fn) pop() { f.frames = f.frames[:len(f.frames)-1] }

// jump records in as leaving through a break or continue and returns the unreachable state. A
// jump crossing a try block with a finally block is held by that try frame.
func (f *fn) jump(label string, cont bool, in *Info) *Info {
	if in.IsDead() {
		return in
	}
	for i := len(f.frames) - 1; i >= 0; i-- {
		fr := f.frames[i]
		if fr.kind == tryFrame && fr.finally {
			fr.pending = append(fr.pending, pendingExit{state: in.Clone(), cont: cont, label: label})
			break
		}
		var match bool
		switch {
		case label != "":
			match = fr.label == label && (!cont || fr.kind == loopFrame)
		case cont:
			match = fr.kind == loopFrame
		default:
			match = fr.kind == loopFrame || fr.kind == switchFrame
		}
		if !match {
			continue
		}
		if cont {
			fr.continues = append(fr.continues, in.Clone())
		} else {
			fr.breaks = append(fr.breaks, in.Clone())
		}
		break
	}
	return DeadInfo()
}

// exit records in as leaving the body through a return, held by the innermost try frame with a
// finally block if any.
func (f *fn) exit(in *Info) {
	if in.IsDead() {
		return
	}
	for i := len(f.frames) - 1; i >= 0; i-- {
		if fr := f.frames[i]; fr.kind == tryFrame && fr.finally {
			fr.pending = append(fr.pending, pendingExit{state: in.Clone(), ret: true})
			return
		}
	}
	f.exits = append(f.exits, in.Clone())
}

// throwPoint records in as a state from which an exception may leave the current statement.
func (f *fn) throwPoint(in *Info) {
	if in.IsDead() {
		return
	}
	for i := len(f.frames) - 1; i >= 0; i-- {
		fr := f.frames[i]
		if fr.kind != tryFrame {
			continue
		}
		fr.throws = append(fr.throws, in.Clone())
		if fr.catches {
			return
		}
	}
}
