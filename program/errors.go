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

package program

import "fmt"

// ResolutionError reports a dependency that is required but absent: a configured annotation type
// that no unit or binary dependency declares, or binary metadata missing for a package whose
// defaults are needed. It aborts the whole batch.
type ResolutionError struct {
	// Name is the qualified name that could not be resolved.
	Name string
	// From describes the requirement, e.g. "configuration" or the name of the dependent type.
	From string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s required by %s", e.Name, e.From)
}
