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

package annotation

import (
	"fmt"
)

// ParamKey identifies a method parameter by the declaring type, the method signature and its
// 1-based position. It renders the parameter in diagnostic messages.
type ParamKey struct {
	Type      string
	Signature string
	Index     int
	Name      string
}

// Location returns Parameter.
func (k ParamKey) Location() Location { return Parameter }

func (k ParamKey) String() string {
	if k.Name != "" {
		return fmt.Sprintf("parameter %s of %s.%s", k.Name, k.Type, k.Signature)
	}
	return fmt.Sprintf("parameter %d of %s.%s", k.Index, k.Type, k.Signature)
}
