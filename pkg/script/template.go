// Copyright 2025 walteh LLC
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

package script

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🧩 Requirement picks which prefix a template line gets
type Requirement int

const (
	RequireSet Requirement = iota
	RequireEqual
	RequireNotEqual
)

// ParseRequirement accepts "set", "equal" or "not-equal".
func ParseRequirement(s string) (Requirement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "set", ".":
		return RequireSet, nil
	case "equal", "=":
		return RequireEqual, nil
	case "not-equal", "!":
		return RequireNotEqual, nil
	default:
		return RequireSet, errors.Errorf("unknown requirement %q", s)
	}
}

func (r Requirement) prefix() byte {
	switch r {
	case RequireEqual:
		return prefixEqual
	case RequireNotEqual:
		return prefixNotEqual
	default:
		return prefixSet
	}
}

// Template returns an instruction line for name with the value left empty.
func Template(r Requirement, name string) string {
	return string(r.prefix()) + name + separator
}

// Append adds line to text, starting a new line unless the text is empty or
// already ends with an empty line.
func Append(text, line string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text + line
	}
	return text + "\n" + line
}
