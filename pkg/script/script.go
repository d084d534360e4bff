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
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// RandomValue asks for a fresh random 32-bit value on identifier properties.
const RandomValue = "$rand"

const (
	prefixNotEqual = '!'
	prefixEqual    = '='
	prefixSet      = '.'
	separator      = "="
)

var (
	ErrFormat             = errors.New("line length error in instruction list")
	ErrValidation         = errors.New("invalid instruction list")
	ErrEmptyFilterValue   = errors.Errorf("%w: empty filter value detected", ErrValidation)
	ErrEmptyPropertyValue = errors.Errorf("%w: empty property value detected", ErrValidation)
	ErrNoMutations        = errors.Errorf("%w: no property instructions to apply", ErrValidation)
)

// 🧾 FormatError points at the first line without a known prefix
type FormatError struct {
	Line int    // 1-based line number
	Text string // raw line
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: line %d %q must start with '!', '=' or '.'", ErrFormat, e.Line, e.Text)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// Kind separates instructions that select records from those that change them
type Kind int

const (
	KindFilter Kind = iota
	KindMutation
)

func (k Kind) String() string {
	if k == KindFilter {
		return "filter"
	}
	return "mutation"
}

// 📝 Instruction is one parsed script line
type Instruction struct {
	Kind  Kind
	Name  string // property name
	Value string // literal text or RandomValue
	Equal bool   // filters only: keep when equal, otherwise keep when not equal
}

// String renders the instruction back into script syntax
func (i Instruction) String() string {
	prefix := prefixSet
	if i.Kind == KindFilter {
		prefix = prefixNotEqual
		if i.Equal {
			prefix = prefixEqual
		}
	}
	return string(prefix) + i.Name + separator + i.Value
}

// 📜 Script is a validated instruction list
type Script struct {
	Filters   []Instruction
	Mutations []Instruction
}

// 🔍 Parse splits text into lines and parses them.
func Parse(text string) (*Script, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return ParseLines(lines)
}

// ParseLines checks every raw line, extracts filters and mutations in source
// order and rejects blank values. Nothing is returned unless the whole list
// is valid.
func ParseLines(lines []string) (*Script, error) {
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case prefixNotEqual, prefixEqual, prefixSet:
		default:
			return nil, &FormatError{Line: i + 1, Text: line}
		}
	}

	s := &Script{
		Filters:   parseFilters(lines),
		Mutations: parseMutations(lines),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// parseFilters keeps `=name=value` and `!name=value` lines that split into a
// named pair; anything else is dropped
func parseFilters(lines []string) []Instruction {
	var out []Instruction
	for _, line := range lines {
		if isBlank(line) {
			continue
		}
		if line[0] != prefixEqual && line[0] != prefixNotEqual {
			continue
		}
		split := strings.Split(line[1:], separator)
		if len(split) != 2 || isBlank(split[0]) {
			continue
		}
		out = append(out, Instruction{
			Kind:  KindFilter,
			Name:  split[0],
			Value: split[1],
			Equal: line[0] == prefixEqual,
		})
	}
	return out
}

// parseMutations keeps `.name=value` lines that split into exactly two parts
func parseMutations(lines []string) []Instruction {
	var out []Instruction
	for _, line := range lines {
		if len(line) == 0 || line[0] != prefixSet {
			continue
		}
		split := strings.Split(line[1:], separator)
		if len(split) != 2 {
			continue
		}
		out = append(out, Instruction{
			Kind:  KindMutation,
			Name:  split[0],
			Value: split[1],
		})
	}
	return out
}

// ✅ Validate rejects blank values and scripts that would change nothing.
func (s *Script) Validate() error {
	for _, f := range s.Filters {
		if isBlank(f.Value) {
			return errors.Errorf("%w: %s", ErrEmptyFilterValue, f)
		}
	}
	for _, m := range s.Mutations {
		if isBlank(m.Value) {
			return errors.Errorf("%w: %s", ErrEmptyPropertyValue, m)
		}
	}
	if len(s.Mutations) == 0 {
		return ErrNoMutations
	}
	return nil
}

// Unknown returns, in first-seen order, the property names that has rejects.
func (s *Script) Unknown(has func(name string) bool) []string {
	var out []string
	seen := map[string]bool{}
	for _, list := range [][]Instruction{s.Filters, s.Mutations} {
		for _, ins := range list {
			if seen[ins.Name] || has(ins.Name) {
				continue
			}
			seen[ins.Name] = true
			out = append(out, ins.Name)
		}
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
