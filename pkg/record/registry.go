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

package record

import (
	"sort"

	"gitlab.com/tozd/go/errors"
)

// 🗂️ Registry maps property names to field accessors for every format.
// It is immutable once built and safe for concurrent use.
type Registry struct {
	fields map[Format]map[string]field
	names  map[Format][]string
	common []string
	union  []string
}

// Default is built once from the known layouts.
var Default = NewRegistry()

// 🏭 NewRegistry builds the per-format dispatch tables and the common/any
// property sets.
func NewRegistry() *Registry {
	r := &Registry{
		fields: make(map[Format]map[string]field, len(formats)),
		names:  make(map[Format][]string, len(formats)),
	}

	seen := map[string]int{}
	for _, f := range formats {
		l := layoutOf(f)
		byName := make(map[string]field, len(l.fields))
		names := make([]string, 0, len(l.fields))
		for _, fd := range l.fields {
			byName[fd.name] = fd
			names = append(names, fd.name)
			seen[fd.name]++
		}
		sort.Strings(names)
		r.fields[f] = byName
		r.names[f] = names
	}

	for name, count := range seen {
		r.union = append(r.union, name)
		if count == len(formats) {
			r.common = append(r.common, name)
		}
	}
	sort.Strings(r.union)
	sort.Strings(r.common)

	return r
}

// lookupField resolves a field from the default tables
func lookupField(f Format, name string) (field, bool) {
	fd, ok := Default.fields[f][name]
	return fd, ok
}

// Properties returns the sorted settable property names of a format.
func (r *Registry) Properties(f Format) []string {
	return append([]string(nil), r.names[f]...)
}

// Common returns the properties every format supports.
func (r *Registry) Common() []string {
	return append([]string(nil), r.common...)
}

// Any returns the properties at least one format supports.
func (r *Registry) Any() []string {
	return append([]string(nil), r.union...)
}

// Has reports whether records of format f carry the named property.
func (r *Registry) Has(f Format, name string) bool {
	_, ok := r.fields[f][name]
	return ok
}

// Known reports whether any format carries the named property.
func (r *Registry) Known(name string) bool {
	for _, f := range formats {
		if r.Has(f, name) {
			return true
		}
	}
	return false
}

// Randomizable reports whether the property is an identifier that accepts a
// freshly generated random value.
func (r *Registry) Randomizable(f Format, name string) bool {
	fd, ok := r.fields[f][name]
	return ok && fd.randomizable
}

func (r *Registry) field(rec Record, name string) (field, error) {
	fd, ok := r.fields[rec.Format()][name]
	if !ok {
		return field{}, errors.Errorf("%w: %s has no %q", ErrPropertyNotFound, rec.Format(), name)
	}
	return fd, nil
}

// 📖 Get returns the property value as script text.
func (r *Registry) Get(rec Record, name string) (string, error) {
	fd, err := r.field(rec, name)
	if err != nil {
		return "", err
	}
	return fd.format(fd.read(rec.Bytes())), nil
}

// ⚖️ Equals coerces value to the property type and compares it with the
// current value. Values that cannot be coerced are an error, not a mismatch.
func (r *Registry) Equals(rec Record, name, value string) (bool, error) {
	fd, err := r.field(rec, name)
	if err != nil {
		return false, err
	}
	want, err := fd.parse(value)
	if err != nil {
		return false, err
	}
	return fd.read(rec.Bytes()) == want, nil
}

// ✏️ Set coerces value to the property type and stores it. The record is
// left untouched when coercion fails.
func (r *Registry) Set(rec Record, name, value string) error {
	fd, err := r.field(rec, name)
	if err != nil {
		return err
	}
	v, err := fd.parse(value)
	if err != nil {
		return err
	}
	fd.write(rec.Bytes(), v)
	return nil
}
