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
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	"gitlab.com/tozd/go/errors"
)

// 🔢 kind is the storage type of a field
type kind int

const (
	kindU8 kind = iota
	kindU16
	kindU32
	kindFlag // single bit inside a byte
)

func (k kind) String() string {
	switch k {
	case kindU8:
		return "u8"
	case kindU16:
		return "u16"
	case kindU32:
		return "u32"
	case kindFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// 📌 field is one named value inside a record layout
type field struct {
	name         string
	offset       int
	kind         kind
	bit          uint8 // only used by kindFlag
	randomizable bool  // accepts the random id sentinel
}

// read returns the raw value stored at the field offset
func (f field) read(data []byte) uint64 {
	switch f.kind {
	case kindU8:
		return uint64(data[f.offset])
	case kindU16:
		return uint64(binary.LittleEndian.Uint16(data[f.offset:]))
	case kindU32:
		return uint64(binary.LittleEndian.Uint32(data[f.offset:]))
	case kindFlag:
		return uint64(data[f.offset]>>f.bit) & 1
	default:
		return 0
	}
}

// write stores v at the field offset; v must already be in range
func (f field) write(data []byte, v uint64) {
	switch f.kind {
	case kindU8:
		data[f.offset] = uint8(v)
	case kindU16:
		binary.LittleEndian.PutUint16(data[f.offset:], uint16(v))
	case kindU32:
		binary.LittleEndian.PutUint32(data[f.offset:], uint32(v))
	case kindFlag:
		if v != 0 {
			data[f.offset] |= 1 << f.bit
		} else {
			data[f.offset] &^= 1 << f.bit
		}
	}
}

// format renders a raw value the way scripts spell it
func (f field) format(v uint64) string {
	if f.kind == kindFlag {
		return strconv.FormatBool(v != 0)
	}
	return strconv.FormatUint(v, 10)
}

// 🧪 parse coerces script text into a raw value for this field, rejecting
// anything that does not fit the storage type
func (f field) parse(value string) (uint64, error) {
	value = strings.TrimSpace(value)
	if f.kind == kindFlag {
		v, err := convert.Convert(cty.StringVal(strings.ToLower(value)), cty.Bool)
		if err != nil {
			return 0, errors.Errorf("%w: %s wants true or false, got %q", ErrInvalidValue, f.name, value)
		}
		if v.True() {
			return 1, nil
		}
		return 0, nil
	}

	num, err := convert.Convert(cty.StringVal(value), cty.Number)
	if err != nil {
		return 0, errors.Errorf("%w: %s wants a number, got %q", ErrInvalidValue, f.name, value)
	}

	switch f.kind {
	case kindU8:
		var out uint8
		if err := gocty.FromCtyValue(num, &out); err != nil {
			return 0, errors.Errorf("%w: %s: %s", ErrInvalidValue, f.name, err)
		}
		return uint64(out), nil
	case kindU16:
		var out uint16
		if err := gocty.FromCtyValue(num, &out); err != nil {
			return 0, errors.Errorf("%w: %s: %s", ErrInvalidValue, f.name, err)
		}
		return uint64(out), nil
	case kindU32:
		var out uint32
		if err := gocty.FromCtyValue(num, &out); err != nil {
			return 0, errors.Errorf("%w: %s: %s", ErrInvalidValue, f.name, err)
		}
		return uint64(out), nil
	default:
		return 0, errors.Errorf("%w: %s has unsupported kind %s", ErrInvalidValue, f.name, f.kind)
	}
}
