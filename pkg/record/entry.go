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

	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnknownSize      = errors.New("unknown record size")
	ErrPropertyNotFound = errors.New("property not found")
	ErrInvalidValue     = errors.New("invalid property value")
)

// 📦 Record is a single save-data entry that batch instructions operate on
type Record interface {
	// Format returns the generation layout of the record
	Format() Format
	// Species returns the primary type field; zero means the slot is empty
	Species() uint16
	// ChecksumValid reports whether the stored checksum matches the data
	ChecksumValid() bool
	// RefreshChecksum recomputes and stores the checksum
	RefreshChecksum()
	// Bytes returns the backing data; writes to it change the record
	Bytes() []byte
}

// 🧾 Entry is the byte-backed Record implementation for every known format
type Entry struct {
	format Format
	data   []byte
}

var _ Record = (*Entry)(nil)

// NewEntry returns an empty stored-size record of the given format with a
// valid checksum.
func NewEntry(f Format) (*Entry, error) {
	l := layoutOf(f)
	if l == nil {
		return nil, errors.Errorf("creating entry: unknown format %s", f)
	}
	e := &Entry{format: f, data: make([]byte, l.stored)}
	e.RefreshChecksum()
	return e, nil
}

// 🔓 Decode detects the format from the data length and wraps a copy of it.
func Decode(data []byte) (*Entry, error) {
	f, err := Detect(data)
	if err != nil {
		return nil, errors.Errorf("decoding record: %w", err)
	}
	return DecodeAs(f, data)
}

// DecodeAs wraps a copy of data as a record of format f. Party sized data is
// kept whole so it can be written back at the same length.
func DecodeAs(f Format, data []byte) (*Entry, error) {
	l := layoutOf(f)
	if l == nil {
		return nil, errors.Errorf("decoding record: unknown format %s", f)
	}
	if len(data) != l.stored && len(data) != l.party {
		return nil, errors.Errorf("%w: %d bytes is not a %s record", ErrUnknownSize, len(data), f)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Entry{format: f, data: buf}, nil
}

func (e *Entry) Format() Format { return e.format }

func (e *Entry) Bytes() []byte { return e.data }

func (e *Entry) Species() uint16 {
	f, ok := lookupField(e.format, "Species")
	if !ok {
		return 0
	}
	return uint16(f.read(e.data))
}

// Checksum returns the checksum word currently stored in the record
func (e *Entry) Checksum() uint16 {
	l := layoutOf(e.format)
	return binary.LittleEndian.Uint16(e.data[l.checksumAt:])
}

func (e *Entry) ChecksumValid() bool {
	return e.Checksum() == e.computeChecksum()
}

func (e *Entry) RefreshChecksum() {
	l := layoutOf(e.format)
	binary.LittleEndian.PutUint16(e.data[l.checksumAt:], e.computeChecksum())
}

// computeChecksum sums the little endian words of the covered range
func (e *Entry) computeChecksum() uint16 {
	l := layoutOf(e.format)
	var sum uint16
	for i := l.checksumFrom; i+1 < l.checksumTo; i += 2 {
		sum += binary.LittleEndian.Uint16(e.data[i:])
	}
	return sum
}
