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

package batch

import (
	"context"
	"math/rand"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/walteh/pkbatch/pkg/record"
	"github.com/walteh/pkbatch/pkg/script"
)

// 📊 Result is the outcome of running a script against one record
type Result int

const (
	ResultSkipped  Result = iota // invalid checksum or empty slot
	ResultFiltered               // a filter excluded the record
	ResultModified               // at least one property was set
	ResultErrored                // every property set failed
)

func (r Result) String() string {
	switch r {
	case ResultSkipped:
		return "skipped"
	case ResultFiltered:
		return "filtered"
	case ResultModified:
		return "modified"
	case ResultErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// 🔌 Accessor reads and writes record properties by name
type Accessor interface {
	// Has reports whether records of format f carry the property
	Has(f record.Format, name string) bool
	// Randomizable reports whether the property accepts a random id
	Randomizable(f record.Format, name string) bool
	// Equals compares the current value with value coerced to the property type
	Equals(rec record.Record, name, value string) (bool, error)
	// Set coerces value to the property type and stores it
	Set(rec record.Record, name, value string) error
}

var _ Accessor = (*record.Registry)(nil)

// ⚙️ Processor applies one script to one record at a time
type Processor struct {
	accessor Accessor
	random   func() uint32
}

// ProcessorOption configures a Processor
type ProcessorOption func(*Processor)

// WithRandom replaces the source of random identifiers.
func WithRandom(fn func() uint32) ProcessorOption {
	return func(p *Processor) {
		p.random = fn
	}
}

// 🏭 NewProcessor creates a processor backed by accessor.
func NewProcessor(accessor Accessor, opts ...ProcessorOption) *Processor {
	p := &Processor{
		accessor: accessor,
		random:   rand.Uint32,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// 🎯 Process filters rec and, when every filter passes, applies each
// mutation independently. Failed sets are logged and skipped; there is no
// rollback of the ones that succeeded.
func (p *Processor) Process(ctx context.Context, rec record.Record, s *script.Script) Result {
	logger := zerolog.Ctx(ctx)

	if !rec.ChecksumValid() || rec.Species() == 0 {
		return ResultSkipped
	}

	format := rec.Format()
	for _, f := range s.Filters {
		if !p.accessor.Has(format, f.Name) {
			return ResultFiltered
		}
		equal, err := p.accessor.Equals(rec, f.Name, f.Value)
		if err != nil {
			logger.Debug().Err(err).Str("property", f.Name).Str("value", f.Value).Msg("unable to compare")
			return ResultFiltered
		}
		if equal != f.Equal {
			return ResultFiltered
		}
	}

	result := ResultErrored
	for _, m := range s.Mutations {
		value := m.Value
		if value == script.RandomValue && p.accessor.Randomizable(format, m.Name) {
			value = strconv.FormatUint(uint64(p.random()), 10)
		}
		if err := p.accessor.Set(rec, m.Name, value); err != nil {
			logger.Debug().Err(err).Str("property", m.Name).Str("value", m.Value).Msg("unable to set")
			continue
		}
		result = ResultModified
	}

	if result == ResultModified {
		rec.RefreshChecksum()
	}
	return result
}
