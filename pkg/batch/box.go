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
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/pkbatch/pkg/record"
	"gitlab.com/tozd/go/errors"
)

// BoxSlots is the number of records shown per box in labels
const BoxSlots = 30

// 📦 OpenBox loads a box dump, a file of back to back stored-size records of
// one format, into a MemoryStore. Committing the store rewrites the whole
// dump.
func OpenBox(ctx context.Context, path string, f record.Format) (*MemoryStore, error) {
	size := f.StoredSize()
	if size == 0 {
		return nil, errors.Errorf("opening box: unknown format %s", f)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading box file: %w", err)
	}
	if len(data)%size != 0 {
		return nil, errors.Errorf("%w: box file of %d bytes is not a whole number of %s records", record.ErrUnknownSize, len(data), f)
	}

	records := make([]record.Record, 0, len(data)/size)
	for off := 0; off < len(data); off += size {
		e, err := record.DecodeAs(f, data[off:off+size])
		if err != nil {
			return nil, errors.Errorf("decoding slot %d: %w", off/size+1, err)
		}
		records = append(records, e)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("format", f.String()).Int("slots", len(records)).Msg("opened box")

	store := NewMemoryStore(records, func(ctx context.Context, records []record.Record) error {
		out := make([]byte, 0, len(records)*size)
		for _, r := range records {
			out = append(out, r.Bytes()...)
		}
		return writeFileAtomic(path, out)
	})
	store.label = func(i int) string {
		return fmt.Sprintf("box %d slot %d", i/BoxSlots+1, i%BoxSlots+1)
	}
	return store, nil
}
