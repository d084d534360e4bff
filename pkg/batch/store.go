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
	"path/filepath"

	"github.com/walteh/pkbatch/pkg/record"
	"gitlab.com/tozd/go/errors"
)

// 💾 Store supplies the candidate records of a run and persists changes
type Store interface {
	// Len is the number of candidates, including ones Load will screen out
	Len() int
	// Label names candidate i for logs and progress
	Label(i int) string
	// Load returns candidate i, or nil without error when it is not a record
	Load(ctx context.Context, i int) (record.Record, error)
	// Save is called for every modified record
	Save(ctx context.Context, i int, rec record.Record) error
	// Commit is called once after the last candidate
	Commit(ctx context.Context) error
}

// CommitFunc receives the whole collection when a MemoryStore commits
type CommitFunc func(ctx context.Context, records []record.Record) error

// 🧠 MemoryStore runs over records that are already loaded. Mutation happens
// in place, so Save does nothing and Commit hands back every record,
// modified or not.
type MemoryStore struct {
	records []record.Record
	commit  CommitFunc
	label   func(i int) string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore wraps records; commit may be nil.
func NewMemoryStore(records []record.Record, commit CommitFunc) *MemoryStore {
	return &MemoryStore{
		records: records,
		commit:  commit,
		label:   func(i int) string { return fmt.Sprintf("record %d", i+1) },
	}
}

func (m *MemoryStore) Len() int { return len(m.records) }

func (m *MemoryStore) Label(i int) string { return m.label(i) }

// Records returns the backing slice
func (m *MemoryStore) Records() []record.Record { return m.records }

func (m *MemoryStore) Load(ctx context.Context, i int) (record.Record, error) {
	return m.records[i], nil
}

func (m *MemoryStore) Save(ctx context.Context, i int, rec record.Record) error {
	return nil
}

func (m *MemoryStore) Commit(ctx context.Context) error {
	if m.commit == nil {
		return nil
	}
	if err := m.commit(ctx, m.records); err != nil {
		return errors.Errorf("writing back records: %w", err)
	}
	return nil
}

// writeFileAtomic replaces path through a temp file and rename, keeping the
// existing permissions when the file is already there
func writeFileAtomic(path string, content []byte) error {
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}
