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
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/pkbatch/pkg/record"
	"gitlab.com/tozd/go/errors"
)

// DefaultInclude matches every file below the folder root
const DefaultInclude = "**/*"

// 📁 FolderStore runs over individual record files below a root directory.
// Only modified files are rewritten.
type FolderStore struct {
	root  string
	files []string // slash separated, relative to root
}

var _ Store = (*FolderStore)(nil)

// 🏭 OpenFolder collects the regular files below root that match any of the
// include patterns, in lexical order. No patterns means DefaultInclude.
func OpenFolder(ctx context.Context, root string, include ...string) (*FolderStore, error) {
	if len(include) == 0 {
		include = []string{DefaultInclude}
	}
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid include pattern %q", pattern)
		}
	}

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("opening folder: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("opening folder: %s is not a directory", root)
	}

	s := &FolderStore{root: root}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Errorf("relative path: %w", err)
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range include {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				s.files = append(s.files, rel)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking folder: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("root", root).Strs("include", include).Int("files", len(s.files)).Msg("opened folder")
	return s, nil
}

// getAbsPath returns the on-disk path of a candidate
func (s *FolderStore) getAbsPath(i int) string {
	return filepath.Join(s.root, filepath.FromSlash(s.files[i]))
}

func (s *FolderStore) Len() int { return len(s.files) }

func (s *FolderStore) Label(i int) string { return s.files[i] }

// Files returns the candidate paths relative to the root
func (s *FolderStore) Files() []string {
	return append([]string(nil), s.files...)
}

// Load screens the file by size before reading it, so files that cannot be
// records are never decoded.
func (s *FolderStore) Load(ctx context.Context, i int) (record.Record, error) {
	path := s.getAbsPath(i)
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Errorf("checking %s: %w", s.files[i], err)
	}
	if !record.IsRecordSize(info.Size()) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", s.files[i], err)
	}
	e, err := record.Decode(data)
	if err != nil {
		return nil, errors.Errorf("decoding %s: %w", s.files[i], err)
	}
	return e, nil
}

func (s *FolderStore) Save(ctx context.Context, i int, rec record.Record) error {
	if err := writeFileAtomic(s.getAbsPath(i), rec.Bytes()); err != nil {
		return errors.Errorf("writing %s: %w", s.files[i], err)
	}
	return nil
}

// Commit does nothing; every modified file was written by Save.
func (s *FolderStore) Commit(ctx context.Context) error {
	return nil
}
