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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/walteh/pkbatch/pkg/record"
	"gitlab.com/tozd/go/errors"
)

var ErrInvalidConfig = errors.New("invalid config")

// 📦 Source selects the records a run edits
type Source struct {
	Box     string   `json:"box,omitempty" yaml:"box,omitempty" toml:"box" hcl:"box,optional"`                 // Box dump file
	Format  string   `json:"format,omitempty" yaml:"format,omitempty" toml:"format" hcl:"format,optional"`     // Format of the box dump
	Folder  string   `json:"folder,omitempty" yaml:"folder,omitempty" toml:"folder" hcl:"folder,optional"`     // Folder of record files
	Include []string `json:"include,omitempty" yaml:"include,omitempty" toml:"include" hcl:"include,optional"` // Glob patterns below Folder
}

// 📚 Config is the complete run configuration
type Config struct {
	Source       *Source  `json:"source,omitempty" yaml:"source,omitempty" toml:"source" hcl:"source,block"`
	ScriptFile   string   `json:"script_file,omitempty" yaml:"script_file,omitempty" toml:"script_file" hcl:"script_file,optional"`
	Instructions []string `json:"instructions,omitempty" yaml:"instructions,omitempty" toml:"instructions" hcl:"instructions,optional"`

	location string
}

// 🎯 Mode returns "box", "folder" or "" when no source is set
func (cfg *Config) Mode() string {
	switch {
	case cfg.Source == nil:
		return ""
	case cfg.Source.Box != "":
		return "box"
	case cfg.Source.Folder != "":
		return "folder"
	}
	return ""
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.ScriptFile != "" && len(cfg.Instructions) > 0 {
		return errors.Errorf("%w: script_file and instructions are exclusive", ErrInvalidConfig)
	}

	if cfg.Source == nil {
		return nil
	}

	src := cfg.Source
	if src.Box != "" && src.Folder != "" {
		return errors.Errorf("%w: source.box and source.folder are exclusive", ErrInvalidConfig)
	}
	if src.Box != "" {
		if src.Format == "" {
			return errors.Errorf("%w: source.format is required with source.box", ErrInvalidConfig)
		}
		if _, err := record.ParseFormat(src.Format); err != nil {
			return errors.Errorf("%w: source.format: %s", ErrInvalidConfig, err)
		}
		if len(src.Include) > 0 {
			return errors.Errorf("%w: source.include only applies to source.folder", ErrInvalidConfig)
		}
	}

	// Clean up paths
	if src.Box != "" {
		src.Box = filepath.Clean(src.Box)
	}
	if src.Folder != "" {
		src.Folder = filepath.Clean(src.Folder)
	}

	return nil
}

// 📝 Lines returns the instruction lines, reading script_file when set
func (cfg *Config) Lines() ([]string, error) {
	if cfg.ScriptFile == "" {
		return cfg.Instructions, nil
	}

	data, err := os.ReadFile(cfg.resolve(cfg.ScriptFile))
	if err != nil {
		return nil, errors.Errorf("reading script file: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return lines, nil
}

// 📂 SourcePath returns the box or folder path relative to the config file
func (cfg *Config) SourcePath() string {
	switch cfg.Mode() {
	case "box":
		return cfg.resolve(cfg.Source.Box)
	case "folder":
		return cfg.resolve(cfg.Source.Folder)
	}
	return ""
}

// resolve makes relative paths relative to the config file
func (cfg *Config) resolve(path string) string {
	if filepath.IsAbs(path) || cfg.location == "" {
		return path
	}
	return filepath.Join(filepath.Dir(cfg.location), path)
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	script := fmt.Sprintf("%d instructions", len(cfg.Instructions))
	if cfg.ScriptFile != "" {
		script = cfg.ScriptFile
	}
	switch cfg.Mode() {
	case "box":
		return fmt.Sprintf("box %s (%s) <- %s", cfg.Source.Box, strings.ToLower(cfg.Source.Format), script)
	case "folder":
		return fmt.Sprintf("folder %s <- %s", cfg.Source.Folder, script)
	}
	return "no source <- " + script
}
