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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml_folder",
			file: ".pkbatch.yaml",
			config: `
source:
  folder: saves/pkm
  include:
    - "**/*.pk6"
instructions:
  - "=Species=25"
  - ".Level=50"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "folder", cfg.Mode(), "mode should be folder")
				assert.Equal(t, filepath.Join("saves", "pkm"), cfg.Source.Folder, "folder should match")
				assert.Equal(t, []string{"**/*.pk6"}, cfg.Source.Include, "include should match")
				assert.Equal(t, []string{"=Species=25", ".Level=50"}, cfg.Instructions, "instructions should match")
			},
		},
		{
			name: "json_box",
			file: "run.json",
			config: `{
	"source": {"box": "box.bin", "format": "PK6"},
	"instructions": [".HeldItem=4"]
}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "box", cfg.Mode(), "mode should be box")
				assert.Equal(t, "box.bin", cfg.Source.Box, "box should match")
				assert.Equal(t, "box box.bin (pk6) <- 1 instructions", cfg.String())
			},
		},
		{
			name: "hcl_with_rand",
			file: "run.hcl",
			config: `
source {
  box    = "box.bin"
  format = "pk3"
}
instructions = ["!IsEgg=true", ".PID=${rand}"]
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "box", cfg.Mode())
				assert.Equal(t, []string{"!IsEgg=true", ".PID=$rand"}, cfg.Instructions, "rand should expand to the random token")
			},
		},
		{
			name: "toml_folder",
			file: ".pkbatch.toml",
			config: `
script_file = "edits.txt"

[source]
folder = "saves"
include = ["*.pk3", "*.pk4"]
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "folder", cfg.Mode(), "mode should be folder")
				assert.Equal(t, []string{"*.pk3", "*.pk4"}, cfg.Source.Include, "include should match")
				assert.Equal(t, "folder saves <- edits.txt", cfg.String())
			},
		},
		{
			name:        "unknown_toml_field",
			file:        "run.toml",
			config:      "force = true\n",
			wantErr:     true,
			errContains: "unknown field",
		},
		{
			name:   "no_source",
			file:   "run.yml",
			config: "script_file: edits.txt\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "", cfg.Mode(), "mode should be empty")
				assert.Equal(t, "no source <- edits.txt", cfg.String())
			},
		},
		{
			name:        "unknown_yaml_field",
			file:        "run.yaml",
			config:      "source:\n  folder: saves\nforce: true\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_json_field",
			file:        "run.json",
			config:      `{"source": {"folder": "saves"}, "async": true}`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name:        "bad_hcl",
			file:        "run.hcl",
			config:      "source {",
			wantErr:     true,
			errContains: "parsing HCL",
		},
		{
			name:        "box_and_folder",
			file:        "run.yaml",
			config:      "source:\n  box: box.bin\n  format: pk6\n  folder: saves\n",
			wantErr:     true,
			errContains: "exclusive",
		},
		{
			name:        "box_without_format",
			file:        "run.yaml",
			config:      "source:\n  box: box.bin\n",
			wantErr:     true,
			errContains: "source.format is required",
		},
		{
			name:        "box_with_unknown_format",
			file:        "run.yaml",
			config:      "source:\n  box: box.bin\n  format: pk9\n",
			wantErr:     true,
			errContains: "source.format",
		},
		{
			name:        "script_file_and_instructions",
			file:        "run.yaml",
			config:      "script_file: a.txt\ninstructions: [\".Level=5\"]\n",
			wantErr:     true,
			errContains: "script_file and instructions",
		},
		{
			name:        "unsupported_extension",
			file:        "run.ini",
			config:      "",
			wantErr:     true,
			errContains: "unsupported file extension",
		},
	}

	ctx := zerolog.New(os.Stderr).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create temporary config file
			configPath := filepath.Join(t.TempDir(), tt.file)
			err := os.WriteFile(configPath, []byte(tt.config), 0644)
			require.NoError(t, err, "writing config file should succeed")

			// Load config
			cfg, err := LoadConfig(ctx, configPath)
			if tt.wantErr {
				require.Error(t, err, "LoadConfig should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "LoadConfig should succeed")
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidateWrapsSentinel(t *testing.T) {
	cfg := &Config{Source: &Source{Box: "a.bin", Folder: "saves"}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig), "error should wrap ErrInvalidConfig")
}

func TestLinesFromScriptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "edits.txt"), []byte("=Species=25\r\n.Level=50\n"), 0644))
	configPath := filepath.Join(dir, ".pkbatch.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("source:\n  folder: saves\nscript_file: edits.txt\n"), 0644))

	cfg, err := LoadConfig(context.Background(), configPath)
	require.NoError(t, err)

	lines, err := cfg.Lines()
	require.NoError(t, err, "script file should resolve next to the config")
	assert.Equal(t, []string{"=Species=25", ".Level=50"}, lines, "lines should match")
	assert.Equal(t, filepath.Join(dir, "saves"), cfg.SourcePath(), "source should resolve next to the config")
}

func TestLinesMissingScriptFile(t *testing.T) {
	cfg := &Config{ScriptFile: filepath.Join(t.TempDir(), "missing.txt")}
	_, err := cfg.Lines()
	assert.Error(t, err, "missing script file should fail")
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", Find(dir), "empty folder has no config")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pkbatch.hcl"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pkbatch.yaml"), []byte(""), 0644))
	assert.Equal(t, filepath.Join(dir, ".pkbatch.yaml"), Find(dir), "yaml should win over hcl")
}
