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

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/pkbatch/cmd/pkbatch/opts"
	"github.com/walteh/pkbatch/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(opts *opts.RootOpts) *cobra.Command {
	var scriptFile string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate an instruction script without touching any record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "check").Logger().WithContext(cmd.Context())

			cfg, err := opts.LoadConfig(ctx)
			if err != nil {
				return err
			}
			if scriptFile != "" {
				abs, err := filepath.Abs(scriptFile)
				if err != nil {
					return errors.Errorf("resolving script path: %w", err)
				}
				cfg.ScriptFile = abs
				cfg.Instructions = nil
			}

			user := log.NewUserLogger(ctx)
			s, err := loadScript(cfg)
			if err != nil {
				user.LogValidation(false, "instruction script is invalid", err)
				return err
			}

			logger := log.New(cmd.OutOrStdout(), opts.Level(), false)
			ctx = logger.WithContext(ctx)
			if unknown := warnUnknown(ctx, s); unknown > 0 {
				user.LogValidation(false, fmt.Sprintf("%d properties match no record format", unknown), nil)
			} else {
				user.LogValidation(true, "instruction script is valid", nil)
			}
			logger.Successf("%d filters, %d instructions", len(s.Filters), len(s.Mutations))
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptFile, "script", "s", "", "instruction script file")

	return cmd
}
