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

package main

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/pkbatch/cmd/pkbatch/commands"
	"github.com/walteh/pkbatch/cmd/pkbatch/opts"
)

// newRootCmd builds the command tree around shared root options
func newRootCmd(o *opts.RootOpts, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkbatch",
		Short: "Batch edit save-data records with an instruction script",
		Long: `pkbatch applies a script of filter and property lines to a box dump or a
folder of record files. Filter lines start with = or !, property lines with a
dot, and $rand draws a random identifier.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := setupLogging(o, stderr).WithContext(cmd.Context())
			cmd.SetContext(ctx)
		},
	}

	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewRunCmd(o),
		commands.NewPropsCmd(),
		commands.NewCheckCmd(o),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "config file path (default: .pkbatch.{yaml,yml,json,toml,hcl})")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging(o *opts.RootOpts, stderr io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(o.Level())
	if o.Debug {
		pterm.EnableDebugMessages()
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
	return log
}

func workDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
