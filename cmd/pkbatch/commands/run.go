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
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/pkbatch/cmd/pkbatch/opts"
	"github.com/walteh/pkbatch/pkg/batch"
	"github.com/walteh/pkbatch/pkg/config"
	"github.com/walteh/pkbatch/pkg/log"
	"github.com/walteh/pkbatch/pkg/record"
	"github.com/walteh/pkbatch/pkg/script"
	"gitlab.com/tozd/go/errors"
)

// ErrNoSource is returned when neither a box nor a folder was selected
var ErrNoSource = errors.New("no source: set --box or --folder")

// runFlags override the config file
type runFlags struct {
	scriptFile string
	box        string
	format     string
	folder     string
	include    []string
	verbose    bool
	noProgress bool
}

// apply copies the flags that were set onto cfg. Flag paths are relative to
// the working directory, so they are made absolute first.
func (f *runFlags) apply(cfg *config.Config) error {
	abs := func(path string) (string, error) {
		if path == "" {
			return "", nil
		}
		return filepath.Abs(path)
	}

	scriptFile, err := abs(f.scriptFile)
	if err != nil {
		return errors.Errorf("resolving script path: %w", err)
	}
	box, err := abs(f.box)
	if err != nil {
		return errors.Errorf("resolving box path: %w", err)
	}
	folder, err := abs(f.folder)
	if err != nil {
		return errors.Errorf("resolving folder path: %w", err)
	}

	if scriptFile != "" {
		cfg.ScriptFile = scriptFile
		cfg.Instructions = nil
	}

	if box != "" || folder != "" {
		cfg.Source = &config.Source{Box: box, Folder: folder, Format: f.format, Include: f.include}
		return nil
	}
	if cfg.Source != nil {
		if f.format != "" {
			cfg.Source.Format = f.format
		}
		if len(f.include) > 0 {
			cfg.Source.Include = f.include
		}
	}
	return nil
}

// NewRunCmd creates a new run command
func NewRunCmd(opts *opts.RootOpts) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply an instruction script to a box dump or a folder of records",
		Long: `Run edits every record of a box dump or a folder of record files.
It will:
1. Parse the instruction script and reject malformed lines
2. Skip empty slots and records with a bad checksum
3. Leave records that fail a filter untouched
4. Set every property line on the rest and write them back`,
		Example: `  pkbatch run --folder saves --include '**/*.pk6' --script edits.txt
  pkbatch run --box box.bin --format pk3 --script edits.txt
  pkbatch run -c .pkbatch.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "run").Logger().WithContext(cmd.Context())
			return runBatch(ctx, cmd, opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.scriptFile, "script", "s", "", "instruction script file")
	cmd.Flags().StringVar(&flags.box, "box", "", "box dump file to edit in memory")
	cmd.Flags().StringVar(&flags.format, "format", "", "record format of the box dump (pk3, pk4, pk5, pk6)")
	cmd.Flags().StringVar(&flags.folder, "folder", "", "folder of record files to edit")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "glob patterns of files below --folder")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "print every record, not only modified ones")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "hide the progress bar")
	cmd.MarkFlagsMutuallyExclusive("box", "folder")

	return cmd
}

// runBatch loads the config, applies the script and reports the summary
func runBatch(ctx context.Context, cmd *cobra.Command, opts *opts.RootOpts, flags *runFlags) error {
	cfg, err := opts.LoadConfig(ctx)
	if err != nil {
		return err
	}
	if err := flags.apply(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating options: %w", err)
	}

	s, err := loadScript(cfg)
	if err != nil {
		return err
	}

	logger := log.New(cmd.OutOrStdout(), opts.Level(), flags.verbose)
	ctx = logger.WithContext(ctx)
	user := log.NewUserLogger(ctx)
	warnUnknown(ctx, s)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}

	logger.Header("editing records")
	logger.StartRun(ctx, log.RunOperation{
		Source:     cfg.SourcePath(),
		Mode:       cfg.Mode(),
		Candidates: store.Len(),
		Filters:    len(s.Filters),
		Mutations:  len(s.Mutations),
	})
	if store.Len() == 0 {
		logger.Infof("no records found in %s", cfg.SourcePath())
	}

	runner := batch.NewRunner(batch.NewProcessor(record.Default))
	job, err := runner.Start(ctx, store, s)
	if err != nil {
		return errors.Errorf("starting run: %w", err)
	}

	bar := user.StartProgressBar("editing records", store.Len(), !flags.noProgress)
	for p := range job.Progress() {
		logProgress(ctx, p)
		bar.Increment(p.Label)
	}
	bar.Stop()

	sum, err := job.Wait()
	logger.EndRun(ctx)
	if sum != nil {
		logger.LogNewline()
		user.LogSummary(sum.Message(), sum.Errored)
	}
	if err != nil {
		logger.Errorf("records were not written back: %v", err)
		return errors.Errorf("writing records: %w", err)
	}
	return nil
}

// loadScript parses the configured instruction lines
func loadScript(cfg *config.Config) (*script.Script, error) {
	lines, err := cfg.Lines()
	if err != nil {
		return nil, err
	}
	s, err := script.ParseLines(lines)
	if err != nil {
		return nil, errors.Errorf("parsing instructions: %w", err)
	}
	return s, nil
}

// warnUnknown reports instruction names no format has and returns how many
func warnUnknown(ctx context.Context, s *script.Script) int {
	unknown := s.Unknown(record.Default.Known)
	for _, name := range unknown {
		log.FromContext(ctx).Warningf("unknown property %q, no record has it", name)
	}
	return len(unknown)
}

// openStore opens the configured box or folder
func openStore(ctx context.Context, cfg *config.Config) (batch.Store, error) {
	switch cfg.Mode() {
	case "box":
		f, err := record.ParseFormat(cfg.Source.Format)
		if err != nil {
			return nil, errors.Errorf("box format: %w", err)
		}
		store, err := batch.OpenBox(ctx, cfg.SourcePath(), f)
		if err != nil {
			return nil, errors.Errorf("opening box: %w", err)
		}
		return store, nil
	case "folder":
		store, err := batch.OpenFolder(ctx, cfg.SourcePath(), cfg.Source.Include...)
		if err != nil {
			return nil, errors.Errorf("opening folder: %w", err)
		}
		return store, nil
	}
	return nil, ErrNoSource
}

// logProgress prints one record line, plus the store failure behind it
func logProgress(ctx context.Context, p batch.Progress) {
	logger := log.FromContext(ctx)
	logger.LogRecordOperation(ctx, recordOperation(p))
	if p.Err != nil {
		logger.Errorf("%s: %v", p.Label, p.Err)
	}
}

// recordOperation converts a progress update for the console logger
func recordOperation(p batch.Progress) log.RecordOperation {
	op := log.RecordOperation{
		Label:      p.Label,
		Status:     p.Result.String(),
		IsModified: p.Result == batch.ResultModified,
		IsFiltered: p.Result == batch.ResultFiltered,
		IsSkipped:  p.Result == batch.ResultSkipped,
		IsErrored:  p.Result == batch.ResultErrored,
	}
	if p.Format != record.FormatUnknown {
		op.Format = p.Format.String()
	}
	if p.Screened {
		op.Status = "not a record"
	}
	return op
}
