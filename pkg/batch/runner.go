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
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/pkbatch/pkg/record"
	"github.com/walteh/pkbatch/pkg/script"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrBusy is returned when a runner is asked to start a second run
var ErrBusy = errors.New("currently executing instruction list")

// 📈 Progress is sent once per candidate, after it has been handled
type Progress struct {
	Index    int    // 0-based candidate index
	Total    int    // number of candidates
	Label    string // store label of the candidate
	Format   record.Format
	Result   Result
	Screened bool  // the store did not recognise the candidate as a record
	Err      error // load or save failure behind an errored result
}

// 📋 Summary counts the outcome of a run. Processed excludes skipped and
// screened candidates.
type Summary struct {
	Total     int
	Processed int
	Modified  int
	Errored   int
}

// Message formats the summary for the user.
func (s *Summary) Message() string {
	msg := fmt.Sprintf("Modified %d/%d files.", s.Modified, s.Processed)
	if s.Errored > 0 {
		msg += fmt.Sprintf("\n%d files ignored due to an internal error.", s.Errored)
	}
	return msg
}

// 🏃 Runner executes scripts over stores, one run at a time
type Runner struct {
	processor *Processor
	running   sync.Mutex
}

// 🏗️ NewRunner creates a runner around processor
func NewRunner(processor *Processor) *Runner {
	return &Runner{processor: processor}
}

// Run executes s over every candidate of store on the calling goroutine.
// When progress is non-nil one value is sent per candidate, so the caller
// must drain it. A run cannot be cancelled once it has started.
func (r *Runner) Run(ctx context.Context, store Store, s *script.Script, progress chan<- Progress) (*Summary, error) {
	if !r.running.TryLock() {
		return nil, ErrBusy
	}
	defer r.running.Unlock()

	return r.run(ctx, store, s, progress)
}

// 🔄 run is the sequential record loop shared by Run and Start
func (r *Runner) run(ctx context.Context, store Store, s *script.Script, progress chan<- Progress) (*Summary, error) {
	if s == nil {
		return nil, errors.New("script is required")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	total := store.Len()
	sum := &Summary{Total: total}

	logger.Debug().
		Int("candidates", total).
		Int("filters", len(s.Filters)).
		Int("mutations", len(s.Mutations)).
		Msg("starting batch run")

	for i := 0; i < total; i++ {
		p := r.handle(ctx, store, s, i, sum)
		if progress != nil {
			progress <- p
		}
	}

	if err := store.Commit(ctx); err != nil {
		return sum, errors.Errorf("committing store: %w", err)
	}

	logger.Debug().
		Int("processed", sum.Processed).
		Int("modified", sum.Modified).
		Int("errored", sum.Errored).
		Msg("batch run complete")

	return sum, nil
}

// handle loads, processes and saves one candidate, folding the outcome into sum
func (r *Runner) handle(ctx context.Context, store Store, s *script.Script, i int, sum *Summary) Progress {
	logger := zerolog.Ctx(ctx)
	p := Progress{Index: i, Total: sum.Total, Label: store.Label(i)}

	rec, err := store.Load(ctx, i)
	if err != nil {
		logger.Warn().Err(err).Str("record", p.Label).Msg("unable to load record")
		sum.Processed++
		sum.Errored++
		p.Result = ResultErrored
		p.Err = err
		return p
	}
	if rec == nil {
		p.Result = ResultSkipped
		p.Screened = true
		return p
	}

	p.Format = rec.Format()
	p.Result = r.processor.Process(ctx, rec, s)
	if p.Result != ResultSkipped {
		sum.Processed++
	}

	switch p.Result {
	case ResultModified:
		if err := store.Save(ctx, i, rec); err != nil {
			logger.Warn().Err(err).Str("record", p.Label).Msg("unable to save record")
			sum.Errored++
			p.Result = ResultErrored
			p.Err = err
			return p
		}
		sum.Modified++
	case ResultErrored:
		sum.Errored++
	}

	logger.Trace().Str("record", p.Label).Stringer("result", p.Result).Msg("record handled")
	return p
}

// ⚡ Job is a run executing on a background worker
type Job struct {
	group    errgroup.Group
	progress chan Progress
	summary  *Summary
}

// Start launches the run on a single background worker and returns at once.
// Progress is buffered for every candidate, so the worker never waits on a
// slow observer and the channel may be ignored.
func (r *Runner) Start(ctx context.Context, store Store, s *script.Script) (*Job, error) {
	if !r.running.TryLock() {
		return nil, ErrBusy
	}

	j := &Job{progress: make(chan Progress, store.Len())}
	j.group.Go(func() error {
		defer close(j.progress)
		defer r.running.Unlock()

		sum, err := r.run(ctx, store, s, j.progress)
		j.summary = sum
		if err != nil {
			return errors.Errorf("running batch: %w", err)
		}
		return nil
	})
	return j, nil
}

// Progress returns the per-candidate updates; it is closed when the run ends.
func (j *Job) Progress() <-chan Progress {
	return j.progress
}

// Wait blocks until the run ends.
func (j *Job) Wait() (*Summary, error) {
	err := j.group.Wait()
	return j.summary, err
}
