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
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/pkbatch/pkg/record"
	"github.com/walteh/pkbatch/pkg/script"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

func getProp(t *testing.T, rec record.Record, name string) string {
	t.Helper()
	v, err := record.Default.Get(rec, name)
	require.NoError(t, err, "getting %s should succeed", name)
	return v
}

func TestRunEndToEnd(t *testing.T) {
	a := newRecord(t, record.FormatPK6, map[string]string{"Species": "1"})
	b := newRecord(t, record.FormatPK6, map[string]string{"Species": "0"})
	c := newRecord(t, record.FormatPK6, map[string]string{"Species": "25"})

	var committed []record.Record
	store := NewMemoryStore([]record.Record{a, b, c}, func(ctx context.Context, records []record.Record) error {
		committed = records
		return nil
	})

	runner := NewRunner(NewProcessor(record.Default))
	sum, err := runner.Run(testContext(t), store, mustParse(t, "=Species=1\n.Level=50"), nil)
	require.NoError(t, err, "run should succeed")

	assert.Equal(t, &Summary{Total: 3, Processed: 2, Modified: 1, Errored: 0}, sum, "summary should match")
	assert.Equal(t, "Modified 1/2 files.", sum.Message(), "message should match")
	assert.Equal(t, "50", getProp(t, a, "Level"), "A should be modified")
	assert.Equal(t, "0", getProp(t, b, "Level"), "B should be untouched")
	assert.Equal(t, "0", getProp(t, c, "Level"), "C should be untouched")
	assert.Len(t, committed, 3, "every record should be written back")
}

func TestRunRejectsMalformedScript(t *testing.T) {
	a := newRecord(t, record.FormatPK6, map[string]string{"Species": "1"})
	before := append([]byte(nil), a.Bytes()...)

	_, err := script.Parse("Species=1\n.Level=50")
	require.Error(t, err, "script without a prefix should be rejected")
	assert.True(t, errors.Is(err, script.ErrFormat), "error should be a format error")

	runner := NewRunner(NewProcessor(record.Default))
	_, err = runner.Run(testContext(t), NewMemoryStore([]record.Record{a}, nil), &script.Script{}, nil)
	require.Error(t, err, "a script without mutations should be rejected")
	assert.True(t, errors.Is(err, script.ErrNoMutations))
	assert.Equal(t, before, a.Bytes(), "no record should be touched")
}

func TestRunCountsErrors(t *testing.T) {
	a := newRecord(t, record.FormatPK3, map[string]string{"Species": "25"})
	b := newRecord(t, record.FormatPK3, map[string]string{"Species": "25"})
	require.NoError(t, record.Default.Set(b, "HeldItem", "1"))
	b.RefreshChecksum()

	runner := NewRunner(NewProcessor(record.Default))
	sum, err := runner.Run(testContext(t), NewMemoryStore([]record.Record{a, b}, nil), mustParse(t, "=HeldItem=1\n.Level=300"), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Processed, "both records should be processed")
	assert.Equal(t, 0, sum.Modified)
	assert.Equal(t, 1, sum.Errored, "the record that passed the filter should error")
	assert.Equal(t, "Modified 0/2 files.\n1 files ignored due to an internal error.", sum.Message())
}

func TestRunMissingFilterPropertyFilters(t *testing.T) {
	pk3 := newRecord(t, record.FormatPK3, map[string]string{"Species": "25"})
	pk6 := newRecord(t, record.FormatPK6, map[string]string{"Species": "25"})

	runner := NewRunner(NewProcessor(record.Default))
	progress := make(chan Progress, 2)
	sum, err := runner.Run(testContext(t), NewMemoryStore([]record.Record{pk3, pk6}, nil), mustParse(t, "!EncryptionConstant=1\n.Level=50"), progress)
	require.NoError(t, err)
	close(progress)

	var results []Result
	for p := range progress {
		results = append(results, p.Result)
	}
	assert.Equal(t, []Result{ResultFiltered, ResultModified}, results, "pk3 lacks the property and should be filtered")
	assert.Equal(t, 0, sum.Errored)
}

func TestRunIsIdempotent(t *testing.T) {
	records := []record.Record{
		newRecord(t, record.FormatPK4, map[string]string{"Species": "25", "Level": "3"}),
		newRecord(t, record.FormatPK5, map[string]string{"Species": "133"}),
		newRecord(t, record.FormatPK6, map[string]string{"Species": "0"}),
	}
	s := mustParse(t, "!Species=133\n.Level=50\n.HeldItem=7\n.IsEgg=false")
	runner := NewRunner(NewProcessor(record.Default))

	_, err := runner.Run(testContext(t), NewMemoryStore(records, nil), s, nil)
	require.NoError(t, err)
	first := snapshot(records)

	_, err = runner.Run(testContext(t), NewMemoryStore(records, nil), s, nil)
	require.NoError(t, err)
	assert.Equal(t, first, snapshot(records), "second run should not change anything")
}

func snapshot(records []record.Record) [][]byte {
	out := make([][]byte, len(records))
	for i, r := range records {
		out[i] = append([]byte(nil), r.Bytes()...)
	}
	return out
}

func TestRunRandomIdentifiers(t *testing.T) {
	rec := newRecord(t, record.FormatPK6, map[string]string{"Species": "25"})
	s := mustParse(t, ".PID=$rand\n.EncryptionConstant=$rand")
	runner := NewRunner(NewProcessor(record.Default))

	var pids []string
	for i := 0; i < 2; i++ {
		sum, err := runner.Run(testContext(t), NewMemoryStore([]record.Record{rec}, nil), s, nil)
		require.NoError(t, err)
		require.Equal(t, 1, sum.Modified)

		pid := getProp(t, rec, "PID")
		_, err = strconv.ParseUint(pid, 10, 32)
		require.NoError(t, err, "pid should be a 32-bit number")
		pids = append(pids, pid)
	}
	assert.NotEqual(t, pids[0], pids[1], "consecutive runs should draw different values")
}

// errStore fails to load every candidate
type errStore struct {
	*MemoryStore
}

func (s errStore) Load(ctx context.Context, i int) (record.Record, error) {
	return nil, errors.New("disk on fire")
}

func TestRunLoadErrorsAreCounted(t *testing.T) {
	store := errStore{NewMemoryStore(make([]record.Record, 2), nil)}
	runner := NewRunner(NewProcessor(record.Default))

	sum, err := runner.Run(testContext(t), store, mustParse(t, ".Level=50"), nil)
	require.NoError(t, err, "load errors should not abort the run")
	assert.Equal(t, &Summary{Total: 2, Processed: 2, Errored: 2}, sum)
}

// saveErrStore fails to save every candidate
type saveErrStore struct {
	*MemoryStore
}

func (s saveErrStore) Save(ctx context.Context, i int, rec record.Record) error {
	return errors.New("read only")
}

func TestRunReportsStoreErrors(t *testing.T) {
	rec := newRecord(t, record.FormatPK6, map[string]string{"Species": "25"})
	runner := NewRunner(NewProcessor(record.Default))

	tests := []struct {
		name    string
		store   Store
		wantErr string
	}{
		{name: "load", store: errStore{NewMemoryStore([]record.Record{rec}, nil)}, wantErr: "disk on fire"},
		{name: "save", store: saveErrStore{NewMemoryStore([]record.Record{rec}, nil)}, wantErr: "read only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := make(chan Progress, 1)
			sum, err := runner.Run(testContext(t), tt.store, mustParse(t, ".Level=50"), progress)
			require.NoError(t, err)
			assert.Equal(t, 1, sum.Errored)

			p := <-progress
			assert.Equal(t, ResultErrored, p.Result)
			require.Error(t, p.Err, "the failure should travel with the update")
			assert.Contains(t, p.Err.Error(), tt.wantErr)
		})
	}

	t.Run("clean_run", func(t *testing.T) {
		progress := make(chan Progress, 1)
		_, err := runner.Run(testContext(t), NewMemoryStore([]record.Record{rec}, nil), mustParse(t, ".Level=50"), progress)
		require.NoError(t, err)
		assert.NoError(t, (<-progress).Err)
	})
}

func TestRunCommitError(t *testing.T) {
	rec := newRecord(t, record.FormatPK6, map[string]string{"Species": "25"})
	store := NewMemoryStore([]record.Record{rec}, func(ctx context.Context, records []record.Record) error {
		return errors.New("read only")
	})

	sum, err := NewRunner(NewProcessor(record.Default)).Run(testContext(t), store, mustParse(t, ".Level=50"), nil)
	require.Error(t, err, "commit failure should be reported")
	require.NotNil(t, sum, "summary should still be returned")
	assert.Equal(t, 1, sum.Modified)
}

func TestMemoryStoreCommitsUnmodified(t *testing.T) {
	rec := newRecord(t, record.FormatPK6, map[string]string{"Species": "25"})
	calls := 0
	store := NewMemoryStore([]record.Record{rec}, func(ctx context.Context, records []record.Record) error {
		calls++
		assert.Len(t, records, 1)
		return nil
	})

	sum, err := NewRunner(NewProcessor(record.Default)).Run(testContext(t), store, mustParse(t, "=Species=1\n.Level=50"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Modified, "nothing should be modified")
	assert.Equal(t, 1, calls, "the collection should be written back anyway")
	assert.Equal(t, []record.Record{rec}, store.Records(), "records should be left in place")
}

// blockingStore holds every Load until release is closed
type blockingStore struct {
	*MemoryStore
	started chan struct{}
	release chan struct{}
}

func (s *blockingStore) Load(ctx context.Context, i int) (record.Record, error) {
	if i == 0 {
		close(s.started)
	}
	<-s.release
	return s.MemoryStore.Load(ctx, i)
}

func TestStartRejectsConcurrentRuns(t *testing.T) {
	rec := newRecord(t, record.FormatPK6, map[string]string{"Species": "25"})
	store := &blockingStore{
		MemoryStore: NewMemoryStore([]record.Record{rec}, nil),
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	s := mustParse(t, ".Level=50")
	runner := NewRunner(NewProcessor(record.Default))

	job, err := runner.Start(testContext(t), store, s)
	require.NoError(t, err, "first start should succeed")
	<-store.started

	_, err = runner.Start(testContext(t), store, s)
	assert.True(t, errors.Is(err, ErrBusy), "second start should be busy")
	_, err = runner.Run(testContext(t), store, s, nil)
	assert.True(t, errors.Is(err, ErrBusy), "run during a job should be busy")

	close(store.release)
	sum, err := job.Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Modified)

	_, err = runner.Run(testContext(t), NewMemoryStore([]record.Record{rec}, nil), s, nil)
	assert.NoError(t, err, "runner should accept a new run after the job ends")
}

func TestStartStreamsProgress(t *testing.T) {
	records := []record.Record{
		newRecord(t, record.FormatPK6, map[string]string{"Species": "25"}),
		newRecord(t, record.FormatPK6, nil),
		newRecord(t, record.FormatPK6, map[string]string{"Species": "1"}),
	}
	runner := NewRunner(NewProcessor(record.Default))

	job, err := runner.Start(testContext(t), NewMemoryStore(records, nil), mustParse(t, "=Species=25\n.Level=50"))
	require.NoError(t, err)

	var got []Progress
	for p := range job.Progress() {
		got = append(got, p)
	}
	sum, err := job.Wait()
	require.NoError(t, err)

	require.Len(t, got, 3, "one update per record")
	for i, p := range got {
		assert.Equal(t, i, p.Index, "updates should arrive in order")
		assert.Equal(t, 3, p.Total)
		assert.Equal(t, "record "+strconv.Itoa(i+1), p.Label)
		assert.Equal(t, record.FormatPK6, p.Format)
	}
	assert.Equal(t, []Result{ResultModified, ResultSkipped, ResultFiltered}, []Result{got[0].Result, got[1].Result, got[2].Result})
	assert.Equal(t, "Modified 1/2 files.", sum.Message())
}

func TestStartWithoutObserver(t *testing.T) {
	records := make([]record.Record, 64)
	for i := range records {
		records[i] = newRecord(t, record.FormatPK4, map[string]string{"Species": "25"})
	}

	job, err := NewRunner(NewProcessor(record.Default)).Start(testContext(t), NewMemoryStore(records, nil), mustParse(t, ".Level=50"))
	require.NoError(t, err)

	sum, err := job.Wait()
	require.NoError(t, err, "an undrained progress channel should not block the worker")
	assert.Equal(t, 64, sum.Modified)
	assert.True(t, bytes.Equal(records[0].Bytes(), records[63].Bytes()), "records should be edited alike")
}
