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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	recordIndent = 4  // spaces to indent record entries
	labelWidth   = 35 // Base width for the record label
	formatWidth  = 6  // Width for record format
	statusWidth  = 10 // Width for status text
)

// 🎯 RecordOperation is the outcome of one record for logging
type RecordOperation struct {
	Label      string // File path or box slot
	Format     string // Record format (pk3..pk6)
	Status     string // Outcome text
	IsModified bool   // At least one property was set
	IsFiltered bool   // A filter excluded the record
	IsSkipped  bool   // Empty slot, bad checksum or not a record
	IsErrored  bool   // Every property set failed
}

// 📦 RunOperation describes a batch run for logging
type RunOperation struct {
	Source     string // Folder or box file
	Mode       string // folder or box
	Candidates int    // Number of candidates
	Filters    int    // Number of filter lines
	Mutations  int    // Number of property lines
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentRun *RunOperation
	records    []RecordOperation
	verbose    bool
}

// 🏭 New creates a new logger. Unless verbose, only modified and errored
// records are printed to the console.
func New(console io.Writer, level zerolog.Level, verbose bool) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		verbose: verbose,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// WithContext returns a copy of ctx carrying l
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 🎯 FromContext returns the logger carried by ctx. Without one the console
// output is dropped and messages only reach the zerolog logger of ctx.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return l
	}
	return &Logger{zlog: *zerolog.Ctx(ctx), console: io.Discard}
}

// 📝 formatRecordOperation formats a record outcome for display
func (l *Logger) formatRecordOperation(op RecordOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsErrored:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsModified:
		symbol = '⟳'
		symbolColor = color.FgBlue
	case op.IsFiltered:
		symbol = '•'
		symbolColor = color.FgCyan
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", recordIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", labelWidth, op.Label),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", formatWidth, op.Format)),
		fmt.Sprintf("%-*s", statusWidth, op.Status))
}

// 📝 LogRecordOperation logs the outcome of one record
func (l *Logger) LogRecordOperation(ctx context.Context, op RecordOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, op)

	if l.verbose || op.IsModified || op.IsErrored {
		fmt.Fprintln(l.console, l.formatRecordOperation(op))
	}

	l.zlog.Debug().
		Str("record", op.Label).
		Str("format", op.Format).
		Str("status", op.Status).
		Bool("is_modified", op.IsModified).
		Bool("is_filtered", op.IsFiltered).
		Bool("is_skipped", op.IsSkipped).
		Bool("is_errored", op.IsErrored).
		Msg("record operation")
}

// 📝 StartRun starts a new batch run
func (l *Logger) StartRun(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentRun = &op
	l.records = nil

	fmt.Fprintf(l.console, "[editing %s]\n",
		color.New(color.FgCyan).Sprint(op.Source))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Mode),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprintf("%d candidates, %d filters, %d instructions", op.Candidates, op.Filters, op.Mutations))

	l.zlog.Info().
		Str("source", op.Source).
		Str("mode", op.Mode).
		Int("candidates", op.Candidates).
		Int("filters", op.Filters).
		Int("mutations", op.Mutations).
		Msg("starting batch run")
}

// 📝 EndRun ends the current batch run
func (l *Logger) EndRun(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentRun == nil {
		return
	}

	modified := 0
	for _, r := range l.records {
		if r.IsModified {
			modified++
		}
	}

	l.zlog.Info().
		Str("source", l.currentRun.Source).
		Int("records", len(l.records)).
		Int("modified", modified).
		Msg("batch run complete")

	l.currentRun = nil
	l.records = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("pkbatch")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 🔔 notice is a one line console message
type notice struct {
	symbol string
	color  color.Attribute
	level  zerolog.Level
}

var (
	noticeInfo    = notice{"ℹ️ ", color.FgCyan, zerolog.InfoLevel}
	noticeSuccess = notice{"✅", color.FgGreen, zerolog.InfoLevel}
	noticeWarning = notice{"⚠️ ", color.FgYellow, zerolog.WarnLevel}
	noticeError   = notice{"❌", color.FgRed, zerolog.ErrorLevel}
)

// notify prints the message under the notice symbol and mirrors it to zerolog
func (l *Logger) notify(n notice, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %s\n", n.symbol, color.New(n.color).Sprint(msg))
	l.zlog.WithLevel(n.level).Msg(msg)
}

func (l *Logger) Infof(format string, args ...any) { l.notify(noticeInfo, format, args...) }

func (l *Logger) Successf(format string, args ...any) { l.notify(noticeSuccess, format, args...) }

func (l *Logger) Warningf(format string, args ...any) { l.notify(noticeWarning, format, args...) }

func (l *Logger) Errorf(format string, args ...any) { l.notify(noticeError, format, args...) }
