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
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger prints run banners and summaries with pterm
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📊 LogSummary prints the run summary, one banner line per message line
func (u *UserLogger) LogSummary(message string, errored int) {
	printer := pterm.Success.WithPrefix(pterm.Prefix{Text: "📦"})
	if errored > 0 {
		printer = pterm.Warning.WithPrefix(pterm.Prefix{Text: "📦"})
	}
	for _, line := range strings.Split(message, "\n") {
		printer.Println(line)
	}
	u.log.Info().Int("errored", errored).Msg(message)
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
		return
	}
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
		pterm.Error.Println(err)
		u.log.Error().Err(err).Msg(description)
		return
	}
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
	u.log.Warn().Msg(description)
}

// 📈 ProgressBar tracks records handled during a run. A nil bar is a no-op.
type ProgressBar struct {
	bar *pterm.ProgressbarPrinter
}

// 🏭 StartProgressBar starts a bar over total records, or returns a no-op bar
// when disabled or there is nothing to track
func (u *UserLogger) StartProgressBar(title string, total int, enabled bool) *ProgressBar {
	if !enabled || total == 0 {
		return &ProgressBar{}
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		u.log.Debug().Err(err).Msg("progress bar unavailable")
		return &ProgressBar{}
	}
	return &ProgressBar{bar: bar}
}

// Increment advances the bar by one record
func (p *ProgressBar) Increment(label string) {
	if p.bar == nil {
		return
	}
	p.bar.UpdateTitle(label)
	p.bar.Increment()
}

// Stop removes the bar
func (p *ProgressBar) Stop() {
	if p.bar == nil {
		return
	}
	_, _ = p.bar.Stop()
}
