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
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/pkbatch/pkg/record"
	"github.com/walteh/pkbatch/pkg/script"
	"gitlab.com/tozd/go/errors"
)

const (
	// FormatAll lists properties every format has
	FormatAll = "all"
	// FormatAny lists properties at least one format has
	FormatAny = "any"
)

// propertyNames returns the property list selected by --format
func propertyNames(format string) ([]string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatAll:
		return record.Default.Common(), nil
	case FormatAny:
		return record.Default.Any(), nil
	}
	f, err := record.ParseFormat(format)
	if err != nil {
		return nil, errors.Errorf("format must be %s, %s or a record format: %w", FormatAll, FormatAny, err)
	}
	return record.Default.Properties(f), nil
}

// propertyTable renders which formats carry each property
func propertyTable(names []string) (string, error) {
	header := []string{"property"}
	for _, f := range record.Formats() {
		header = append(header, f.String())
	}
	header = append(header, script.RandomValue)

	data := pterm.TableData{header}
	for _, name := range names {
		row := []string{name}
		random := false
		for _, f := range record.Formats() {
			mark := ""
			if record.Default.Has(f, name) {
				mark = "✓"
			}
			random = random || record.Default.Randomizable(f, name)
			row = append(row, mark)
		}
		if random {
			row = append(row, "✓")
		} else {
			row = append(row, "")
		}
		data = append(data, row)
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// NewPropsCmd creates a new props command
func NewPropsCmd() *cobra.Command {
	var format, as, appendTo string
	var table bool

	cmd := &cobra.Command{
		Use:   "props",
		Short: "List property names as instruction templates",
		Long: `Props prints one instruction template per property name, ready to be
filled in and pasted into a script. --format all lists the properties every
format has, --format any lists those at least one format has.`,
		Example: `  pkbatch props --format all --as equal
  pkbatch props --format pk6 --append edits.txt
  pkbatch props --table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := propertyNames(format)
			if err != nil {
				return err
			}
			req, err := script.ParseRequirement(as)
			if err != nil {
				return err
			}

			if table {
				out, err := propertyTable(names)
				if err != nil {
					return errors.Errorf("rendering table: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}

			if appendTo != "" {
				return appendTemplates(appendTo, req, names)
			}

			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), script.Template(req, name))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatAny, "all, any, pk3, pk4, pk5 or pk6")
	cmd.Flags().StringVar(&as, "as", "set", "template kind: set, equal or not-equal")
	cmd.Flags().StringVar(&appendTo, "append", "", "append the templates to this script file")
	cmd.Flags().BoolVar(&table, "table", false, "show which formats carry each property")
	cmd.MarkFlagsMutuallyExclusive("table", "append")

	return cmd
}

// appendTemplates adds one template line per name to the script at path
func appendTemplates(path string, req script.Requirement, names []string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Errorf("reading script: %w", err)
	}

	text := string(data)
	for _, name := range names {
		text = script.Append(text, script.Template(req, name))
	}

	if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
		return errors.Errorf("writing script: %w", err)
	}
	return nil
}
