// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package table renders the controller's aligned, color-coded status
// output: one bold service name per row, followed by colored fields
// separated by a muted pipe.
package table

import (
	"fmt"
	"strings"
)

// ANSI color codes matching the fixed palette used throughout the
// controller's output: red for failure, green for healthy/success,
// yellow for a benign or already-applied state, bold for the row label.
const (
	Red    = "\x1b[1;31m"
	Green  = "\x1b[1;32m"
	Yellow = "\x1b[1;33m"
	Bold   = "\x1b[1;37m"
	muted  = "\x1b[2;37m"
	reset  = "\x1b[0m"
)

// Table accumulates rows of colored fields and renders them with each
// column padded to the width of its widest entry.
type Table struct {
	rows [][]string
	cols []int
	mult int
}

// New returns an empty table.
func New() *Table {
	return &Table{mult: 1}
}

func (t *Table) trackWidth(col, width int) {
	for len(t.cols) <= col {
		t.cols = append(t.cols, 0)
	}
	if t.cols[col] < width {
		t.cols[col] = width
	}
}

// First starts a new row with txt as its bold-rendered label, typically a
// service name.
func (t *Table) First(txt string) *Table {
	t.rows = append(t.rows, nil)
	return t.Field(txt, Bold)
}

// PPFirst starts a new row whose label is rendered as three muted/bold/muted
// segments, used by check's "<confdir>/<name>.toml" rows.
func (t *Table) PPFirst(pre, txt, post string) *Table {
	t.mult = 3
	t.rows = append(t.rows, nil)
	rendered := muted + pre + reset + Bold + txt + reset + muted + post + reset
	i := len(t.rows) - 1
	t.rows[i] = append(t.rows[i], rendered)
	t.trackWidth(0, len(pre)+len(txt)+len(post))
	return t
}

// Field appends a colored field to the current row.
func (t *Table) Field(txt, color string) *Table {
	i := len(t.rows) - 1
	rendered := color + txt + reset
	t.rows[i] = append(t.rows[i], rendered)
	t.trackWidth(len(t.rows[i])-1, len(txt))
	return t
}

// Empty appends num blank bold fields, used to keep status rows aligned
// when a service has no further fields to report.
func (t *Table) Empty(num int) *Table {
	for i := 0; i < num; i++ {
		t.Field("", Bold)
	}
	return t
}

// Render returns the accumulated table as a single string, without
// printing it, so callers can capture output in tests.
func (t *Table) Render() string {
	var b strings.Builder
	b.WriteByte('\n')

	for _, row := range t.rows {
		if len(row) == 0 {
			continue
		}
		indent := t.cols[0] + 11*t.mult
		fmt.Fprintf(&b, "  %-*s", indent, row[0])

		for j := 1; j < len(row); j++ {
			indent := t.cols[j] + 11
			fmt.Fprintf(&b, " %s|%s %-*s", muted, reset, indent, row[j])
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// Print writes the rendered table to stdout.
func (t *Table) Print() {
	fmt.Print(t.Render())
}

// PrintErr renders a single-row, single-field error table: the label in
// bold followed by txt in red.
func PrintErr(label, txt string) {
	New().First(label).Field(txt, Red).Print()
}

// LogBold prints a "<label> <txt> ..." progress line, used for the
// start-all/stop-all loop.
func LogBold(label, txt string) {
	fmt.Printf("%s%s%s %s%s%s %s...%s\n", muted, label, reset, Bold, txt, reset, muted, reset)
}
