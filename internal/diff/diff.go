// Package diff renders side-by-side tables comparing a file with its tidied form
package diff

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
)

// ContextLines is the number of unchanged lines shown around each change
const ContextLines = 3

// Renderer turns two texts into human-readable diagnostic text
type Renderer interface {
	Render(got, expected string) string
}

// RendererFunc adapts a function to the Renderer interface
type RendererFunc func(got, expected string) string

// Render calls f
func (f RendererFunc) Render(got, expected string) string {
	return f(got, expected)
}

// TableRenderer renders a line diff as a table: marker, got line, expected line
type TableRenderer struct {
	Context int
}

// NewTableRenderer creates a table renderer with the default context
func NewTableRenderer() *TableRenderer {
	return &TableRenderer{Context: ContextLines}
}

// Render implements Renderer
func (r *TableRenderer) Render(got, expected string) string {
	return table(got, expected, r.Context)
}

// Table renders got and expected side by side, returning "" when they are equal
func Table(got, expected string) string {
	return table(got, expected, ContextLines)
}

func table(got, expected string, contextLines int) string {
	if got == expected {
		return ""
	}

	a := strings.Split(got, "\n")
	b := strings.Split(expected, "\n")
	matcher := difflib.NewMatcher(a, b)

	var buf bytes.Buffer
	tw := tablewriter.NewWriter(&buf)
	tw.SetHeader([]string{"", "Ln", "Got", "Ln", "Expected"})
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetColumnAlignment([]int{
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})

	for g, group := range matcher.GetGroupedOpCodes(contextLines) {
		if g > 0 {
			tw.Append([]string{"", "...", "", "...", ""})
		}
		for _, op := range group {
			appendRows(tw, op, a, b)
		}
	}

	tw.Render()
	return buf.String()
}

// appendRows adds one row per line touched by op
func appendRows(tw *tablewriter.Table, op difflib.OpCode, a, b []string) {
	n := max(op.I2-op.I1, op.J2-op.J1)
	for k := 0; k < n; k++ {
		row := []string{"", "", "", "", ""}
		if i := op.I1 + k; i < op.I2 {
			row[1] = strconv.Itoa(i + 1)
			row[2] = escape(a[i])
		}
		if j := op.J1 + k; j < op.J2 {
			row[3] = strconv.Itoa(j + 1)
			row[4] = escape(b[j])
		}
		if op.Tag != 'e' {
			row[0] = "*"
		}
		tw.Append(row)
	}
}

// escape makes tabs, carriage returns and trailing spaces visible
func escape(line string) string {
	trimmed := strings.TrimRight(line, " ")
	trailing := len(line) - len(trimmed)

	trimmed = strings.ReplaceAll(trimmed, "\t", `\t`)
	trimmed = strings.ReplaceAll(trimmed, "\r", `\r`)
	return trimmed + strings.Repeat(`\s`, trailing)
}
