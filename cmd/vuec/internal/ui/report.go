// Package ui renders compilation reports for the terminal.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/recera/vuec/pkg/compiler"
)

// Colors
var (
	primaryColor = lipgloss.Color("#3b82f6") // Blue
	successColor = lipgloss.Color("#10b981") // Green
	warningColor = lipgloss.Color("#f59e0b") // Yellow
	errorColor   = lipgloss.Color("#ef4444") // Red
	mutedColor   = lipgloss.Color("#94a3b8") // Muted gray
)

// Reporter writes compilation results to w, as styled text or JSON.
type Reporter struct {
	w    io.Writer
	json bool

	titleStyle   lipgloss.Style
	labelStyle   lipgloss.Style
	mutedStyle   lipgloss.Style
	successStyle lipgloss.Style
	warningStyle lipgloss.Style
	errorStyle   lipgloss.Style
}

// NewReporter returns a reporter whose styles adapt to w's color support.
func NewReporter(w io.Writer, jsonOutput bool) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		w:    w,
		json: jsonOutput,

		titleStyle:   r.NewStyle().Bold(true).Foreground(primaryColor),
		labelStyle:   r.NewStyle().Foreground(mutedColor).Width(12),
		mutedStyle:   r.NewStyle().Foreground(mutedColor),
		successStyle: r.NewStyle().Foreground(successColor).Bold(true),
		warningStyle: r.NewStyle().Foreground(warningColor),
		errorStyle:   r.NewStyle().Foreground(errorColor).Bold(true),
	}
}

// Report writes results followed by a summary line. JSON output is a
// single array.
func (r *Reporter) Report(results []*compiler.Result) error {
	if r.json {
		if results == nil {
			results = []*compiler.Result{}
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		_, err = fmt.Fprintln(r.w, string(data))
		return err
	}

	var b strings.Builder
	errs, warns := 0, 0
	for _, res := range results {
		r.renderResult(&b, res)
		for _, d := range res.Diagnostics {
			if d.Warning {
				warns++
			} else {
				errs++
			}
		}
	}
	b.WriteString(r.summary(len(results), errs, warns))
	b.WriteString("\n")

	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Reporter) renderResult(b *strings.Builder, res *compiler.Result) {
	mark := r.successStyle.Render("✓")
	if res.Errors() > 0 {
		mark = r.errorStyle.Render("✗")
	}
	fmt.Fprintf(b, "%s %s\n", mark, r.titleStyle.Render(res.File))

	r.renderList(b, "helpers", res.Helpers)
	r.renderList(b, "components", res.Components)
	r.renderList(b, "directives", res.Directives)
	if res.MergedTexts > 0 {
		fmt.Fprintf(b, "  %s%d\n", r.labelStyle.Render("merged"), res.MergedTexts)
	}

	for _, d := range res.Diagnostics {
		style, sym := r.errorStyle, "error"
		if d.Warning {
			style, sym = r.warningStyle, "warning"
		}
		fmt.Fprintf(b, "  %s %s %s\n",
			style.Render(sym),
			r.mutedStyle.Render(fmt.Sprintf("%d:%d", d.Line, d.Column)),
			d.Message,
		)
	}
}

func (r *Reporter) renderList(b *strings.Builder, label string, items []string) {
	value := r.mutedStyle.Render("none")
	if len(items) > 0 {
		value = strings.Join(items, ", ")
	}
	fmt.Fprintf(b, "  %s%s\n", r.labelStyle.Render(label), value)
}

func (r *Reporter) summary(files, errs, warns int) string {
	line := fmt.Sprintf("Compiled %s, %s, %s",
		plural(files, "document"), plural(errs, "error"), plural(warns, "warning"))
	if errs > 0 {
		return r.errorStyle.Render(line)
	}
	return r.successStyle.Render(line)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
