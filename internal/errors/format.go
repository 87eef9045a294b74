package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	errorStyle = color.New(color.FgRed, color.Bold)
	titleStyle = color.New(color.Bold)
	labelStyle = color.New(color.FgCyan)
	gutter     = color.New(color.Faint)
	pointer    = color.New(color.FgRed)
	linkStyle  = color.New(color.FgBlue, color.Underline)
)

// DisableColors turns off ANSI colors in formatted errors.
func DisableColors() {
	color.NoColor = true
}

// EnableColors turns ANSI colors on, even when stderr is not a terminal.
func EnableColors() {
	color.NoColor = false
}

// labelWidth aligns the values of the labelled lines.
const labelWidth = 10

// Format renders the error for a terminal. The sections are, in order:
// the header, an excerpt of the file at the error location, the resources
// and dependency chain involved, then detail, cause, hint and docs.
func (e *ToolboxError) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(errorStyle.Sprint("ERROR"))
	if e.Code != "" {
		b.WriteString(" " + titleStyle.Sprint(e.Code+":"))
	} else {
		b.WriteString(titleStyle.Sprint(":"))
	}
	b.WriteString(" " + titleStyle.Sprint(e.Message) + "\n\n")

	if e.Location != nil {
		b.WriteString("  " + labelStyle.Sprint(e.Location.String()) + "\n")
		e.writeExcerpt(&b)
		b.WriteString("\n")
	}

	var lines []string
	for _, r := range e.Resources {
		lines = append(lines, labelled("resource", r.String()))
	}
	if len(e.Chain) > 0 {
		lines = append(lines, labelled("chain", strings.Join(e.Chain, " → ")))
	}
	if len(lines) > 0 {
		b.WriteString(strings.Join(lines, ""))
		b.WriteString("\n")
	}

	lines = lines[:0]
	if e.Detail != "" {
		lines = append(lines, labelled("detail", e.Detail))
	}
	if e.Wrapped != nil {
		lines = append(lines, labelled("cause", e.Wrapped.Error()))
	}
	if e.Suggestion != "" {
		lines = append(lines, labelled("hint", e.Suggestion))
	}
	if e.DocURL != "" {
		lines = append(lines, labelled("docs", linkStyle.Sprint(e.DocURL)))
	}
	b.WriteString(strings.Join(lines, ""))

	return b.String()
}

// labelled returns one "  label     value" line. Continuation lines of a
// multi-line value are indented under the value.
func labelled(label, value string) string {
	indent := strings.Repeat(" ", 2+labelWidth)
	value = strings.ReplaceAll(strings.TrimRight(value, "\n"), "\n", "\n"+indent)
	return "  " + labelStyle.Sprint(fmt.Sprintf("%-*s", labelWidth, label)) + value + "\n"
}

// writeExcerpt prints the context lines with a gutter and marks the error
// line and column.
func (e *ToolboxError) writeExcerpt(b *strings.Builder) {
	if len(e.Context) == 0 {
		return
	}
	last := e.contextStart + len(e.Context) - 1
	width := len(fmt.Sprint(last))

	for i, line := range e.Context {
		n := e.contextStart + i
		mark := "  "
		if n == e.Location.Line {
			mark = pointer.Sprint("> ")
		}
		fmt.Fprintf(b, "  %s%s %s %s\n", mark, gutter.Sprintf("%*d", width, n), gutter.Sprint("|"), line)
		if n == e.Location.Line && e.Location.Column > 0 {
			fmt.Fprintf(b, "    %s %s %s%s\n",
				strings.Repeat(" ", width), gutter.Sprint("|"),
				strings.Repeat(" ", e.Location.Column-1), pointer.Sprint("^"))
		}
	}
}

// FormatCompact returns the error on one line, suitable for logs:
//
//	toolbox.json:3: T120: Dependency cycle [app -> jquery -> app]
func (e *ToolboxError) FormatCompact() string {
	var parts []string
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	parts = append(parts, e.Message)
	out := strings.Join(parts, ": ")

	switch {
	case len(e.Chain) > 0:
		out += " [" + strings.Join(e.Chain, " -> ") + "]"
	case len(e.Resources) > 0:
		ids := make([]string, len(e.Resources))
		for i, r := range e.Resources {
			ids[i] = r.ID
		}
		out += " [" + strings.Join(ids, ", ") + "]"
	}
	return out
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonError struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Resources  []ResourceRef `json:"resources,omitempty"`
	Chain      []string      `json:"chain,omitempty"`
	Cause      string        `json:"cause,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	DocURL     string        `json:"docUrl,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *ToolboxError) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Resources:  e.Resources,
		Chain:      e.Chain,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if e.Location != nil {
		out.Location = &jsonLocation{File: e.Location.File, Line: e.Location.Line, Column: e.Location.Column}
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Error())
	}
	return string(data)
}

// Fprint writes err to w, formatted when it is a *ToolboxError.
func Fprint(w io.Writer, err error) {
	if te, ok := err.(*ToolboxError); ok {
		fmt.Fprint(w, te.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", errorStyle.Sprint("ERROR:"), err.Error())
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
