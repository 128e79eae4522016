package tui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
)

// Output formats understood by NewOutput.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnsupportedFormat is returned by NewOutput for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Output provides methods for structured output to a terminal or a pipe.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error message.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Table prints rows under headers.
	Table(headers []string, rows [][]string)
	// Value prints v in the output's structured encoding. Text output
	// prints strings as-is and anything else as indented JSON.
	Value(v any) error
}

// NewOutput creates the appropriate output based on format.
func NewOutput(w io.Writer, format string) (Output, error) {
	switch format {
	case "", FormatText:
		return NewTTYOutput(w), nil
	case FormatJSON:
		return NewStructuredOutput(w, FormatJSON), nil
	case FormatYAML:
		return NewStructuredOutput(w, FormatYAML), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// TTYOutput provides styled terminal output using Lip Gloss.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
	table  *TableStyles
}

// NewTTYOutput creates a new TTYOutput. Respects NO_COLOR via CheckNoColor.
func NewTTYOutput(w io.Writer) *TTYOutput {
	CheckNoColor()

	return &TTYOutput{
		w:      w,
		styles: NewOutputStyles(),
		table:  NewTableStyles(),
	}
}

// Success outputs a success message with a ✓ icon.
func (o *TTYOutput) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Success.Render("✓ "+msg))
}

// Error outputs an error with a ✗ icon, followed by a suggested next step
// when the error is a known kind.
func (o *TTYOutput) Error(err error) {
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render("✗ "+err.Error()))
	if _, action := lhcerrors.Actionable(err); action != "" {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render("  ▸ Try: "+action))
	}
}

// Warning outputs a warning message with a ⚠ icon.
func (o *TTYOutput) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Warning.Render("⚠ "+msg))
}

// Info outputs an informational message.
func (o *TTYOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render(msg))
}

// Table outputs tabular data with aligned columns.
func (o *TTYOutput) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	headerParts := make([]string, 0, len(headers))
	for i, h := range headers {
		headerParts = append(headerParts, o.table.Header.Render(padRight(h, widths[i])))
	}
	_, _ = fmt.Fprintln(o.w, strings.TrimRight(strings.Join(headerParts, "  "), " "))

	for _, row := range rows {
		parts := make([]string, 0, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			parts = append(parts, o.table.Cell.Render(padRight(cell, widths[i])))
		}
		_, _ = fmt.Fprintln(o.w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}

// Value prints strings verbatim and other values as indented JSON.
func (o *TTYOutput) Value(v any) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(o.w, s)
		return err
	}
	return encodeJSON(o.w, v)
}

// StructuredOutput emits machine-readable JSON or YAML. Messages are encoded
// as {"type": ..., "message": ...} records.
type StructuredOutput struct {
	w      io.Writer
	format string
}

// NewStructuredOutput creates a StructuredOutput for FormatJSON or FormatYAML.
func NewStructuredOutput(w io.Writer, format string) *StructuredOutput {
	return &StructuredOutput{w: w, format: format}
}

// message is the structured format for Success/Warning/Info messages.
type message struct {
	Type    string `json:"type" yaml:"type"`
	Message string `json:"message" yaml:"message"`
	Details    string `json:"details,omitempty" yaml:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// Success outputs a success message record.
func (o *StructuredOutput) Success(msg string) {
	_ = o.Value(message{Type: "success", Message: msg})
}

// Error outputs an error record. Details carry the wrapped error, if any.
func (o *StructuredOutput) Error(err error) {
	m := message{Type: "error", Message: err.Error()}
	if wrapped := errors.Unwrap(err); wrapped != nil {
		m.Details = wrapped.Error()
	}
	_, m.Suggestion = lhcerrors.Actionable(err)
	_ = o.Value(m)
}

// Warning outputs a warning record.
func (o *StructuredOutput) Warning(msg string) {
	_ = o.Value(message{Type: "warning", Message: msg})
}

// Info outputs an informational record.
func (o *StructuredOutput) Info(msg string) {
	_ = o.Value(message{Type: "info", Message: msg})
}

// Table outputs tabular data as a list of objects keyed by header.
func (o *StructuredOutput) Table(headers []string, rows [][]string) {
	result := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				obj[h] = row[i]
			} else {
				obj[h] = ""
			}
		}
		result = append(result, obj)
	}
	_ = o.Value(result)
}

// Value encodes v.
func (o *StructuredOutput) Value(v any) error {
	if o.format == FormatYAML {
		enc := yaml.NewEncoder(o.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	}
	return encodeJSON(o.w, v)
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
