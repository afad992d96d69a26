// Package diagnostic provides the diagnostic reporting system for the vela
// compiler: severity levels, stable codes, and a per-compilation collector.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vela-lang/vela/internal/position"
)

// Level represents the severity level of a diagnostic message.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Code    string // stable machine-readable code, e.g. "VB0003"
	Message string
	Span    position.Span
	Level   Level
}

// String formats the diagnostic as span: level[code]: message.
func (d Diagnostic) String() string {
	if d.Code != "" {
		return fmt.Sprintf("%s: %s[%s]: %s", d.Span, d.Level, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Level, d.Message)
}

// Collector accumulates diagnostics for one compilation.
type Collector struct {
	diags []Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// Errorf adds an error-level diagnostic.
func (c *Collector) Errorf(code string, span position.Span, format string, args ...interface{}) {
	c.Add(Diagnostic{Code: code, Level: LevelError, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Warnf adds a warning-level diagnostic.
func (c *Collector) Warnf(code string, span position.Span, format string, args ...interface{}) {
	c.Add(Diagnostic{Code: code, Level: LevelWarning, Span: span, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any error-level diagnostic was collected.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diags {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}

// Diagnostics returns collected diagnostics sorted by source position.
func (c *Collector) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start.Before(out[j].Span.Start)
	})
	return out
}

// Format renders all diagnostics, one per line.
func (c *Collector) Format() string {
	var b strings.Builder
	for _, d := range c.Diagnostics() {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}
