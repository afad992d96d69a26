package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vela-lang/vela/internal/position"
)

func spanAt(line int) position.Span {
	p := position.Position{Filename: "test.vela", Line: line, Column: 1, Offset: line * 10}
	return position.NewSpan(p, p)
}

func TestCollectorSortsByPosition(t *testing.T) {
	c := NewCollector()
	c.Warnf("VD0001", spanAt(9), "later")
	c.Errorf("VB0002", spanAt(3), "earlier")

	diags := c.Diagnostics()
	assert.Equal(t, "earlier", diags[0].Message)
	assert.Equal(t, "later", diags[1].Message)
}

func TestHasErrors(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.HasErrors())

	c.Warnf("VD0001", spanAt(1), "just a warning")
	assert.False(t, c.HasErrors())

	c.Errorf("VB0001", spanAt(2), "boom")
	assert.True(t, c.HasErrors())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Code: "VB0003", Level: LevelError, Span: spanAt(2), Message: "no overload"}
	assert.Equal(t, "test.vela:2:1-1: error[VB0003]: no overload", d.String())

	uncoded := Diagnostic{Level: LevelWarning, Span: spanAt(2), Message: "hm"}
	assert.Equal(t, "test.vela:2:1-1: warning: hm", uncoded.String())
}
