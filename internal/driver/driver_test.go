package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vela-lang/vela/internal/config"
)

const protocolYAML = `
target: "2.0.0"
builders:
  - name: HTML
    operations:
      buildExpression:
        - params: [{type: Component}]
          result: Component
      buildBlock:
        - params: [{type: Component, variadic: true}]
          result: Component
      buildOptional:
        - params: [{type: "Component?"}]
          result: Component
      buildEither:
        - params: [{label: first, type: Component}]
          result: Component
        - params: [{label: second, type: Component}]
          result: Component
      buildArray:
        - params: [{type: "[Component]"}]
          result: Component
      buildDo:
        - params: [{type: Component, variadic: true}]
          result: Component
functions:
  - name: header
    params: [String]
    result: Component
  - name: text
    params: [String]
    result: Component
`

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	cfg, err := config.Parse([]byte(protocolYAML))
	require.NoError(t, err)
	comp, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	return comp
}

func TestCompileTransformsAttributedFunction(t *testing.T) {
	comp := newTestCompiler(t)

	out, err := comp.Compile("page.vela", []byte(`
fn render(title: String) -> Component @builder(HTML) {
  header(title)
  text("body")
}
`))
	require.NoError(t, err)
	require.False(t, out.HasErrors(), "diagnostics: %v", out.Diagnostics)

	assert.Equal(t, 1, out.Transformed)
	assert.Contains(t, out.Source, "func render(title string) Component")
	assert.Contains(t, out.Source, "HTML.buildBlock(")
	assert.Contains(t, out.Source, "return HTML.buildBlock(__b0, __b1)")
}

func TestCompileLeavesPlainFunctionsAlone(t *testing.T) {
	comp := newTestCompiler(t)

	out, err := comp.Compile("util.vela", []byte(`
fn helper(flag: Bool) {
  if flag {
    header("x")
  }
}
`))
	require.NoError(t, err)
	require.False(t, out.HasErrors())
	assert.Equal(t, 0, out.Transformed)
	assert.NotContains(t, out.Source, "buildBlock")
}

func TestCompileSuppressesOnReturn(t *testing.T) {
	comp := newTestCompiler(t)

	out, err := comp.Compile("page.vela", []byte(`
fn render() -> Component @builder(HTML) {
  return header("early")
}
`))
	require.NoError(t, err)
	require.False(t, out.HasErrors(), "diagnostics: %v", out.Diagnostics)
	assert.Equal(t, 0, out.Transformed)
	assert.Contains(t, out.Source, `return header("early")`)
}

func TestCompileUnknownBuilder(t *testing.T) {
	comp := newTestCompiler(t)

	out, err := comp.Compile("page.vela", []byte(`
fn render() @builder(Nope) {
  header("x")
}
`))
	require.NoError(t, err)
	require.True(t, out.HasErrors())
	assert.Equal(t, "VT0002", out.Diagnostics[0].Code)
	assert.Empty(t, out.Source)
}

func TestCompileIllegalStatementDiagnostic(t *testing.T) {
	comp := newTestCompiler(t)

	out, err := comp.Compile("page.vela", []byte(`
fn render() @builder(HTML) {
  for x in [1, 2] {
    break
  }
}
`))
	require.NoError(t, err)
	require.True(t, out.HasErrors())
	assert.Equal(t, "VB0002", out.Diagnostics[0].Code)
}

func TestCompileReturnTypeMismatch(t *testing.T) {
	comp := newTestCompiler(t)

	out, err := comp.Compile("page.vela", []byte(`
fn render() -> String @builder(HTML) {
  header("x")
}
`))
	require.NoError(t, err)
	require.True(t, out.HasErrors())
	assert.Equal(t, "VT0001", out.Diagnostics[0].Code)
}

func TestCompileDirectives(t *testing.T) {
	comp := newTestCompiler(t)

	out, err := comp.Compile("page.vela", []byte(`
fn render() @builder(HTML) {
  #warning("still experimental")
  header("x")
}
`))
	require.NoError(t, err)
	require.False(t, out.HasErrors())
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, "VD0001", out.Diagnostics[0].Code)

	out, err = comp.Compile("page.vela", []byte(`
fn render() @builder(HTML) {
  #error("do not ship")
  header("x")
}
`))
	require.NoError(t, err)
	require.True(t, out.HasErrors())
	assert.Empty(t, out.Source)
}

func TestCompileParseErrorBecomesDiagnostic(t *testing.T) {
	comp := newTestCompiler(t)

	out, err := comp.Compile("broken.vela", []byte(`fn render( {`))
	require.NoError(t, err)
	require.True(t, out.HasErrors())
	assert.Equal(t, "VP0001", out.Diagnostics[0].Code)
}

func TestCompileAll(t *testing.T) {
	comp := newTestCompiler(t)
	dir := t.TempDir()

	sources := map[string]string{
		"a.vela": `fn a() -> Component @builder(HTML) { header("a") }`,
		"b.vela": `fn b() -> Component @builder(HTML) { text("b") }`,
		"c.vela": `fn c() {}`,
	}
	var paths []string
	for name, src := range sources {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
		paths = append(paths, path)
	}

	outputs, err := comp.CompileAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, outputs, 3)
	for _, path := range paths {
		out := outputs[path]
		require.NotNil(t, out, path)
		assert.False(t, out.HasErrors(), path)
		assert.NotEmpty(t, out.Source, path)
	}
}

func TestNewRejectsBadTargetVersion(t *testing.T) {
	cfg, err := config.Parse([]byte("target: banana\n"))
	require.NoError(t, err)
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
