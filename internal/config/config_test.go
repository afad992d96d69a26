package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vela-lang/vela/internal/types"
)

const protocolYAML = `
target: "2.1.0"
builders:
  - name: HTML
    operations:
      buildExpression:
        - params: [{type: Component}]
          result: Component
      buildBlock:
        - params: [{type: Component, variadic: true}]
          result: Component
      buildEither:
        - params: [{label: first, type: Component}]
          result: Component
        - params: [{label: second, type: Component}]
          result: Component
      buildOptional:
        - params: [{type: "Component?"}]
          result: Component
functions:
  - name: header
    params: [String]
    result: Component
  - name: count
    params: ["[String]"]
    result: Int
`

func TestParseProtocol(t *testing.T) {
	cfg, err := Parse([]byte(protocolYAML))
	require.NoError(t, err)

	assert.Equal(t, "2.1.0", cfg.Target)
	require.Contains(t, cfg.Builders, "HTML")

	b := cfg.Builders["HTML"]
	assert.Len(t, b.Overloads("buildEither"), 2)
	assert.Equal(t, "first", b.Overloads("buildEither")[0].Params[0].Label)

	block := b.Overloads("buildBlock")[0]
	require.Len(t, block.Params, 1)
	assert.True(t, block.Params[0].Variadic)

	opt := b.Overloads("buildOptional")[0]
	assert.True(t, types.Equal(opt.Params[0].Type, &types.Optional{Elem: &types.Named{Name: "Component"}}))

	header := cfg.Functions["header"]
	require.Len(t, header.Params, 1)
	assert.True(t, types.Equal(header.Params[0], types.String))
	count := cfg.Functions["count"]
	assert.True(t, types.Equal(count.Params[0], &types.Array{Elem: types.String}))
}

func TestParseRejectsAnonymousBuilder(t *testing.T) {
	_, err := Parse([]byte("builders:\n  - operations: {}\n"))
	assert.Error(t, err)
}

func TestParseRejectsMidListVariadic(t *testing.T) {
	src := `
builders:
  - name: Bad
    operations:
      buildBlock:
        - params: [{type: Component, variadic: true}, {type: Component}]
          result: Component
`
	_, err := Parse([]byte(src))
	assert.Error(t, err)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want types.Type
	}{
		{"Int", types.Int},
		{"Component", &types.Named{Name: "Component"}},
		{"Component?", &types.Optional{Elem: &types.Named{Name: "Component"}}},
		{"[String]", &types.Array{Elem: types.String}},
		{"[Int?]", &types.Array{Elem: &types.Optional{Elem: types.Int}}},
		{"[[Bool]]", &types.Array{Elem: &types.Array{Elem: types.Bool}}},
		{"", types.Void},
		{"Void", types.Void},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, types.Equal(got, tt.want), "ParseType(%q) = %s", tt.in, got)
	}

	for _, bad := range []string{"[Oops", "Na me", "a!b"} {
		_, err := ParseType(bad)
		assert.Error(t, err, bad)
	}
}
