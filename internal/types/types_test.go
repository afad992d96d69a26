package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	comp := &Named{Name: "Component"}

	assert.True(t, Equal(Int, &Named{Name: "Int"}))
	assert.True(t, Equal(&Optional{Elem: comp}, &Optional{Elem: &Named{Name: "Component"}}))
	assert.True(t, Equal(&Array{Elem: Int}, &Array{Elem: Int}))
	assert.False(t, Equal(Int, Float))
	assert.False(t, Equal(comp, &Optional{Elem: comp}))
	assert.False(t, Equal(&Array{Elem: Int}, &Array{Elem: String}))
	assert.True(t, Equal(Void, &VoidType{}))
}

func TestAssignableTo(t *testing.T) {
	comp := &Named{Name: "Component"}

	// T lifts to T?.
	assert.True(t, AssignableTo(comp, &Optional{Elem: comp}))
	// nil fits any optional, nothing else.
	assert.True(t, AssignableTo(Nil, &Optional{Elem: Int}))
	assert.False(t, AssignableTo(Nil, Int))
	// The empty-literal element type fits any array.
	assert.True(t, AssignableTo(&Array{Elem: Nil}, &Array{Elem: comp}))
	assert.False(t, AssignableTo(&Array{Elem: Int}, &Array{Elem: String}))
	assert.False(t, AssignableTo(&Optional{Elem: comp}, comp))
}

func TestMatchShapeVersusTypes(t *testing.T) {
	comp := &Named{Name: "Component"}
	sigs := []Signature{
		{Params: []Param{{Label: "first", Type: comp}}, Result: comp},
		{Params: []Param{{Label: "second", Type: comp}}, Result: comp},
	}

	idx, m := Match(sigs, []CallArg{{Label: "second", Type: comp}})
	assert.Equal(t, MatchOK, m)
	assert.Equal(t, 1, idx)

	// Right label, wrong type.
	_, m = Match(sigs, []CallArg{{Label: "first", Type: Int}})
	assert.Equal(t, MatchNoTypes, m)

	// Unknown label: shape mismatch, not a type one.
	_, m = Match(sigs, []CallArg{{Label: "third", Type: comp}})
	assert.Equal(t, MatchNoShape, m)

	// Arity mismatch.
	_, m = Match(sigs, []CallArg{{Label: "first", Type: comp}, {Label: "second", Type: comp}})
	assert.Equal(t, MatchNoShape, m)
}

func TestMatchVariadic(t *testing.T) {
	comp := &Named{Name: "Component"}
	sigs := []Signature{
		{Params: []Param{{Type: comp, Variadic: true}}, Result: comp},
	}

	for _, n := range []int{0, 1, 5} {
		args := make([]CallArg, n)
		for i := range args {
			args[i] = CallArg{Type: comp}
		}
		idx, m := Match(sigs, args)
		assert.Equal(t, MatchOK, m, "n=%d", n)
		assert.Equal(t, 0, idx)
	}

	_, m := Match(sigs, []CallArg{{Type: comp}, {Type: Int}})
	assert.Equal(t, MatchNoTypes, m)
}

func TestMatchPrefersDeclarationOrder(t *testing.T) {
	comp := &Named{Name: "Component"}
	sigs := []Signature{
		{Params: []Param{{Type: comp}}, Result: comp},
		{Params: []Param{{Type: comp}}, Result: String},
	}
	idx, m := Match(sigs, []CallArg{{Type: comp}})
	assert.Equal(t, MatchOK, m)
	assert.Equal(t, 0, idx)
}
