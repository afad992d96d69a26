package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vela-lang/vela/internal/types"
)

func TestResolveCapabilitiesFullSurface(t *testing.T) {
	caps := ResolveCapabilities(componentBuilder())

	assert.Equal(t, "HTML", caps.BuilderName)
	assert.True(t, caps.Expression)
	assert.True(t, caps.Block)
	assert.True(t, caps.Do)
	assert.True(t, caps.Optional)
	assert.True(t, caps.Either)
	assert.True(t, caps.Array)
	assert.True(t, caps.LimitedAvailability)
	assert.False(t, caps.FinalResult)
}

func TestResolveCapabilitiesEmptyBuilder(t *testing.T) {
	caps := ResolveCapabilities(&types.BuilderType{Name: "Bare", Ops: map[string][]types.Signature{}})
	assert.Equal(t, Capabilities{BuilderName: "Bare"}, caps)
}

// Presence is structural: the name alone is not enough, the shape must fit.
func TestCapabilityRequiresShape(t *testing.T) {
	b := &types.BuilderType{
		Name: "Odd",
		Ops: map[string][]types.Signature{
			// buildBlock needs a sole unlabeled parameter.
			OpBlock: {sig(component, unary(component), unary(component))},
			// buildExpression must be unlabeled.
			OpExpression: {sig(component, labeled("value", component))},
			// buildEither needs both labels.
			OpEither: {sig(component, labeled("first", component))},
		},
	}
	caps := ResolveCapabilities(b)

	assert.False(t, caps.Block)
	assert.False(t, caps.Expression)
	assert.False(t, caps.Either)
}

// A fixed-arity combine overload still counts as present; an arity problem
// surfaces later at the synthesized call.
func TestCombinePresenceAcceptsFixedArity(t *testing.T) {
	b := &types.BuilderType{
		Name: "Narrow",
		Ops: map[string][]types.Signature{
			OpBlock: {sig(component, unary(component))},
			OpDo:    {sig(component, unary(component))},
		},
	}
	caps := ResolveCapabilities(b)

	assert.True(t, caps.Block)
	assert.True(t, caps.Do)
}

func TestCacheReturnsSameRecord(t *testing.T) {
	cache := NewCache()
	b := componentBuilder()

	first := cache.Resolve(b)
	// Mutating the builder afterwards must not change the cached record.
	delete(b.Ops, OpArray)
	second := cache.Resolve(b)

	assert.Equal(t, first, second)
	assert.True(t, second.Array)
}
