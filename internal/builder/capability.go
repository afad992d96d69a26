package builder

import (
	"sync"

	"github.com/vela-lang/vela/internal/types"
)

// Combinator operation names recognized on a builder type.
const (
	OpExpression          = "buildExpression"
	OpBlock               = "buildBlock"
	OpFinalResult         = "buildFinalResult"
	OpDo                  = "buildDo"
	OpOptional            = "buildOptional"
	OpEither              = "buildEither"
	OpArray               = "buildArray"
	OpLimitedAvailability = "buildLimitedAvailability"
)

// Capabilities records which combinator operations a builder type declares
// with a usable shape. It is computed once per builder type by structural
// lookup (name plus parameter shape), never by full call resolution: a
// present operation can still fail overload resolution at a concrete call
// site, which is a separate, later error. Read-only after construction.
type Capabilities struct {
	BuilderName         string
	Expression          bool
	Block               bool
	FinalResult         bool
	Do                  bool
	Optional            bool
	Either              bool // both first: and second: overloads present
	Array               bool
	LimitedAvailability bool
}

// ResolveCapabilities computes the capability record for a builder type.
func ResolveCapabilities(b *types.BuilderType) Capabilities {
	caps := Capabilities{BuilderName: b.Name}
	caps.Expression = hasUnary(b, OpExpression, "")
	caps.Block = hasCombine(b, OpBlock)
	caps.FinalResult = hasUnary(b, OpFinalResult, "")
	caps.Do = hasCombine(b, OpDo)
	caps.Optional = hasUnary(b, OpOptional, "")
	caps.Either = hasUnary(b, OpEither, "first") && hasUnary(b, OpEither, "second")
	caps.Array = hasUnary(b, OpArray, "")
	caps.LimitedAvailability = hasUnary(b, OpLimitedAvailability, "")
	return caps
}

// hasUnary checks for an overload with exactly one non-variadic parameter
// carrying the given label.
func hasUnary(b *types.BuilderType, op, label string) bool {
	for _, sig := range b.Overloads(op) {
		if len(sig.Params) == 1 && !sig.Params[0].Variadic && sig.Params[0].Label == label {
			return true
		}
	}
	return false
}

// hasCombine checks for an overload whose sole parameter is unlabeled,
// variadic or not. A fixed-arity overload passes here and can still fail
// overload resolution when the combine call carries a different number of
// partials.
func hasCombine(b *types.BuilderType, op string) bool {
	for _, sig := range b.Overloads(op) {
		if len(sig.Params) == 1 && sig.Params[0].Label == "" {
			return true
		}
	}
	return false
}

// Cache memoizes capability records per builder type name. Capabilities are
// a pure function of the builder's declared operations, so one record can be
// shared across every body transformed against that builder, including
// concurrently transformed bodies.
type Cache struct {
	mu sync.RWMutex
	m  map[string]Capabilities
}

// NewCache creates an empty capability cache.
func NewCache() *Cache {
	return &Cache{m: make(map[string]Capabilities)}
}

// Resolve returns the cached capability record for b, computing it on first
// use.
func (c *Cache) Resolve(b *types.BuilderType) Capabilities {
	c.mu.RLock()
	caps, ok := c.m[b.Name]
	c.mu.RUnlock()
	if ok {
		return caps
	}

	caps = ResolveCapabilities(b)

	c.mu.Lock()
	c.m[b.Name] = caps
	c.mu.Unlock()
	return caps
}
