package types

// Param is one parameter of a builder operation signature. Label is the
// required argument label ("" for unlabeled); Variadic marks a trailing
// parameter accepting zero or more arguments of its type.
type Param struct {
	Label    string
	Type     Type
	Variadic bool
}

// Signature is one overload of a builder operation.
type Signature struct {
	Params []Param
	Result Type
}

// BuilderType is the external collaborator supplying combinator operations.
// Ops maps operation name (buildBlock, buildEither, ...) to its declared
// overloads. The capability resolver inspects shapes only; actual call
// checking happens per call site via Match.
type BuilderType struct {
	Name string
	Ops  map[string][]Signature
}

// Overloads returns the declared overloads for an operation name, nil when
// the builder does not declare it.
func (b *BuilderType) Overloads(name string) []Signature {
	if b == nil {
		return nil
	}
	return b.Ops[name]
}

// CallArg is one already-resolved argument of a combinator call.
type CallArg struct {
	Label string
	Type  Type
}

// MatchResult classifies the outcome of matching one call against a
// signature set.
type MatchResult int

const (
	// MatchOK: a signature accepts the call.
	MatchOK MatchResult = iota
	// MatchNoShape: no signature matches the call's arity and labels.
	MatchNoShape
	// MatchNoTypes: at least one signature matches the shape, but none
	// accepts the already-resolved argument types.
	MatchNoTypes
)

// Match resolves a call against a signature set. It returns the index of the
// first accepting overload in declaration order, or -1 with the reason.
// Argument types are fixed inputs here; matching never adjusts them.
func Match(sigs []Signature, args []CallArg) (int, MatchResult) {
	sawShape := false
	for i, sig := range sigs {
		switch matchOne(sig, args) {
		case MatchOK:
			return i, MatchOK
		case MatchNoTypes:
			sawShape = true
		}
	}
	if sawShape {
		return -1, MatchNoTypes
	}
	return -1, MatchNoShape
}

func matchOne(sig Signature, args []CallArg) MatchResult {
	variadic := len(sig.Params) > 0 && sig.Params[len(sig.Params)-1].Variadic
	fixed := len(sig.Params)
	if variadic {
		fixed--
	}

	if variadic {
		if len(args) < fixed {
			return MatchNoShape
		}
	} else if len(args) != fixed {
		return MatchNoShape
	}

	// Labels first: a label mismatch is a shape mismatch, not a type one.
	for i := 0; i < fixed; i++ {
		if args[i].Label != sig.Params[i].Label {
			return MatchNoShape
		}
	}
	if variadic {
		for i := fixed; i < len(args); i++ {
			if args[i].Label != sig.Params[len(sig.Params)-1].Label {
				return MatchNoShape
			}
		}
	}

	for i := 0; i < fixed; i++ {
		if !AssignableTo(args[i].Type, sig.Params[i].Type) {
			return MatchNoTypes
		}
	}
	if variadic {
		vp := sig.Params[len(sig.Params)-1]
		for i := fixed; i < len(args); i++ {
			if !AssignableTo(args[i].Type, vp.Type) {
				return MatchNoTypes
			}
		}
	}
	return MatchOK
}
