package builder

import (
	"fmt"

	"github.com/vela-lang/vela/internal/position"
)

// FailureKind classifies why a transform aborted.
type FailureKind int

const (
	// MissingCapability: a construct needs a combinator the builder type
	// does not declare.
	MissingCapability FailureKind = iota
	// IllegalStatement: a non-local-exit statement appears inside a
	// transformed body.
	IllegalStatement
	// CombinatorTypeMismatch: a combinator exists but no overload accepts
	// the already-resolved argument types.
	CombinatorTypeMismatch
	// UnresolvableOverload: the capability presence check passed, but the
	// call's arity or labels match no declared overload.
	UnresolvableOverload
)

func (k FailureKind) String() string {
	switch k {
	case MissingCapability:
		return "missing capability"
	case IllegalStatement:
		return "illegal statement"
	case CombinatorTypeMismatch:
		return "combinator type mismatch"
	case UnresolvableOverload:
		return "unresolvable overload"
	default:
		return "unknown"
	}
}

// Code returns the stable diagnostic code for this failure kind.
func (k FailureKind) Code() string {
	switch k {
	case MissingCapability:
		return "VB0001"
	case IllegalStatement:
		return "VB0002"
	case CombinatorTypeMismatch:
		return "VB0003"
	case UnresolvableOverload:
		return "VB0004"
	default:
		return "VB0000"
	}
}

// TransformError is the single failure surfaced for one body. The transform
// performs no local recovery: the first failure halts the descent.
type TransformError struct {
	Kind      FailureKind
	Span      position.Span
	Construct string // offending construct, e.g. "for-in loop"
	Operation string // combinator involved, e.g. "buildArray"
	Message   string
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Span, e.Kind)
	if e.Construct != "" {
		msg += ": " + e.Construct
	}
	if e.Operation != "" {
		msg += " (" + e.Operation + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func errMissing(span position.Span, construct, op string) *TransformError {
	return &TransformError{Kind: MissingCapability, Span: span, Construct: construct, Operation: op,
		Message: fmt.Sprintf("builder type does not declare %s", op)}
}

func errIllegal(span position.Span, construct string) *TransformError {
	return &TransformError{Kind: IllegalStatement, Span: span, Construct: construct,
		Message: fmt.Sprintf("%s is not allowed inside a transformed body", construct)}
}
