// Package availability models platform-version guards on conditional
// branches, written if available(">=1.2") { ... }. Constraints use semver
// range syntax and are evaluated against the build target version.
package availability

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"
)

// Condition is one parsed availability constraint.
type Condition struct {
	raw string
	con *semver.Constraints
}

// Parse parses a constraint expression. An empty expression means always
// available.
func Parse(expr string) (*Condition, error) {
	if expr == "" {
		expr = ">=0.0.0"
	}
	con, err := semver.NewConstraint(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid availability constraint %q: %w", expr, err)
	}
	return &Condition{raw: expr, con: con}, nil
}

// Satisfied reports whether the target version meets the constraint. A nil
// target means the host did not pin a platform version; the branch then
// stays a runtime check and is treated as satisfiable.
func (c *Condition) Satisfied(target *semver.Version) bool {
	if target == nil {
		return true
	}
	return c.con.Check(target)
}

// String returns the original constraint expression.
func (c *Condition) String() string { return c.raw }
