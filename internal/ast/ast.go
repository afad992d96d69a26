// Package ast defines the Abstract Syntax Tree (AST) nodes for the vela language.
// Statements live in an Arena and are referenced by index (StmtID/BlockID);
// expressions are ordinary pointer trees. All nodes carry position spans for
// error reporting and diagnostics.
package ast

import (
	"fmt"
	"strings"

	"github.com/vela-lang/vela/internal/position"
)

// StmtID identifies a statement inside an Arena.
type StmtID int32

// BlockID identifies a block inside an Arena.
type BlockID int32

// NoStmt and NoBlock are sentinel values for absent children.
const (
	NoStmt  StmtID  = -1
	NoBlock BlockID = -1
)

// Arena owns every statement and block of one parsed file. Child statements
// and blocks are referenced by index, never by pointer, so transforms can
// append synthesized nodes without introducing cycles.
type Arena struct {
	stmts  []Stmt
	blocks []Block
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// AddStmt stores a statement and returns its id.
func (a *Arena) AddStmt(s Stmt) StmtID {
	a.stmts = append(a.stmts, s)
	return StmtID(len(a.stmts) - 1)
}

// Stmt returns the statement for id.
func (a *Arena) Stmt(id StmtID) Stmt {
	return a.stmts[id]
}

// AddBlock stores a block and returns its id.
func (a *Arena) AddBlock(b Block) BlockID {
	a.blocks = append(a.blocks, b)
	return BlockID(len(a.blocks) - 1)
}

// Block returns the block for id. The pointer stays valid until the next
// AddBlock call, so callers must not retain it across mutations.
func (a *Arena) Block(id BlockID) *Block {
	return &a.blocks[id]
}

// AppendStmt appends an existing statement to a block.
func (a *Arena) AppendStmt(b BlockID, s StmtID) {
	a.blocks[b].Stmts = append(a.blocks[b].Stmts, s)
}

// NumStmts reports how many statements the arena holds.
func (a *Arena) NumStmts() int { return len(a.stmts) }

// Block is an ordered statement sequence owned by its enclosing construct
// (function body, if/else arm, loop body, do body).
type Block struct {
	Span  position.Span
	Stmts []StmtID
}

// Stmt is the base interface for all statement nodes.
type Stmt interface {
	GetSpan() position.Span
	// String renders the statement for debugging; the arena is needed to
	// resolve child blocks.
	String(a *Arena) string
	stmtNode()
}

// VarKind distinguishes let from var declarations.
type VarKind int

const (
	VarKindLet VarKind = iota // immutable binding
	VarKindVar                // mutable binding
)

func (vk VarKind) String() string {
	switch vk {
	case VarKindLet:
		return "let"
	case VarKindVar:
		return "var"
	default:
		return "unknown"
	}
}

// VarDecl represents a local binding: let x = e, var x: T = e.
type VarDecl struct {
	Span  position.Span
	Name  string
	Kind  VarKind
	Type  TypeExpr // nil for inferred
	Value Expr     // nil for uninitialized
}

func (v *VarDecl) GetSpan() position.Span { return v.Span }
func (v *VarDecl) stmtNode()              {}
func (v *VarDecl) String(a *Arena) string {
	typ := ""
	if v.Type != nil {
		typ = ": " + v.Type.String()
	}
	val := ""
	if v.Value != nil {
		val = " = " + v.Value.String()
	}
	return fmt.Sprintf("%s %s%s%s", v.Kind, v.Name, typ, val)
}

// AssignStmt represents an assignment to an existing binding: x = e.
type AssignStmt struct {
	Span   position.Span
	Target Expr
	Value  Expr
}

func (s *AssignStmt) GetSpan() position.Span { return s.Span }
func (s *AssignStmt) stmtNode()              {}
func (s *AssignStmt) String(a *Arena) string {
	return fmt.Sprintf("%s = %s", s.Target.String(), s.Value.String())
}

// ExprStmt represents a statement consisting of a single expression.
type ExprStmt struct {
	Span position.Span
	X    Expr
}

func (s *ExprStmt) GetSpan() position.Span { return s.Span }
func (s *ExprStmt) stmtNode()              {}
func (s *ExprStmt) String(a *Arena) string { return s.X.String() }

// AvailabilityClause guards a branch on a platform version constraint,
// written as if available(">=1.2") { ... }.
type AvailabilityClause struct {
	Span       position.Span
	Constraint string // semver constraint expression
}

// IfStmt represents an if/else-if/else chain. At most one of ElseIf and
// ElseBlock is set; both absent means no else.
type IfStmt struct {
	Span      position.Span
	Cond      Expr                // nil when Avail alone guards the branch
	Avail     *AvailabilityClause // nil for plain conditions
	Then      BlockID
	ElseIf    StmtID  // an IfStmt continuing the chain, or NoStmt
	ElseBlock BlockID // terminal else block, or NoBlock
}

func (s *IfStmt) GetSpan() position.Span { return s.Span }
func (s *IfStmt) stmtNode()              {}
func (s *IfStmt) String(a *Arena) string {
	cond := ""
	switch {
	case s.Avail != nil:
		cond = fmt.Sprintf("available(%q)", s.Avail.Constraint)
	case s.Cond != nil:
		cond = s.Cond.String()
	}
	out := fmt.Sprintf("if %s %s", cond, renderBlock(a, s.Then))
	if s.ElseIf != NoStmt {
		out += " else " + a.Stmt(s.ElseIf).String(a)
	} else if s.ElseBlock != NoBlock {
		out += " else " + renderBlock(a, s.ElseBlock)
	}
	return out
}

// SwitchCase is one case arm of a switch statement.
type SwitchCase struct {
	Span   position.Span
	Values []Expr
	Body   BlockID
}

// SwitchStmt represents a switch over a subject expression.
type SwitchStmt struct {
	Span    position.Span
	Subject Expr
	Cases   []SwitchCase
	Default BlockID // NoBlock when absent
}

func (s *SwitchStmt) GetSpan() position.Span { return s.Span }
func (s *SwitchStmt) stmtNode()              {}
func (s *SwitchStmt) String(a *Arena) string {
	var b strings.Builder
	fmt.Fprintf(&b, "switch %s {", s.Subject.String())
	for _, c := range s.Cases {
		vals := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			vals = append(vals, v.String())
		}
		fmt.Fprintf(&b, " case %s: %s", strings.Join(vals, ", "), renderBlock(a, c.Body))
	}
	if s.Default != NoBlock {
		fmt.Fprintf(&b, " default: %s", renderBlock(a, s.Default))
	}
	b.WriteString(" }")
	return b.String()
}

// CatchClause is an error-handling clause of a do statement. A do with any
// catch clause is rejected by the builder transform.
type CatchClause struct {
	Span    position.Span
	Binding string // bound error name, "" for bare catch
	Body    BlockID
}

// DoStmt represents a do block, optionally with catch clauses.
type DoStmt struct {
	Span    position.Span
	Body    BlockID
	Catches []CatchClause
}

func (s *DoStmt) GetSpan() position.Span { return s.Span }
func (s *DoStmt) stmtNode()              {}
func (s *DoStmt) String(a *Arena) string {
	out := "do " + renderBlock(a, s.Body)
	for _, c := range s.Catches {
		out += " catch " + renderBlock(a, c.Body)
	}
	return out
}

// ForInStmt represents iteration over a sequence: for x in seq { ... }.
type ForInStmt struct {
	Span position.Span
	Var  string
	Seq  Expr
	Body BlockID
}

func (s *ForInStmt) GetSpan() position.Span { return s.Span }
func (s *ForInStmt) stmtNode()              {}
func (s *ForInStmt) String(a *Arena) string {
	return fmt.Sprintf("for %s in %s %s", s.Var, s.Seq.String(), renderBlock(a, s.Body))
}

// ReturnStmt represents a return statement.
type ReturnStmt struct {
	Span  position.Span
	Value Expr // nil for bare return
}

func (s *ReturnStmt) GetSpan() position.Span { return s.Span }
func (s *ReturnStmt) stmtNode()              {}
func (s *ReturnStmt) String(a *Arena) string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

// BreakStmt represents a break statement.
type BreakStmt struct {
	Span position.Span
}

func (s *BreakStmt) GetSpan() position.Span { return s.Span }
func (s *BreakStmt) stmtNode()              {}
func (s *BreakStmt) String(a *Arena) string { return "break" }

// ContinueStmt represents a continue statement.
type ContinueStmt struct {
	Span position.Span
}

func (s *ContinueStmt) GetSpan() position.Span { return s.Span }
func (s *ContinueStmt) stmtNode()              {}
func (s *ContinueStmt) String(a *Arena) string { return "continue" }

// GuardStmt represents guard cond else { ... }.
type GuardStmt struct {
	Span position.Span
	Cond Expr
	Else BlockID
}

func (s *GuardStmt) GetSpan() position.Span { return s.Span }
func (s *GuardStmt) stmtNode()              {}
func (s *GuardStmt) String(a *Arena) string {
	return fmt.Sprintf("guard %s else %s", s.Cond.String(), renderBlock(a, s.Else))
}

// DeferStmt represents defer { ... }.
type DeferStmt struct {
	Span position.Span
	Body BlockID
}

func (s *DeferStmt) GetSpan() position.Span { return s.Span }
func (s *DeferStmt) stmtNode()              {}
func (s *DeferStmt) String(a *Arena) string { return "defer " + renderBlock(a, s.Body) }

// ThrowStmt represents throw e.
type ThrowStmt struct {
	Span  position.Span
	Value Expr
}

func (s *ThrowStmt) GetSpan() position.Span { return s.Span }
func (s *ThrowStmt) stmtNode()              {}
func (s *ThrowStmt) String(a *Arena) string { return "throw " + s.Value.String() }

// DirectiveLevel is the severity of a compile-time diagnostic directive.
type DirectiveLevel int

const (
	DirectiveWarning DirectiveLevel = iota
	DirectiveError
)

func (dl DirectiveLevel) String() string {
	if dl == DirectiveError {
		return "#error"
	}
	return "#warning"
}

// DirectiveStmt is a compile-time diagnostic directive with no runtime effect.
type DirectiveStmt struct {
	Span    position.Span
	Level   DirectiveLevel
	Message string
}

func (s *DirectiveStmt) GetSpan() position.Span { return s.Span }
func (s *DirectiveStmt) stmtNode()              {}
func (s *DirectiveStmt) String(a *Arena) string {
	return fmt.Sprintf("%s(%q)", s.Level, s.Message)
}

func renderBlock(a *Arena, id BlockID) string {
	if id == NoBlock {
		return "{}"
	}
	blk := a.Block(id)
	if len(blk.Stmts) == 0 {
		return "{}"
	}
	var parts []string
	for _, sid := range blk.Stmts {
		parts = append(parts, "  "+a.Stmt(sid).String(a))
	}
	return fmt.Sprintf("{\n%s\n}", strings.Join(parts, "\n"))
}

// RenderBlock returns a readable form of a block, used by tests and debug
// logging of lowered bodies.
func (a *Arena) RenderBlock(id BlockID) string {
	return renderBlock(a, id)
}
