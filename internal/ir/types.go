// Package ir implements the control-flow-graph/SSA intermediate
// representation that sits between the front-end adapters and the back
// end: CFG construction, dominance, SSA formation, the optimization pass
// framework, and liveness.
package ir

import (
	"fmt"
	"strings"

	"github.com/wizardengineer/bril2riscv/internal/flat"
)

// Program is the CFG/SSA form of a flat.Program: an ordered list of
// functions, each with basic blocks wired into a control-flow graph.
type Program struct {
	Functions []*Function
}

// Function is a function in CFG form.
type Function struct {
	Name       string
	Args       []flat.Arg
	ReturnType *flat.Type
	Blocks     []*BasicBlock
}

// BlockByLabel returns the index of the block with the given label, or -1.
func (f *Function) BlockByLabel(label string) int {
	for i, b := range f.Blocks {
		if b.Label == label {
			return i
		}
	}
	return -1
}

// BasicBlock is a maximal straight-line instruction sequence, per
// spec.md §3: only the last instruction may be a terminator, and
// preds/succs must be mutually consistent.
type BasicBlock struct {
	Label   string
	Instrs  []Instr
	Preds   []int
	Succs   []int
}

// Last returns the block's final instruction, or nil if the block is
// empty.
func (b *BasicBlock) Last() Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	return b.Instrs[len(b.Instrs)-1]
}

// Instr is the tagged-variant IR instruction interface. Every variant
// exposes Defs and Uses as specified in spec.md §3, so analyses never need
// a type switch of their own.
type Instr interface {
	// Defs returns the 0 or 1 name this instruction writes.
	Defs() []string
	// Uses returns the names this instruction reads, in syntactic order.
	Uses() []string
	// IsTerminator reports whether this instruction may only appear as a
	// block's last instruction (Br, Jmp, Ret).
	IsTerminator() bool
	// HasSideEffect reports whether dead-code elimination must keep this
	// instruction regardless of whether its result (if any) is used.
	HasSideEffect() bool
	String() string
}

// ConstInstr defines Dest with a literal value.
type ConstInstr struct {
	Dest    string
	Literal flat.Literal
}

func (i *ConstInstr) Defs() []string      { return []string{i.Dest} }
func (i *ConstInstr) Uses() []string      { return nil }
func (i *ConstInstr) IsTerminator() bool  { return false }
func (i *ConstInstr) HasSideEffect() bool { return false }
func (i *ConstInstr) String() string {
	return fmt.Sprintf("%s = const %s", i.Dest, literalString(i.Literal))
}

func literalString(l flat.Literal) string {
	switch l.Type {
	case flat.TypeInt:
		return fmt.Sprintf("%d", l.Int)
	case flat.TypeBool:
		return fmt.Sprintf("%t", l.Bool)
	case flat.TypeFloat:
		return fmt.Sprintf("%g", l.Float)
	case flat.TypeChar:
		return fmt.Sprintf("%q", l.Char)
	default:
		return "?"
	}
}

// BinaryInstr covers Add/Sub/Mul/Div/Eq/Lt/Gt/Le/Ge/And/Or: Dest = Lhs Op Rhs.
type BinaryInstr struct {
	Op   flat.OpKind
	Dest string
	Lhs  string
	Rhs  string
}

func (i *BinaryInstr) Defs() []string      { return []string{i.Dest} }
func (i *BinaryInstr) Uses() []string      { return []string{i.Lhs, i.Rhs} }
func (i *BinaryInstr) IsTerminator() bool  { return false }
func (i *BinaryInstr) HasSideEffect() bool { return false }
func (i *BinaryInstr) String() string {
	return fmt.Sprintf("%s = %s %s %s", i.Dest, i.Op, i.Lhs, i.Rhs)
}

// NotInstr: Dest = !Src.
type NotInstr struct {
	Dest string
	Src  string
}

func (i *NotInstr) Defs() []string      { return []string{i.Dest} }
func (i *NotInstr) Uses() []string      { return []string{i.Src} }
func (i *NotInstr) IsTerminator() bool  { return false }
func (i *NotInstr) HasSideEffect() bool { return false }
func (i *NotInstr) String() string      { return fmt.Sprintf("%s = not %s", i.Dest, i.Src) }

// AssignInstr is an identity copy: Dest = Src.
type AssignInstr struct {
	Dest string
	Src  string
}

func (i *AssignInstr) Defs() []string      { return []string{i.Dest} }
func (i *AssignInstr) Uses() []string      { return []string{i.Src} }
func (i *AssignInstr) IsTerminator() bool  { return false }
func (i *AssignInstr) HasSideEffect() bool { return false }
func (i *AssignInstr) String() string      { return fmt.Sprintf("%s = id %s", i.Dest, i.Src) }

// CallInstr: Dest (optional) = call Func(Args...).
type CallInstr struct {
	Dest *string
	Func string
	Args []string
}

func (i *CallInstr) Defs() []string {
	if i.Dest == nil {
		return nil
	}
	return []string{*i.Dest}
}
func (i *CallInstr) Uses() []string      { return append([]string(nil), i.Args...) }
func (i *CallInstr) IsTerminator() bool  { return false }
func (i *CallInstr) HasSideEffect() bool { return true }
func (i *CallInstr) String() string {
	args := strings.Join(i.Args, " ")
	if i.Dest != nil {
		return fmt.Sprintf("%s = call %s %s", *i.Dest, i.Func, args)
	}
	return fmt.Sprintf("call %s %s", i.Func, args)
}

// BrInstr is a conditional branch terminator.
type BrInstr struct {
	Cond string
	Then string
	Else string
}

func (i *BrInstr) Defs() []string      { return nil }
func (i *BrInstr) Uses() []string      { return []string{i.Cond} }
func (i *BrInstr) IsTerminator() bool  { return true }
func (i *BrInstr) HasSideEffect() bool { return true }
func (i *BrInstr) String() string      { return fmt.Sprintf("br %s %s %s", i.Cond, i.Then, i.Else) }

// JmpInstr is an unconditional jump terminator.
type JmpInstr struct {
	Label string
}

func (i *JmpInstr) Defs() []string      { return nil }
func (i *JmpInstr) Uses() []string      { return nil }
func (i *JmpInstr) IsTerminator() bool  { return true }
func (i *JmpInstr) HasSideEffect() bool { return true }
func (i *JmpInstr) String() string      { return fmt.Sprintf("jmp %s", i.Label) }

// RetInstr is a return terminator, optionally carrying one value.
type RetInstr struct {
	Args []string
}

func (i *RetInstr) Defs() []string      { return nil }
func (i *RetInstr) Uses() []string      { return append([]string(nil), i.Args...) }
func (i *RetInstr) IsTerminator() bool  { return true }
func (i *RetInstr) HasSideEffect() bool { return true }
func (i *RetInstr) String() string      { return "ret " + strings.Join(i.Args, " ") }

// PhiInstr merges values along the owning block's predecessor edges;
// Sources is positionally aligned with the owning BasicBlock's Preds.
type PhiInstr struct {
	Dest    string
	Sources []string
}

func (i *PhiInstr) Defs() []string { return []string{i.Dest} }
func (i *PhiInstr) Uses() []string {
	var uses []string
	for _, s := range i.Sources {
		if s != "" {
			uses = append(uses, s)
		}
	}
	return uses
}
func (i *PhiInstr) IsTerminator() bool  { return false }
func (i *PhiInstr) HasSideEffect() bool { return false }
func (i *PhiInstr) String() string {
	return fmt.Sprintf("%s = phi %s", i.Dest, strings.Join(i.Sources, " "))
}

// PrintInstr prints its values; pure in the sense of not defining
// anything, but side-effecting so DCE must keep it.
type PrintInstr struct {
	Values []string
}

func (i *PrintInstr) Defs() []string      { return nil }
func (i *PrintInstr) Uses() []string      { return append([]string(nil), i.Values...) }
func (i *PrintInstr) IsTerminator() bool  { return false }
func (i *PrintInstr) HasSideEffect() bool { return true }
func (i *PrintInstr) String() string      { return "print " + strings.Join(i.Values, " ") }
