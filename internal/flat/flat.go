// Package flat holds the flat-instruction program representation produced
// by front-end adapters (the textual grammar and the JSON record decoder)
// and consumed by the CFG builder and the interpreter.
package flat

// Type is a scalar value type carried by arguments, return types, and
// literals. The back end only ever selects instructions for Int and Bool;
// Float and Char exist so the interpreter can run the full instruction set
// described by the external interface.
type Type int

const (
	TypeInt Type = iota
	TypeBool
	TypeFloat
	TypeChar
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeFloat:
		return "float"
	case TypeChar:
		return "char"
	default:
		return "unknown"
	}
}

// Arg is a named, typed function parameter.
type Arg struct {
	Name string
	Type Type
}

// Program is an ordered list of functions.
type Program struct {
	Functions []*Function
}

// FuncByName returns the function with the given name, or nil.
func (p *Program) FuncByName(name string) *Function {
	for _, f := range p.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Function is a flat (pre-CFG) function: a name, typed arguments, an
// optional return type, and an ordered sequence of flat instructions
// including labels.
type Function struct {
	Name       string
	Args       []Arg
	ReturnType *Type
	Instrs     []Instr
}

// Instr is either a bare label or an operation. Exactly one of Label/Op is
// non-nil/non-empty.
type Instr struct {
	Label string // non-empty iff this instruction is a label
	Op    *Op
}

// IsLabel reports whether this instruction is a bare label.
func (i Instr) IsLabel() bool { return i.Label != "" }

// OpKind discriminates the Op variants per spec.md §6.
type OpKind string

const (
	OpAdd   OpKind = "add"
	OpSub   OpKind = "sub"
	OpMul   OpKind = "mul"
	OpDiv   OpKind = "div"
	OpEq    OpKind = "eq"
	OpLt    OpKind = "lt"
	OpGt    OpKind = "gt"
	OpLe    OpKind = "le"
	OpGe    OpKind = "ge"
	OpAnd   OpKind = "and"
	OpOr    OpKind = "or"
	OpNot   OpKind = "not"
	OpId    OpKind = "id"
	OpConst OpKind = "const"
	OpBr    OpKind = "br"
	OpJmp   OpKind = "jmp"
	OpCall  OpKind = "call"
	OpRet   OpKind = "ret"
	OpPrint OpKind = "print"
	OpNop   OpKind = "nop"
	OpPhi   OpKind = "phi"

	// Memory extension (interpreter-only, spec.md §4.11/§6).
	OpAlloc  OpKind = "alloc"
	OpLoad   OpKind = "load"
	OpStore  OpKind = "store"
	OpFree   OpKind = "free"
	OpPtrAdd OpKind = "ptradd"

	// Float extension (interpreter-only).
	OpFAdd OpKind = "fadd"
	OpFSub OpKind = "fsub"
	OpFMul OpKind = "fmul"
	OpFDiv OpKind = "fdiv"
	OpFEq  OpKind = "feq"
	OpFLt  OpKind = "flt"
	OpFGt  OpKind = "fgt"
	OpFLe  OpKind = "fle"
	OpFGe  OpKind = "fge"

	// Char extension (interpreter-only).
	OpCEq      OpKind = "ceq"
	OpCLt      OpKind = "clt"
	OpCGt      OpKind = "cgt"
	OpCLe      OpKind = "cle"
	OpCGe      OpKind = "cge"
	OpChar2Int OpKind = "char2int"
	OpInt2Char OpKind = "int2char"

	// Bit reinterpretation (interpreter-only).
	OpFloat2Bits OpKind = "float2bits"
	OpBits2Float OpKind = "bits2float"

	// Speculation (interpreter-only). set/get run against a shadow
	// environment; speculate/commit/guard/undef raise an Unimplemented error.
	OpSet        OpKind = "set"
	OpGet        OpKind = "get"
	OpSpeculate  OpKind = "speculate"
	OpCommit     OpKind = "commit"
	OpGuard      OpKind = "guard"
	OpUndef      OpKind = "undef"
)

// Literal is a tagged constant value, as produced by a const op.
type Literal struct {
	Type  Type
	Int   int64
	Bool  bool
	Float float64
	Char  rune
}

// Op is a single operation instruction. Fields are populated according to
// Kind; see spec.md §6 for the arity of each op.
type Op struct {
	Kind OpKind

	Dest    string // defined variable, if any
	Args    []string
	Literal Literal

	// Br
	ThenLabel string
	ElseLabel string

	// Jmp
	Label string

	// Call
	FuncName string

	// Phi: Sources is positionally aligned to the owning block's preds;
	// an empty string means "undefined along this edge".
	Sources []string

	// Position, for error reporting: the flat instruction index within
	// the owning function and the function name. Set by adapters.
	FuncPos  string
	InstrPos int
}
