package machine

import (
	"github.com/wizardengineer/bril2riscv/internal/errors"
	"github.com/wizardengineer/bril2riscv/internal/flat"
	"github.com/wizardengineer/bril2riscv/internal/ir"
)

// SelectProgram lowers every ir.Function into a machine.Function, per
// spec.md §4.8.
func SelectProgram(prog *ir.Program) ([]*Function, error) {
	var out []*Function
	for _, fn := range prog.Functions {
		mf, err := selectFunction(fn)
		if err != nil {
			return nil, err
		}
		out = append(out, mf)
	}
	return out, nil
}

// vregAllocator maps IR variable names to stable virtual register ids,
// one allocator per function as spec.md §4.8 requires.
type vregAllocator struct {
	ids  map[string]int
	next int
}

func newVregAllocator() *vregAllocator {
	return &vregAllocator{ids: make(map[string]int)}
}

func (a *vregAllocator) reg(name string) VReg {
	id, ok := a.ids[name]
	if !ok {
		id = a.next
		a.next++
		a.ids[name] = id
	}
	return Virtual(id)
}

func selectFunction(fn *ir.Function) (*Function, error) {
	alloc := newVregAllocator()
	mf := &Function{
		Name:       fn.Name,
		LabelIndex: make(map[string]int),
	}
	for _, arg := range fn.Args {
		mf.Args = append(mf.Args, alloc.reg(arg.Name))
	}

	for bi, block := range fn.Blocks {
		mf.LabelIndex[block.Label] = bi
		mb := &Block{Name: block.Label, Succs: append([]int(nil), block.Succs...)}
		for _, instr := range block.Instrs {
			lowered, err := selectInstr(instr, alloc, fn.Name)
			if err != nil {
				return nil, err
			}
			mb.Instrs = append(mb.Instrs, lowered...)
		}
		mf.Blocks = append(mf.Blocks, mb)
	}
	return mf, nil
}

func selectInstr(instr ir.Instr, alloc *vregAllocator, fnName string) ([]Instr, error) {
	switch v := instr.(type) {
	case *ir.ConstInstr:
		switch v.Literal.Type {
		case flat.TypeInt:
			return []Instr{&LiInstr{Dest: alloc.reg(v.Dest), Imm: v.Literal.Int}}, nil
		case flat.TypeBool:
			imm := int64(0)
			if v.Literal.Bool {
				imm = 1
			}
			return []Instr{&LiInstr{Dest: alloc.reg(v.Dest), Imm: imm}}, nil
		default:
			return nil, errors.NewError(errors.ErrorUnsupportedBackend,
				"float/char constants cannot be selected for the RISC-V back end",
				errors.Position{Function: fnName}).Build()
		}
	case *ir.BinaryInstr:
		op, ok := binOpFor(v.Op)
		if !ok {
			return nil, errors.NewError(errors.ErrorUnsupportedBackend,
				"op "+string(v.Op)+" has no RISC-V R-type lowering",
				errors.Position{Function: fnName}).Build()
		}
		return []Instr{&RInstr{Op: op, Dest: alloc.reg(v.Dest), Src1: alloc.reg(v.Lhs), Src2: alloc.reg(v.Rhs)}}, nil
	case *ir.NotInstr:
		// not x == (x == 0); materialize with an xor-with-one idiom via a
		// synthetic const+RInstr pair kept at Sub's arity (dest = 1 - src).
		one := alloc.reg(syntheticName(v.Dest, "not_one"))
		return []Instr{
			&LiInstr{Dest: one, Imm: 1},
			&RInstr{Op: Sub, Dest: alloc.reg(v.Dest), Src1: one, Src2: alloc.reg(v.Src)},
		}, nil
	case *ir.AssignInstr:
		return []Instr{&MvInstr{Dest: alloc.reg(v.Dest), Src: alloc.reg(v.Src)}}, nil
	case *ir.CallInstr:
		var args []VReg
		for _, a := range v.Args {
			args = append(args, alloc.reg(a))
		}
		var dest *VReg
		if v.Dest != nil {
			d := alloc.reg(*v.Dest)
			dest = &d
		}
		return []Instr{&CallInstr{Func: v.Func, Args: args, Dest: dest}}, nil
	case *ir.BrInstr:
		return []Instr{
			&BeqzInstr{Cond: alloc.reg(v.Cond), Label: v.Else},
			&JmpInstr{Label: v.Then},
		}, nil
	case *ir.JmpInstr:
		return []Instr{&JmpInstr{Label: v.Label}}, nil
	case *ir.RetInstr:
		var out []Instr
		if len(v.Args) > 0 {
			out = append(out, &MvInstr{Dest: Fixed(ArgReg(0)), Src: alloc.reg(v.Args[0])})
		}
		out = append(out, &RetInstr{})
		return out, nil
	case *ir.PrintInstr:
		var args []VReg
		for _, val := range v.Values {
			args = append(args, alloc.reg(val))
		}
		return []Instr{&PrintInstr{Args: args}}, nil
	case *ir.PhiInstr:
		// Phis are resolved to copies at the end of each predecessor block
		// by the SSA destruction step (see DestructSSA); by the time
		// selection runs on a non-SSA program, no PhiInstr should remain.
		return nil, errors.NewError(errors.ErrorUnsupportedBackend,
			"phi nodes must be destructed before instruction selection",
			errors.Position{Function: fnName}).Build()
	default:
		return nil, errors.NewError(errors.ErrorUnsupportedBackend,
			"unhandled IR instruction in selection", errors.Position{Function: fnName}).Build()
	}
}

// binOpFor maps an IR op to its RISC-V R-type opcode. Only Add/Sub/Mul/Div
// have one: comparisons (eq/lt/gt/le/ge) and logical ops (and/or) have no
// R-type lowering here and fall through to selectInstr's UnsupportedBackend
// default, so a program whose br condition comes from a comparison fails
// selection rather than reaching emit. spec.md §4.8 only names the four
// arithmetic ops; the interpreter still runs every op.
func binOpFor(op flat.OpKind) (BinOp, bool) {
	switch op {
	case flat.OpAdd:
		return Add, true
	case flat.OpSub:
		return Sub, true
	case flat.OpMul:
		return Mul, true
	case flat.OpDiv:
		return Div, true
	default:
		return "", false
	}
}

func syntheticName(base, suffix string) string {
	return base + "$" + suffix
}
