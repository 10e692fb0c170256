package interp

import (
	"fmt"
	"io"
	"math"

	"github.com/wizardengineer/bril2riscv/internal/errors"
	"github.com/wizardengineer/bril2riscv/internal/flat"
)

// Interpreter executes a compiled flat.Program directly, per spec.md
// §4.11: a frame-stack environment, a leak-checked heap, and a dynamic
// instruction counter.
type Interpreter struct {
	prog    *program
	env     *environment
	heap    *heap
	shadow  map[int]Value // Set/Get speculative shadow environment
	out     io.Writer
	dynInst int64
}

// New builds an interpreter for prog, writing Print output to out.
func New(prog *flat.Program, out io.Writer) *Interpreter {
	return &Interpreter{
		prog:   compile(prog),
		env:    newEnvironment(0),
		heap:   newHeap(),
		shadow: make(map[int]Value),
		out:    out,
	}
}

// DynInstCount returns the number of instructions executed so far.
func (it *Interpreter) DynInstCount() int64 { return it.dynInst }

// Run looks up "main" and executes it with the given arguments, per
// spec.md §6 ("CLI arguments are bound positionally to main's
// parameters"). On normal return, asserts the heap is empty.
func (it *Interpreter) Run(args []Value) error {
	main, ok := it.prog.functions["main"]
	if !ok {
		return errors.NoMainFunction()
	}
	if len(args) != len(main.args) {
		return errors.BadNumFuncArgs(len(main.args), len(args))
	}

	it.env.pushFrame(main.numVars)
	for i, v := range args {
		it.env.set(i, v)
	}
	_, err := it.execFunction(main)
	it.env.popFrame()
	if err != nil {
		return err
	}

	if !it.heap.isEmpty() {
		return errors.MemLeak(len(it.heap.memory), errors.Position{Function: "main"})
	}
	return nil
}

func pos(fn *function, pc int) errors.Position {
	return errors.Position{Function: fn.name, InstrIndex: pc}
}

// execFunction runs fn's instruction stream against the interpreter's
// currently-active frame, returning the Ret value (if any).
func (it *Interpreter) execFunction(fn *function) (*Value, error) {
	pc := 0
	for pc < len(fn.instrs) {
		op := fn.instrs[pc]
		it.dynInst++

		switch op.Kind {
		case flat.OpConst:
			it.env.set(fn.id(op.Dest), literalToValue(op.Literal))

		case flat.OpAdd, flat.OpSub, flat.OpMul, flat.OpDiv:
			a, b := it.intArg(fn, op, 0), it.intArg(fn, op, 1)
			if op.Kind == flat.OpDiv && b == 0 {
				return nil, errors.DivisionByZero(pos(fn, pc))
			}
			it.env.set(fn.id(op.Dest), IntValue(intBinOp(op.Kind, a, b)))

		case flat.OpEq, flat.OpLt, flat.OpGt, flat.OpLe, flat.OpGe:
			a, b := it.intArg(fn, op, 0), it.intArg(fn, op, 1)
			it.env.set(fn.id(op.Dest), BoolValue(intCompare(op.Kind, a, b)))

		case flat.OpAnd, flat.OpOr:
			a, b := it.boolArg(fn, op, 0), it.boolArg(fn, op, 1)
			var r bool
			if op.Kind == flat.OpAnd {
				r = a && b
			} else {
				r = a || b
			}
			it.env.set(fn.id(op.Dest), BoolValue(r))

		case flat.OpNot:
			it.env.set(fn.id(op.Dest), BoolValue(!it.boolArg(fn, op, 0)))

		case flat.OpId:
			it.env.set(fn.id(op.Dest), it.env.get(fn.id(op.Args[0])))

		case flat.OpPrint:
			it.printValues(fn, op)

		case flat.OpNop:
			// no-op

		case flat.OpJmp:
			target, ok := fn.labelIndex[op.Label]
			if !ok {
				return nil, errors.UnresolvedLabel(op.Label, labelNames(fn), pos(fn, pc))
			}
			pc = target
			continue

		case flat.OpBr:
			cond := it.boolArg(fn, op, 0)
			label := op.ElseLabel
			if cond {
				label = op.ThenLabel
			}
			target, ok := fn.labelIndex[label]
			if !ok {
				return nil, errors.UnresolvedLabel(label, labelNames(fn), pos(fn, pc))
			}
			pc = target
			continue

		case flat.OpRet:
			if len(op.Args) > 0 {
				v := it.env.get(fn.id(op.Args[0]))
				return &v, nil
			}
			return nil, nil

		case flat.OpCall:
			result, err := it.call(fn, op, pc)
			if err != nil {
				return nil, err
			}
			if op.Dest != "" && result != nil {
				it.env.set(fn.id(op.Dest), *result)
			}

		case flat.OpAlloc:
			n := it.intArg(fn, op, 0)
			v, err := it.heap.alloc(n, pos(fn, pc))
			if err != nil {
				return nil, err
			}
			it.env.set(fn.id(op.Dest), v)

		case flat.OpFree:
			p := it.ptrArg(fn, op, 0)
			if err := it.heap.free(p, pos(fn, pc)); err != nil {
				return nil, err
			}

		case flat.OpStore:
			p := it.ptrArg(fn, op, 0)
			v := it.env.get(fn.id(op.Args[1]))
			if err := it.heap.write(p, v, pos(fn, pc)); err != nil {
				return nil, err
			}

		case flat.OpLoad:
			p := it.ptrArg(fn, op, 0)
			v, err := it.heap.read(p, pos(fn, pc))
			if err != nil {
				return nil, err
			}
			it.env.set(fn.id(op.Dest), v)

		case flat.OpPtrAdd:
			p := it.ptrArg(fn, op, 0)
			delta := it.intArg(fn, op, 1)
			it.env.set(fn.id(op.Dest), PointerValue(p.Add(delta)))

		case flat.OpFAdd, flat.OpFSub, flat.OpFMul, flat.OpFDiv:
			a, b := it.floatArg(fn, op, 0), it.floatArg(fn, op, 1)
			it.env.set(fn.id(op.Dest), FloatValue(floatBinOp(op.Kind, a, b)))

		case flat.OpFEq, flat.OpFLt, flat.OpFGt, flat.OpFLe, flat.OpFGe:
			a, b := it.floatArg(fn, op, 0), it.floatArg(fn, op, 1)
			it.env.set(fn.id(op.Dest), BoolValue(floatCompare(op.Kind, a, b)))

		case flat.OpCEq, flat.OpCLt, flat.OpCGt, flat.OpCLe, flat.OpCGe:
			a, b := it.charArg(fn, op, 0), it.charArg(fn, op, 1)
			it.env.set(fn.id(op.Dest), BoolValue(charCompare(op.Kind, a, b)))

		case flat.OpChar2Int:
			c := it.charArg(fn, op, 0)
			it.env.set(fn.id(op.Dest), IntValue(int64(c)))

		case flat.OpInt2Char:
			n := it.intArg(fn, op, 0)
			if n < 0 || n > 0x10FFFF {
				return nil, errors.TypeCoercion(fmt.Sprintf("int2char: %d is not a valid unicode scalar value", n), pos(fn, pc))
			}
			it.env.set(fn.id(op.Dest), CharValue(rune(n)))

		case flat.OpFloat2Bits:
			f := it.floatArg(fn, op, 0)
			it.env.set(fn.id(op.Dest), IntValue(int64(math.Float64bits(f))))

		case flat.OpBits2Float:
			n := it.intArg(fn, op, 0)
			it.env.set(fn.id(op.Dest), FloatValue(math.Float64frombits(uint64(n))))

		case flat.OpSet:
			it.shadow[fn.id(op.Args[0])] = it.env.get(fn.id(op.Args[1]))

		case flat.OpGet:
			v, ok := it.shadow[fn.id(op.Args[0])]
			if !ok {
				v = Value{}
			}
			it.env.set(fn.id(op.Dest), v)

		case flat.OpSpeculate, flat.OpCommit, flat.OpGuard, flat.OpUndef:
			return nil, errors.Unimplemented(string(op.Kind), pos(fn, pc))

		default:
			return nil, errors.ParseError("unrecognized op "+string(op.Kind), pos(fn, pc))
		}

		pc++
	}
	return nil, nil
}

func (it *Interpreter) call(caller *function, op *flat.Op, pc int) (*Value, error) {
	callee, ok := it.prog.functions[op.FuncName]
	if !ok {
		return nil, errors.ParseError("call to unknown function "+op.FuncName, pos(caller, pc))
	}
	if len(op.Args) != len(callee.args) {
		return nil, errors.BadNumFuncArgs(len(callee.args), len(op.Args))
	}

	argVals := make([]Value, len(op.Args))
	for i, a := range op.Args {
		argVals[i] = it.env.get(caller.id(a))
	}

	it.env.pushFrame(callee.numVars)
	for i, v := range argVals {
		it.env.set(i, v)
	}
	result, err := it.execFunction(callee)
	it.env.popFrame()
	return result, err
}

func (it *Interpreter) printValues(fn *function, op *flat.Op) {
	for i, a := range op.Args {
		if i > 0 {
			fmt.Fprint(it.out, " ")
		}
		fmt.Fprint(it.out, it.env.get(fn.id(a)).String())
	}
	fmt.Fprintln(it.out)
}

func (it *Interpreter) intArg(fn *function, op *flat.Op, i int) int64 {
	return it.env.get(fn.id(op.Args[i])).Int
}
func (it *Interpreter) boolArg(fn *function, op *flat.Op, i int) bool {
	return it.env.get(fn.id(op.Args[i])).Bool
}
func (it *Interpreter) floatArg(fn *function, op *flat.Op, i int) float64 {
	return it.env.get(fn.id(op.Args[i])).Float
}
func (it *Interpreter) charArg(fn *function, op *flat.Op, i int) rune {
	return it.env.get(fn.id(op.Args[i])).Char
}
func (it *Interpreter) ptrArg(fn *function, op *flat.Op, i int) Pointer {
	return it.env.get(fn.id(op.Args[i])).Ptr
}

func labelNames(fn *function) []string {
	names := make([]string, 0, len(fn.labelIndex))
	for l := range fn.labelIndex {
		names = append(names, l)
	}
	return names
}

func literalToValue(l flat.Literal) Value {
	switch l.Type {
	case flat.TypeInt:
		return IntValue(l.Int)
	case flat.TypeBool:
		return BoolValue(l.Bool)
	case flat.TypeFloat:
		return FloatValue(l.Float)
	case flat.TypeChar:
		return CharValue(l.Char)
	default:
		return Value{}
	}
}

func intBinOp(op flat.OpKind, a, b int64) int64 {
	switch op {
	case flat.OpAdd:
		return a + b
	case flat.OpSub:
		return a - b
	case flat.OpMul:
		return a * b
	case flat.OpDiv:
		return a / b
	default:
		return 0
	}
}

func intCompare(op flat.OpKind, a, b int64) bool {
	switch op {
	case flat.OpEq:
		return a == b
	case flat.OpLt:
		return a < b
	case flat.OpGt:
		return a > b
	case flat.OpLe:
		return a <= b
	case flat.OpGe:
		return a >= b
	default:
		return false
	}
}

func floatBinOp(op flat.OpKind, a, b float64) float64 {
	switch op {
	case flat.OpFAdd:
		return a + b
	case flat.OpFSub:
		return a - b
	case flat.OpFMul:
		return a * b
	case flat.OpFDiv:
		return a / b
	default:
		return 0
	}
}

func floatCompare(op flat.OpKind, a, b float64) bool {
	switch op {
	case flat.OpFEq:
		return a == b
	case flat.OpFLt:
		return a < b
	case flat.OpFGt:
		return a > b
	case flat.OpFLe:
		return a <= b
	case flat.OpFGe:
		return a >= b
	default:
		return false
	}
}

func charCompare(op flat.OpKind, a, b rune) bool {
	switch op {
	case flat.OpCEq:
		return a == b
	case flat.OpCLt:
		return a < b
	case flat.OpCGt:
		return a > b
	case flat.OpCLe:
		return a <= b
	case flat.OpCGe:
		return a >= b
	default:
		return false
	}
}
