// Package validate is the front-end validation pass shared by both
// adapters: it enforces the arity/type contracts spec.md §6-§7 assumes
// the core already holds, before CFG construction ever sees the program.
// It is a two-pass check (collect declarations, then check each function
// body) trimmed to what a flat three-address IR needs: no type inference,
// no struct resolution.
package validate

import (
	"fmt"

	"github.com/wizardengineer/bril2riscv/internal/errors"
	"github.com/wizardengineer/bril2riscv/internal/flat"
)

// Check enforces: main exists; no duplicate function names; every call
// target is declared with a matching argument count; every op's operand
// count matches its arity; every br/jmp label resolves within its own
// function.
func Check(prog *flat.Program) error {
	byName := make(map[string]*flat.Function)
	for _, fn := range prog.Functions {
		if _, dup := byName[fn.Name]; dup {
			return errors.ParseError(fmt.Sprintf("duplicate function name %q", fn.Name), errors.Position{Function: fn.Name})
		}
		byName[fn.Name] = fn
	}

	if _, ok := byName["main"]; !ok {
		return errors.NoMainFunction()
	}

	for _, fn := range prog.Functions {
		if err := checkFunction(fn, byName); err != nil {
			return err
		}
	}
	return nil
}

func checkFunction(fn *flat.Function, byName map[string]*flat.Function) error {
	labels := make(map[string]bool)
	for _, instr := range fn.Instrs {
		if instr.IsLabel() {
			labels[instr.Label] = true
		}
	}

	for idx, instr := range fn.Instrs {
		if instr.IsLabel() {
			continue
		}
		pos := errors.Position{Function: fn.Name, InstrIndex: idx}
		op := instr.Op

		if err := checkArity(op, pos); err != nil {
			return err
		}

		switch op.Kind {
		case flat.OpCall:
			callee, ok := byName[op.FuncName]
			if !ok {
				return errors.ParseError(fmt.Sprintf("call to undeclared function %q", op.FuncName), pos)
			}
			if len(op.Args) != len(callee.Args) {
				return errors.BadNumFuncArgs(len(callee.Args), len(op.Args))
			}
		case flat.OpJmp:
			if !labels[op.Label] {
				return errors.UnresolvedLabel(op.Label, labelNames(labels), pos)
			}
		case flat.OpBr:
			if !labels[op.ThenLabel] {
				return errors.UnresolvedLabel(op.ThenLabel, labelNames(labels), pos)
			}
			if !labels[op.ElseLabel] {
				return errors.UnresolvedLabel(op.ElseLabel, labelNames(labels), pos)
			}
		}
	}
	return nil
}

// arity gives each op's expected operand count. Variadic or structurally
// checked ops (print, ret, call, br, jmp, speculate/commit/guard/undef)
// have no entry; checkArity skips them before consulting this table.
var arity = map[flat.OpKind]int{
	flat.OpAdd: 2, flat.OpSub: 2, flat.OpMul: 2, flat.OpDiv: 2,
	flat.OpEq: 2, flat.OpLt: 2, flat.OpGt: 2, flat.OpLe: 2, flat.OpGe: 2,
	flat.OpAnd: 2, flat.OpOr: 2,
	flat.OpNot: 1, flat.OpId: 1,
	flat.OpConst: 0,
	flat.OpNop:   0,
	flat.OpAlloc: 1, flat.OpLoad: 1, flat.OpFree: 1,
	flat.OpStore:  2,
	flat.OpPtrAdd: 2,
	flat.OpFAdd:   2, flat.OpFSub: 2, flat.OpFMul: 2, flat.OpFDiv: 2,
	flat.OpFEq: 2, flat.OpFLt: 2, flat.OpFGt: 2, flat.OpFLe: 2, flat.OpFGe: 2,
	flat.OpCEq: 2, flat.OpCLt: 2, flat.OpCGt: 2, flat.OpCLe: 2, flat.OpCGe: 2,
	flat.OpChar2Int: 1, flat.OpInt2Char: 1,
	flat.OpFloat2Bits: 1, flat.OpBits2Float: 1,
	flat.OpSet: 2, flat.OpGet: 1,
}

func checkArity(op *flat.Op, pos errors.Position) error {
	switch op.Kind {
	case flat.OpPrint, flat.OpRet, flat.OpCall,
		flat.OpBr, flat.OpJmp,
		flat.OpSpeculate, flat.OpCommit, flat.OpGuard, flat.OpUndef:
		return nil // variadic, or arity checked structurally elsewhere
	}
	want, known := arity[op.Kind]
	if !known {
		return errors.ParseError("unrecognized op "+string(op.Kind), pos)
	}
	if len(op.Args) != want {
		return errors.ParseError(
			fmt.Sprintf("%s expects %d operand(s), got %d", op.Kind, want, len(op.Args)), pos)
	}
	return nil
}

func labelNames(labels map[string]bool) []string {
	names := make([]string, 0, len(labels))
	for l := range labels {
		names = append(names, l)
	}
	return names
}

// CheckCallArgs type-checks CLI-supplied string arguments against main's
// declared parameter types, per spec.md §6.
func CheckCallArgs(main *flat.Function, raw []string) error {
	if len(raw) != len(main.Args) {
		return errors.BadNumFuncArgs(len(main.Args), len(raw))
	}
	for i, arg := range main.Args {
		if !parsesAs(arg.Type, raw[i]) {
			return errors.BadFuncArgType(arg.Name, arg.Type.String(), raw[i])
		}
	}
	return nil
}

func parsesAs(t flat.Type, s string) bool {
	switch t {
	case flat.TypeBool:
		return s == "true" || s == "false"
	case flat.TypeInt:
		if s == "" {
			return false
		}
		start := 0
		if s[0] == '-' {
			start = 1
		}
		if start >= len(s) {
			return false
		}
		for _, r := range s[start:] {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	case flat.TypeFloat:
		seenDot := false
		if s == "" {
			return false
		}
		for i, r := range s {
			if r == '.' && !seenDot {
				seenDot = true
				continue
			}
			if r == '-' && i == 0 {
				continue
			}
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	case flat.TypeChar:
		return len([]rune(s)) == 1
	default:
		return false
	}
}
