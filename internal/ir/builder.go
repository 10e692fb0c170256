package ir

import (
	"github.com/wizardengineer/bril2riscv/internal/errors"
	"github.com/wizardengineer/bril2riscv/internal/flat"
)

// BuildProgram converts a flat.Program into CFG form, function by
// function, per spec.md §4.1. Grounded on the block-splitting and
// edge-wiring recipe in original_source/bril-ir/src/cfg.rs, with the
// fall-through off-by-one (spec.md §9's Open Question) fixed.
func BuildProgram(prog *flat.Program) (*Program, error) {
	out := &Program{}
	for _, fn := range prog.Functions {
		irFn, err := buildFunction(fn)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, irFn)
	}
	return out, nil
}

func buildFunction(fn *flat.Function) (*Function, error) {
	irFn := &Function{
		Name:       fn.Name,
		Args:       fn.Args,
		ReturnType: fn.ReturnType,
	}

	if err := splitIntoBlocks(irFn, fn); err != nil {
		return nil, err
	}
	if err := wireBlockEdges(irFn); err != nil {
		return nil, err
	}
	return irFn, nil
}

func splitIntoBlocks(fn *Function, flatFn *flat.Function) error {
	addBlock := func(label string) *BasicBlock {
		b := &BasicBlock{Label: label}
		fn.Blocks = append(fn.Blocks, b)
		return b
	}

	current := addBlock("entry")

	for idx, instr := range flatFn.Instrs {
		if instr.IsLabel() {
			current = addBlock(instr.Label)
			continue
		}

		lowered, err := lowerOp(instr.Op, flatFn.Name, idx)
		if err != nil {
			return err
		}
		if lowered != nil {
			current.Instrs = append(current.Instrs, lowered)
		}
	}

	return nil
}

// wireBlockEdges wires successor/predecessor edges from each block's
// terminator, per spec.md §4.1. Unlike the broken original
// (`curr+1 < blocks.len() - 1`, which drops the fall-through edge out of
// the second-to-last block), this uses `curr+1 < len(blocks)`.
func wireBlockEdges(fn *Function) error {
	labelIndex := func(label string) (int, bool) {
		idx := fn.BlockByLabel(label)
		return idx, idx >= 0
	}

	addEdge := func(from, to int) {
		fn.Blocks[from].Succs = append(fn.Blocks[from].Succs, to)
		fn.Blocks[to].Preds = append(fn.Blocks[to].Preds, from)
	}

	for i, block := range fn.Blocks {
		last := block.Last()
		switch term := last.(type) {
		case *BrInstr:
			thenIdx, ok := labelIndex(term.Then)
			if !ok {
				return unresolvedLabel(fn, term.Then)
			}
			elseIdx, ok := labelIndex(term.Else)
			if !ok {
				return unresolvedLabel(fn, term.Else)
			}
			addEdge(i, thenIdx)
			addEdge(i, elseIdx)
		case *JmpInstr:
			target, ok := labelIndex(term.Label)
			if !ok {
				return unresolvedLabel(fn, term.Label)
			}
			addEdge(i, target)
		case *RetInstr:
			// no outgoing edge
		default:
			// Empty block, or a non-terminating last instruction: fall
			// through to the textually next block, if one exists.
			if i+1 < len(fn.Blocks) {
				addEdge(i, i+1)
			}
		}
	}

	return nil
}

func unresolvedLabel(fn *Function, target string) error {
	var known []string
	for _, b := range fn.Blocks {
		known = append(known, b.Label)
	}
	return errors.UnresolvedLabel(target, known, errors.Position{Function: fn.Name})
}

// lowerOp translates one flat.Op into the matching ir.Instr variant. Ops
// outside the core instruction set (memory, float, char, speculation) are
// interpreter-only per spec.md §4.11 and never reach CFG construction in a
// well-formed program; encountering one here is a back-end contract
// violation, not a front-end parse error.
func lowerOp(op *flat.Op, fnName string, idx int) (Instr, error) {
	pos := errors.Position{Function: fnName, InstrIndex: idx}

	switch op.Kind {
	case flat.OpConst:
		return &ConstInstr{Dest: op.Dest, Literal: op.Literal}, nil
	case flat.OpAdd, flat.OpSub, flat.OpMul, flat.OpDiv,
		flat.OpEq, flat.OpLt, flat.OpGt, flat.OpLe, flat.OpGe,
		flat.OpAnd, flat.OpOr:
		return &BinaryInstr{Op: op.Kind, Dest: op.Dest, Lhs: op.Args[0], Rhs: op.Args[1]}, nil
	case flat.OpNot:
		return &NotInstr{Dest: op.Dest, Src: op.Args[0]}, nil
	case flat.OpId:
		return &AssignInstr{Dest: op.Dest, Src: op.Args[0]}, nil
	case flat.OpCall:
		var dest *string
		if op.Dest != "" {
			d := op.Dest
			dest = &d
		}
		return &CallInstr{Dest: dest, Func: op.FuncName, Args: op.Args}, nil
	case flat.OpBr:
		return &BrInstr{Cond: op.Args[0], Then: op.ThenLabel, Else: op.ElseLabel}, nil
	case flat.OpJmp:
		return &JmpInstr{Label: op.Label}, nil
	case flat.OpRet:
		return &RetInstr{Args: op.Args}, nil
	case flat.OpPhi:
		return &PhiInstr{Dest: op.Dest, Sources: op.Sources}, nil
	case flat.OpPrint:
		return &PrintInstr{Values: op.Args}, nil
	case flat.OpNop:
		return nil, nil
	default:
		return nil, errors.NewError(errors.ErrorUnsupportedBackend,
			"op "+string(op.Kind)+" is interpreter-only and cannot be lowered to CFG form", pos).Build()
	}
}
