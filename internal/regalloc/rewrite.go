package regalloc

import "github.com/wizardengineer/bril2riscv/internal/machine"

const slotSize = 8

// slotOffset gives a spill slot's byte offset from the stack pointer
// after the function prologue has reserved fn.SpillSlots*8 bytes below
// the caller's sp (see emit.writeFunction), so slot 0 sits at the new
// top of frame and slots grow upward toward the caller's frame.
func slotOffset(slot int) int {
	return slot * slotSize
}

// rewrite replaces every virtual VReg in fn with its assigned physical
// register, inserting fill/spill Lw/Sw pairs around uses and defs of
// spilled virtual registers using the two reserved scratch registers.
// Sets fn.SpillSlots to the number of slots actually assigned.
func rewrite(fn *machine.Function, assignment map[int]Assignment) {
	maxSlot := -1
	for _, a := range assignment {
		if a.Spilled && a.Slot > maxSlot {
			maxSlot = a.Slot
		}
	}
	fn.SpillSlots = maxSlot + 1

	resolve := func(v machine.VReg) machine.VReg {
		if v.IsFixed {
			return v
		}
		a, ok := assignment[v.ID]
		if !ok {
			return v
		}
		if !a.Spilled {
			return machine.Fixed(a.Phys)
		}
		return v // spilled virtuals are rewritten per-instruction below
	}

	for ai, arg := range fn.Args {
		fn.Args[ai] = resolve(arg)
	}

	for _, block := range fn.Blocks {
		var out []machine.Instr
		for _, instr := range block.Instrs {
			fills, instr, spillsOut := materializeSpills(instr, assignment, resolve)
			out = append(out, fills...)
			out = append(out, instr)
			out = append(out, spillsOut...)
		}
		block.Instrs = out
	}
}

// materializeSpills rewrites instr's operands through resolve, and for
// any operand that maps to a spilled virtual register, emits a fill
// (Lw, before) or spill (Sw, after) using the reserved scratch
// registers in place of that operand.
func materializeSpills(instr machine.Instr, assignment map[int]Assignment, resolve func(machine.VReg) machine.VReg) (fills []machine.Instr, out machine.Instr, spills []machine.Instr) {
	scratch := []machine.PhysReg{machine.ScratchA, machine.ScratchB}
	scratchUsed := 0
	fillFor := func(v machine.VReg) machine.VReg {
		if v.IsFixed {
			return v
		}
		a, ok := assignment[v.ID]
		if !ok || !a.Spilled {
			return resolve(v)
		}
		reg := scratch[scratchUsed%len(scratch)]
		scratchUsed++
		fills = append(fills, &machine.LwInstr{Dest: machine.Fixed(reg), Base: machine.Fixed(machine.RegSP), Offset: slotOffset(a.Slot)})
		return machine.Fixed(reg)
	}
	spillFor := func(v machine.VReg, written machine.VReg) {
		a, ok := assignment[v.ID]
		if v.IsFixed || !ok || !a.Spilled {
			return
		}
		spills = append(spills, &machine.SwInstr{Src: written, Base: machine.Fixed(machine.RegSP), Offset: slotOffset(a.Slot)})
	}

	switch v := instr.(type) {
	case *machine.LiInstr:
		dest := destReg(v.Dest, assignment, scratch[0])
		spillFor(v.Dest, dest)
		return fills, &machine.LiInstr{Dest: dest, Imm: v.Imm}, spills
	case *machine.RInstr:
		s1, s2 := fillFor(v.Src1), fillFor(v.Src2)
		dest := destReg(v.Dest, assignment, scratch[0])
		spillFor(v.Dest, dest)
		return fills, &machine.RInstr{Op: v.Op, Dest: dest, Src1: s1, Src2: s2}, spills
	case *machine.MvInstr:
		s := fillFor(v.Src)
		dest := destReg(v.Dest, assignment, scratch[0])
		spillFor(v.Dest, dest)
		return fills, &machine.MvInstr{Dest: dest, Src: s}, spills
	case *machine.BeqzInstr:
		cond := fillFor(v.Cond)
		return fills, &machine.BeqzInstr{Cond: cond, Label: v.Label}, spills
	case *machine.CallInstr:
		var args []machine.VReg
		for _, a := range v.Args {
			args = append(args, fillFor(a))
		}
		var dest *machine.VReg
		if v.Dest != nil {
			d := destReg(*v.Dest, assignment, scratch[0])
			spillFor(*v.Dest, d)
			dest = &d
		}
		return fills, &machine.CallInstr{Func: v.Func, Args: args, Dest: dest}, spills
	case *machine.PrintInstr:
		var args []machine.VReg
		for _, a := range v.Args {
			args = append(args, fillFor(a))
		}
		return fills, &machine.PrintInstr{Args: args}, spills
	default:
		return nil, instr, nil
	}
}

func destReg(v machine.VReg, assignment map[int]Assignment, scratch machine.PhysReg) machine.VReg {
	if v.IsFixed {
		return v
	}
	a, ok := assignment[v.ID]
	if !ok {
		return v
	}
	if a.Spilled {
		return machine.Fixed(scratch)
	}
	return machine.Fixed(a.Phys)
}
