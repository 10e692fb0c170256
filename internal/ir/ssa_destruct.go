package ir

// DestructSSA lowers phi nodes back to ordinary copies so the
// instruction selector — whose lowering table (spec.md §4.8) has no
// case for Phi — never sees one. For each PhiInstr at the front of a
// block, an AssignInstr copying Sources[i] into Dest is appended to the
// end of the i-th predecessor block, just before its terminator.
//
// This is the naive "copy insertion" scheme: it does not resolve the
// lost-copy or swap problems that arise when two phis in the same
// successor block read each other's destinations, which a production
// destructor (e.g. via parallel-copy sequencing) would need to handle.
// The instructional pipeline this package targets never produces such
// cycles, since it has no block-local variable swaps.
func DestructSSA(fn *Function) {
	for _, block := range fn.Blocks {
		var phis []*PhiInstr
		i := 0
		for i < len(block.Instrs) {
			phi, ok := block.Instrs[i].(*PhiInstr)
			if !ok {
				break
			}
			phis = append(phis, phi)
			i++
		}
		if len(phis) == 0 {
			continue
		}
		block.Instrs = block.Instrs[i:]

		for predPos, predIdx := range block.Preds {
			pred := fn.Blocks[predIdx]
			for _, phi := range phis {
				src := phi.Sources[predPos]
				if src == "" || src == phi.Dest {
					continue
				}
				copyInstr := &AssignInstr{Dest: phi.Dest, Src: src}
				insertBeforeTerminator(pred, copyInstr)
			}
		}
	}
}

func insertBeforeTerminator(block *BasicBlock, instr Instr) {
	n := len(block.Instrs)
	if n > 0 && block.Instrs[n-1].IsTerminator() {
		block.Instrs = append(block.Instrs[:n-1], append([]Instr{instr}, block.Instrs[n-1:]...)...)
		return
	}
	block.Instrs = append(block.Instrs, instr)
}
