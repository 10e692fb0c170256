package ir

import (
	"sort"
	"strconv"
)

// FormSSA inserts φ nodes at the dominance frontier of each variable's
// definition sites and renames variables via a per-variable version stack
// driven by a dominator-tree DFS, completing the Cytron recipe that
// spec.md §9 and original_source/bril-ir/src/ssa.rs leave unfinished.
//
// Renamed names are "<original>.<version>", except that version 0 keeps
// the bare original name; PhiInstr.Sources stay
// positionally aligned to the owning block's Preds, as spec.md §3
// requires, with "" standing in for a predecessor edge along which the
// variable was never defined.
func FormSSA(fn *Function, dom *DomInfo) {
	defs := collectDefSites(fn)
	placePhis(fn, dom, defs)
	rename(fn, dom)
}

// collectDefSites maps each variable name to the set of block indices
// that define it.
func collectDefSites(fn *Function) map[string][]int {
	sites := make(map[string]map[int]bool)
	for bi, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			for _, d := range instr.Defs() {
				if sites[d] == nil {
					sites[d] = make(map[int]bool)
				}
				sites[d][bi] = true
			}
		}
	}

	out := make(map[string][]int, len(sites))
	for name, set := range sites {
		var blocks []int
		for b := range set {
			blocks = append(blocks, b)
		}
		sort.Ints(blocks)
		out[name] = blocks
	}
	return out
}

// placePhis inserts an empty PhiInstr (Sources sized to Preds, all "") at
// the front of every block in the iterated dominance frontier of each
// variable's definition sites.
func placePhis(fn *Function, dom *DomInfo, defs map[string][]int) {
	hasPhi := make(map[string]map[int]bool)

	for name, sites := range defs {
		worklist := append([]int(nil), sites...)
		onWork := make(map[int]bool)
		for _, s := range worklist {
			onWork[s] = true
		}
		if hasPhi[name] == nil {
			hasPhi[name] = make(map[int]bool)
		}

		for len(worklist) > 0 {
			b := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]

			for _, d := range dom.Frontier[b] {
				if hasPhi[name][d] {
					continue
				}
				hasPhi[name][d] = true
				block := fn.Blocks[d]
				phi := &PhiInstr{Dest: name, Sources: make([]string, len(block.Preds))}
				block.Instrs = append([]Instr{phi}, block.Instrs...)

				if !onWork[d] {
					onWork[d] = true
					worklist = append(worklist, d)
				}
			}
		}
	}
}

// renameState tracks, per variable, a stack of SSA names and a monotonic
// version counter.
type renameState struct {
	counters map[string]int
	stacks   map[string][]string
}

func newRenameState() *renameState {
	return &renameState{counters: make(map[string]int), stacks: make(map[string][]string)}
}

func (s *renameState) fresh(name string) string {
	v := s.counters[name]
	s.counters[name]++
	versioned := versionedName(name, v)
	s.stacks[name] = append(s.stacks[name], versioned)
	return versioned
}

func (s *renameState) top(name string) (string, bool) {
	stack := s.stacks[name]
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1], true
}

func (s *renameState) pop(name string, n int) {
	for i := 0; i < n; i++ {
		stack := s.stacks[name]
		if len(stack) == 0 {
			return
		}
		s.stacks[name] = stack[:len(stack)-1]
	}
}

func versionedName(name string, version int) string {
	if version == 0 {
		return name
	}
	return name + "." + strconv.Itoa(version)
}

// rename walks the dominator tree depth-first, rewriting every def to a
// fresh version and every use to the current top-of-stack version,
// filling in φ sources for successor blocks before popping.
func rename(fn *Function, dom *DomInfo) {
	state := newRenameState()
	for _, arg := range fn.Args {
		state.stacks[arg.Name] = []string{arg.Name}
	}

	var visit func(b int)
	visit = func(b int) {
		block := fn.Blocks[b]
		pushed := make(map[string]int)

		for _, instr := range block.Instrs {
			if phi, ok := instr.(*PhiInstr); ok {
				newName := state.fresh(phi.Dest)
				pushed[phi.Dest]++
				phi.Dest = newName
				continue
			}

			for i, use := range instr.Uses() {
				if cur, ok := state.top(originalName(use)); ok {
					setUse(instr, i, cur)
				}
			}
			for _, d := range instr.Defs() {
				newName := state.fresh(d)
				pushed[d]++
				setDef(instr, newName)
			}
		}

		for _, succIdx := range block.Succs {
			succ := fn.Blocks[succIdx]
			predPos := indexOf(succ.Preds, b)
			if predPos < 0 {
				continue
			}
			for _, instr := range succ.Instrs {
				phi, ok := instr.(*PhiInstr)
				if !ok {
					break
				}
				name := originalName(phi.Dest)
				if cur, ok := state.top(name); ok {
					phi.Sources[predPos] = cur
				}
			}
		}

		for _, child := range dom.DomTree[b] {
			visit(child)
		}

		for name, n := range pushed {
			state.pop(originalName(name), n)
		}
	}

	if len(fn.Blocks) > 0 {
		visit(0)
	}
}

// originalName strips the SSA version suffix ("x.2" -> "x") so a rename
// pass can be re-run or inspected without double-versioning.
func originalName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			allDigits := i < len(name)-1
			for j := i + 1; j < len(name) && allDigits; j++ {
				if name[j] < '0' || name[j] > '9' {
					allDigits = false
				}
			}
			if allDigits {
				return name[:i]
			}
		}
	}
	return name
}

func indexOf(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}

// setUse and setDef rewrite an instruction's i-th use / its single def in
// place. Grounded on the variant set in types.go.
func setUse(instr Instr, i int, name string) {
	switch v := instr.(type) {
	case *BinaryInstr:
		if i == 0 {
			v.Lhs = name
		} else {
			v.Rhs = name
		}
	case *NotInstr:
		v.Src = name
	case *AssignInstr:
		v.Src = name
	case *CallInstr:
		v.Args[i] = name
	case *BrInstr:
		v.Cond = name
	case *RetInstr:
		v.Args[i] = name
	case *PrintInstr:
		v.Values[i] = name
	}
}

func setDef(instr Instr, name string) {
	switch v := instr.(type) {
	case *ConstInstr:
		v.Dest = name
	case *BinaryInstr:
		v.Dest = name
	case *NotInstr:
		v.Dest = name
	case *AssignInstr:
		v.Dest = name
	case *CallInstr:
		v.Dest = &name
	}
}
