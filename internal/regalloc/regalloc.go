// Package regalloc implements linear-scan register allocation with
// spilling over a machine.Function's virtual registers, per spec.md §4.9.
package regalloc

import (
	"sort"

	"github.com/wizardengineer/bril2riscv/internal/machine"
)

// Interval is a virtual register's live range in flat global
// instruction-index space.
type Interval struct {
	VReg  int
	Start int
	End   int
}

// Assignment records what a virtual register was given: either a
// physical register, or a spill slot (a stack home at a non-negative
// offset from sp, see slotOffset).
type Assignment struct {
	Phys    machine.PhysReg
	Spilled bool
	Slot    int // slot index when Spilled; slots are 8 bytes apart
}

// BuildIntervals numbers fn's instructions by a preorder traversal of
// its blocks and derives, for every virtual register, the smallest
// index at which it is defined to the largest index at which it is
// used or defined.
func BuildIntervals(fn *machine.Function) []Interval {
	spans := make(map[int]*Interval)
	order := make([]int, 0)

	idx := 0
	touch := func(id int) {
		iv, ok := spans[id]
		if !ok {
			iv = &Interval{VReg: id, Start: idx, End: idx}
			spans[id] = iv
			order = append(order, id)
			return
		}
		if idx < iv.Start {
			iv.Start = idx
		}
		if idx > iv.End {
			iv.End = idx
		}
	}

	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			for _, d := range instr.Defs() {
				if !d.IsFixed {
					touch(d.ID)
				}
			}
			for _, u := range instr.Uses() {
				if !u.IsFixed {
					touch(u.ID)
				}
			}
			idx++
		}
	}

	sort.Ints(order)
	intervals := make([]Interval, 0, len(order))
	for _, id := range order {
		intervals = append(intervals, *spans[id])
	}
	return intervals
}

// Allocate runs linear scan over fn's virtual-register intervals and
// mutates fn in place: every VReg reference becomes a physical
// register, with loads/stores inserted around uses/defs of spilled
// registers. Returns the number of 8-byte spill slots reserved.
func Allocate(fn *machine.Function) int {
	intervals := BuildIntervals(fn)
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].Start != intervals[j].Start {
			return intervals[i].Start < intervals[j].Start
		}
		return intervals[i].VReg < intervals[j].VReg
	})

	byStart := make(map[int]*Interval, len(intervals))
	for i := range intervals {
		byStart[intervals[i].VReg] = &intervals[i]
	}

	pool := machine.GeneralPurposePool()
	free := append([]machine.PhysReg(nil), pool...)

	assignment := make(map[int]Assignment)
	var active []*Interval
	nextSlot := 0

	popFree := func() machine.PhysReg {
		r := free[0]
		free = free[1:]
		return r
	}
	pushFree := func(r machine.PhysReg) {
		free = append(free, r)
	}

	for i := range intervals {
		cur := &intervals[i]

		// 1. expire
		var stillActive []*Interval
		for _, a := range active {
			if a.End < cur.Start {
				if asn, ok := assignment[a.VReg]; ok && !asn.Spilled {
					pushFree(asn.Phys)
				}
			} else {
				stillActive = append(stillActive, a)
			}
		}
		active = stillActive
		sort.Slice(active, func(i, j int) bool { return active[i].End < active[j].End })

		if len(active) == len(pool) {
			// 2. spill: the active interval with the largest end
			spillCandidate := active[len(active)-1]
			if spillCandidate.End > cur.End {
				// evict spillCandidate, hand its register to cur
				evicted := assignment[spillCandidate.VReg]
				assignment[cur.VReg] = Assignment{Phys: evicted.Phys}
				assignment[spillCandidate.VReg] = Assignment{Spilled: true, Slot: nextSlot}
				nextSlot++
				active[len(active)-1] = cur
				sort.Slice(active, func(i, j int) bool { return active[i].End < active[j].End })
				continue
			}
			assignment[cur.VReg] = Assignment{Spilled: true, Slot: nextSlot}
			nextSlot++
			continue
		}
		// 3. allocate a free register
		reg := popFree()
		assignment[cur.VReg] = Assignment{Phys: reg}
		active = append(active, cur)
		sort.Slice(active, func(i, j int) bool { return active[i].End < active[j].End })
	}

	rewrite(fn, assignment)
	return nextSlot
}
