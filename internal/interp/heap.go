package interp

import "github.com/wizardengineer/bril2riscv/internal/errors"

// heap is the interpreter's memory extension state: an integer
// base→vector map with leak detection on exit, per spec.md §3/§4.11.
type heap struct {
	memory    map[int][]Value
	nextBase  int
}

func newHeap() *heap {
	return &heap{memory: make(map[int][]Value)}
}

func (h *heap) isEmpty() bool { return len(h.memory) == 0 }

func (h *heap) alloc(n int64, pos errors.Position) (Value, error) {
	if n < 0 {
		return Value{}, errors.NewError(errors.ErrorInvalidMemoryAccess,
			"cannot allocate a negative amount of memory", pos).Build()
	}
	base := h.nextBase
	h.nextBase++
	h.memory[base] = make([]Value, n)
	return PointerValue(Pointer{Base: base}), nil
}

func (h *heap) free(p Pointer, pos errors.Position) error {
	if p.Offset != 0 {
		return errors.IllegalFree(int64(p.Base), p.Offset, pos)
	}
	if _, ok := h.memory[p.Base]; !ok {
		return errors.IllegalFree(int64(p.Base), p.Offset, pos)
	}
	delete(h.memory, p.Base)
	return nil
}

func (h *heap) write(p Pointer, v Value, pos errors.Position) error {
	vec, ok := h.memory[p.Base]
	if !ok || p.Offset < 0 || int(p.Offset) >= len(vec) {
		return errors.InvalidMemoryAccess(int64(p.Base), p.Offset, pos)
	}
	vec[p.Offset] = v
	return nil
}

func (h *heap) read(p Pointer, pos errors.Position) (Value, error) {
	vec, ok := h.memory[p.Base]
	if !ok || p.Offset < 0 || int(p.Offset) >= len(vec) {
		return Value{}, errors.InvalidMemoryAccess(int64(p.Base), p.Offset, pos)
	}
	val := vec[p.Offset]
	if val.Kind == KindUninitialized {
		return Value{}, errors.UsingUninitializedMemory(pos)
	}
	return val, nil
}
