package buffer

import "sync"

// Buffers owns the set of open buffers and which one is selected. It
// guarantees at least one (scratch) buffer always exists, mirroring the
// original's Buffers manager.
type Buffers struct {
	mu       sync.Mutex
	items    []*TextBuffer
	selected int
}

// NewBuffers creates a manager seeded with a single scratch buffer.
func NewBuffers() *Buffers {
	return &Buffers{items: []*TextBuffer{Scratch()}}
}

// Current returns the selected buffer.
func (bs *Buffers) Current() *TextBuffer {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.items[bs.selected]
}

// All returns a snapshot slice of every open buffer.
func (bs *Buffers) All() []*TextBuffer {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	out := make([]*TextBuffer, len(bs.items))
	copy(out, bs.items)
	return out
}

// Select changes the selected buffer by id, clamped to valid range.
func (bs *Buffers) Select(id int) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.selected = clamp(id, 0, len(bs.items)-1)
}

// Change shifts the selection by dist (can be negative), clamped.
func (bs *Buffers) Change(dist int) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.selected = clamp(bs.selected+dist, 0, len(bs.items)-1)
}

// Open returns the id of an existing buffer for path, or opens a new
// one and selects it.
func (bs *Buffers) Open(path string) (int, error) {
	bs.mu.Lock()
	for i, b := range bs.items {
		if b.Path == path {
			bs.selected = i
			bs.mu.Unlock()
			return i, nil
		}
	}
	bs.mu.Unlock()

	b, err := Open(path)
	if err != nil {
		return 0, err
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.items = append(bs.items, b)
	bs.selected = len(bs.items) - 1
	return bs.selected, nil
}

// OpenScratch appends a fresh scratch buffer and selects it.
func (bs *Buffers) OpenScratch() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.items = append(bs.items, Scratch())
	bs.selected = len(bs.items) - 1
	return bs.selected
}

// CloseCurrent removes the selected buffer. If it was the last buffer,
// a fresh scratch buffer takes its place.
func (bs *Buffers) CloseCurrent() {
	bs.Close(bs.selectedIdx())
}

// Close removes the buffer at idx. If it was the last buffer, a fresh
// scratch buffer takes its place.
func (bs *Buffers) Close(idx int) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if idx < 0 || idx >= len(bs.items) {
		return
	}
	bs.items = append(bs.items[:idx], bs.items[idx+1:]...)
	if len(bs.items) == 0 {
		bs.items = append(bs.items, Scratch())
	}
	bs.selected = clamp(bs.selected, 0, len(bs.items)-1)
}

func (bs *Buffers) selectedIdx() int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.selected
}
