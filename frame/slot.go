package frame

import "sync/atomic"

// Slot is a single-entry mailbox between a producer and a consumer thread.
// Storing overwrites whatever is pending and releases it; taking empties the
// slot. Neither side ever blocks.
type Slot struct {
	pending atomic.Pointer[Frame]
	drops   atomic.Uint64
	closed  atomic.Bool
}

func NewSlot() *Slot {
	return &Slot{}
}

// Store publishes f, releasing any frame that was never taken. Storing into a
// closed slot releases f immediately.
func (s *Slot) Store(f *Frame) {
	if f == nil {
		return
	}
	if s.closed.Load() {
		f.Release()
		return
	}
	if old := s.pending.Swap(f); old != nil {
		s.drops.Add(1)
		old.Release()
	}
	// Close may have drained the slot between the check and the swap.
	if s.closed.Load() {
		if late := s.pending.Swap(nil); late != nil {
			late.Release()
		}
	}
}

// StoreIfEmpty publishes f only when nothing newer is pending. It reports
// whether f was stored; on false the caller still owns f.
func (s *Slot) StoreIfEmpty(f *Frame) bool {
	if f == nil || s.closed.Load() {
		return false
	}
	if !s.pending.CompareAndSwap(nil, f) {
		return false
	}
	if s.closed.Load() {
		if late := s.pending.Swap(nil); late != nil {
			late.Release()
		}
	}
	return true
}

// Take removes and returns the pending frame. ok is false when the slot was
// empty.
func (s *Slot) Take() (f *Frame, ok bool) {
	f = s.pending.Swap(nil)
	return f, f != nil
}

// Pending reports whether a frame is waiting to be taken.
func (s *Slot) Pending() bool {
	return s.pending.Load() != nil
}

// Drops returns how many frames were overwritten before being taken.
func (s *Slot) Drops() uint64 {
	return s.drops.Load()
}

// Close releases the pending frame and makes later stores release their frame
// immediately.
func (s *Slot) Close() {
	s.closed.Store(true)
	if f := s.pending.Swap(nil); f != nil {
		f.Release()
	}
}
