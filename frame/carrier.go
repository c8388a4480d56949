package frame

// Carrier moves a frame from the render world's slot into the render phase
// and on to the UI thread's slot. A carrier is either empty or holding exactly
// one frame.
//
// Carrier is not safe for concurrent use; it is owned by the render loop.
type Carrier struct {
	held *Frame
}

// Load takes the pending frame from src, if any. A frame that was still held
// from an earlier pass is kept when src is empty and released otherwise.
func (c *Carrier) Load(src *Slot) bool {
	f, ok := src.Take()
	if !ok {
		return c.held != nil
	}
	if c.held != nil {
		c.held.Release()
	}
	c.held = f
	return true
}

func (c *Carrier) Holding() bool {
	return c.held != nil
}

// SendTo hands the held frame to dst and leaves the carrier empty.
func (c *Carrier) SendTo(dst *Slot) bool {
	if c.held == nil {
		return false
	}
	dst.Store(c.held)
	c.held = nil
	return true
}

// PutBack returns the held frame to src so it is retried next pass. If src
// already has a newer frame, the held one is released instead.
func (c *Carrier) PutBack(src *Slot) {
	if c.held == nil {
		return
	}
	if !src.StoreIfEmpty(c.held) {
		c.held.Release()
	}
	c.held = nil
}

// Drop releases the held frame.
func (c *Carrier) Drop() {
	if c.held != nil {
		c.held.Release()
		c.held = nil
	}
}
