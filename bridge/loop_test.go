package bridge

import (
	"context"
	"errors"
	"testing"
	"time"
)

func runLoop(t *testing.T, h *harness, ctx context.Context) error {
	t.Helper()
	result := make(chan error, 1)
	go func() {
		result <- NewLoop(h.app, 1000).Run(ctx)
	}()
	select {
	case err := <-result:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("Run: loop did not return")
		return nil
	}
}

func TestLoopExitsWhenAllClosed(t *testing.T) {
	h := newHarness(t, ExitOnAllClosed)
	w := h.open(t, "only")
	w.shared.MarkClosed()

	if err := runLoop(t, h, context.Background()); err != nil {
		t.Errorf("Run: expected nil, got %v", err)
	}
	if h.app.Len() != 0 {
		t.Errorf("Len: expected 0, got %d", h.app.Len())
	}
}

func TestLoopUIGone(t *testing.T) {
	h := newHarness(t, DontExit)
	h.open(t, "orphan")
	h.ui.exit()

	if err := runLoop(t, h, context.Background()); !errors.Is(err, ErrUILoopGone) {
		t.Errorf("Run: expected ErrUILoopGone, got %v", err)
	}
}

func TestLoopCancelled(t *testing.T) {
	h := newHarness(t, DontExit)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.ui.exit()

	if err := runLoop(t, h, ctx); err != nil {
		t.Errorf("Run: expected nil after cancellation, got %v", err)
	}
}

func TestLoopRelaysFrames(t *testing.T) {
	h := newHarness(t, DontExit)
	w := h.open(t, "live")
	w.shared.ReportSize(32, 32)
	w.shared.ReportScale(2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for !w.out.Pending() {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	if err := runLoop(t, h, ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	f, ok := w.out.Take()
	if !ok {
		t.Fatalf("slot B: expected a relayed frame")
	}
	defer f.Release()
	if got := f.Size().Width; got != 64 {
		t.Errorf("Width: expected 64, got %d", got)
	}
}
