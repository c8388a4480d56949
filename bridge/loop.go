package bridge

import (
	"context"
	"time"
)

// DefaultPassRate is the number of render passes per second.
const DefaultPassRate = 60

// Loop runs render passes at a fixed rate on the calling goroutine.
type Loop struct {
	app  *App
	rate int
}

func NewLoop(app *App, passRate int) *Loop {
	if passRate <= 0 {
		passRate = DefaultPassRate
	}
	return &Loop{app: app, rate: passRate}
}

// Run executes passes until ctx is cancelled or the exit condition holds, in
// which case it returns nil. It returns ErrUILoopGone if the UI loop stops
// first.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.rate))
	defer ticker.Stop()

	logger.Noticef("render loop started at %d passes/s", l.rate)
	last := time.Now()
	passes := 0

	for {
		select {
		case <-ctx.Done():
			logger.Infof("render loop stopped after %d passes", passes)
			return nil
		case <-l.app.uiDone:
			if ctx.Err() != nil {
				return nil
			}
			return ErrUILoopGone
		case now := <-ticker.C:
			if err := l.app.Pass(now.Sub(last)); err != nil {
				logger.Errorf("pass %d: %v", passes, err)
			}
			last = now
			passes++

			if l.app.ShouldExit() {
				logger.Noticef("exit condition %v reached after %d passes", l.app.exit, passes)
				return nil
			}
		}
	}
}
