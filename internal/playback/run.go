package playback

import (
	"context"
	"time"
)

// AfterFunc waits for d, like time.After.
type AfterFunc func(d time.Duration) <-chan time.Time

// Run drives s from tick until the run finishes, is superseded, or ctx is
// done. It uses a single goroutine, so the sink is never called concurrently.
func Run(ctx context.Context, s *Scheduler, tick Tick, after AfterFunc) error {
	if after == nil {
		after = time.After
	}
	for s.Pending(tick) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-after(s.Interval()):
		}
		tick, _ = s.Fire(tick)
	}
	return nil
}
