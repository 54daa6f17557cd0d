package application

import (
	"context"
	"time"
)

// DefaultPacing keeps oracle traffic at 50 calls per minute.
const DefaultPacing = time.Minute / 50

// FixedPacer waits a constant interval on every call.
type FixedPacer struct {
	Interval time.Duration
}

func (p FixedPacer) Wait(ctx context.Context) error {
	if p.Interval <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
