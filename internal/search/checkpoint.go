package search

import (
	"context"
	"time"
)

// runCheckpointTicker runs save on a fixed interval until ctx is
// cancelled, as a dedicated goroutine alongside the search loop —
// generalized from a periodic progress log line to an arbitrary save
// callback.
func runCheckpointTicker(ctx context.Context, interval time.Duration, save func()) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			save()
		}
	}
}

// AlertFunc is invoked whenever a candidate sequence enters the top-K
// contender set, so the API layer can push it out over the websocket hub.
type AlertFunc func(seq SequenceAlert)

// SequenceAlert is the payload handed to AlertFunc.
type SequenceAlert struct {
	TransformIDs []byte
	GlobalRounds int
	Score        float64
}
