package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nmaniam/topovis/pkg/collect"
)

// Quitting the progress view leaves nobody reading the event channel while
// collector workers may still be emitting; awaitCollect must unblock them
// and return the final result instead of deadlocking.
func TestAwaitCollectUnblocksEmitters(t *testing.T) {
	events := make(chan collect.Event, 4)
	resultCh := make(chan collectResult, 1)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		// Far more events than the buffer holds, like a large inventory.
		for i := 0; i < 50; i++ {
			events <- collect.Event{Host: fmt.Sprintf("sw%d", i), Kind: collect.EventConnecting}
		}
		close(events)
		resultCh <- collectResult{err: ctx.Err()}
	}()

	done := make(chan collectResult, 1)
	go func() { done <- awaitCollect(cancel, events, resultCh) }()

	select {
	case res := <-done:
		if !errors.Is(res.err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", res.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("collection did not unwind after the progress view exited")
	}
}
