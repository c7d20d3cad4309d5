package subscriptions

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		var zero T
		return zero
	}
}

func TestOpen_DeliversInitialSnapshot(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	defer reg.Close()

	sub := Open(context.Background(), reg, []string{"user-a"}, func(ctx context.Context) ([]string, error) {
		return []string{"hello"}, nil
	})
	defer sub.Cancel()

	snapshot := waitFor(t, sub.Updates)
	assert.Equal(t, []string{"hello"}, snapshot)
}

func TestNotify_TriggersRefresh(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	defer reg.Close()

	var calls atomic.Int32
	sub := Open(context.Background(), reg, []string{"user-a", "user-b"}, func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	})
	defer sub.Cancel()

	first := waitFor(t, sub.Updates)
	assert.Equal(t, int32(1), first)

	reg.Notify("user-b")

	second := waitFor(t, sub.Updates)
	assert.Equal(t, int32(2), second)
}

func TestNotify_UnrelatedTopicDoesNotRefresh(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	defer reg.Close()

	var calls atomic.Int32
	sub := Open(context.Background(), reg, []string{"user-a"}, func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	})
	defer sub.Cancel()

	waitFor(t, sub.Updates)

	reg.Notify("user-z")
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(1), calls.Load())
}

func TestOpen_LatestSnapshotWins(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	defer reg.Close()

	var calls atomic.Int32
	refreshed := make(chan struct{}, 16)
	sub := Open(context.Background(), reg, []string{"user-a"}, func(ctx context.Context) (int32, error) {
		n := calls.Add(1)
		refreshed <- struct{}{}
		return n, nil
	})
	defer sub.Cancel()

	// Do not read Updates while several refreshes run back to back.
	waitFor(t, refreshed)
	reg.Notify("user-a")
	waitFor(t, refreshed)
	reg.Notify("user-a")
	waitFor(t, refreshed)

	// The consumer catches up and may observe an intermediate snapshot,
	// but the final delivery is the latest one.
	deadline := time.After(2 * time.Second)
	var last int32
	for last != 3 {
		select {
		case v := <-sub.Updates:
			assert.GreaterOrEqual(t, v, last)
			last = v
		case <-deadline:
			t.Fatalf("never observed latest snapshot, last seen %d", last)
		}
	}
}

func TestOpen_QueryErrorIsTerminal(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	defer reg.Close()

	boom := errors.New("store unavailable")
	sub := Open(context.Background(), reg, []string{"user-a"}, func(ctx context.Context) ([]string, error) {
		return nil, boom
	})
	defer sub.Cancel()

	err := waitFor(t, sub.Err)
	require.ErrorIs(t, err, boom)

	// Subscription is detached; notifications are no-ops.
	reg.Notify("user-a")
	assert.Eventually(t, func() bool { return reg.ActiveCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestCancel_ReleasesRegistration(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	defer reg.Close()

	sub := Open(context.Background(), reg, []string{"user-a"}, func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	waitFor(t, sub.Updates)

	assert.Equal(t, 1, reg.ActiveCount())
	sub.Cancel()
	sub.Cancel() // idempotent

	assert.Eventually(t, func() bool { return reg.ActiveCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOpen_ResubscribeAfterCancelDeliversFreshSnapshot(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	defer reg.Close()

	query := func(ctx context.Context) (string, error) { return "snapshot", nil }

	first := Open(context.Background(), reg, []string{"user-a"}, query)
	waitFor(t, first.Updates)
	first.Cancel()

	second := Open(context.Background(), reg, []string{"user-a"}, query)
	defer second.Cancel()
	assert.Equal(t, "snapshot", waitFor(t, second.Updates))
}

func TestRegistry_CloseDropsNotifications(t *testing.T) {
	reg := NewRegistry(zap.NewNop())

	var calls atomic.Int32
	sub := Open(context.Background(), reg, []string{"user-a"}, func(ctx context.Context) (int32, error) {
		return calls.Add(1), nil
	})
	defer sub.Cancel()
	waitFor(t, sub.Updates)

	reg.Close()
	reg.Notify("user-a")
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(1), calls.Load())
}
