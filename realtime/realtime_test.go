package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeClient struct {
	mu      sync.Mutex
	updates []ScoreUpdate
	fail    bool
	closed  bool
	block   chan struct{}
}

func (f *fakeClient) WriteJSON(v interface{}) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.updates = append(f.updates, v.(ScoreUpdate))
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakeClient) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestBroadcastReachesOnlyTheEventContest(t *testing.T) {
	viewer := &fakeClient{}
	other := &fakeClient{}
	RegisterClient(101, viewer)
	RegisterClient(102, other)
	defer UnregisterClient(101, viewer)
	defer UnregisterClient(102, other)

	BroadcastScoreUpdate(ScoreUpdate{
		EventContestID: 101,
		SessionID:      7,
		TotalScore:     decimal.NullDecimal{Decimal: decimal.NewFromInt(42), Valid: true},
		UpdateType:     UpdateScore,
	})

	assert.Eventually(t, func() bool { return viewer.received() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, other.received())

	viewer.mu.Lock()
	got := viewer.updates[0]
	viewer.mu.Unlock()
	assert.Equal(t, uint(7), got.SessionID)
	assert.False(t, got.At.IsZero())
}

func TestFailingClientIsDropped(t *testing.T) {
	broken := &fakeClient{fail: true}
	RegisterClient(201, broken)
	assert.Equal(t, 1, ClientCount(201))

	BroadcastScoreUpdate(ScoreUpdate{EventContestID: 201, UpdateType: UpdateComplete})

	assert.Eventually(t, func() bool { return ClientCount(201) == 0 }, time.Second, 10*time.Millisecond)
	assert.True(t, broken.isClosed())

	// unregistering an already dropped client is harmless
	UnregisterClient(201, broken)
}

func TestStalledViewerDoesNotHoldBackOthers(t *testing.T) {
	stalled := &fakeClient{block: make(chan struct{})}
	healthy := &fakeClient{}
	RegisterClient(301, stalled)
	RegisterClient(301, healthy)
	defer close(stalled.block)
	defer UnregisterClient(301, healthy)

	for i := 1; i <= viewerBuffer+2; i++ {
		BroadcastScoreUpdate(ScoreUpdate{EventContestID: 301, SessionID: uint(i), UpdateType: UpdateScore})
		want := i
		assert.Eventually(t, func() bool { return healthy.received() == want }, time.Second, 5*time.Millisecond)
	}

	assert.Eventually(t, func() bool { return ClientCount(301) == 1 }, time.Second, 10*time.Millisecond)
	assert.True(t, stalled.isClosed())
	assert.False(t, healthy.isClosed())
}
