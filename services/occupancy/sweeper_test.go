package occupancy

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"smartparking/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingEngine counts sweeps and optionally parks inside one.
type blockingEngine struct {
	OccupancyEngine
	runs    atomic.Int32
	entered chan struct{}
	release chan struct{}
	report  models.SweepReport
}

func (b *blockingEngine) UpdateExpiredOccupancies(ctx context.Context) models.SweepReport {
	b.runs.Add(1)
	if b.entered != nil {
		b.entered <- struct{}{}
		<-b.release
	}
	return b.report
}

func TestSweeper_RunOnceNotifiesHandlers(t *testing.T) {
	now := at(12, 0)
	store := newMemStore(heldSpot("A-01", "u1", now.Add(-time.Minute)))
	engine := engineAt(store, now)

	var mu sync.Mutex
	var got []string
	handler := ReleaseHandlerFunc(func(_ context.Context, spot models.Spot) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, *spot.OccupiedBy)
	})
	s := NewSweeper(engine, time.Hour, nil, handler)

	report, ran := s.RunOnce(context.Background())
	require.True(t, ran)
	assert.Len(t, report.Released, 1)
	assert.Equal(t, []string{"u1"}, got)
	assert.Len(t, s.LastReport().Released, 1)
}

func TestSweeper_ConcurrentRunsCoalesce(t *testing.T) {
	engine := &blockingEngine{entered: make(chan struct{}), release: make(chan struct{})}
	s := NewSweeper(engine, time.Hour, nil)

	done := make(chan bool)
	go func() {
		_, ran := s.RunOnce(context.Background())
		done <- ran
	}()
	<-engine.entered

	_, ran := s.RunOnce(context.Background())
	assert.False(t, ran)

	close(engine.release)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), engine.runs.Load())
}

func TestSweeper_TriggerNeverBlocks(t *testing.T) {
	s := NewSweeper(&blockingEngine{}, time.Hour, nil)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Trigger()
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Trigger blocked with no sweeper running")
	}
}

func TestSweeper_StartRunsImmediatelyAndOnTrigger(t *testing.T) {
	engine := &blockingEngine{}
	s := NewSweeper(engine, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return engine.runs.Load() >= 1 }, time.Second, 5*time.Millisecond)
	s.Trigger()
	require.Eventually(t, func() bool { return engine.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
