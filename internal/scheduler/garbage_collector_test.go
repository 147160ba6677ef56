package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/bookhub/internal/logger"
)

type fakePurger struct {
	eventsBefore time.Time
	recsBefore   time.Time
	eventsErr    error
}

func (f *fakePurger) PurgeEvents(_ context.Context, before time.Time) (int64, error) {
	f.eventsBefore = before
	if f.eventsErr != nil {
		return 0, f.eventsErr
	}
	return 4, nil
}

func (f *fakePurger) PurgeDismissedRecommendations(_ context.Context, before time.Time) (int64, error) {
	f.recsBefore = before
	return 2, nil
}

func TestGarbageCollector_Collect(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	store := &fakePurger{}

	gc := NewGarbageCollector(store, logger.NewNop(), time.Hour, 0, 0)
	gc.now = func() time.Time { return now }

	rep, err := gc.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if rep.Events != 4 || rep.Recommendations != 2 {
		t.Errorf("report = %+v, want 4 events and 2 recommendations", rep)
	}
	if want := now.Add(-DefaultEventRetention); !store.eventsBefore.Equal(want) {
		t.Errorf("events cutoff = %v, want %v", store.eventsBefore, want)
	}
	if want := now.Add(-DefaultDismissedRetention); !store.recsBefore.Equal(want) {
		t.Errorf("recommendations cutoff = %v, want %v", store.recsBefore, want)
	}
}

func TestGarbageCollector_PartialFailure(t *testing.T) {
	boom := errors.New("boom")
	store := &fakePurger{eventsErr: boom}
	gc := NewGarbageCollector(store, logger.NewNop(), time.Hour, 24*time.Hour, 24*time.Hour)

	rep, err := gc.Collect(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if rep.Recommendations != 2 {
		t.Errorf("recommendations purge should still run, got %+v", rep)
	}
	if store.recsBefore.IsZero() {
		t.Error("recommendations purge was skipped")
	}
}
