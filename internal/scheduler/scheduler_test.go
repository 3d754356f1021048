package scheduler

import (
	"sync"
	"testing"
	"time"

	"CupidGems/internal/economy"
	"CupidGems/internal/recorder"
	"CupidGems/internal/store"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type capture struct {
	mu    sync.Mutex
	snaps []economy.Snapshot
}

func (c *capture) Publish(snap economy.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps = append(c.snaps, snap)
}

type eventLog struct {
	recorder.NoopRecorder
	boosts  []recorder.BoostEvent
	systems []recorder.SystemEvent
}

func (l *eventLog) RecordBoost(evt *recorder.BoostEvent) error {
	l.boosts = append(l.boosts, *evt)
	return nil
}

func (l *eventLog) RecordSystem(evt *recorder.SystemEvent) error {
	l.systems = append(l.systems, *evt)
	return nil
}

func TestTick_PublishesAndDetectsTransitions(t *testing.T) {
	start := time.Date(2026, time.October, 18, 23, 0, 0, 0, time.UTC)
	clk := &stepClock{t: start}
	econ := economy.New(store.NewMemoryStore(), economy.WithClock(clk), economy.WithLocation(time.UTC))
	econ.ClaimDaily()
	econ.ActivateBoost(30, 25)

	pub := &capture{}
	events := &eventLog{}
	s := NewScheduler(econ, pub, events)

	s.Tick()
	if len(pub.snaps) != 1 || !pub.snaps[0].BoostActive {
		t.Fatalf("expected one active snapshot, got %+v", pub.snaps)
	}

	clk.Set(start.Add(31 * time.Minute)) // 23:31, boost over
	s.Tick()
	s.Tick()
	if len(events.boosts) != 1 || events.boosts[0].Action != recorder.BoostExpired {
		t.Errorf("expected exactly one expiry event, got %+v", events.boosts)
	}
	if len(events.systems) != 0 {
		t.Errorf("no rollover expected yet, got %+v", events.systems)
	}

	clk.Set(start.Add(61 * time.Minute)) // 00:01 next day
	s.Tick()
	s.Tick()
	if len(events.systems) != 1 || events.systems[0].Kind != recorder.SystemDayRollover {
		t.Errorf("expected exactly one rollover event, got %+v", events.systems)
	}
	last := pub.snaps[len(pub.snaps)-1]
	if !last.CanClaimToday || last.NextReward != 10 {
		t.Errorf("expected claim reopened with streak-2 reward, got %+v", last)
	}
	if len(pub.snaps) != 5 {
		t.Errorf("expected 5 published snapshots, got %d", len(pub.snaps))
	}
}

func TestRegisterAll_RejectsBadSpec(t *testing.T) {
	econ := economy.New(store.NewMemoryStore())
	s := NewScheduler(econ, nil, nil)
	if err := s.RegisterAll("not a cron", "0 0 0 * * *"); err == nil {
		t.Error("expected error for bad tick spec")
	}
	if err := s.RegisterAll("*/5 * * * * *", "0 0 0 * * *"); err != nil {
		t.Errorf("valid specs rejected: %v", err)
	}
	s.Start()
	s.Stop()
}
