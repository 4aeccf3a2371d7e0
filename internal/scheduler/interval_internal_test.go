package scheduler

import (
	"testing"
	"time"
)

func TestApplySiblingSpacingFallsBackToIdeal(t *testing.T) {
	got := applySiblingSpacing(7, 1, []int64{7, 6, 8})
	if got != 7 {
		t.Fatalf("expected fallback to ideal 7, got %d", got)
	}
}

func TestApplySiblingSpacingShiftsWhenRoomExists(t *testing.T) {
	got := applySiblingSpacing(7, 1, []int64{7})
	if got != 6 {
		t.Fatalf("expected shift to 6, got %d", got)
	}
}

func TestApplySiblingSpacingNoCollision(t *testing.T) {
	got := applySiblingSpacing(20, 1, []int64{7, 6, 8})
	if got != 20 {
		t.Fatalf("expected untouched ideal 20, got %d", got)
	}
}

// stubConfigStore is a minimal Store that only answers ConfigForGroup; it
// exists so NextInterval (which never writes) can be exercised without the
// external memStore test double.
type stubConfigStore struct{ cfg Config }

func (s stubConfigStore) ConfigForGroup(int64) (Config, error) { return s.cfg, nil }
func (stubConfigStore) GetCard(int64) (*Card, error)           { return nil, nil }
func (stubConfigStore) SaveCard(*Card) error                   { return nil }
func (stubConfigStore) SaveCardAndLog(*Card, *RevLogEntry) error {
	return nil
}
func (stubConfigStore) Siblings(int64, int64) ([]*Card, error) { return nil, nil }
func (stubConfigStore) NewCards(groupIDs []int64, order NewOrder, limit int) ([]*Card, error) {
	return nil, nil
}
func (stubConfigStore) LearningCards([]int64, int64) ([]*Card, error) { return nil, nil }
func (stubConfigStore) ReviewCards([]int64, int, int) ([]*Card, error) {
	return nil, nil
}
func (stubConfigStore) CardsDueInRange([]int64, int, int, int) ([]*Card, error) {
	return nil, nil
}
func (stubConfigStore) CardsByNote(int64) ([]*Card, error)      { return nil, nil }
func (stubConfigStore) CardsByIDs([]int64) ([]*Card, error)     { return nil, nil }
func (stubConfigStore) CardsByGroups([]int64) ([]*Card, error)  { return nil, nil }
func (stubConfigStore) Groups() ([]*Group, error)               { return nil, nil }
func (stubConfigStore) NextNewPosition() (int64, error)         { return 0, nil }
func (stubConfigStore) Counters(int) (*DailyCounters, error)     { return &DailyCounters{}, nil }
func (stubConfigStore) SaveCounters(*DailyCounters) error        { return nil }

func newPreviewScheduler(cfg Config) *Scheduler {
	clock := NewClockAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), DefaultRolloverHour, time.Now)
	return New(stubConfigStore{cfg: cfg}, clock, nil, nil)
}

func TestNextIntervalLapsedPreviewKeepsStoredIvl(t *testing.T) {
	s := newPreviewScheduler(DefaultConfig())
	card := &Card{Type: TypeReview, Queue: QueueLearning, Ivl: 100, Factor: 2500}
	ivl, learning := s.NextInterval(card, Good)
	if learning {
		t.Fatalf("expected lapsed-graduation preview to report learning=false")
	}
	if ivl != 100 {
		t.Fatalf("expected preview to keep stored ivl 100, got %d", ivl)
	}
}

func TestNextIntervalGoodGraduationAlwaysUsesFirstInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.New.Delays = []float64{0.5, 3, 10}
	cfg.New.Ints = [3]int{1, 4, 7}
	s := newPreviewScheduler(cfg)

	card := &Card{Type: TypeLearning, Queue: QueueLearning, Grade: 2, Cycles: 3}
	ivl, learning := s.NextInterval(card, Good)
	if learning {
		t.Fatalf("expected graduation, got another learning step")
	}
	if ivl != 1*86400 {
		t.Fatalf("expected graduation interval Ints[0]=1 day, got %d seconds", ivl)
	}
}

func TestNextIntervalEasyUsesEarlyRemovalBonusOnlyOnFirstCycle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.New.Ints = [3]int{1, 4, 7}
	s := newPreviewScheduler(cfg)

	fresh := &Card{Type: TypeNew, Queue: QueueNew}
	ivl, _ := s.NextInterval(fresh, Easy)
	if ivl != 7*86400 {
		t.Fatalf("expected early-removal bonus 7 days, got %d seconds", ivl)
	}

	cycled := &Card{Type: TypeLearning, Queue: QueueLearning, Cycles: 1}
	ivl2, _ := s.NextInterval(cycled, Easy)
	if ivl2 != 4*86400 {
		t.Fatalf("expected normal easy removal 4 days, got %d seconds", ivl2)
	}
}
