package scheduler_test

import (
	"testing"
	"time"

	"atamagaii/internal/scheduler"

	"github.com/stretchr/testify/require"
)

func newTestClock() *scheduler.Clock {
	creation := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return scheduler.NewClockAt(creation, scheduler.DefaultRolloverHour, func() time.Time { return time.Now().UTC() })
}

func newTestScheduler(store *memStore) *scheduler.Scheduler {
	return scheduler.New(store, newTestClock(), nil, nil)
}

func newCard(id, noteID, groupID int64) *scheduler.Card {
	return &scheduler.Card{ID: id, NoteID: noteID, GroupID: groupID, Queue: scheduler.QueueNew, Type: scheduler.TypeNew}
}

// Scenario 1: new -> learning -> graduation, reproducing the literal
// AGAIN, GOOD, GOOD, GOOD trajectory the numeric expectations are drawn
// from (fail once, then three consecutive passes).
func TestNewLearningGraduation(t *testing.T) {
	store := newMemStore()
	store.configs[1] = scheduler.Config{
		New:   scheduler.NewConfig{Delays: []float64{0.5, 3, 10}, Ints: [3]int{1, 4, 7}, PerDay: 20},
		Lapse: scheduler.DefaultConfig().Lapse,
		Rev:   scheduler.DefaultConfig().Rev,
		Cram:  scheduler.DefaultConfig().Cram,
	}
	card := newCard(1, 1, 1)
	store.put(card)

	s := newTestScheduler(store)
	require.NoError(t, s.AnswerCard(card, scheduler.Again))
	require.Equal(t, 0, card.Grade)
	require.Equal(t, 1, card.Cycles)

	require.NoError(t, s.AnswerCard(card, scheduler.Good))
	require.Equal(t, 1, card.Grade)
	require.Equal(t, 2, card.Cycles)
	require.InDelta(t, 180, card.Due-time.Now().Unix(), 5)

	require.NoError(t, s.AnswerCard(card, scheduler.Good))
	require.Equal(t, 2, card.Grade)
	require.Equal(t, 3, card.Cycles)
	require.InDelta(t, 600, card.Due-time.Now().Unix(), 5)

	today := s.Today()
	require.NoError(t, s.AnswerCard(card, scheduler.Good))
	require.Equal(t, scheduler.QueueReview, card.Queue)
	require.Equal(t, scheduler.TypeReview, card.Type)
	require.Equal(t, 1, card.Ivl)
	require.Equal(t, int64(today+1), card.Due)
}

// Scenario 2: early removal bonus on first-sight EASY vs normal EASY once
// the card has already cycled through at least one learning step.
func TestEarlyRemovalBonus(t *testing.T) {
	store := newMemStore()
	card := newCard(1, 1, 1)
	store.put(card)
	s := newTestScheduler(store)

	require.NoError(t, s.AnswerCard(card, scheduler.Easy))
	require.Equal(t, scheduler.TypeReview, card.Type)
	require.Equal(t, 7, card.Ivl)

	card2 := newCard(2, 2, 1)
	card2.Type = scheduler.TypeLearning
	card2.Queue = scheduler.QueueLearning
	card2.Cycles = 1
	store.put(card2)
	require.NoError(t, s.AnswerCard(card2, scheduler.Easy))
	require.Equal(t, scheduler.TypeReview, card2.Type)
	require.Equal(t, 4, card2.Ivl)
}

func TestReviewPassGradeMath(t *testing.T) {
	base := func() *scheduler.Card {
		return &scheduler.Card{
			ID: 1, NoteID: 1, GroupID: 1,
			Type: scheduler.TypeReview, Queue: scheduler.QueueReview,
			Ivl: 100, Factor: 2500, Reps: 3, Streak: 2, Lapses: 1,
		}
	}

	t.Run("hard", func(t *testing.T) {
		store := newMemStore()
		card := base()
		card.Due = int64(newTestScheduler(store).Today() - 8)
		store.put(card)
		s := newTestScheduler(store)
		today := s.Today()
		require.NoError(t, s.AnswerCard(card, scheduler.Hard))
		require.Equal(t, 122, card.Ivl)
		require.Equal(t, int64(today+122), card.Due)
		require.Equal(t, 2350, card.Factor)
	})

	t.Run("good", func(t *testing.T) {
		store := newMemStore()
		card := base()
		s0 := newTestScheduler(store)
		card.Due = int64(s0.Today() - 8)
		store.put(card)
		s := newTestScheduler(store)
		today := s.Today()
		require.NoError(t, s.AnswerCard(card, scheduler.Good))
		require.Equal(t, 260, card.Ivl)
		require.Equal(t, int64(today+260), card.Due)
		require.Equal(t, 2500, card.Factor)
	})

	t.Run("easy", func(t *testing.T) {
		store := newMemStore()
		card := base()
		s0 := newTestScheduler(store)
		card.Due = int64(s0.Today() - 8)
		store.put(card)
		s := newTestScheduler(store)
		today := s.Today()
		require.NoError(t, s.AnswerCard(card, scheduler.Easy))
		require.Equal(t, 351, card.Ivl)
		require.Equal(t, int64(today+351), card.Due)
		require.Equal(t, 2650, card.Factor)
	})
}

func TestLapseWithRelearn(t *testing.T) {
	store := newMemStore()
	card := &scheduler.Card{
		ID: 1, NoteID: 1, GroupID: 1,
		Type: scheduler.TypeReview, Queue: scheduler.QueueReview,
		Ivl: 100, Factor: 2500, Reps: 3, Streak: 2, Lapses: 1,
	}
	s := newTestScheduler(store)
	card.Due = int64(s.Today() - 8)
	store.put(card)

	today := s.Today()
	require.NoError(t, s.AnswerCard(card, scheduler.Again))
	require.Equal(t, scheduler.QueueLearning, card.Queue)
	require.Equal(t, int64(today+1), card.EDue)
	require.Equal(t, 1, card.Ivl)
	require.Equal(t, 2300, card.Factor)
	require.Equal(t, 2, card.Lapses)
	require.Equal(t, 4, card.Reps)
	require.GreaterOrEqual(t, card.Due, time.Now().Unix())
}

func TestLeechTrigger(t *testing.T) {
	store := newMemStore()
	card := &scheduler.Card{
		ID: 1, NoteID: 1, GroupID: 1,
		Type: scheduler.TypeReview, Queue: scheduler.QueueReview,
		Ivl: 10, Factor: 2500, Lapses: 15,
	}
	s := newTestScheduler(store)
	card.Due = int64(s.Today() - 1)
	store.put(card)

	var leeched bool
	hooks := scheduler.NewHooks()
	hooks.On(scheduler.EventLeech, func(args ...interface{}) { leeched = true })
	s2 := scheduler.New(store, newTestClock(), hooks, nil)

	require.NoError(t, s2.AnswerCard(card, scheduler.Again))
	require.True(t, leeched)
	require.Equal(t, scheduler.QueueSuspended, card.Queue)
}

// TestSiblingSpacingFallback drives answerReviewPass's sibling-spacing
// search through the scenario-7 shape: a fourth sibling whose natural due
// day collides with all three siblings' occupied slots falls back to the
// untouched ideal rather than searching further.
func TestSiblingSpacingFallback(t *testing.T) {
	store := newMemStore()
	s := newTestScheduler(store)
	today := s.Today()

	mk := func(id int64, due int) *scheduler.Card {
		return &scheduler.Card{
			ID: id, NoteID: 100, GroupID: 1,
			Type: scheduler.TypeReview, Queue: scheduler.QueueReview,
			Ivl: 7, Factor: 2500, Due: int64(today + due),
		}
	}
	store.put(mk(1, 7))
	store.put(mk(2, 6))
	store.put(mk(3, 8))

	cfg := scheduler.DefaultConfig()
	cfg.Rev.MinSpace = 1
	cfg.Rev.Fuzz = 0
	store.configs[1] = cfg

	// Factor/ivl/delay chosen so the Good formula naturally lands on
	// today+7, exactly where card 1 already sits: (2+0)*3.5 = 7.
	card4 := &scheduler.Card{
		ID: 4, NoteID: 100, GroupID: 1,
		Type: scheduler.TypeReview, Queue: scheduler.QueueReview,
		Ivl: 2, Factor: 3500, Due: int64(today),
	}
	store.put(card4)

	require.NoError(t, s.AnswerCard(card4, scheduler.Good))
	require.Equal(t, int64(today+7), card4.Due)
}

func TestCramReschedKeepsIvl(t *testing.T) {
	store := newMemStore()
	card := &scheduler.Card{
		ID: 1, NoteID: 1, GroupID: 1,
		Type: scheduler.TypeReview, Queue: scheduler.QueueReview,
		Ivl: 100, Factor: 2500,
	}
	s := newTestScheduler(store)
	today := s.Today()
	card.Due = int64(today + 25)
	store.put(card)

	cfg := scheduler.DefaultConfig()
	cfg.Cram = scheduler.CramConfig{Delays: []float64{0.5, 3}, Reset: false, Resched: true}
	store.configs[1] = cfg

	require.NoError(t, s.CramGroups([]int64{1}, 0, 100))
	card, err := store.GetCard(1)
	require.NoError(t, err)
	require.Equal(t, scheduler.QueueCrammed, card.Queue)

	require.NoError(t, s.AnswerCard(card, scheduler.Good))
	require.NoError(t, s.AnswerCard(card, scheduler.Good))
	require.Equal(t, scheduler.QueueReview, card.Queue)
	require.Equal(t, scheduler.TypeReview, card.Type)
	require.Equal(t, 100, card.Ivl)
}

func TestSuspendUnsuspendRoundTrip(t *testing.T) {
	store := newMemStore()
	card := newCard(1, 1, 1)
	card.Queue = scheduler.QueueReview
	card.Type = scheduler.TypeReview
	card.Due = 321
	store.put(card)

	s := newTestScheduler(store)
	require.NoError(t, s.Suspend([]int64{1}))
	card, err := store.GetCard(1)
	require.NoError(t, err)
	require.Equal(t, scheduler.QueueSuspended, card.Queue)
	require.NoError(t, s.Unsuspend([]int64{1}))
	card, err = store.GetCard(1)
	require.NoError(t, err)
	require.Equal(t, scheduler.QueueReview, card.Queue)
	require.Equal(t, int64(321), card.Due)
}

func TestForgetThenGraduateFreshTrajectory(t *testing.T) {
	store := newMemStore()
	card := &scheduler.Card{
		ID: 1, NoteID: 1, GroupID: 1,
		Type: scheduler.TypeReview, Queue: scheduler.QueueReview,
		Ivl: 100, Factor: 2500, Reps: 10, Lapses: 3,
	}
	store.put(card)
	s := newTestScheduler(store)

	require.NoError(t, s.Forget([]int64{1}))
	card, err := store.GetCard(1)
	require.NoError(t, err)
	require.Equal(t, scheduler.TypeNew, card.Type)
	require.Equal(t, scheduler.QueueNew, card.Queue)
	require.Equal(t, 0, card.Ivl)
	require.Equal(t, 0, card.Lapses)

	require.NoError(t, s.AnswerCard(card, scheduler.Good))
	require.Equal(t, scheduler.TypeLearning, card.Type)
	require.Equal(t, scheduler.QueueLearning, card.Queue)

	require.NoError(t, s.AnswerCard(card, scheduler.Good))
	require.Equal(t, scheduler.TypeReview, card.Type)
	require.Equal(t, scheduler.QueueReview, card.Queue)
	require.Equal(t, 1, card.Ivl)
}
