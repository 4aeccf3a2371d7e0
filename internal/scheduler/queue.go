package scheduler

// lookaheadCutoff bounds how far into the future a learning-queue card may
// be loaded during Reset; cards due later are picked up by a later Reset
// rather than held in memory indefinitely. Grounded on the clock's day
// rollover since that is the only other time boundary the spec defines:
// the absolute unix time of the next day rollover.
func (s *Scheduler) lookaheadCutoff() int64 {
	return s.clock.DayCutoff()
}

// Reset rebuilds the three in-memory queues and their counters from the
// store (§4.D), then fires the reset hook.
func (s *Scheduler) Reset(groupIDs []int64) error {
	s.groupIDs = groupIDs
	today := s.clock.Today()
	counters, err := s.store.Counters(today)
	if err != nil {
		return err
	}

	cfg, err := s.groupConfig()
	if err != nil {
		cfg = DefaultConfig()
	}

	newLimit := cfg.New.PerDay - counters.NewDone
	if newLimit < 0 {
		newLimit = 0
	}
	newCards, err := s.store.NewCards(groupIDs, cfg.New.Order, newLimit)
	if err != nil {
		return err
	}
	newCards = deinterleaveSiblings(newCards)

	learningCards, err := s.store.LearningCards(groupIDs, s.lookaheadCutoff())
	if err != nil {
		return err
	}

	reviewLimit := cfg.Rev.PerDay - counters.ReviewDone
	if reviewLimit < 0 {
		reviewLimit = 0
	}
	reviewCards, err := s.store.ReviewCards(groupIDs, today, reviewLimit)
	if err != nil {
		return err
	}
	reviewCards = deinterleaveSiblings(reviewCards)

	s.newQueue = newCards
	s.learningQueue = learningCards
	s.reviewQueue = reviewCards
	s.newCount = len(newCards)
	s.learnCount = len(learningCards)
	s.reviewCount = len(reviewCards)

	s.hooks.fire(EventReset)
	return nil
}

// groupConfig resolves the configuration applicable to the session's
// selected groups, using the first group as representative. It is resolved
// afresh on each Reset and not cached.
func (s *Scheduler) groupConfig() (Config, error) {
	if len(s.groupIDs) == 0 {
		return DefaultConfig(), nil
	}
	return s.store.ConfigForGroup(s.groupIDs[0])
}

// deinterleaveSiblings reorders cards so that, wherever an alternative
// exists, two cards sharing a note_id never sit adjacent in the returned
// slice (§4.D "Siblings are de-duplicated on build").
func deinterleaveSiblings(cards []*Card) []*Card {
	if len(cards) < 2 {
		return cards
	}
	remaining := append([]*Card(nil), cards...)
	out := make([]*Card, 0, len(cards))
	var lastNote int64 = -1
	hasLast := false
	for len(remaining) > 0 {
		idx := 0
		for i, c := range remaining {
			if !hasLast || c.NoteID != lastNote {
				idx = i
				break
			}
		}
		picked := remaining[idx]
		out = append(out, picked)
		lastNote = picked.NoteID
		hasLast = true
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return out
}
