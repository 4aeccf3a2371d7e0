package scheduler

import "sort"

// Suspend parks the given cards in QueueSuspended (§4.I). A card mid
// relearn (type=REVIEW, queue=LEARNING) records that fact in CramSaved so
// Unsuspend knows to send it back through the learning queue rather than
// straight to REVIEW; due is left untouched so a plain suspend/unsuspend
// round trip restores it exactly (§9 "Round trips").
func (s *Scheduler) Suspend(ids []int64) error {
	cards, err := s.store.CardsByIDs(ids)
	if err != nil {
		return err
	}
	for _, card := range cards {
		if card.Queue == QueueLearning {
			card.CramSaved = &CramSnapshot{Queue: QueueLearning}
		}
		card.Queue = QueueSuspended
		if err := s.store.SaveCard(card); err != nil {
			return err
		}
	}
	return nil
}

// Unsuspend restores cards to the queue implied by their type, or to
// LEARNING with due reset to now if they were mid relearn (§4.I).
func (s *Scheduler) Unsuspend(ids []int64) error {
	cards, err := s.store.CardsByIDs(ids)
	if err != nil {
		return err
	}
	for _, card := range cards {
		s.unpark(card)
		if err := s.store.SaveCard(card); err != nil {
			return err
		}
	}
	return nil
}

// unpark is the shared suspend/bury restoration logic consumed by
// Unsuspend and OnClose's bury cleanup.
func (s *Scheduler) unpark(card *Card) {
	wasRelearning := card.CramSaved != nil && card.CramSaved.Queue == QueueLearning
	card.CramSaved = nil
	switch card.Type {
	case TypeNew:
		card.Queue = QueueNew
	case TypeLearning:
		card.Queue = QueueLearning
	default: // TypeReview
		if wasRelearning {
			card.Queue = QueueLearning
			card.Due = s.now()
		} else {
			card.Queue = QueueReview
		}
	}
}

// Bury sets every card of the given note to QueueBuried (§4.I); cleared on
// the next OnClose.
func (s *Scheduler) Bury(noteID int64) error {
	cards, err := s.store.CardsByNote(noteID)
	if err != nil {
		return err
	}
	for _, card := range cards {
		switch card.Queue {
		case QueueSuspended, QueueCrammed, QueueBuried:
			continue
		}
		if card.Queue == QueueLearning {
			card.CramSaved = &CramSnapshot{Queue: QueueLearning}
		}
		card.Queue = QueueBuried
		if err := s.store.SaveCard(card); err != nil {
			return err
		}
	}
	return nil
}

// Forget clears all scheduling progress on the given cards, returning them
// to a pristine NEW state (§4.I).
func (s *Scheduler) Forget(ids []int64) error {
	cards, err := s.store.CardsByIDs(ids)
	if err != nil {
		return err
	}
	for _, card := range cards {
		pos, err := s.store.NextNewPosition()
		if err != nil {
			return err
		}
		card.Type = TypeNew
		card.Queue = QueueNew
		card.Due = pos
		card.Ivl = 0
		card.Factor = 0
		card.Reps = 0
		card.Lapses = 0
		card.Grade = 0
		card.Cycles = 0
		card.Streak = 0
		card.CramSaved = nil
		if err := s.store.SaveCard(card); err != nil {
			return err
		}
	}
	return nil
}

// Reschedule forces the given cards straight into REVIEW with a random
// interval in [minDays, maxDays] (§4.I).
func (s *Scheduler) Reschedule(ids []int64, minDays, maxDays int) error {
	cards, err := s.store.CardsByIDs(ids)
	if err != nil {
		return err
	}
	today := s.clock.Today()
	for _, card := range cards {
		ivl := minDays
		if maxDays > minDays {
			span := maxDays - minDays + 1
			if s.rand != nil {
				ivl = minDays + s.rand.Intn(span)
			}
		}
		if ivl < 1 {
			ivl = 1
		}
		card.Type = TypeReview
		card.Queue = QueueReview
		card.Ivl = ivl
		card.Due = int64(today + ivl)
		if err := s.store.SaveCard(card); err != nil {
			return err
		}
	}
	return nil
}

// Sort assigns contiguous due positions start, start+1, … to ids, in the
// given order. If shift, every other NEW card in the same groups with a
// due ≥ start is pushed past the newly occupied range (§4.I).
func (s *Scheduler) Sort(ids []int64, start int64, shift bool) error {
	cards, err := s.store.CardsByIDs(ids)
	if err != nil {
		return err
	}
	byID := make(map[int64]*Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	if shift {
		others, err := s.store.CardsByGroups(s.groupIDs)
		if err != nil {
			return err
		}
		shiftBy := int64(len(ids))
		for _, c := range others {
			if c.Queue != QueueNew || c.Due < start {
				continue
			}
			if _, picked := byID[c.ID]; picked {
				continue
			}
			c.Due += shiftBy
			if err := s.store.SaveCard(c); err != nil {
				return err
			}
		}
	}

	due := start
	for _, id := range ids {
		card, ok := byID[id]
		if !ok {
			continue
		}
		card.Due = due
		due++
		if err := s.store.SaveCard(card); err != nil {
			return err
		}
	}
	return nil
}

// Randomize reshuffles the due field of the given new-queue cards, keeping
// the same set of due values but in a new order (§4.I "reorder/randomize").
func (s *Scheduler) Randomize(ids []int64) error {
	cards, err := s.store.CardsByIDs(ids)
	if err != nil {
		return err
	}
	dues := make([]int64, len(cards))
	for i, c := range cards {
		dues[i] = c.Due
	}
	sort.Slice(dues, func(i, j int) bool { return dues[i] < dues[j] })

	if s.rand != nil {
		for i := len(dues) - 1; i > 0; i-- {
			j := s.rand.Intn(i + 1)
			dues[i], dues[j] = dues[j], dues[i]
		}
	}
	for i, card := range cards {
		card.Due = dues[i]
		if err := s.store.SaveCard(card); err != nil {
			return err
		}
	}
	return nil
}
