package scheduler

// CramGroups enters cram mode (§4.J): every type=REVIEW card in groupIDs
// whose due, expressed as days-until-due, falls within [minDays, maxDays]
// is pulled into the cramming queue. The card's pre-cram scheduling state
// is snapshotted so OnClose (or a resched=false completion) can restore it
// verbatim.
func (s *Scheduler) CramGroups(groupIDs []int64, minDays, maxDays int) error {
	today := s.clock.Today()
	cards, err := s.store.CardsDueInRange(groupIDs, today, minDays, maxDays)
	if err != nil {
		return err
	}
	for _, card := range cards {
		card.CramSaved = &CramSnapshot{
			Queue:  card.Queue,
			Due:    card.Due,
			Ivl:    card.Ivl,
			Factor: card.Factor,
		}
		card.Queue = QueueCrammed
		if err := s.store.SaveCard(card); err != nil {
			return err
		}
	}
	s.groupIDs = groupIDs
	return nil
}

// answerCram implements §4.J's cram answer branch: cram.delays are used as
// learning steps, exactly like the new-card learning handler, but on
// completion the outcome depends on cram.reset/cram.resched instead of
// new.ints.
func (s *Scheduler) answerCram(card *Card, cfg Config, rating Rating) {
	delays := cfg.Cram.Delays
	now := s.now()

	if rating == Again || len(delays) == 0 {
		if len(delays) > 0 {
			card.Grade = 0
			card.Due = now + s.fuzzSeconds(int64(delays[0]*60))
			return
		}
		s.finishCram(card, cfg)
		return
	}

	next := card.Grade + 1
	if next >= len(delays) {
		s.finishCram(card, cfg)
		return
	}
	card.Grade = next
	card.Due = now + s.fuzzSeconds(int64(delays[next]*60))
}

// finishCram applies the cram.reset/cram.resched matrix once the card has
// stepped through all configured cram delays.
func (s *Scheduler) finishCram(card *Card, cfg Config) {
	saved := card.CramSaved
	today := s.clock.Today()

	switch {
	case !cfg.Cram.Resched:
		s.restoreFromCram(card)
	case !cfg.Cram.Reset:
		daysWaited := today - (int(saved.Due) - saved.Ivl)
		card.Queue = QueueReview
		card.Type = TypeReview
		card.Ivl = saved.Ivl
		card.Factor = saved.Factor
		card.Due = int64(today + daysWaited)
		card.CramSaved = nil
	default: // reset && resched
		card.Queue = QueueReview
		card.Type = TypeReview
		card.Ivl = 1
		card.Factor = saved.Factor
		card.Due = int64(today + 1)
		card.CramSaved = nil
	}
}

// restoreFromCram reverts a card to its pre-cram scheduling state verbatim.
func (s *Scheduler) restoreFromCram(card *Card) {
	if card.CramSaved == nil {
		card.Queue = QueueReview
		return
	}
	card.Queue = card.CramSaved.Queue
	card.Due = card.CramSaved.Due
	card.Ivl = card.CramSaved.Ivl
	card.Factor = card.CramSaved.Factor
	card.CramSaved = nil
}

// OnClose reverts any cards still parked in the cram queue or buried, and
// clears transient session flags (§6 "on_close()").
func (s *Scheduler) OnClose() error {
	cards, err := s.store.CardsByGroups(s.groupIDs)
	if err != nil {
		return err
	}
	for _, card := range cards {
		switch card.Queue {
		case QueueCrammed:
			s.restoreFromCram(card)
		case QueueBuried:
			s.unpark(card)
		default:
			continue
		}
		if err := s.store.SaveCard(card); err != nil {
			return err
		}
	}
	return nil
}
