package scheduler

import "time"

// AnswerCard is the core state-machine transition function (§4.F): given a
// card and a grade, it mutates the card, writes a revision log entry,
// updates daily counters, and persists both atomically.
func (s *Scheduler) AnswerCard(card *Card, rating Rating) error {
	cfg, err := s.store.ConfigForGroup(card.GroupID)
	if err != nil {
		return err
	}
	rating = normalizeRating(card, rating)

	lastIvl := s.signedLastIvl(card)
	card.Reps++
	takenMs := s.takenMs(card)

	var entryType RevLogType
	switch st := card.State().(type) {
	case StateNew, StateLearning:
		entryType = RevLogLearn
		s.answerLearning(card, cfg, rating)
	case StateLapsed:
		entryType = RevLogRelearn
		s.answerLapsed(card, cfg, rating, st)
	case StateReview:
		if rating == Again {
			entryType = RevLogRelearn
			s.answerLapse(card, cfg, st)
		} else {
			entryType = RevLogReview
			s.answerReviewPass(card, cfg, rating, st)
		}
	case StateCramming:
		entryType = RevLogCram
		s.answerCram(card, cfg, rating)
	default:
		// Suspended/buried card answered by a race: recompute from
		// (type, queue) and skip — nothing to do (§7).
		return nil
	}

	entry := &RevLogEntry{
		CardID:    card.ID,
		TimeMs:    s.clock.Now().UnixMilli(),
		Rating:    rating,
		NewIvl:    s.signedLastIvl(card),
		LastIvl:   lastIvl,
		NewFactor: card.Factor,
		TakenMs:   takenMs,
		Type:      entryType,
	}

	if err := s.store.SaveCardAndLog(card, entry); err != nil {
		return err
	}

	if entryType == RevLogLearn || entryType == RevLogRelearn {
		if s.learnCount > 0 {
			s.learnCount--
		}
	}

	return s.bumpCounters(entryType, takenMs)
}

// signedLastIvl encodes a card's current interval using the revlog's signed
// convention: negative seconds while parked in a learning step, positive
// days once graduated (§3 RevisionLog row).
func (s *Scheduler) signedLastIvl(card *Card) int {
	switch card.State().(type) {
	case StateNew:
		return 0
	case StateLearning, StateLapsed, StateCramming:
		if card.Queue == QueueLearning || card.Queue == QueueCrammed {
			remaining := card.Due - s.clock.Now().Unix()
			if remaining < 0 {
				remaining = 0
			}
			return -int(remaining)
		}
		return card.Ivl
	default:
		return card.Ivl
	}
}

func (s *Scheduler) takenMs(card *Card) int64 {
	if card.TimerStarted <= 0 {
		return 0
	}
	elapsed := s.clock.Now().Sub(time.Unix(int64(card.TimerStarted), 0))
	if elapsed > 60*time.Second {
		elapsed = 60 * time.Second
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed.Milliseconds()
}

// answerLearning implements the learning-step handler for a fresh New or
// mid-steps Learning card (§4.F "Learning-step handler").
func (s *Scheduler) answerLearning(card *Card, cfg Config, rating Rating) {
	delays := cfg.New.Delays
	now := s.now()
	today := s.clock.Today()

	if len(delays) == 0 {
		s.graduateNew(card, cfg, cfg.New.Ints[0], today)
		return
	}

	switch rating {
	case Again:
		card.Grade = 0
		card.Cycles++
		card.Type = TypeLearning
		card.Queue = QueueLearning
		card.Due = now + s.fuzzSeconds(int64(delays[0]*60))
	case Easy:
		// Early-removal bonus: a card answered EASY on first sight (no
		// learning answer yet, Cycles == 0) graduates with the long
		// (first-review delay) interval instead of the normal easy interval.
		if card.Cycles == 0 {
			s.graduateNew(card, cfg, cfg.New.Ints[2], today)
		} else {
			s.graduateNew(card, cfg, cfg.New.Ints[1], today)
		}
	default: // Good
		next := card.Grade + 1
		if next >= len(delays) {
			s.graduateNew(card, cfg, cfg.New.Ints[0], today)
			return
		}
		card.Grade = next
		card.Cycles++
		card.Type = TypeLearning
		card.Queue = QueueLearning
		card.Due = now + s.fuzzSeconds(int64(delays[next]*60))
	}
}

func (s *Scheduler) graduateNew(card *Card, cfg Config, ivlDays int, today int) {
	dueDay := today + ivlDays
	if siblings, err := s.store.Siblings(card.NoteID, card.ID); err == nil {
		var siblingDues []int64
		for _, sib := range siblings {
			if sib.Type == TypeReview && sib.Queue == QueueReview {
				siblingDues = append(siblingDues, sib.Due)
			}
		}
		dueDay = applySiblingSpacing(dueDay, cfg.Rev.MinSpace, siblingDues)
	}

	card.Type = TypeReview
	card.Queue = QueueReview
	card.Factor = 2500
	card.Ivl = dueDay - today
	if card.Ivl < 1 {
		card.Ivl = 1
	}
	card.Due = int64(dueDay)
	card.Streak++
	card.Grade = 0
	card.Cycles = 0
}

// answerLapsed implements graduation/reset for a card currently parked in
// the lapse sub-queue (type=REVIEW, queue=LEARNING).
func (s *Scheduler) answerLapsed(card *Card, cfg Config, rating Rating, st StateLapsed) {
	delays := cfg.Lapse.Delays
	now := s.now()

	switch rating {
	case Again:
		card.Grade = 0
		card.Cycles++
		if len(delays) == 0 {
			s.graduateLapse(card)
			return
		}
		card.Due = now + s.fuzzSeconds(int64(delays[0]*60))
	default: // Good or Easy graduates back to review
		s.graduateLapse(card)
	}
}

func (s *Scheduler) graduateLapse(card *Card) {
	card.Queue = QueueReview
	card.Due = card.EDue
	card.Grade = 0
	card.Cycles = 0
}

// answerReviewPass implements the Hard/Good/Easy branch of the review-pass
// handler (§4.F "Review-pass handler").
func (s *Scheduler) answerReviewPass(card *Card, cfg Config, rating Rating, st StateReview) {
	today := s.clock.Today()
	delay := delayDays(today, card.Due)

	var newIvl int
	switch rating {
	case Hard:
		newIvl = reviewHardIvl(st.Ivl, delay)
	case Easy:
		newIvl = reviewEasyIvl(st.Ivl, delay, st.Factor, cfg.Rev.Ease4)
	default:
		newIvl = reviewGoodIvl(st.Ivl, delay, st.Factor)
	}

	card.Factor = ClampFactor(st.Factor + factorDelta(rating))
	newIvl = fuzzInterval(newIvl, cfg.Rev.Fuzz, s.rand)
	if newIvl < 1 {
		newIvl = 1
	}

	newDueDay := today + newIvl
	if siblings, err := s.store.Siblings(card.NoteID, card.ID); err == nil {
		var siblingDues []int64
		for _, sib := range siblings {
			if sib.Type == TypeReview && sib.Queue == QueueReview {
				siblingDues = append(siblingDues, sib.Due)
			}
		}
		newDueDay = applySiblingSpacing(newDueDay, cfg.Rev.MinSpace, siblingDues)
	}

	card.Ivl = newDueDay - today
	if card.Ivl < 1 {
		card.Ivl = 1
	}
	card.Due = int64(newDueDay)
	card.Streak++
}

// answerLapse implements the lapse handler for grade AGAIN on a Review
// card (§4.F "Lapse handler").
func (s *Scheduler) answerLapse(card *Card, cfg Config, st StateReview) {
	today := s.clock.Today()
	now := s.now()

	card.Lapses++
	card.Streak = 0
	card.Ivl = lapseIvl(st.Ivl, cfg.Lapse.Mult, cfg.Lapse.MinInt)
	card.Factor = ClampFactor(st.Factor - 200)
	card.EDue = int64(today + card.Ivl)

	s.checkLeech(card, cfg.Lapse)
	if card.Queue == QueueSuspended {
		return // leech detector already parked the card
	}

	if cfg.Lapse.Relearn && len(cfg.Lapse.Delays) > 0 {
		card.Type = TypeReview
		card.Queue = QueueLearning
		card.Grade = 0
		card.Cycles = 0
		card.Due = now + s.fuzzSeconds(int64(cfg.Lapse.Delays[0]*60))
	} else {
		card.Type = TypeReview
		card.Queue = QueueReview
		card.Due = int64(today + card.Ivl)
	}
}

// fuzzSeconds nudges a learning-step delay by a small deterministic-or-random
// jitter so cards sharing a step don't all come due at the exact same
// second. Disabled (returns base unchanged) when the scheduler's rand
// source is nil.
func (s *Scheduler) fuzzSeconds(base int64) int64 {
	if s.rand == nil || base <= 0 {
		return base
	}
	spread := base / 20 // ~5%
	if spread < 1 {
		return base
	}
	jitter := int64(s.rand.Intn(int(2*spread+1))) - spread
	out := base + jitter
	if out < 1 {
		out = 1
	}
	return out
}
