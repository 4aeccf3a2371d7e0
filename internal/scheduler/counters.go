package scheduler

// bumpCounters updates the persisted daily counters after an answer (§4.F
// pipeline step 5). new_done is bumped by the selector when a card is
// dispensed, not here; learn_done (learning and relearning answers),
// review_done (review passes) and the time-today accumulator move at answer
// time.
func (s *Scheduler) bumpCounters(entryType RevLogType, takenMs int64) error {
	today := s.clock.Today()
	counters, err := s.store.Counters(today)
	if err != nil {
		return err
	}
	counters.Day = today
	switch entryType {
	case RevLogLearn, RevLogRelearn:
		counters.LearnDone++
	case RevLogReview:
		counters.ReviewDone++
	}
	counters.TimeTodayMs += takenMs
	return s.store.SaveCounters(counters)
}

// TimeToday returns milliseconds spent answering cards so far today.
func (s *Scheduler) TimeToday() int64 {
	counters, err := s.store.Counters(s.clock.Today())
	if err != nil {
		return 0
	}
	return counters.TimeTodayMs
}

// RepsToday returns the number of answers recorded today across all
// pipelines (learn, relearn and graduated review).
func (s *Scheduler) RepsToday() int {
	counters, err := s.store.Counters(s.clock.Today())
	if err != nil {
		return 0
	}
	return counters.LearnDone + counters.ReviewDone
}
