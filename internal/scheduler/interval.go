package scheduler

import "math"

// delayDays is how many days late a review card's answer is (§4.F
// review-pass handler: "delay_days = max(0, today − due)").
func delayDays(today int, due int64) int {
	d := today - int(due)
	if d < 0 {
		return 0
	}
	return d
}

// reviewHardIvl computes the Hard-grade interval, in days: (ivl + delay/4) * 1.2.
func reviewHardIvl(ivl, delay int) int {
	return int(math.Floor((float64(ivl) + float64(delay)/4) * 1.2))
}

// reviewGoodIvl computes the Good-grade interval: (ivl + delay/2) * factor/1000.
func reviewGoodIvl(ivl, delay, factor int) int {
	return int(math.Floor((float64(ivl) + float64(delay)/2) * (float64(factor) / 1000)))
}

// reviewEasyIvl computes the Easy-grade interval: (ivl + delay) * factor/1000 * ease4.
func reviewEasyIvl(ivl, delay, factor int, ease4 float64) int {
	return int(math.Floor((float64(ivl) + float64(delay)) * (float64(factor) / 1000) * ease4))
}

// factorDelta is the ease-factor adjustment for a review-state grade.
func factorDelta(rating Rating) int {
	switch rating {
	case Hard:
		return -150
	case Easy:
		return 150
	default: // Good
		return 0
	}
}

// fuzzInterval applies ±fuzzFraction jitter to ivl, with a floor of ±1 day
// once ivl exceeds 2 days (§4.F "Sibling spacing rule" / review-pass fuzz).
func fuzzInterval(ivl int, fuzzFraction float64, rnd randSource) int {
	if ivl <= 2 || fuzzFraction <= 0 || rnd == nil {
		return ivl
	}
	spread := int(math.Round(float64(ivl) * fuzzFraction))
	if spread < 1 {
		spread = 1
	}
	jitter := rnd.Intn(2*spread+1) - spread
	out := ivl + jitter
	if out < 1 {
		out = 1
	}
	return out
}

// lapseIvl computes the post-lapse interval: max(minInt, floor(ivl*mult)).
func lapseIvl(ivl int, mult float64, minInt int) int {
	newIvl := int(math.Floor(float64(ivl) * mult))
	if newIvl < minInt {
		newIvl = minInt
	}
	return newIvl
}

// randSource is the minimal surface the scheduler needs from *rand.Rand,
// so fuzz can be bypassed entirely in previews and tests (design note
// "Fuzz determinism").
type randSource interface {
	Intn(n int) int
}

// noFuzz always returns 0, used by NextInterval's side-effect-free preview.
type noFuzz struct{}

func (noFuzz) Intn(int) int { return 0 }

// NextInterval previews the interval AnswerCard would produce for (card,
// rating), without mutating the card, writing a revlog row, or applying
// fuzz (§4.G). Units: seconds while the card is in a learning step, days
// once graduated.
func (s *Scheduler) NextInterval(card *Card, rating Rating) (value int, isSeconds bool) {
	cfg, err := s.store.ConfigForGroup(card.GroupID)
	if err != nil {
		cfg = DefaultConfig()
	}
	rating = normalizeRating(card, rating)
	today := s.clock.Today()

	switch st := card.State().(type) {
	case StateNew, StateLearning:
		delays := cfg.New.Delays
		cycles, grade := 0, 0
		if ls, ok := st.(StateLearning); ok {
			cycles, grade = ls.Cycles, ls.Grade
		}
		return previewLearningStep(cfg, delays, grade, cycles, rating)
	case StateLapsed:
		if rating == Again && len(cfg.Lapse.Delays) > 0 {
			return int(cfg.Lapse.Delays[0] * 60), true
		}
		return st.Ivl, false // graduates back to its pre-lapse interval
	case StateReview:
		if rating == Again {
			if cfg.Lapse.Relearn && len(cfg.Lapse.Delays) > 0 {
				return int(cfg.Lapse.Delays[0] * 60), true
			}
			return lapseIvl(st.Ivl, cfg.Lapse.Mult, cfg.Lapse.MinInt), false
		}
		delay := delayDays(today, card.Due)
		switch rating {
		case Hard:
			return reviewHardIvl(st.Ivl, delay), false
		case Easy:
			return reviewEasyIvl(st.Ivl, delay, st.Factor, cfg.Rev.Ease4), false
		default:
			return reviewGoodIvl(st.Ivl, delay, st.Factor), false
		}
	case StateCramming:
		delays := cfg.Cram.Delays
		if len(delays) > 0 {
			if rating == Again {
				return int(delays[0] * 60), true
			}
			if next := card.Grade + 1; next < len(delays) {
				return int(delays[next] * 60), true
			}
		}
		if cfg.Cram.Resched && cfg.Cram.Reset {
			return 1, false
		}
		if st.Saved != nil {
			return st.Saved.Ivl, false
		}
		return card.Ivl, false
	default:
		return 0, false
	}
}

// previewLearningStep mirrors the learning-step handler's branching
// (§4.F "Learning-step handler") without mutating state.
func previewLearningStep(cfg Config, delays []float64, grade, cycles int, rating Rating) (int, bool) {
	if len(delays) == 0 {
		return cfg.New.Ints[0] * 86400, false
	}
	switch rating {
	case Again:
		return int(delays[0] * 60), true
	case Easy:
		if cycles == 0 {
			return cfg.New.Ints[2] * 86400, false
		}
		return cfg.New.Ints[1] * 86400, false
	default: // Good
		next := grade + 1
		if next >= len(delays) {
			return cfg.New.Ints[0] * 86400, false
		}
		return int(delays[next] * 60), true
	}
}

// normalizeRating treats an out-of-range grade as Good (§7 "Invalid grade
// for state"). Easy is a valid grade from every state with a graduation
// path (New/Learning early removal, Lapsed early graduation, Review) and
// is never downgraded.
func normalizeRating(card *Card, rating Rating) Rating {
	if rating < Again || rating > Easy {
		return Good
	}
	return rating
}
