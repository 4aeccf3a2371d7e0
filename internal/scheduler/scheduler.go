package scheduler

// Scheduler is the synchronous, single-threaded scheduler core (§5). It
// holds no knowledge of HTTP or storage engines; it drives a Store over
// card rows and notifies a Hooks registry of leech/reset events. One
// Scheduler is constructed per active study session against a selected set
// of groups; constructing two over the same store is undefined (§5).
type Scheduler struct {
	store Store
	clock *Clock
	hooks *Hooks
	rand  randSource

	groupIDs []int64

	newQueue      []*Card
	learningQueue []*Card
	reviewQueue   []*Card

	newCount    int
	learnCount  int
	reviewCount int

	lastSeenNow int64
	lastNoteID  int64
}

// New constructs a Scheduler. rnd may be nil to disable fuzz entirely
// (design note "Fuzz determinism"); callers that need deterministic tests
// pass a seeded *rand.Rand or a stub implementing Intn.
func New(store Store, clock *Clock, hooks *Hooks, rnd randSource) *Scheduler {
	if hooks == nil {
		hooks = NewHooks()
	}
	return &Scheduler{store: store, clock: clock, hooks: hooks, rand: rnd}
}

// Today exposes the scheduler's current day number, for callers and tests
// that need to compute expected due values.
func (s *Scheduler) Today() int {
	return s.clock.Today()
}

// now returns the wall clock time clamped to never retreat within the
// session (§7 "Clock going backwards": "the selector uses now = max
// (now_observed, last_seen_now)").
func (s *Scheduler) now() int64 {
	n := s.clock.Now().Unix()
	if n < s.lastSeenNow {
		n = s.lastSeenNow
	}
	s.lastSeenNow = n
	return n
}
