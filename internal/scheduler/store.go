package scheduler

// Store is the persistence boundary the scheduler consumes (§6 Store
// contract). It is implemented by internal/db.Storage over sqlite; the
// scheduler package itself never issues SQL.
type Store interface {
	ConfigResolver

	// GetCard fetches a single card by id.
	GetCard(id int64) (*Card, error)
	// SaveCard persists a card mutation that has no revision log row (bulk
	// operations, cram entry and exit).
	SaveCard(card *Card) error
	// SaveCardAndLog persists a card mutation together with its revision
	// log row in one transaction, so both commit or neither does (§5, §6).
	SaveCardAndLog(card *Card, entry *RevLogEntry) error

	// Siblings returns the other cards sharing card's note_id (sibling
	// identification, §3 Note).
	Siblings(noteID, excludeCardID int64) ([]*Card, error)

	// NewCards returns up to limit QueueNew cards from the given groups,
	// ordered per order.
	NewCards(groupIDs []int64, order NewOrder, limit int) ([]*Card, error)
	// LearningCards returns all QueueLearning cards from the given groups
	// due at or before dueBefore (unix seconds), ordered by due ascending.
	LearningCards(groupIDs []int64, dueBefore int64) ([]*Card, error)
	// ReviewCards returns up to limit QueueReview cards from the given
	// groups due at or before dueDay (a day number), ordered by due
	// ascending.
	ReviewCards(groupIDs []int64, dueDay int, limit int) ([]*Card, error)
	// CardsDueInRange returns QueueReview, type-Review cards in the given
	// groups whose (due - today) lies in [minDay, maxDay] — the cram
	// overlay's candidate set (§4.J).
	CardsDueInRange(groupIDs []int64, today, minDay, maxDay int) ([]*Card, error)

	// CardsByNote returns every card belonging to a note (bury scope).
	CardsByNote(noteID int64) ([]*Card, error)
	// CardsByIDs fetches a batch of cards by id (bulk ops scope).
	CardsByIDs(ids []int64) ([]*Card, error)
	// CardsByGroups returns every non-deleted card in the given groups
	// (used by all_counts/sel_counts, group_count_tree, Sort and OnClose).
	CardsByGroups(groupIDs []int64) ([]*Card, error)

	// Groups returns every group (deck), for group_count_tree's "::"
	// hierarchy rollup.
	Groups() ([]*Group, error)

	// NextNewPosition returns the position to assign forgotten/new cards so
	// they sort after everything already queued under OrderAdded.
	NextNewPosition() (int64, error)

	// Counters returns the daily counters row for day, creating a
	// zero-valued one if it doesn't exist yet.
	Counters(day int) (*DailyCounters, error)
	// SaveCounters persists the daily counters row for day.
	SaveCounters(counters *DailyCounters) error
}

// HookFunc is an observer callback (design note: "a registry of function
// values keyed by event name; invoked synchronously").
type HookFunc func(args ...interface{})

// Hooks is the observer registry the scheduler notifies. It is not a plugin
// system, just a notification seam — owned by the Scheduler instance and
// populated by the caller (design note: "Mutable global state").
type Hooks struct {
	byEvent map[string][]HookFunc
}

// NewHooks returns an empty hook registry.
func NewHooks() *Hooks {
	return &Hooks{byEvent: make(map[string][]HookFunc)}
}

// On registers fn to run whenever event fires.
func (h *Hooks) On(event string, fn HookFunc) {
	h.byEvent[event] = append(h.byEvent[event], fn)
}

func (h *Hooks) fire(event string, args ...interface{}) {
	for _, fn := range h.byEvent[event] {
		fn(args...)
	}
}

const (
	EventLeech = "leech"
	EventReset = "reset"
)
