package scheduler_test

import (
	"atamagaii/internal/scheduler"
	"sort"
)

// memStore is an in-memory Store double used by the scheduler package's
// tests. It is not a production store; internal/db carries the sqlite
// implementation of this same contract.
type memStore struct {
	cards     map[int64]*scheduler.Card
	groups    map[int64]*scheduler.Group
	configs   map[int64]scheduler.Config
	counters  map[int]*scheduler.DailyCounters
	nextPos   int64
}

func newMemStore() *memStore {
	return &memStore{
		cards:    make(map[int64]*scheduler.Card),
		groups:   make(map[int64]*scheduler.Group),
		configs:  make(map[int64]scheduler.Config),
		counters: make(map[int]*scheduler.DailyCounters),
	}
}

func (m *memStore) put(c *scheduler.Card) {
	cp := *c
	m.cards[c.ID] = &cp
	if c.Queue == scheduler.QueueNew && c.Due >= m.nextPos {
		m.nextPos = c.Due + 1
	}
}

func (m *memStore) ConfigForGroup(groupID int64) (scheduler.Config, error) {
	if cfg, ok := m.configs[groupID]; ok {
		return cfg, nil
	}
	return scheduler.DefaultConfig(), nil
}

func (m *memStore) GetCard(id int64) (*scheduler.Card, error) {
	c, ok := m.cards[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) SaveCard(card *scheduler.Card) error {
	cp := *card
	m.cards[card.ID] = &cp
	return nil
}

func (m *memStore) SaveCardAndLog(card *scheduler.Card, entry *scheduler.RevLogEntry) error {
	return m.SaveCard(card)
}

func (m *memStore) Siblings(noteID, excludeCardID int64) ([]*scheduler.Card, error) {
	var out []*scheduler.Card
	for _, c := range m.cards {
		if c.NoteID == noteID && c.ID != excludeCardID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) inGroups(groupIDs []int64, gid int64) bool {
	if len(groupIDs) == 0 {
		return true
	}
	for _, g := range groupIDs {
		if g == gid {
			return true
		}
	}
	return false
}

func (m *memStore) NewCards(groupIDs []int64, order scheduler.NewOrder, limit int) ([]*scheduler.Card, error) {
	var out []*scheduler.Card
	for _, c := range m.cards {
		if c.Queue == scheduler.QueueNew && m.inGroups(groupIDs, c.GroupID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Due < out[j].Due })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) LearningCards(groupIDs []int64, dueBefore int64) ([]*scheduler.Card, error) {
	var out []*scheduler.Card
	for _, c := range m.cards {
		if c.Queue == scheduler.QueueLearning && c.Due <= dueBefore && m.inGroups(groupIDs, c.GroupID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Due < out[j].Due })
	return out, nil
}

func (m *memStore) ReviewCards(groupIDs []int64, dueDay int, limit int) ([]*scheduler.Card, error) {
	var out []*scheduler.Card
	for _, c := range m.cards {
		if c.Queue == scheduler.QueueReview && c.Due <= int64(dueDay) && m.inGroups(groupIDs, c.GroupID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Due < out[j].Due })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) CardsDueInRange(groupIDs []int64, today, minDay, maxDay int) ([]*scheduler.Card, error) {
	var out []*scheduler.Card
	for _, c := range m.cards {
		if c.Type != scheduler.TypeReview || c.Queue != scheduler.QueueReview {
			continue
		}
		if !m.inGroups(groupIDs, c.GroupID) {
			continue
		}
		offset := int(c.Due) - today
		if offset >= minDay && offset <= maxDay {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) CardsByNote(noteID int64) ([]*scheduler.Card, error) {
	var out []*scheduler.Card
	for _, c := range m.cards {
		if c.NoteID == noteID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) CardsByIDs(ids []int64) ([]*scheduler.Card, error) {
	var out []*scheduler.Card
	for _, id := range ids {
		if c, ok := m.cards[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) CardsByGroups(groupIDs []int64) ([]*scheduler.Card, error) {
	var out []*scheduler.Card
	for _, c := range m.cards {
		if m.inGroups(groupIDs, c.GroupID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) Groups() ([]*scheduler.Group, error) {
	var out []*scheduler.Group
	for _, g := range m.groups {
		gp := *g
		out = append(out, &gp)
	}
	return out, nil
}

func (m *memStore) NextNewPosition() (int64, error) {
	pos := m.nextPos
	m.nextPos++
	return pos, nil
}

func (m *memStore) Counters(day int) (*scheduler.DailyCounters, error) {
	if c, ok := m.counters[day]; ok {
		cp := *c
		return &cp, nil
	}
	return &scheduler.DailyCounters{Day: day}, nil
}

func (m *memStore) SaveCounters(counters *scheduler.DailyCounters) error {
	cp := *counters
	m.counters[counters.Day] = &cp
	return nil
}

type notFoundError struct{}

func (notFoundError) Error() string { return "card not found" }

var errNotFound = notFoundError{}
