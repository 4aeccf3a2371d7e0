package db

import (
	"database/sql"
	"errors"
	"fmt"

	"atamagaii/internal/scheduler"
)

const cardColumns = `id, nid, gid, ord, type, queue, due, edue, ivl, factor, reps, lapses, streak, grade, cycles, timer_started, cram_queue, cram_due, cram_ivl, cram_factor`

func scanCard(row rowScanner) (*scheduler.Card, error) {
	var c scheduler.Card
	var timerStarted sql.NullFloat64
	var cq, cd, ci, cf sql.NullInt64

	err := row.Scan(
		&c.ID, &c.NoteID, &c.GroupID, &c.Ord, &c.Type, &c.Queue, &c.Due, &c.EDue,
		&c.Ivl, &c.Factor, &c.Reps, &c.Lapses, &c.Streak, &c.Grade, &c.Cycles,
		&timerStarted, &cq, &cd, &ci, &cf,
	)
	if err != nil {
		return nil, err
	}
	if timerStarted.Valid {
		c.TimerStarted = timerStarted.Float64
	}
	if cq.Valid {
		c.CramSaved = &scheduler.CramSnapshot{
			Queue:  scheduler.Queue(cq.Int64),
			Due:    cd.Int64,
			Ivl:    int(ci.Int64),
			Factor: int(cf.Int64),
		}
	}
	return &c, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Storage) GetCard(id int64) (*scheduler.Card, error) {
	row := s.db.QueryRow(`SELECT `+cardColumns+` FROM cards WHERE id = ? AND deleted_at IS NULL`, id)
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting card %d: %w", id, err)
	}
	return c, nil
}

func (s *Storage) SaveCard(card *scheduler.Card) error {
	_, err := s.db.Exec(`
		UPDATE cards SET
			type = ?, queue = ?, due = ?, edue = ?, ivl = ?, factor = ?,
			reps = ?, lapses = ?, streak = ?, grade = ?, cycles = ?,
			timer_started = ?, cram_queue = ?, cram_due = ?, cram_ivl = ?, cram_factor = ?
		WHERE id = ?`,
		card.Type, card.Queue, card.Due, card.EDue, card.Ivl, card.Factor,
		card.Reps, card.Lapses, card.Streak, card.Grade, card.Cycles,
		card.TimerStarted, cramCol(card, cramQueue), cramCol(card, cramDue), cramCol(card, cramIvl), cramCol(card, cramFactor),
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("saving card %d: %w", card.ID, err)
	}
	return nil
}

type cramField int

const (
	cramQueue cramField = iota
	cramDue
	cramIvl
	cramFactor
)

// cramCol returns the column value for card's CramSaved snapshot, or nil
// when the card isn't parked, so the sqlite column stores NULL.
func cramCol(card *scheduler.Card, field cramField) interface{} {
	if card.CramSaved == nil {
		return nil
	}
	switch field {
	case cramQueue:
		return int64(card.CramSaved.Queue)
	case cramDue:
		return card.CramSaved.Due
	case cramIvl:
		return card.CramSaved.Ivl
	default:
		return card.CramSaved.Factor
	}
}

// SaveCardAndLog persists a card mutation and its revlog row atomically, per
// §5 ("either the card mutation and its revlog row both commit or neither
// does").
func (s *Storage) SaveCardAndLog(card *scheduler.Card, entry *scheduler.RevLogEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE cards SET
			type = ?, queue = ?, due = ?, edue = ?, ivl = ?, factor = ?,
			reps = ?, lapses = ?, streak = ?, grade = ?, cycles = ?,
			timer_started = ?, cram_queue = ?, cram_due = ?, cram_ivl = ?, cram_factor = ?, mod = ?
		WHERE id = ?`,
		card.Type, card.Queue, card.Due, card.EDue, card.Ivl, card.Factor,
		card.Reps, card.Lapses, card.Streak, card.Grade, card.Cycles,
		card.TimerStarted, cramCol(card, cramQueue), cramCol(card, cramDue), cramCol(card, cramIvl), cramCol(card, cramFactor),
		entry.TimeMs, card.ID,
	)
	if err != nil {
		return fmt.Errorf("updating card %d: %w", card.ID, err)
	}

	_, err = tx.Exec(`
		INSERT INTO revlog (cid, time, grade, ivl, last_ivl, factor, taken, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.CardID, entry.TimeMs, entry.Rating, entry.NewIvl, entry.LastIvl, entry.NewFactor, entry.TakenMs, entry.Type,
	)
	if err != nil {
		return fmt.Errorf("inserting revlog for card %d: %w", card.ID, err)
	}

	return tx.Commit()
}

func (s *Storage) Siblings(noteID, excludeCardID int64) ([]*scheduler.Card, error) {
	rows, err := s.db.Query(`SELECT `+cardColumns+` FROM cards WHERE nid = ? AND id != ? AND deleted_at IS NULL`, noteID, excludeCardID)
	if err != nil {
		return nil, fmt.Errorf("querying siblings of note %d: %w", noteID, err)
	}
	return scanCards(rows)
}

func (s *Storage) NewCards(groupIDs []int64, order scheduler.NewOrder, limit int) ([]*scheduler.Card, error) {
	where, args := groupFilter("queue = 0 AND deleted_at IS NULL", groupIDs)
	orderBy := "due ASC"
	if order == scheduler.OrderRandom {
		orderBy = "RANDOM()"
	}
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE %s ORDER BY %s`, cardColumns, where, orderBy)
	if limit >= 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying new cards: %w", err)
	}
	return scanCards(rows)
}

func (s *Storage) LearningCards(groupIDs []int64, dueBefore int64) ([]*scheduler.Card, error) {
	where, args := groupFilter("queue = 1 AND due <= ? AND deleted_at IS NULL", groupIDs)
	args = append([]interface{}{dueBefore}, args...)
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE %s ORDER BY due ASC`, cardColumns, where)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying learning cards: %w", err)
	}
	return scanCards(rows)
}

func (s *Storage) ReviewCards(groupIDs []int64, dueDay int, limit int) ([]*scheduler.Card, error) {
	where, args := groupFilter("queue = 2 AND due <= ? AND deleted_at IS NULL", groupIDs)
	args = append([]interface{}{dueDay}, args...)
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE %s ORDER BY due ASC`, cardColumns, where)
	if limit >= 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying review cards: %w", err)
	}
	return scanCards(rows)
}

func (s *Storage) CardsDueInRange(groupIDs []int64, today, minDay, maxDay int) ([]*scheduler.Card, error) {
	where, args := groupFilter("type = 2 AND queue = 2 AND deleted_at IS NULL AND (due - ?) BETWEEN ? AND ?", groupIDs)
	args = append([]interface{}{today, minDay, maxDay}, args...)
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE %s ORDER BY due ASC`, cardColumns, where)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying cram candidates: %w", err)
	}
	return scanCards(rows)
}

func (s *Storage) CardsByNote(noteID int64) ([]*scheduler.Card, error) {
	rows, err := s.db.Query(`SELECT `+cardColumns+` FROM cards WHERE nid = ? AND deleted_at IS NULL`, noteID)
	if err != nil {
		return nil, fmt.Errorf("querying cards for note %d: %w", noteID, err)
	}
	return scanCards(rows)
}

func (s *Storage) CardsByIDs(ids []int64) ([]*scheduler.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := inClause(ids)
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE id IN (%s) AND deleted_at IS NULL`, cardColumns, placeholders)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying cards by id: %w", err)
	}
	return scanCards(rows)
}

func (s *Storage) CardsByGroups(groupIDs []int64) ([]*scheduler.Card, error) {
	where, args := groupFilter("deleted_at IS NULL", groupIDs)
	query := fmt.Sprintf(`SELECT %s FROM cards WHERE %s`, cardColumns, where)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying cards by group: %w", err)
	}
	return scanCards(rows)
}

func (s *Storage) NextNewPosition() (int64, error) {
	var max sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(due) FROM cards WHERE queue = 0`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("computing next new position: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64 + 1, nil
}

func scanCards(rows *sql.Rows) ([]*scheduler.Card, error) {
	defer rows.Close()
	var out []*scheduler.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating card rows: %w", err)
	}
	return out, nil
}

// groupFilter appends an "AND gid IN (...)" clause when groupIDs is
// non-empty, matching every card's group otherwise.
func groupFilter(base string, groupIDs []int64) (string, []interface{}) {
	if len(groupIDs) == 0 {
		return base, nil
	}
	placeholders, args := inClause(groupIDs)
	return base + " AND gid IN (" + placeholders + ")", args
}

func inClause(ids []int64) (string, []interface{}) {
	placeholders := ""
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args[i] = id
	}
	return placeholders, args
}
