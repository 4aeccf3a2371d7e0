package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"atamagaii/internal/scheduler"
)

// Deck is a user-facing group (deck) row, including the SUPPLEMENTED
// FEATURES hierarchy (Name segments joined by "::") and per-deck
// new-cards-per-day override that feeds the Configuration Resolver (§4.C).
type Deck struct {
	ID             int64  `db:"id" json:"id"`
	UserID         string `db:"user_id" json:"user_id"`
	ParentID       *int64 `db:"parent_id" json:"parent_id,omitempty"`
	Name           string `db:"name" json:"name"`
	NewCardsPerDay *int   `db:"new_cards_per_day" json:"new_cards_per_day,omitempty"`
}

// configBlock is the JSON-on-disk shape of scheduler.Config; it mirrors
// scheduler.Config field-for-field so ConfigForGroup can decode it directly.
type configBlock struct {
	New   scheduler.NewConfig   `json:"new"`
	Lapse scheduler.LapseConfig `json:"lapse"`
	Rev   scheduler.ReviewConfig `json:"rev"`
	Cram  scheduler.CramConfig  `json:"cram"`
}

func (s *Storage) CreateDeck(deck *Deck) error {
	res, err := s.db.Exec(`INSERT INTO groups (user_id, parent_id, name, new_cards_per_day) VALUES (?, ?, ?, ?)`,
		deck.UserID, deck.ParentID, deck.Name, deck.NewCardsPerDay)
	if err != nil {
		return fmt.Errorf("creating deck: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading new deck id: %w", err)
	}
	deck.ID = id
	return nil
}

func (s *Storage) GetDeck(id int64) (*Deck, error) {
	var d Deck
	err := s.db.QueryRow(`SELECT id, user_id, parent_id, name, new_cards_per_day FROM groups WHERE id = ? AND deleted_at IS NULL`, id).
		Scan(&d.ID, &d.UserID, &d.ParentID, &d.Name, &d.NewCardsPerDay)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting deck %d: %w", id, err)
	}
	return &d, nil
}

func (s *Storage) DecksForUser(userID string) ([]*Deck, error) {
	rows, err := s.db.Query(`SELECT id, user_id, parent_id, name, new_cards_per_day FROM groups WHERE user_id = ? AND deleted_at IS NULL`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing decks for user %s: %w", userID, err)
	}
	defer rows.Close()
	var out []*Deck
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.ID, &d.UserID, &d.ParentID, &d.Name, &d.NewCardsPerDay); err != nil {
			return nil, fmt.Errorf("scanning deck row: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// Groups implements scheduler.Store, returning every group for
// group_count_tree's "::" hierarchy rollup.
func (s *Storage) Groups() ([]*scheduler.Group, error) {
	rows, err := s.db.Query(`SELECT id, name FROM groups WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()
	var out []*scheduler.Group
	for rows.Next() {
		var g scheduler.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scanning group row: %w", err)
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}

// ConfigForGroup implements scheduler.ConfigResolver, walking the group's
// parent chain until a stored config block is found, falling back to
// scheduler.DefaultConfig() (§4.C "Config inheritance").
func (s *Storage) ConfigForGroup(groupID int64) (scheduler.Config, error) {
	id := sql.NullInt64{Int64: groupID, Valid: true}
	var perDayOverride sql.NullInt64 // nearest group's new_cards_per_day
	for id.Valid {
		var raw sql.NullString
		var parent sql.NullInt64
		var perDay sql.NullInt64
		err := s.db.QueryRow(`SELECT config_block, parent_id, new_cards_per_day FROM groups WHERE id = ?`, id.Int64).
			Scan(&raw, &parent, &perDay)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			return scheduler.Config{}, fmt.Errorf("resolving config for group %d: %w", groupID, err)
		}
		if !perDayOverride.Valid && perDay.Valid {
			perDayOverride = perDay
		}
		if raw.Valid && raw.String != "" {
			var block configBlock
			if err := json.Unmarshal([]byte(raw.String), &block); err != nil {
				return scheduler.Config{}, fmt.Errorf("decoding config block for group %d: %w", id.Int64, err)
			}
			cfg := scheduler.Config{New: block.New, Lapse: block.Lapse, Rev: block.Rev, Cram: block.Cram}
			if perDayOverride.Valid {
				cfg.New.PerDay = int(perDayOverride.Int64)
			}
			return cfg, nil
		}
		id = parent
	}
	cfg := scheduler.DefaultConfig()
	if perDayOverride.Valid {
		cfg.New.PerDay = int(perDayOverride.Int64)
	}
	return cfg, nil
}

// ChatIDForGroup resolves the Telegram chat id owning a group, by walking
// up to its root ancestor and joining on that group's user. Used by
// internal/notify to address leech notifications.
func (s *Storage) ChatIDForGroup(groupID int64) (int64, error) {
	id := groupID
	for {
		var userID string
		var parent sql.NullInt64
		err := s.db.QueryRow(`SELECT user_id, parent_id FROM groups WHERE id = ?`, id).Scan(&userID, &parent)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, ErrNotFound
			}
			return 0, fmt.Errorf("resolving owner of group %d: %w", groupID, err)
		}
		if !parent.Valid {
			var chatID int64
			if err := s.db.QueryRow(`SELECT telegram_id FROM users WHERE id = ?`, userID).Scan(&chatID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return 0, ErrNotFound
				}
				return 0, fmt.Errorf("resolving chat for user %s: %w", userID, err)
			}
			return chatID, nil
		}
		id = parent.Int64
	}
}

// SaveConfigForGroup persists a resolved config block directly on a group,
// ending inheritance lookups at that group.
func (s *Storage) SaveConfigForGroup(groupID int64, cfg scheduler.Config) error {
	block := configBlock{New: cfg.New, Lapse: cfg.Lapse, Rev: cfg.Rev, Cram: cfg.Cram}
	raw, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("encoding config block: %w", err)
	}
	_, err = s.db.Exec(`UPDATE groups SET config_block = ? WHERE id = ?`, string(raw), groupID)
	if err != nil {
		return fmt.Errorf("saving config block for group %d: %w", groupID, err)
	}
	return nil
}
