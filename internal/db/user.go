package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// User is the demo service's single-owner account, identified by Telegram
// login (AMBIENT STACK: Telegram auth). The scheduler itself is single-user
// per §5; User exists only so the HTTP surface knows whose groups to
// operate against.
type User struct {
	ID         string     `db:"id" json:"id"`
	TelegramID int64      `db:"telegram_id" json:"telegram_id"`
	Username   *string    `db:"username" json:"username"`
	AvatarURL  *string    `db:"avatar_url" json:"avatar_url"`
	Name       *string    `db:"name" json:"name"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

func (s *Storage) GetUserByID(userID string) (*User, error) {
	var user User
	query := `SELECT id, telegram_id, username, avatar_url, name, created_at, updated_at FROM users WHERE id = ? AND deleted_at IS NULL`
	err := s.db.QueryRow(query, userID).Scan(
		&user.ID, &user.TelegramID, &user.Username, &user.AvatarURL, &user.Name, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return &user, nil
}

func (s *Storage) GetUser(telegramID int64) (*User, error) {
	var user User
	query := `SELECT id, telegram_id, username, avatar_url, name, created_at, updated_at FROM users WHERE telegram_id = ? AND deleted_at IS NULL`
	err := s.db.QueryRow(query, telegramID).Scan(
		&user.ID, &user.TelegramID, &user.Username, &user.AvatarURL, &user.Name, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &user, nil
}

func (s *Storage) SaveUser(user *User) error {
	query := `INSERT INTO users (id, telegram_id, username, avatar_url, name) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, user.ID, user.TelegramID, user.Username, user.AvatarURL, user.Name)
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

func (s *Storage) UpdateUser(user *User) error {
	query := `UPDATE users SET username = ?, avatar_url = ?, name = ?, updated_at = ? WHERE telegram_id = ?`
	_, err := s.db.Exec(query, user.Username, user.AvatarURL, user.Name, time.Now(), user.TelegramID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}
