package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"atamagaii/internal/scheduler"
)

// Counters implements scheduler.Store, returning the daily counters row for
// day (creating a zero-valued one if it doesn't exist yet, §3 Daily
// counters).
func (s *Storage) Counters(day int) (*scheduler.DailyCounters, error) {
	var c scheduler.DailyCounters
	err := s.db.QueryRow(`SELECT day, new_done, review_done, learn_done, time_today_ms FROM daily_counters WHERE day = ?`, day).
		Scan(&c.Day, &c.NewDone, &c.ReviewDone, &c.LearnDone, &c.TimeTodayMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &scheduler.DailyCounters{Day: day}, nil
		}
		return nil, fmt.Errorf("getting daily counters for day %d: %w", day, err)
	}
	return &c, nil
}

// SaveCounters implements scheduler.Store, upserting the daily counters row.
func (s *Storage) SaveCounters(counters *scheduler.DailyCounters) error {
	_, err := s.db.Exec(`
		INSERT INTO daily_counters (day, new_done, review_done, learn_done, time_today_ms)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			new_done = excluded.new_done,
			review_done = excluded.review_done,
			learn_done = excluded.learn_done,
			time_today_ms = excluded.time_today_ms`,
		counters.Day, counters.NewDone, counters.ReviewDone, counters.LearnDone, counters.TimeTodayMs,
	)
	if err != nil {
		return fmt.Errorf("saving daily counters for day %d: %w", counters.Day, err)
	}
	return nil
}

// StudyStats is the richer, human-facing study summary behind the demo
// service's /stats endpoint (SUPPLEMENTED FEATURES: study statistics).
type StudyStats struct {
	CardsStudiedToday int    `json:"cards_studied_today"`
	TimeStudiedTodayMs int64 `json:"time_studied_today_ms"`
	TotalCards         int   `json:"total_cards"`
	TotalReviews       int   `json:"total_reviews"`
	TotalTimeStudied   string `json:"total_time_studied"`
	StudyDays          int   `json:"study_days"`
}

// StudyHistoryItem is one day's worth of study activity.
type StudyHistoryItem struct {
	Date        string `json:"date"`
	CardCount   int    `json:"card_count"`
	TimeSpentMs int64  `json:"time_spent_ms"`
}

// GetUserStudyStats aggregates the revlog for a user's groups into a
// summary view, grounded on the teacher's GetUserStudyStats but rewritten
// against the revlog/daily_counters schema instead of a per-user reviews
// table (the scheduler is single-user per §5, so "for a user" here means
// "for that user's groups").
func (s *Storage) GetUserStudyStats(userID string) (StudyStats, error) {
	var stats StudyStats

	today := int(time.Now().UTC().Unix() / 86400)
	counters, err := s.Counters(today)
	if err != nil {
		return stats, fmt.Errorf("reading today's counters: %w", err)
	}
	stats.CardsStudiedToday = counters.NewDone + counters.ReviewDone + counters.LearnDone
	stats.TimeStudiedTodayMs = counters.TimeTodayMs

	err = s.db.QueryRow(`
		SELECT COUNT(DISTINCT c.id), COUNT(r.id)
		FROM cards c
		JOIN groups g ON g.id = c.gid
		LEFT JOIN revlog r ON r.cid = c.id
		WHERE g.user_id = ? AND c.deleted_at IS NULL`, userID).
		Scan(&stats.TotalCards, &stats.TotalReviews)
	if err != nil {
		return stats, fmt.Errorf("reading total stats: %w", err)
	}

	var totalTimeMs int64
	err = s.db.QueryRow(`
		SELECT IFNULL(SUM(r.taken), 0)
		FROM revlog r
		JOIN cards c ON c.id = r.cid
		JOIN groups g ON g.id = c.gid
		WHERE g.user_id = ?`, userID).Scan(&totalTimeMs)
	if err != nil {
		return stats, fmt.Errorf("reading total time studied: %w", err)
	}
	d := time.Duration(totalTimeMs) * time.Millisecond
	stats.TotalTimeStudied = fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)

	err = s.db.QueryRow(`
		SELECT COUNT(DISTINCT time / 86400000)
		FROM revlog r
		JOIN cards c ON c.id = r.cid
		JOIN groups g ON g.id = c.gid
		WHERE g.user_id = ?`, userID).Scan(&stats.StudyDays)
	if err != nil {
		stats.StudyDays = 0
	}

	return stats, nil
}

// GetUserStudyHistory returns per-day activity for the last days days.
func (s *Storage) GetUserStudyHistory(userID string, days int) ([]StudyHistoryItem, error) {
	if days <= 0 {
		days = 100
	}
	cutoffMs := time.Now().AddDate(0, 0, -days).UnixMilli()

	rows, err := s.db.Query(`
		SELECT time / 86400000 AS day, COUNT(*), SUM(r.taken)
		FROM revlog r
		JOIN cards c ON c.id = r.cid
		JOIN groups g ON g.id = c.gid
		WHERE g.user_id = ? AND r.time >= ?
		GROUP BY day
		ORDER BY day ASC`, userID, cutoffMs)
	if err != nil {
		return nil, fmt.Errorf("querying study history: %w", err)
	}
	defer rows.Close()

	var out []StudyHistoryItem
	for rows.Next() {
		var day int64
		var item StudyHistoryItem
		if err := rows.Scan(&day, &item.CardCount, &item.TimeSpentMs); err != nil {
			return nil, fmt.Errorf("scanning study history row: %w", err)
		}
		item.Date = time.Unix(day*86400, 0).UTC().Format("2006-01-02")
		out = append(out, item)
	}
	return out, rows.Err()
}
