package contract

import (
	"fmt"

	"atamagaii/internal/db"
	"atamagaii/internal/scheduler"
	"github.com/golang-jwt/jwt/v5"
)

type JWTClaims struct {
	jwt.RegisteredClaims
	UID    string `json:"uid,omitempty"`
	ChatID int64  `json:"chat_id,omitempty"`
}

type AuthTelegramRequest struct {
	Query string `json:"query"`
}

type AuthTelegramResponse struct {
	Token string  `json:"token"`
	User  db.User `json:"user"`
}

func (a AuthTelegramRequest) Validate() error {
	if a.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// CardResponse is the wire shape of a scheduler.Card, trimmed to the fields
// a study client needs to render and answer a card.
type CardResponse struct {
	ID      int64 `json:"id"`
	NoteID  int64 `json:"note_id"`
	GroupID int64 `json:"group_id"`
	Type    int   `json:"type"`
	Queue   int   `json:"queue"`
	Due     int64 `json:"due"`
	Ivl     int   `json:"ivl"`
	Factor  int   `json:"factor"`
	Reps    int   `json:"reps"`
	Lapses  int   `json:"lapses"`
}

func CardToResponse(c *scheduler.Card) CardResponse {
	return CardResponse{
		ID: c.ID, NoteID: c.NoteID, GroupID: c.GroupID,
		Type: int(c.Type), Queue: int(c.Queue), Due: c.Due,
		Ivl: c.Ivl, Factor: c.Factor, Reps: c.Reps, Lapses: c.Lapses,
	}
}

// AnswerCardRequest carries the learner's self-graded response (§4.F).
type AnswerCardRequest struct {
	CardID int64 `json:"card_id" validate:"required"`
	Rating int   `json:"rating" validate:"required,min=1,max=4"`
}

// CountsResponse is the live (new, learn, review) triple (§6 counts()).
type CountsResponse struct {
	New    int `json:"new"`
	Learn  int `json:"learn"`
	Review int `json:"review"`
}

// NextIntervalResponse previews the interval AnswerCard would produce
// (§4.G), without mutating anything.
type NextIntervalResponse struct {
	Value     int  `json:"value"`
	IsSeconds bool `json:"is_seconds"`
}

// BulkOpRequest carries a set of card ids for suspend/unsuspend/forget.
type BulkOpRequest struct {
	CardIDs []int64 `json:"card_ids" validate:"required,min=1"`
}

// RescheduleRequest carries the min/max day bounds for reschedule/cram.
type RescheduleRequest struct {
	CardIDs []int64 `json:"card_ids,omitempty"`
	GroupIDs []int64 `json:"group_ids,omitempty"`
	MinDays int     `json:"min_days"`
	MaxDays int     `json:"max_days"`
}

// SortRequest carries a `sort(ids, start, shift)` bulk operation (§4.I).
type SortRequest struct {
	CardIDs []int64 `json:"card_ids" validate:"required,min=1"`
	Start   int64   `json:"start"`
	Shift   bool    `json:"shift"`
}
