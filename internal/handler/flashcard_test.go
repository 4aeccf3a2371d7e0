package handler_test

import (
	"atamagaii/internal/contract"
	"atamagaii/internal/testutils"
	"encoding/json"
	"fmt"
	_ "github.com/mattn/go-sqlite3"
	"net/http"
	"strings"
	"testing"
)

func TestCreateDeckAndListDecks(t *testing.T) {
	e := testutils.SetupHandlerDependencies(t)

	resp, err := testutils.AuthHelper(t, e, testutils.TelegramTestUserID, "mkkksim", "Maksim")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("Expected non-empty JWT token")
	}

	reqBody := map[string]string{"name": "N5 Vocabulary"}
	body, _ := json.Marshal(reqBody)

	rec := testutils.PerformRequest(t, e, http.MethodPost, "/v1/decks", string(body), resp.Token, http.StatusCreated)

	type deckResp struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	deck := testutils.ParseResponse[deckResp](t, rec)
	if deck.ID == 0 {
		t.Error("Expected a non-zero deck id")
	}
	if deck.Name != "N5 Vocabulary" {
		t.Errorf("Expected deck name 'N5 Vocabulary', got %q", deck.Name)
	}

	rec = testutils.PerformRequest(t, e, http.MethodGet, "/v1/decks", "", resp.Token, http.StatusOK)
	decks := testutils.ParseResponse[[]deckResp](t, rec)
	if len(decks) != 1 {
		t.Fatalf("Expected 1 deck, got %d", len(decks))
	}

	rec = testutils.PerformRequest(t, e, http.MethodGet, fmt.Sprintf("/v1/decks/%d", decks[0].ID), "", resp.Token, http.StatusOK)
	got := testutils.ParseResponse[deckResp](t, rec)
	if got.ID != decks[0].ID {
		t.Errorf("Expected deck id %d, got %d", decks[0].ID, got.ID)
	}
}

func TestGetDeckRejectsOtherUsersDeck(t *testing.T) {
	e := testutils.SetupHandlerDependencies(t)

	owner, err := testutils.AuthHelper(t, e, testutils.TelegramTestUserID, "owner", "Owner")
	if err != nil {
		t.Fatalf("Failed to authenticate owner: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"name": "Private deck"})
	rec := testutils.PerformRequest(t, e, http.MethodPost, "/v1/decks", string(body), owner.Token, http.StatusCreated)

	type deckResp struct {
		ID int64 `json:"id"`
	}
	deck := testutils.ParseResponse[deckResp](t, rec)

	intruder, err := testutils.AuthHelper(t, e, testutils.TelegramTestUserID+1, "intruder", "Intruder")
	if err != nil {
		t.Fatalf("Failed to authenticate intruder: %v", err)
	}

	testutils.PerformRequest(t, e, http.MethodGet, fmt.Sprintf("/v1/decks/%d", deck.ID), "", intruder.Token, http.StatusForbidden)
}

func TestStudyCountsAndNextCardOnEmptyQueue(t *testing.T) {
	e := testutils.SetupHandlerDependencies(t)

	resp, err := testutils.AuthHelper(t, e, testutils.TelegramTestUserID, "mkkksim", "Maksim")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	rec := testutils.PerformRequest(t, e, http.MethodGet, "/v1/study/counts", "", resp.Token, http.StatusOK)
	counts := testutils.ParseResponse[contract.CountsResponse](t, rec)
	if counts.New != 0 || counts.Learn != 0 || counts.Review != 0 {
		t.Errorf("Expected all-zero counts on a fresh account, got %+v", counts)
	}

	rec = testutils.PerformRequest(t, e, http.MethodGet, "/v1/study/next", "", resp.Token, http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != "null" {
		t.Errorf("Expected null next card on an empty queue, got %s", rec.Body.String())
	}
}

func TestUpdateUserProfile(t *testing.T) {
	e := testutils.SetupHandlerDependencies(t)

	resp, err := testutils.AuthHelper(t, e, testutils.TelegramTestUserID, "mkkksim", "Maksim")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"name": "Maksim K."})
	testutils.PerformRequest(t, e, http.MethodPut, "/v1/user", string(body), resp.Token, http.StatusOK)
}
