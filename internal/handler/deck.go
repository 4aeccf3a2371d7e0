package handler

import (
	"errors"
	"net/http"

	"atamagaii/internal/contract"
	"atamagaii/internal/db"

	"github.com/labstack/echo/v4"
)

func (h *Handler) AddDeckRoutes(g *echo.Group) {
	g.GET("/decks", h.GetDecks)
	g.GET("/decks/:id", h.GetDeck)
	g.POST("/decks", h.CreateDeck)
}

func (h *Handler) GetDecks(c echo.Context) error {
	userID, err := GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	decks, err := h.db.DecksForUser(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch decks").SetInternal(err)
	}

	return c.JSON(http.StatusOK, decks)
}

func (h *Handler) GetDeck(c echo.Context) error {
	userID, err := GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid deck id")
	}

	deck, err := h.db.GetDeck(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "deck not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch deck").SetInternal(err)
	}

	if deck.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	return c.JSON(http.StatusOK, deck)
}

func (h *Handler) CreateDeck(c echo.Context) error {
	userID, err := GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	req := new(contract.CreateDeckRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deck := &db.Deck{
		UserID:         userID,
		ParentID:       req.ParentID,
		Name:           req.Name,
		NewCardsPerDay: req.NewCardsPerDay,
	}
	if err := h.db.CreateDeck(deck); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create deck").SetInternal(err)
	}

	return c.JSON(http.StatusCreated, deck)
}
