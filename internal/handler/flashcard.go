package handler

import (
	"net/http"
	"strconv"

	"atamagaii/internal/contract"
	"atamagaii/internal/scheduler"

	"github.com/labstack/echo/v4"
)

func (h *Handler) AddFlashcardRoutes(g *echo.Group) {
	g.POST("/study/reset", h.ResetQueues)
	g.GET("/study/next", h.GetNextCard)
	g.POST("/study/answer", h.AnswerCard)
	g.GET("/study/counts", h.GetCounts)
	g.GET("/study/next-interval", h.GetNextInterval)
	g.GET("/study/finished", h.GetFinishedMsg)

	g.POST("/cards/suspend", h.Suspend)
	g.POST("/cards/unsuspend", h.Unsuspend)
	g.POST("/cards/forget", h.Forget)
	g.POST("/cards/reschedule", h.Reschedule)
	g.POST("/cards/sort", h.Sort)
	g.POST("/cram", h.CramGroups)

	g.GET("/stats", h.GetStats)
}

// ResetQueues rebuilds the scheduler's queues against the caller's selected
// groups (§6 reset()). A client calls this when switching decks.
func (h *Handler) ResetQueues(c echo.Context) error {
	var req contract.RescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	if err := h.sched.Reset(req.GroupIDs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reset queues").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetNextCard(c echo.Context) error {
	card := h.sched.GetCard()
	if card == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, contract.CardToResponse(card))
}

func (h *Handler) AnswerCard(c echo.Context) error {
	req := new(contract.AnswerCardRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	card, err := h.db.GetCard(req.CardID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "card not found").SetInternal(err)
	}

	if err := h.sched.AnswerCard(card, scheduler.Rating(req.Rating)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process answer").SetInternal(err)
	}

	return c.JSON(http.StatusOK, contract.CardToResponse(card))
}

func (h *Handler) GetCounts(c echo.Context) error {
	newCount, learn, review := h.sched.Counts()
	return c.JSON(http.StatusOK, contract.CountsResponse{New: newCount, Learn: learn, Review: review})
}

func (h *Handler) GetNextInterval(c echo.Context) error {
	cardID, err := parseID(c.QueryParam("card_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid card_id")
	}
	rating, err := strconv.Atoi(c.QueryParam("rating"))
	if err != nil || rating < 1 || rating > 4 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid rating")
	}

	card, err := h.db.GetCard(cardID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "card not found").SetInternal(err)
	}

	value, isSeconds := h.sched.NextInterval(card, scheduler.Rating(rating))
	return c.JSON(http.StatusOK, contract.NextIntervalResponse{Value: value, IsSeconds: isSeconds})
}

func (h *Handler) GetFinishedMsg(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": h.sched.FinishedMsg()})
}

func (h *Handler) Suspend(c echo.Context) error {
	req := new(contract.BulkOpRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := h.sched.Suspend(req.CardIDs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to suspend cards").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Unsuspend(c echo.Context) error {
	req := new(contract.BulkOpRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := h.sched.Unsuspend(req.CardIDs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to unsuspend cards").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Forget(c echo.Context) error {
	req := new(contract.BulkOpRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := h.sched.Forget(req.CardIDs); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to forget cards").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Reschedule(c echo.Context) error {
	req := new(contract.RescheduleRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := h.sched.Reschedule(req.CardIDs, req.MinDays, req.MaxDays); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reschedule cards").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Sort(c echo.Context) error {
	req := new(contract.SortRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := h.sched.Sort(req.CardIDs, req.Start, req.Shift); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to sort cards").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CramGroups(c echo.Context) error {
	req := new(contract.RescheduleRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := h.sched.CramGroups(req.GroupIDs, req.MinDays, req.MaxDays); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to enter cram mode").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetStats(c echo.Context) error {
	userID, err := GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	stats, err := h.db.GetUserStudyStats(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch statistics").SetInternal(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
