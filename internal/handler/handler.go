package handler

import (
	"net/http"

	"atamagaii/internal/contract"
	"atamagaii/internal/db"
	"atamagaii/internal/middleware"
	"atamagaii/internal/scheduler"

	telegram "github.com/go-telegram/bot"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// Handler is the HTTP surface over the scheduler core and its store. It
// holds a single scheduler.Scheduler instance, matching §5's single-user,
// single-process constraint: constructing two schedulers over the same
// store is undefined, so this service owns exactly one.
type Handler struct {
	bot       *telegram.Bot
	db        *db.Storage
	sched     *scheduler.Scheduler
	jwtSecret string
	botToken  string
	webAppURL string
}

func New(bot *telegram.Bot, store *db.Storage, sched *scheduler.Scheduler, jwtSecret, botToken, webAppURL string) *Handler {
	return &Handler{
		bot:       bot,
		db:        store,
		sched:     sched,
		jwtSecret: jwtSecret,
		botToken:  botToken,
		webAppURL: webAppURL,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/auth/telegram", h.TelegramAuth)

	v1 := e.Group("/v1")
	v1.Use(echojwt.WithConfig(middleware.GetUserAuthConfig(h.jwtSecret)))

	h.AddDeckRoutes(v1)
	h.AddFlashcardRoutes(v1)

	v1.PUT("/user", h.UpdateUserHandler)
}

func GetUserIDFromToken(c echo.Context) (string, error) {
	user, ok := c.Get("user").(*jwt.Token)
	if !ok || user == nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	claims, ok := user.Claims.(*contract.JWTClaims)
	if !ok || claims == nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	return claims.UID, nil
}

func (h *Handler) UpdateUserHandler(c echo.Context) error {
	userID, err := GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	req := new(contract.UpdateUserRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	user, err := h.db.GetUserByID(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch user").SetInternal(err)
	}

	if req.Name != nil {
		user.Name = req.Name
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := h.db.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update user").SetInternal(err)
	}

	return c.JSON(http.StatusOK, user)
}
