package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Setup wires the echo instance's ambient request-logging and panic-recovery
// middleware around every route, logging through logr (AMBIENT STACK:
// log/slog text handler).
func Setup(e *echo.Echo, logr *slog.Logger) {
	e.Use(echomw.Recover())
	e.Use(requestLogger(logr))
}

// requestLogger logs one structured line per request: method, path, status,
// latency, and the remote address.
func requestLogger(logr *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			logr.Info("request",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			)
			return err
		}
	}
}
