package middleware

import (
	"atamagaii/internal/contract"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// GetUserAuthConfig returns the echo-jwt config validating the session JWT
// minted by TelegramAuth, decoding claims into contract.JWTClaims.
func GetUserAuthConfig(secret string) echojwt.Config {
	return echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(contract.JWTClaims)
		},
		SigningKey: []byte(secret),
	}
}
