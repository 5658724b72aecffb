package api

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"consignment-service/internal/entity"
	"consignment-service/internal/service"
)

// JWT verifies the bearer token and stores it under "user".
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, errorBody{Error: "missing or invalid token", Kind: "unauthorized"})
		},
	})
}

func claimsFrom(c echo.Context) (*service.JwtCustomClaims, string, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, "", false
	}
	claims, ok := token.Claims.(*service.JwtCustomClaims)
	return claims, token.Raw, ok
}

// Session rejects tokens whose session has been revoked or replaced.
func Session(users *service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, raw, ok := claimsFrom(c)
			if !ok {
				return respondError(c, service.ErrUnauthorized)
			}
			if err := users.ValidateSession(c.Request().Context(), claims.UserID, raw); err != nil {
				return respondError(c, err)
			}
			return next(c)
		}
	}
}

// AdminOnly allows only admin tokens through.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, _, ok := claimsFrom(c)
		if !ok || claims.Role != entity.RoleAdmin {
			return respondError(c, service.ErrForbidden)
		}
		return next(c)
	}
}

func isAdmin(c echo.Context) bool {
	claims, _, ok := claimsFrom(c)
	return ok && claims.Role == entity.RoleAdmin
}

func currentUserID(c echo.Context) int {
	claims, _, ok := claimsFrom(c)
	if !ok {
		return 0
	}
	return claims.UserID
}
