package middleware

import (
	"net/http"
	"strings"

	"github.com/MidnightMr/parking-service/internal/service"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate resolves the bearer token into an Actor and stores it in the
// request context. Ownership and role rules live in the services.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			fields := strings.Fields(header)
			if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			actor, err := m.auth.ValidateToken(fields[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "token is invalid or expired")
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// ActorFromContext returns the authenticated caller; the zero Actor when the
// route skipped Authenticate.
func ActorFromContext(c echo.Context) service.Actor {
	actor, _ := c.Get(actorContextKey).(service.Actor)
	return actor
}
