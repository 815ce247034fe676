package middleware

import (
	"net/http"

	"geolens/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole gates a route group to principals holding one of the given
// roles. It assumes Required() already ran, so an anonymous principal here
// means the middleware chain is miswired and 401 is the honest answer.
func RequireRole(roles ...models.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := GetPrincipal(c)
			if principal.IsAnonymous() {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, role := range roles {
				if principal.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}

// RequireAnalyst restricts a route to analyst accounts (authoring surface).
func RequireAnalyst() echo.MiddlewareFunc {
	return RequireRole(models.UserRoleAnalyst)
}
