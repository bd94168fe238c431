package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole passes only callers whose role matches one of the given roles.
// Admin endpoints accept both admin and super_admin.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			currentRole, ok := RoleFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "admin access required")
			}
			for _, role := range roles {
				if currentRole == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
	}
}
