package authmw

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/auth"
)

// RequireRoles must be mounted after a Gate. With no roles any
// authenticated caller passes.
func RequireRoles(roles ...auth.Role) echo.MiddlewareFunc {
	allowed := slices.Clone(roles)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if len(allowed) == 0 {
				return next(c)
			}
			if !id.HasRole(allowed...) {
				return echo.NewHTTPError(http.StatusForbidden,
					fmt.Sprintf("Access denied. Required roles: %s", auth.JoinRoles(allowed)))
			}
			return next(c)
		}
	}
}
