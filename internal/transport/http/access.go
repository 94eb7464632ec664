package httpserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
)

// AccessHTTP serves the endpoints that exist to show what each gate and
// role combination lets through.
type AccessHTTP struct {
	Users *service.UserService
	Now   func() time.Time
}

func (h *AccessHTTP) now() string {
	if h.Now == nil {
		return time.Now().UTC().Format(time.RFC3339)
	}
	return h.Now().UTC().Format(time.RFC3339)
}

func (h *AccessHTTP) Public(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "This is a public endpoint",
		"timestamp": h.now(),
		"access":    "public",
	})
}

func (h *AccessHTTP) Personalized(c echo.Context) error {
	id, ok := authmw.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Hello anonymous user! This is generic content.",
			"access":  "anonymous",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Hello %s! This is personalized content.", id.Username),
		"user":    id,
		"access":  "authenticated",
	})
}

func (h *AccessHTTP) Protected(c echo.Context) error {
	id, _ := authmw.IdentityFrom(c)
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Access granted to protected resource",
		"user":      id,
		"timestamp": h.now(),
	})
}

func (h *AccessHTTP) Profile(c echo.Context) error {
	id, _ := authmw.IdentityFrom(c)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User profile data",
		"profile": echo.Map{
			"id":         id.ID,
			"username":   id.Username,
			"role":       id.Role,
			"last_login": id.IssuedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (h *AccessHTTP) UserData(c echo.Context) error {
	id, _ := authmw.IdentityFrom(c)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User data access granted",
		"data": echo.Map{
			"some_data":    "This is sensitive user data",
			"access_level": id.Role,
			"timestamp":    h.now(),
		},
	})
}

type actionRequest struct {
	Action string `json:"action"`
}

func (h *AccessHTTP) Action(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "protected.action")

	var req actionRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return badBody(l, "protected_action_error", err)
		}
	}
	if req.Action == "" {
		req.Action = "default"
	}

	id, _ := authmw.IdentityFrom(c)
	l.Info("protected_action_executed", "action", req.Action, "username", id.Username)
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Protected action executed",
		"action":      req.Action,
		"executed_by": id.Username,
		"timestamp":   h.now(),
	})
}

func (h *AccessHTTP) AdminUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.users")

	users, err := h.Users.List(ctx, c.QueryParam("role"))
	if err != nil {
		return fromService(l, "admin_users_error", err)
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, userView{ID: u.ID, Username: u.Username, Role: u.Role.String()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Admin access - Users list",
		"users":   out,
	})
}
