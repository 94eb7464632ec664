package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fromService(l, "login_error", err)
	}

	l.Info("login_success", "username", res.User.Username, "role", res.User.Role.String())
	return c.JSON(http.StatusOK, echo.Map{
		"message":    "Login successful",
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user": userView{
			ID:       res.User.ID,
			Username: res.User.Username,
			Role:     res.User.Role.String(),
		},
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	id, _ := authmw.IdentityFrom(c)
	if err := h.Svc.Logout(ctx, id, authmw.TokenFrom(c)); err != nil {
		l.Error("logout_error", "status", 500, "reason", "cannot revoke token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Logout failed").SetInternal(err)
	}

	l.Info("logout_success", "username", id.Username)
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout successful"})
}

func (h *AuthHTTP) Verify(c echo.Context) error {
	id, _ := authmw.IdentityFrom(c)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Token is valid",
		"token_info": echo.Map{
			"user":       id,
			"issued_at":  id.IssuedAt.UTC().Format(time.RFC3339),
			"expires_at": id.ExpiresAt.UTC().Format(time.RFC3339),
			"valid":      true,
		},
	})
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req service.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register_error", err)
	}

	u, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fromService(l, "register_error", err)
	}

	l.Info("register_success", "username", u.Username)
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    u,
		"message": "Account created",
	})
}
