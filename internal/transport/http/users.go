package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
)

type UserHTTP struct {
	Svc    *service.UserService
	Orders *service.OrderService
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.list")

	users, err := h.Svc.List(ctx, c.QueryParam("role"))
	if err != nil {
		return fromService(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": users, "count": len(users)})
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.get")

	who, _ := authmw.IdentityFrom(c)
	u, err := h.Svc.Get(ctx, who, c.Param("id"))
	if err != nil {
		return fromService(l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": u})
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.create")

	var req service.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_user_error", err)
	}
	u, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fromService(l, "create_user_error", err)
	}

	l.Info("user_created", "user_id", u.ID, "role", u.Role.String())
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": u, "message": "User created successfully"})
}

func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.update")

	var req service.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_user_error", err)
	}
	who, _ := authmw.IdentityFrom(c)
	u, err := h.Svc.Update(ctx, who, c.Param("id"), req)
	if err != nil {
		return fromService(l, "update_user_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": u, "message": "User updated successfully"})
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.delete")

	who, _ := authmw.IdentityFrom(c)
	u, err := h.Svc.Delete(ctx, who, c.Param("id"))
	if err != nil {
		return fromService(l, "delete_user_error", err)
	}

	l.Info("user_deleted", "user_id", u.ID, "by", who.Username)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": u, "message": "User deleted successfully"})
}

func (h *UserHTTP) UserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users.orders")

	who, _ := authmw.IdentityFrom(c)
	u, err := h.Svc.Get(ctx, who, c.Param("id"))
	if err != nil {
		return fromService(l, "user_orders_error", err)
	}
	page, size := pageParams(c)
	items, meta, err := h.Orders.List(ctx, service.OrderFilter{UserID: u.ID, Status: c.QueryParam("status"), Page: page, Size: size})
	if err != nil {
		return fromService(l, "user_orders_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "meta": meta})
}
