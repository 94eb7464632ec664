package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

// List shows the caller's own orders; admins see every order.
func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list")

	who, _ := authmw.IdentityFrom(c)
	page, size := pageParams(c)
	f := service.OrderFilter{Status: c.QueryParam("status"), Page: page, Size: size}
	if !who.IsAdmin() {
		f.UserID = who.ID
	}

	items, meta, err := h.Svc.List(ctx, f)
	if err != nil {
		return fromService(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "meta": meta})
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.get")

	who, _ := authmw.IdentityFrom(c)
	o, err := h.Svc.Get(ctx, who, c.Param("id"))
	if err != nil {
		return fromService(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": o})
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.create")

	var req service.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_order_error", err)
	}
	who, _ := authmw.IdentityFrom(c)
	o, err := h.Svc.Create(ctx, who, req)
	if err != nil {
		return fromService(l, "create_order_error", err)
	}

	l.Info("order_created", "order_id", o.ID, "user_id", who.ID, "total", o.TotalAmount)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": o, "message": "Order created successfully"})
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.cancel")

	who, _ := authmw.IdentityFrom(c)
	o, err := h.Svc.Cancel(ctx, who, c.Param("id"))
	if err != nil {
		return fromService(l, "cancel_order_error", err)
	}

	l.Info("order_cancelled", "order_id", o.ID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": o, "message": "Order cancelled successfully"})
}
