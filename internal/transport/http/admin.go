package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

type AdminHTTP struct {
	Svc    *service.AdminService
	Orders *service.OrderService
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	d, err := h.Svc.Dashboard(ctx)
	if err != nil {
		return fromService(l, "admin_dashboard_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": d})
}

func (h *AdminHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	st, err := h.Svc.Stats(ctx)
	if err != nil {
		return fromService(l, "admin_stats_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": st})
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders")

	page, size := pageParams(c)
	items, meta, err := h.Orders.List(ctx, service.OrderFilter{
		UserID: c.QueryParam("user_id"),
		Status: c.QueryParam("status"),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		return fromService(l, "admin_orders_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "meta": meta})
}

func (h *AdminHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.order_status")

	var req service.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_order_status_error", err)
	}
	o, err := h.Orders.UpdateStatus(ctx, c.Param("id"), req)
	if err != nil {
		return fromService(l, "update_order_status_error", err)
	}

	l.Info("order_status_updated", "order_id", o.ID, "status", string(o.Status))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": o, "message": "Order status updated successfully"})
}
