package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

type TaskHTTP struct {
	Svc *service.TaskService
}

func (h *TaskHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tasks.list")

	tasks, err := h.Svc.List(ctx)
	if err != nil {
		return fromService(l, "list_tasks_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": tasks, "count": len(tasks)})
}

func (h *TaskHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tasks.get")

	task, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fromService(l, "get_task_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": task})
}

func (h *TaskHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tasks.create")

	var req service.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_task_error", err)
	}
	task, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fromService(l, "create_task_error", err)
	}

	l.Info("task_created", "task_id", task.ID)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": task, "message": "Task created successfully"})
}

func (h *TaskHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tasks.update")

	var req service.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_task_error", err)
	}
	task, err := h.Svc.Update(ctx, c.Param("id"), req)
	if err != nil {
		return fromService(l, "update_task_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": task, "message": "Task updated successfully"})
}

func (h *TaskHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "tasks.delete")

	task, err := h.Svc.Delete(ctx, c.Param("id"))
	if err != nil {
		return fromService(l, "delete_task_error", err)
	}

	l.Info("task_deleted", "task_id", task.ID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": task, "message": "Task deleted successfully"})
}
