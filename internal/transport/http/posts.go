package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
)

type PostHTTP struct {
	Svc *service.PostService
}

// unknownCategory answers a missing post category with the list of
// categories that do exist.
func (h *PostHTTP) unknownCategory(c echo.Context, event string, err error) error {
	l := logging.FromContext(c.Request().Context())
	if !errors.Is(err, service.ErrNotFound) {
		return fromService(l, event, err)
	}
	l.Warn(event, "status", http.StatusNotFound, "reason", service.Message(err))
	return c.JSON(http.StatusNotFound, echo.Map{
		"error":                errorLabels[http.StatusNotFound],
		"message":              service.Message(err),
		"available_categories": h.Svc.CategoryNames(),
	})
}

func (h *PostHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posts.list")

	posts, err := h.Svc.List(ctx)
	if err != nil {
		return fromService(l, "list_posts_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": posts, "count": len(posts)})
}

func (h *PostHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posts.get")

	p, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return fromService(l, "get_post_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": p})
}

func (h *PostHTTP) Archive(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posts.archive")

	posts, f, err := h.Svc.Archive(ctx, c.Param("year"), c.Param("month"))
	if err != nil {
		return fromService(l, "post_archive_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": posts, "count": len(posts), "filters": f})
}

func (h *PostHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "post_categories.list")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fromService(l, "list_post_categories_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": cats, "count": len(cats)})
}

func (h *PostHTTP) GetCategory(c echo.Context) error {
	cat, err := h.Svc.GetCategory(c.Request().Context(), c.Param("name"))
	if err != nil {
		return h.unknownCategory(c, "get_post_category_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": cat})
}

func (h *PostHTTP) CategoryPosts(c echo.Context) error {
	posts, cat, err := h.Svc.CategoryPosts(c.Request().Context(), c.Param("name"))
	if err != nil {
		return h.unknownCategory(c, "post_category_posts_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": posts, "count": len(posts), "category": cat})
}

func (h *PostHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posts.create")

	var req service.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_post_error", err)
	}
	who, _ := authmw.IdentityFrom(c)
	p, err := h.Svc.Create(ctx, who, req)
	if err != nil {
		return fromService(l, "create_post_error", err)
	}

	l.Info("post_created", "post_id", p.ID, "author", p.Author)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": p, "message": "Post created successfully"})
}

func (h *PostHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posts.update")

	var req service.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_post_error", err)
	}
	who, _ := authmw.IdentityFrom(c)
	p, err := h.Svc.Update(ctx, who, c.Param("id"), req)
	if err != nil {
		return fromService(l, "update_post_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": p, "message": "Post updated successfully"})
}

func (h *PostHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "posts.delete")

	who, _ := authmw.IdentityFrom(c)
	p, err := h.Svc.Delete(ctx, who, c.Param("id"))
	if err != nil {
		return fromService(l, "delete_post_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": p, "message": "Post deleted successfully"})
}
