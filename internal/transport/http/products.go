package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

// CatalogHTTP serves products and product categories.
type CatalogHTTP struct {
	Svc *service.CatalogService
}

func pageParams(c echo.Context) (page, size int) {
	raw := c.QueryParam("size")
	if raw == "" {
		raw = c.QueryParam("limit")
	}
	return util.ParseIntDefault(c.QueryParam("page"), 1), util.ParseIntDefault(raw, util.DefaultPageSize)
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.list")

	page, size := pageParams(c)
	items, meta, err := h.Svc.ListProducts(ctx, service.ProductFilter{
		CategoryID: c.QueryParam("category"),
		MinPrice:   util.ParseFloat(c.QueryParam("min_price")),
		MaxPrice:   util.ParseFloat(c.QueryParam("max_price")),
		Search:     c.QueryParam("search"),
		SortBy:     c.QueryParam("sort_by"),
		SortOrder:  c.QueryParam("sort_order"),
		Page:       page,
		Size:       size,
	})
	if err != nil {
		return fromService(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "meta": meta})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.search")

	page, size := pageParams(c)
	items, meta, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fromService(l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "meta": meta, "query": c.QueryParam("q")})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.get")

	p, err := h.Svc.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return fromService(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": p})
}

func (h *CatalogHTTP) RelatedProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.related")

	limit := util.ParseIntDefault(c.QueryParam("limit"), service.DefaultRelatedLimit)
	items, err := h.Svc.RelatedProducts(ctx, c.Param("id"), limit)
	if err != nil {
		return fromService(l, "related_products_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "count": len(items)})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.create")

	var req service.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_product_error", err)
	}
	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fromService(l, "create_product_error", err)
	}

	l.Info("product_created", "product_id", p.ID)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": p, "message": "Product created successfully"})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.update")

	var req service.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_product_error", err)
	}
	p, err := h.Svc.UpdateProduct(ctx, c.Param("id"), req)
	if err != nil {
		return fromService(l, "update_product_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": p, "message": "Product updated successfully"})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.delete")

	p, err := h.Svc.DeleteProduct(ctx, c.Param("id"))
	if err != nil {
		return fromService(l, "delete_product_error", err)
	}

	l.Info("product_deleted", "product_id", p.ID)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": p, "message": "Product deleted successfully"})
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories.list")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fromService(l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": cats, "count": len(cats)})
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories.get")

	cat, err := h.Svc.GetCategory(ctx, c.Param("id"))
	if err != nil {
		return fromService(l, "get_category_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": cat})
}

func (h *CatalogHTTP) CategoryProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories.products")

	page, size := pageParams(c)
	items, cat, meta, err := h.Svc.ProductsByCategory(ctx, c.Param("id"), page, size)
	if err != nil {
		return fromService(l, "category_products_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": items, "category": cat, "meta": meta})
}
