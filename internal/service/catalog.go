package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/internal/validation"
)

const (
	DefaultRelatedLimit = 4
	lowStockThreshold   = 10
)

// ProductSearcher is the full text index kept next to the product store.
type ProductSearcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id string) error
}

type ProductFilter struct {
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	Size       int
}

type CreateProductRequest struct {
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price"       validate:"gt=0"`
	CategoryID  string   `json:"category_id" validate:"required"`
	Stock       int      `json:"stock"       validate:"gte=0"`
	Images      []string `json:"images"`
	Features    []string `json:"features"`
}

type PatchProductRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	CategoryID  *string   `json:"category_id"`
	Stock       *int      `json:"stock"`
	Images      *[]string `json:"images"`
	Features    *[]string `json:"features"`
}

type PriceStats struct {
	ProductCount int     `json:"product_count"`
	AvgPrice     float64 `json:"avg_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

type CategoryWithStats struct {
	models.Category
	Stats PriceStats `json:"stats"`
}

type ProductSummary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Price  float64  `json:"price"`
	Images []string `json:"images"`
}

type CategoryDetail struct {
	CategoryWithStats
	TopProducts []ProductSummary `json:"top_products"`
}

type CatalogService struct {
	Products   repo.Repository[models.Product]
	Categories repo.Repository[models.Category]
	Orders     repo.Repository[models.Order]
	Index      ProductSearcher
	Events     mykafka.Publisher
	Now        func() time.Time
	// Stock is the lock OrderService places orders under. DeleteProduct
	// holds it between the active order check and the delete.
	Stock sync.Locker
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (models.Product, error) {
	p, err := s.Products.Get(ctx, id)
	return p, fromRepo(err, "product %s not found", id)
}

func (s *CatalogService) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, util.Meta, error) {
	if f.SortBy == "" {
		f.SortBy = "created_at"
	}
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	}
	less, err := productOrder(f.SortBy, f.SortOrder)
	if err != nil {
		return nil, util.Meta{}, err
	}

	all, err := s.Products.List(ctx)
	if err != nil {
		return nil, util.Meta{}, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Search))
	items := make([]models.Product, 0, len(all))
	for _, p := range all {
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		if q != "" && !matches(p, q) {
			continue
		}
		items = append(items, p)
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })

	return util.Page(items, f.Page, f.Size), util.NewMeta(f.Page, f.Size, int64(len(items))), nil
}

func productOrder(by, order string) (func(a, b models.Product) bool, error) {
	var asc func(a, b models.Product) bool
	switch by {
	case "created_at":
		asc = func(a, b models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "price":
		asc = func(a, b models.Product) bool { return a.Price < b.Price }
	case "name":
		asc = func(a, b models.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		return nil, fail(ErrValidation, "sort_by must be one of: created_at, price, name")
	}
	switch order {
	case "asc":
		return asc, nil
	case "desc":
		return func(a, b models.Product) bool { return asc(b, a) }, nil
	}
	return nil, fail(ErrValidation, "sort_order must be asc or desc")
}

func matches(p models.Product, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(p.Name), lowerQuery) ||
		strings.Contains(strings.ToLower(p.Description), lowerQuery)
}

// SearchProducts asks the index first and falls back to a substring scan when
// no index is configured or the index is unavailable.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) ([]models.Product, util.Meta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, util.Meta{}, fail(ErrValidation, "query parameter q is required")
	}

	if s.Index != nil {
		from, limit := util.Calculate(page, size)
		total, items, err := s.Index.Search(ctx, query, from, limit)
		if err == nil {
			return items, util.NewMeta(page, size, total), nil
		}
		logging.FromContext(ctx).Warn("product_search_fallback", "reason", "index unavailable", "error", err)
	}

	all, err := s.Products.List(ctx)
	if err != nil {
		return nil, util.Meta{}, err
	}
	q := strings.ToLower(query)
	items := make([]models.Product, 0)
	for _, p := range all {
		if matches(p, q) {
			items = append(items, p)
		}
	}
	return util.Page(items, page, size), util.NewMeta(page, size, int64(len(items))), nil
}

func (s *CatalogService) RelatedProducts(ctx context.Context, id string, limit int) ([]models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	all, err := s.Products.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, limit)
	for _, other := range all {
		if len(out) == limit {
			break
		}
		if other.ID != p.ID && other.CategoryID == p.CategoryID {
			out = append(out, other)
		}
	}
	return out, nil
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, categoryID string, page, size int) ([]models.Product, models.Category, util.Meta, error) {
	cat, err := s.Categories.Get(ctx, categoryID)
	if err != nil {
		return nil, cat, util.Meta{}, fromRepo(err, "category %s not found", categoryID)
	}
	items, meta, err := s.ListProducts(ctx, ProductFilter{CategoryID: categoryID, Page: page, Size: size})
	return items, cat, meta, err
}

func (s *CatalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (models.Product, error) {
	if err := validation.Struct(req); err != nil {
		return models.Product{}, fail(ErrValidation, "%s", err.Error())
	}
	if err := s.categoryExists(ctx, req.CategoryID); err != nil {
		return models.Product{}, err
	}

	ts := now(s.Now)
	p := models.Product{
		ID:          newID(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Stock:       req.Stock,
		Images:      nonNil(req.Images),
		Features:    nonNil(req.Features),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	out, err := s.Products.Insert(ctx, p)
	if err != nil {
		return models.Product{}, fromRepo(err, "product %s already exists", p.ID)
	}

	s.syncIndex(ctx, out)
	mykafka.Publish(ctx, s.Events, out.ID, "product_created", out)
	return out, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req PatchProductRequest) (models.Product, error) {
	if req.Price != nil && *req.Price <= 0 {
		return models.Product{}, fail(ErrValidation, "price must be greater than 0")
	}
	if req.Stock != nil && *req.Stock < 0 {
		return models.Product{}, fail(ErrValidation, "stock cannot be negative")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return models.Product{}, fail(ErrValidation, "name cannot be empty")
	}
	if req.CategoryID != nil {
		if err := s.categoryExists(ctx, *req.CategoryID); err != nil {
			return models.Product{}, err
		}
	}

	out, err := s.Products.Update(ctx, id, func(p *models.Product) error {
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.CategoryID != nil {
			p.CategoryID = *req.CategoryID
		}
		if req.Stock != nil {
			p.Stock = *req.Stock
		}
		if req.Images != nil {
			p.Images = nonNil(*req.Images)
		}
		if req.Features != nil {
			p.Features = nonNil(*req.Features)
		}
		p.UpdatedAt = now(s.Now)
		return nil
	})
	if err != nil {
		return models.Product{}, fromRepo(err, "product %s not found", id)
	}

	s.syncIndex(ctx, out)
	mykafka.Publish(ctx, s.Events, out.ID, "product_updated", out)
	return out, nil
}

// DeleteProduct refuses while an order that still holds stock references it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) (models.Product, error) {
	p, err := s.deleteUnreferenced(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("product_unindex_failed", "product_id", id, "error", err)
		}
	}
	mykafka.Publish(ctx, s.Events, id, "product_deleted", map[string]string{"id": id})
	return p, nil
}

func (s *CatalogService) deleteUnreferenced(ctx context.Context, id string) (models.Product, error) {
	if s.Stock != nil {
		s.Stock.Lock()
		defer s.Stock.Unlock()
	}

	if _, err := s.GetProduct(ctx, id); err != nil {
		return models.Product{}, err
	}

	orders, err := s.Orders.List(ctx)
	if err != nil {
		return models.Product{}, err
	}
	for _, o := range orders {
		if !o.Status.Active() {
			continue
		}
		for _, it := range o.Items {
			if it.ProductID == id {
				return models.Product{}, fail(ErrConflict, "cannot delete a product referenced by active orders")
			}
		}
	}

	p, err := s.Products.Delete(ctx, id)
	if err != nil {
		return models.Product{}, fromRepo(err, "product %s not found", id)
	}
	return p, nil
}

func (s *CatalogService) categoryExists(ctx context.Context, id string) error {
	_, err := s.Categories.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return fail(ErrValidation, "category %s does not exist", id)
	}
	return err
}

func (s *CatalogService) syncIndex(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("product_index_failed", "product_id", p.ID, "error", err)
	}
}

// Reindex pushes every stored product to the search index.
func (s *CatalogService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	all, err := s.Products.List(ctx)
	if err != nil {
		return 0, err
	}
	for i, p := range all {
		if err := s.Index.Index(ctx, p); err != nil {
			return i, fmt.Errorf("index product %s: %w", p.ID, err)
		}
	}
	return len(all), nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryWithStats, error) {
	cats, err := s.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.Products.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryWithStats, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryWithStats{Category: c, Stats: priceStats(inCategory(products, c.ID))})
	}
	return out, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (CategoryDetail, error) {
	c, err := s.Categories.Get(ctx, id)
	if err != nil {
		return CategoryDetail{}, fromRepo(err, "category %s not found", id)
	}
	products, err := s.Products.List(ctx)
	if err != nil {
		return CategoryDetail{}, err
	}

	own := inCategory(products, id)
	newest := append([]models.Product(nil), own...)
	sort.SliceStable(newest, func(i, j int) bool { return newest[i].CreatedAt.After(newest[j].CreatedAt) })
	if len(newest) > 3 {
		newest = newest[:3]
	}
	top := make([]ProductSummary, 0, len(newest))
	for _, p := range newest {
		top = append(top, ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Images: p.Images})
	}

	return CategoryDetail{
		CategoryWithStats: CategoryWithStats{Category: c, Stats: priceStats(own)},
		TopProducts:       top,
	}, nil
}

func inCategory(products []models.Product, categoryID string) []models.Product {
	var out []models.Product
	for _, p := range products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

func priceStats(products []models.Product) PriceStats {
	st := PriceStats{ProductCount: len(products)}
	if len(products) == 0 {
		return st
	}
	st.MinPrice, st.MaxPrice = products[0].Price, products[0].Price
	var sum float64
	for _, p := range products {
		sum += p.Price
		st.MinPrice = math.Min(st.MinPrice, p.Price)
		st.MaxPrice = math.Max(st.MaxPrice, p.Price)
	}
	st.AvgPrice = roundCents(sum / float64(len(products)))
	return st
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
