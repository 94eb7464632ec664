package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]models.Product
	failing bool
}

func (f *fakeIndex) Search(_ context.Context, q string, from, size int) (int64, []models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, nil, errors.New("cluster down")
	}
	var out []models.Product
	for _, d := range f.docs {
		if d.Name == q {
			out = append(out, d)
		}
	}
	return int64(len(out)), out, nil
}

func (f *fakeIndex) Index(_ context.Context, p models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[p.ID] = p
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestCatalogService_ListProducts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newFixture(t).catalog()

	items, meta, err := s.ListProducts(ctx, ProductFilter{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "5", items[0].ID, "newest first by default")
	assert.EqualValues(t, 5, meta.Total)

	items, _, err = s.ListProducts(ctx, ProductFilter{CategoryID: "1", SortBy: "price", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)

	items, _, err = s.ListProducts(ctx, ProductFilter{MinPrice: ptr(40.0), MaxPrice: ptr(200.0), SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Automatic Coffee Maker", items[0].Name)

	items, _, err = s.ListProducts(ctx, ProductFilter{Search: "LAPTOP"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)

	items, meta, err = s.ListProducts(ctx, ProductFilter{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.True(t, meta.HasPrev)
	assert.True(t, meta.HasNext)
	assert.EqualValues(t, 3, meta.TotalPages)

	_, _, err = s.ListProducts(ctx, ProductFilter{SortBy: "stock"})
	assert.True(t, errors.Is(err, ErrValidation))
	_, _, err = s.ListProducts(ctx, ProductFilter{SortOrder: "up"})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCatalogService_RelatedAndCategory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newFixture(t).catalog()

	rel, err := s.RelatedProducts(ctx, "1", 0)
	require.NoError(t, err)
	require.Len(t, rel, 1)
	assert.Equal(t, "2", rel[0].ID)

	_, err = s.RelatedProducts(ctx, "nope", 4)
	assert.True(t, errors.Is(err, ErrNotFound))

	items, cat, _, err := s.ProductsByCategory(ctx, "3", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "Books", cat.Name)
	assert.Len(t, items, 1)

	_, _, _, err = s.ProductsByCategory(ctx, "9", 1, 10)
	assert.True(t, errors.Is(err, ErrNotFound))

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 4)
	assert.Equal(t, 2, cats[0].Stats.ProductCount)
	assert.Equal(t, 1249.99, cats[0].Stats.AvgPrice)
	assert.Equal(t, 999.99, cats[0].Stats.MinPrice)

	detail, err := s.GetCategory(ctx, "1")
	require.NoError(t, err)
	require.Len(t, detail.TopProducts, 2)
	assert.Equal(t, "2", detail.TopProducts[0].ID)
}

func TestCatalogService_CreateUpdateDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	idx := &fakeIndex{docs: map[string]models.Product{}}
	s := f.catalog()
	s.Index = idx

	_, err := s.CreateProduct(ctx, CreateProductRequest{Name: "Desk", Description: "oak", Price: 0, CategoryID: "4"})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = s.CreateProduct(ctx, CreateProductRequest{Name: "Desk", Description: "oak", Price: 10, CategoryID: "99"})
	assert.True(t, errors.Is(err, ErrValidation))

	p, err := s.CreateProduct(ctx, CreateProductRequest{Name: "Desk", Description: "oak", Price: 120, CategoryID: "4", Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{}, p.Images)
	assert.Contains(t, idx.docs, p.ID)

	upd, err := s.UpdateProduct(ctx, p.ID, PatchProductRequest{Price: ptr(99.5)})
	require.NoError(t, err)
	assert.Equal(t, 99.5, upd.Price)
	assert.Equal(t, 99.5, idx.docs[p.ID].Price)

	_, err = s.UpdateProduct(ctx, p.ID, PatchProductRequest{Stock: ptr(-1)})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = s.UpdateProduct(ctx, "nope", PatchProductRequest{Name: ptr("x")})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.NotContains(t, idx.docs, p.ID)

	assert.Equal(t, []string{"product_created", "product_updated", "product_deleted"}, f.events.types())
}

func TestCatalogService_DeleteBlockedByActiveOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	s := f.catalog()

	_, err := s.DeleteProduct(ctx, "1")
	require.True(t, errors.Is(err, ErrConflict), "pending order 1 holds product 1")

	_, err = f.orders().Cancel(ctx, adminID, "1")
	require.NoError(t, err)

	_, err = s.DeleteProduct(ctx, "1")
	require.NoError(t, err)

	_, err = s.DeleteProduct(ctx, "1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCatalogService_DeleteRacingOrderPlacement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for round := 0; round < 20; round++ {
		f := newFixture(t)
		catalog, orders := f.catalog(), f.orders()

		var wg sync.WaitGroup
		var delErr error
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, delErr = catalog.DeleteProduct(ctx, "2")
		}()
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = orders.Create(ctx, userID, CreateOrderRequest{
					Items:           []OrderItemRequest{{ProductID: "2", Quantity: 1}},
					ShippingAddress: address(),
				})
			}()
		}
		wg.Wait()

		all, err := f.stores.Orders.List(ctx)
		require.NoError(t, err)
		var placed []models.Order
		for _, o := range all {
			if o.Status.Active() && o.Items[0].ProductID == "2" {
				placed = append(placed, o)
			}
		}
		_, getErr := f.stores.Products.Get(ctx, "2")
		if delErr == nil {
			assert.Empty(t, placed, "round %d: order placed against a deleted product", round)
			assert.Error(t, getErr)
		} else {
			assert.True(t, errors.Is(delErr, ErrConflict), "round %d: %v", round, delErr)
			assert.NotEmpty(t, placed)
			assert.NoError(t, getErr)
		}
	}
}

func TestCatalogService_Search(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newFixture(t).catalog()

	_, _, err := s.SearchProducts(ctx, " ", 1, 10)
	assert.True(t, errors.Is(err, ErrValidation))

	items, meta, err := s.SearchProducts(ctx, "coffee", 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 1, meta.Total)

	idx := &fakeIndex{docs: map[string]models.Product{"9": {ID: "9", Name: "indexed"}}}
	s.Index = idx
	items, _, err = s.SearchProducts(ctx, "indexed", 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "9", items[0].ID)

	idx.failing = true
	items, _, err = s.SearchProducts(ctx, "coffee", 1, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1, "falls back to the store when the index fails")
}

func TestCatalogService_Reindex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newFixture(t).catalog()

	n, err := s.Reindex(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "no index configured")

	idx := &fakeIndex{docs: map[string]models.Product{}}
	s.Index = idx
	n, err = s.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Len(t, idx.docs, 5)
}
