package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func backends(t *testing.T) map[string]func(t *testing.T) Repository[models.Product] {
	t.Helper()
	return map[string]func(t *testing.T) Repository[models.Product]{
		"memory": func(t *testing.T) Repository[models.Product] {
			return NewMemory[models.Product]()
		},
		"gorm": func(t *testing.T) Repository[models.Product] {
			r := NewGorm[models.Product](openTestDB(t))
			require.NoError(t, r.Migrate(context.Background()))
			return r
		},
	}
}

func TestRepository_Contract(t *testing.T) {
	t.Parallel()

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			r := open(t)

			p := models.Product{ID: "p1", Name: "Lamp", Description: "desk lamp", Price: 19.5, Stock: 3, Images: []string{"a.jpg"}}
			_, err := r.Insert(ctx, p)
			require.NoError(t, err)

			_, err = r.Insert(ctx, p)
			assert.True(t, errors.Is(err, ErrConflict), "got %v", err)

			got, err := r.Get(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, "Lamp", got.Name)
			assert.Equal(t, []string{"a.jpg"}, got.Images)

			_, err = r.Get(ctx, "nope")
			assert.True(t, errors.Is(err, ErrNotFound))

			upd, err := r.Update(ctx, "p1", func(p *models.Product) error {
				p.Stock--
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, 2, upd.Stock)

			boom := errors.New("boom")
			_, err = r.Update(ctx, "p1", func(p *models.Product) error {
				p.Stock = 100
				return boom
			})
			assert.ErrorIs(t, err, boom)
			got, err = r.Get(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, 2, got.Stock, "failed update must not persist")

			_, err = r.Update(ctx, "p1", func(p *models.Product) error {
				p.ID = "other"
				return nil
			})
			assert.Error(t, err)

			_, err = r.Update(ctx, "nope", func(*models.Product) error { return nil })
			assert.True(t, errors.Is(err, ErrNotFound))

			_, err = r.Insert(ctx, models.Product{ID: "p2", Name: "Chair", Description: "oak"})
			require.NoError(t, err)
			all, err := r.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "p1", all[0].ID)

			del, err := r.Delete(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, "Lamp", del.Name)

			_, err = r.Delete(ctx, "p1")
			assert.True(t, errors.Is(err, ErrNotFound))

			all, err = r.List(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestMemory_ConcurrentDecrement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(models.Product{ID: "p", Stock: 50})

	var wg sync.WaitGroup
	var mu sync.Mutex
	sold := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, "p", func(p *models.Product) error {
				if p.Stock < 1 {
					return fmt.Errorf("out of stock")
				}
				p.Stock--
				return nil
			})
			if err == nil {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	p, err := m.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, 50, sold)
}

func TestMemory_ListKeepsInsertionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := NewMemory(models.Task{ID: "b"}, models.Task{ID: "a"})
	_, err := m.Insert(ctx, models.Task{ID: "c"})
	require.NoError(t, err)
	_, err = m.Delete(ctx, "a")
	require.NoError(t, err)

	items, err := m.List(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"b", "c"}, ids)
}
