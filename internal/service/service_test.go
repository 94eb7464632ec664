package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/seed"
)

type recordedEvent struct {
	key, typ string
	payload  any
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) PublishEvent(_ context.Context, key, eventType string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{key, eventType, payload})
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.typ)
	}
	return out
}

type fixture struct {
	stores  seed.Stores
	tasks   *repo.Memory[models.Task]
	events  *recorder
	clock   func() time.Time
	placing sync.Locker
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		stores: seed.Stores{
			Users:      repo.NewMemory[models.User](),
			Categories: repo.NewMemory[models.Category](),
			Products:   repo.NewMemory[models.Product](),
			Orders:     repo.NewMemory[models.Order](),
			Posts:      repo.NewMemory[models.Post](),
		},
		tasks:   repo.NewMemory[models.Task](),
		events:  &recorder{},
		clock:   func() time.Time { return fixedNow },
		placing: &sync.Mutex{},
	}
	require.NoError(t, seed.Load(context.Background(), f.stores))
	return f
}

func (f *fixture) catalog() *CatalogService {
	return &CatalogService{
		Products:   f.stores.Products,
		Categories: f.stores.Categories,
		Orders:     f.stores.Orders,
		Events:     f.events,
		Now:        f.clock,
		Stock:      f.placing,
	}
}

func (f *fixture) orders() *OrderService {
	return &OrderService{Orders: f.stores.Orders, Products: f.stores.Products, Events: f.events, Now: f.clock, Stock: f.placing}
}

func (f *fixture) users() *UserService {
	return &UserService{Repo: f.stores.Users, Events: f.events, Now: f.clock}
}

func (f *fixture) posts() *PostService {
	return &PostService{Repo: f.stores.Posts, Categories: seed.PostCategories(), Now: f.clock}
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.stores.Products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

var (
	adminID = auth.Identity{ID: "1", Username: "admin", Role: auth.RoleAdmin}
	userID  = auth.Identity{ID: "2", Username: "user", Role: auth.RoleUser}
	guestID = auth.Identity{ID: "3", Username: "guest", Role: auth.RoleGuest}
)
