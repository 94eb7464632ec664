package repo

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type Entity interface {
	GetID() string
}

// Repository is the storage contract shared by every resource. Update runs fn
// on a copy of the stored value and persists it only when fn returns nil; the
// ID cannot be changed by fn.
type Repository[T Entity] interface {
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, id string, fn func(*T) error) (T, error)
	Delete(ctx context.Context, id string) (T, error)
}
