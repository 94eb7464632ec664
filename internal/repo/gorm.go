package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Gorm stores T in the table gorm derives from the type. T must be a struct
// with a string primary key column named id. List is ordered by id; callers
// that need another order sort the result.
type Gorm[T Entity] struct {
	DB *gorm.DB
}

func NewGorm[T Entity](db *gorm.DB) *Gorm[T] {
	return &Gorm[T]{DB: db}
}

func (r *Gorm[T]) Migrate(ctx context.Context) error {
	var zero T
	return r.DB.WithContext(ctx).AutoMigrate(&zero)
}

func (r *Gorm[T]) Get(ctx context.Context, id string) (T, error) {
	var v T
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return v, mapErr("get", id, err)
	}
	return v, nil
}

func (r *Gorm[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return items, nil
}

func (r *Gorm[T]) Insert(ctx context.Context, v T) (T, error) {
	var zero T
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&zero).Where("id = ?", v.GetID()).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}
		return tx.Create(&v).Error
	})
	if err != nil {
		return zero, mapErr("insert", v.GetID(), err)
	}
	return v, nil
}

func (r *Gorm[T]) Update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var out T
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur T
		if err := tx.Where("id = ?", id).First(&cur).Error; err != nil {
			return err
		}
		if err := fn(&cur); err != nil {
			return err
		}
		if cur.GetID() != id {
			return fmt.Errorf("id changed to %q", cur.GetID())
		}
		if err := tx.Save(&cur).Error; err != nil {
			return err
		}
		out = cur
		return nil
	})
	if err != nil {
		var zero T
		return zero, mapErr("update", id, err)
	}
	return out, nil
}

func (r *Gorm[T]) Delete(ctx context.Context, id string) (T, error) {
	var v T
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&v).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&v)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		var zero T
		return zero, mapErr("delete", id, err)
	}
	return v, nil
}

func mapErr(op, id string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s %q: %w", op, id, ErrConflict)
	}
	return fmt.Errorf("%s %q: %w", op, id, err)
}
