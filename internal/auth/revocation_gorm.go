package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RevokedToken struct {
	TokenHash string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

type GormRevocations struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewGormRevocations(db *gorm.DB) *GormRevocations {
	return &GormRevocations{DB: db, now: time.Now}
}

func (g *GormRevocations) Migrate(ctx context.Context) error {
	return g.DB.WithContext(ctx).AutoMigrate(&RevokedToken{})
}

func (g *GormRevocations) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	return g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expires_at <= ?", g.now()).Delete(&RevokedToken{}).Error; err != nil {
			return err
		}
		row := RevokedToken{TokenHash: tokenKey(token), ExpiresAt: expiresAt}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	})
}

func (g *GormRevocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	var n int64
	err := g.DB.WithContext(ctx).
		Model(&RevokedToken{}).
		Where("token_hash = ?", tokenKey(token)).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
