package repository

import (
	"context"
	"sync/atomic"

	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(ctx context.Context, a *model.Activity) error
	ListRecent(ctx context.Context, limit int) ([]model.Activity, error)
	ListByEntity(ctx context.Context, entityType, entityID string) ([]model.Activity, error)
	SetDB(db *gorm.DB)
}

// activityRepository may be handed its connection after requests are
// already being served, so db is only touched through the atomic pointer.
type activityRepository struct {
	db atomic.Pointer[gorm.DB]
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	r := &activityRepository{}
	r.db.Store(db)
	return r
}

func (r *activityRepository) conn() (*gorm.DB, error) {
	db := r.db.Load()
	if db == nil {
		return nil, ErrDBNotReady
	}
	return db, nil
}

func (r *activityRepository) Create(ctx context.Context, a *model.Activity) error {
	db, err := r.conn()
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(a).Error
}

func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []model.Activity
	if err := db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *activityRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]model.Activity, error) {
	db, err := r.conn()
	if err != nil {
		return nil, err
	}
	var list []model.Activity
	if err := db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *activityRepository) SetDB(db *gorm.DB) {
	r.db.Store(db)
}
