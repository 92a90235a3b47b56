package service

import (
	"context"
	"log"

	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/repository"
	"github.com/shinyyama/pharmacy-admin-backend/internal/reqctx"
)

const (
	EntityOrder        = "order"
	EntityPrescription = "prescription"
	EntitySeller       = "seller"
	EntityProduct      = "product"
	EntityAdmin        = "admin"
)

type ActivityService interface {
	// Record appends to the audit trail. Failures are logged, never returned.
	Record(ctx context.Context, kind, entityType, entityID, message string)
	ListRecent(ctx context.Context, limit int) ([]model.Activity, error)
	ListByEntity(ctx context.Context, entityType, entityID string) ([]model.Activity, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Record(ctx context.Context, kind, entityType, entityID, message string) {
	if s == nil || s.repo == nil {
		return
	}
	a := &model.Activity{
		ActorUID:   reqctx.Actor(ctx),
		Kind:       kind,
		EntityType: entityType,
		EntityID:   entityID,
		Message:    message,
	}
	if a.ActorUID == "" {
		a.ActorUID = "system"
	}
	if err := s.repo.Create(ctx, a); err != nil {
		log.Printf("[activity] rid=%s kind=%s entity=%s/%s record failed: %v", reqctx.RID(ctx), kind, entityType, entityID, err)
	}
}

func (s *activityService) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	list, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, wrap(err, "list activities")
	}
	return list, nil
}

func (s *activityService) ListByEntity(ctx context.Context, entityType, entityID string) ([]model.Activity, error) {
	list, err := s.repo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, wrap(err, "list activities")
	}
	return list, nil
}
