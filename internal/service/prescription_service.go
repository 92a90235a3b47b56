package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/pharmacy-admin-backend/internal/assign"
	"github.com/shinyyama/pharmacy-admin-backend/internal/files"
	"github.com/shinyyama/pharmacy-admin-backend/internal/location"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/realtime"
	"github.com/shinyyama/pharmacy-admin-backend/internal/repository"
	"github.com/shinyyama/pharmacy-admin-backend/internal/reqctx"
)

type PrescriptionFilter struct {
	Status   model.PrescriptionStatus
	SellerID string
	Location string
}

type CreatePrescriptionInput struct {
	UserID          string
	CustomerName    string
	CustomerPhone   string
	OrderID         string
	FileName        string
	FileURL         string
	FileType        string
	DeliveryAddress string
	Notes           string
}

type PrescriptionService interface {
	List(ctx context.Context, f PrescriptionFilter) ([]model.Prescription, error)
	Get(ctx context.Context, id string) (*model.Prescription, error)
	Create(ctx context.Context, in CreatePrescriptionInput) (*model.Prescription, error)
	Delete(ctx context.Context, id string) error
	Verify(ctx context.Context, id string) (*model.Prescription, error)
	Reject(ctx context.Context, id, reason string) (*model.Prescription, error)
	Assign(ctx context.Context, id, sellerID string) (*model.Prescription, error)
	// AutoAssign picks the least-loaded seller for city, deriving the city
	// from the delivery address when city is empty.
	AutoAssign(ctx context.Context, id, city string) (*model.Prescription, error)
	UpdateStatus(ctx context.Context, id string, status model.PrescriptionStatus, reason string) (*model.Prescription, error)
	FileURL(ctx context.Context, id string) (string, error)
	Watch(f PrescriptionFilter) realtime.Opener[model.Prescription]
}

type prescriptionService struct {
	repo     repository.PrescriptionRepository
	sellers  repository.SellerRepository
	files    files.Resolver
	activity ActivityService
	now      func() time.Time
}

func NewPrescriptionService(repo repository.PrescriptionRepository, sellers repository.SellerRepository, resolver files.Resolver, activity ActivityService) PrescriptionService {
	if resolver == nil {
		resolver = files.Passthrough{}
	}
	return &prescriptionService{repo: repo, sellers: sellers, files: resolver, activity: activity, now: time.Now}
}

func (f PrescriptionFilter) query() repository.PrescriptionQuery {
	q := repository.PrescriptionQuery{Status: f.Status, SellerID: f.SellerID}
	q.Locations = location.Spellings(f.Location)
	return q
}

func (s *prescriptionService) List(ctx context.Context, f PrescriptionFilter) ([]model.Prescription, error) {
	list, err := s.repo.List(ctx, f.query())
	if err != nil {
		return nil, wrap(err, "list prescriptions")
	}
	return list, nil
}

func (s *prescriptionService) Get(ctx context.Context, id string) (*model.Prescription, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("prescription id is required")
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get prescription "+id)
	}
	return p, nil
}

func (s *prescriptionService) Create(ctx context.Context, in CreatePrescriptionInput) (*model.Prescription, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, invalid("user_id is required")
	}
	if strings.TrimSpace(in.FileURL) == "" {
		return nil, invalid("file_url is required")
	}
	now := s.now()
	p := &model.Prescription{
		UserID:          in.UserID,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		OrderID:         in.OrderID,
		FileName:        in.FileName,
		FileURL:         in.FileURL,
		FileType:        in.FileType,
		DeliveryAddress: in.DeliveryAddress,
		Location:        location.Extract(in.DeliveryAddress),
		Notes:           in.Notes,
		Status:          model.PrescriptionStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, wrap(err, "create prescription")
	}
	s.activity.Record(ctx, "prescription.created", EntityPrescription, p.ID, "from "+p.UserID)
	return p, nil
}

func (s *prescriptionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrap(err, "delete prescription "+id)
	}
	s.activity.Record(ctx, "prescription.deleted", EntityPrescription, id, "")
	return nil
}

func transition(p *model.Prescription, next model.PrescriptionStatus) error {
	if !p.Status.CanMoveTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, next)
	}
	return nil
}

func (s *prescriptionService) Verify(ctx context.Context, id string) (*model.Prescription, error) {
	actor := reqctx.Actor(ctx)
	now := s.now()
	p, err := s.repo.Update(ctx, id, func(p *model.Prescription) error {
		if err := transition(p, model.PrescriptionStatusVerified); err != nil {
			return err
		}
		p.Status = model.PrescriptionStatusVerified
		p.VerifiedBy = actor
		p.VerifiedAt = &now
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, wrap(err, "verify prescription "+id)
	}
	s.activity.Record(ctx, "prescription.verified", EntityPrescription, id, "")
	return p, nil
}

func (s *prescriptionService) Reject(ctx context.Context, id, reason string) (*model.Prescription, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("rejection reason is required")
	}
	actor := reqctx.Actor(ctx)
	now := s.now()
	p, err := s.repo.Update(ctx, id, func(p *model.Prescription) error {
		if err := transition(p, model.PrescriptionStatusRejected); err != nil {
			return err
		}
		p.Status = model.PrescriptionStatusRejected
		p.RejectionReason = reason
		p.VerifiedBy = actor
		p.VerifiedAt = &now
		p.AssignedSellerID = ""
		p.AssignedSellerName = ""
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, wrap(err, "reject prescription "+id)
	}
	s.activity.Record(ctx, "prescription.rejected", EntityPrescription, id, reason)
	return p, nil
}

func (s *prescriptionService) assignTo(ctx context.Context, id, sellerID string) (*model.Prescription, error) {
	now := s.now()
	p, err := s.repo.Assign(ctx, id, sellerID, now, func(p *model.Prescription, seller *model.Seller) error {
		if !seller.Active {
			return invalid("seller %s is inactive", sellerID)
		}
		if err := transition(p, model.PrescriptionStatusAssigned); err != nil {
			return err
		}
		p.Status = model.PrescriptionStatusAssigned
		p.AssignedSellerID = sellerID
		p.AssignedSellerName = seller.Name
		p.RejectionReason = ""
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, wrap(err, "assign prescription "+id)
	}
	log.Printf("[prescriptions] rid=%s id=%s assigned seller=%s", reqctx.RID(ctx), id, sellerID)
	s.activity.Record(ctx, "prescription.assigned", EntityPrescription, id, fmt.Sprintf("to %s (%s)", p.AssignedSellerName, sellerID))
	return p, nil
}

func (s *prescriptionService) Assign(ctx context.Context, id, sellerID string) (*model.Prescription, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, invalid("seller_id is required")
	}
	return s.assignTo(ctx, id, sellerID)
}

func (s *prescriptionService) AutoAssign(ctx context.Context, id, city string) (*model.Prescription, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(p, model.PrescriptionStatusAssigned); err != nil {
		return nil, err
	}
	if strings.TrimSpace(city) == "" {
		city = location.Extract(p.DeliveryAddress)
	}
	sellers, err := s.sellers.List(ctx, repository.SellerQuery{ActiveOnly: true})
	if err != nil {
		return nil, wrap(err, "list sellers")
	}
	chosen, err := assign.Pick(city, sellers)
	if err != nil {
		log.Printf("[prescriptions] rid=%s id=%s city=%q no seller available", reqctx.RID(ctx), id, city)
		return nil, err
	}
	return s.assignTo(ctx, id, chosen.ID)
}

func (s *prescriptionService) complete(ctx context.Context, id string) (*model.Prescription, error) {
	now := s.now()
	p, err := s.repo.Complete(ctx, id, now, func(p *model.Prescription) error {
		if err := transition(p, model.PrescriptionStatusCompleted); err != nil {
			return err
		}
		p.Status = model.PrescriptionStatusCompleted
		p.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, wrap(err, "complete prescription "+id)
	}
	s.activity.Record(ctx, "prescription.completed", EntityPrescription, id, "")
	return p, nil
}

func (s *prescriptionService) UpdateStatus(ctx context.Context, id string, status model.PrescriptionStatus, reason string) (*model.Prescription, error) {
	switch status {
	case model.PrescriptionStatusVerified:
		return s.Verify(ctx, id)
	case model.PrescriptionStatusRejected:
		return s.Reject(ctx, id, reason)
	case model.PrescriptionStatusCompleted:
		return s.complete(ctx, id)
	case model.PrescriptionStatusAssigned:
		return nil, invalid("use assign or auto-assign to pick a seller")
	case model.PrescriptionStatusPending:
		return nil, fmt.Errorf("%w: cannot move back to pending", ErrInvalidTransition)
	default:
		return nil, invalid("unknown status %q", status)
	}
}

func (s *prescriptionService) FileURL(ctx context.Context, id string) (string, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if p.FileURL == "" {
		return "", fmt.Errorf("prescription %s has no file: %w", id, ErrNotFound)
	}
	u, err := s.files.URL(ctx, p.FileURL)
	if err != nil {
		return "", fmt.Errorf("resolve file for %s: %w", id, err)
	}
	return u, nil
}

func (s *prescriptionService) Watch(f PrescriptionFilter) realtime.Opener[model.Prescription] {
	return s.repo.Watch(f.query())
}
