package service

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shinyyama/pharmacy-admin-backend/internal/location"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/realtime"
	"github.com/shinyyama/pharmacy-admin-backend/internal/repository"
)

// SellerInput carries the editable seller fields. Counters are never taken
// from callers.
type SellerInput struct {
	Name    string
	Email   string
	Phone   string
	City    string
	Pincode string
	Address string
	Active  *bool
	Rating  *float64
}

type SellerService interface {
	Create(ctx context.Context, in SellerInput) (*model.Seller, error)
	List(ctx context.Context, activeOnly bool, city string) ([]model.Seller, error)
	Get(ctx context.Context, id string) (*model.Seller, error)
	Update(ctx context.Context, id string, in SellerInput) (*model.Seller, error)
	SetActive(ctx context.Context, id string, active bool) (*model.Seller, error)
	Delete(ctx context.Context, id string) error
	Watch(activeOnly bool) realtime.Opener[model.Seller]
}

type sellerService struct {
	repo     repository.SellerRepository
	activity ActivityService
	now      func() time.Time
}

func NewSellerService(repo repository.SellerRepository, activity ActivityService) SellerService {
	return &sellerService{repo: repo, activity: activity, now: time.Now}
}

func (in SellerInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(in.City) == "" {
		return invalid("city is required")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return invalid("email is malformed")
	}
	if in.Rating != nil && (*in.Rating < 0 || *in.Rating > 5) {
		return invalid("rating must be between 0 and 5")
	}
	return nil
}

func (in SellerInput) apply(s *model.Seller) {
	s.Name = strings.TrimSpace(in.Name)
	s.Email = strings.TrimSpace(in.Email)
	s.Phone = strings.TrimSpace(in.Phone)
	s.City = strings.TrimSpace(in.City)
	s.Pincode = strings.TrimSpace(in.Pincode)
	s.Address = strings.TrimSpace(in.Address)
	if in.Active != nil {
		s.Active = *in.Active
	}
	if in.Rating != nil {
		s.Rating = *in.Rating
	}
}

func (s *sellerService) Create(ctx context.Context, in SellerInput) (*model.Seller, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	seller := &model.Seller{Active: true, CreatedAt: now, UpdatedAt: now}
	in.apply(seller)
	if err := s.repo.Create(ctx, seller); err != nil {
		return nil, wrap(err, "create seller")
	}
	s.activity.Record(ctx, "seller.created", EntitySeller, seller.ID, seller.Name+", "+seller.City)
	return seller, nil
}

// List returns sellers newest first. A non-empty city keeps only sellers in
// that city, compared with the location normalizer.
func (s *sellerService) List(ctx context.Context, activeOnly bool, city string) ([]model.Seller, error) {
	list, err := s.repo.List(ctx, repository.SellerQuery{ActiveOnly: activeOnly})
	if err != nil {
		return nil, wrap(err, "list sellers")
	}
	if strings.TrimSpace(city) == "" {
		return list, nil
	}
	return lo.Filter(list, func(seller model.Seller, _ int) bool {
		return location.Match(seller.City, city)
	}), nil
}

func (s *sellerService) Get(ctx context.Context, id string) (*model.Seller, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("seller id is required")
	}
	seller, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get seller "+id)
	}
	return seller, nil
}

func (s *sellerService) Update(ctx context.Context, id string, in SellerInput) (*model.Seller, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	seller, err := s.repo.Update(ctx, id, func(seller *model.Seller) error {
		in.apply(seller)
		seller.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update seller "+id)
	}
	s.activity.Record(ctx, "seller.updated", EntitySeller, id, seller.Name)
	return seller, nil
}

func (s *sellerService) SetActive(ctx context.Context, id string, active bool) (*model.Seller, error) {
	now := s.now()
	seller, err := s.repo.Update(ctx, id, func(seller *model.Seller) error {
		seller.Active = active
		seller.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, wrap(err, "set seller active "+id)
	}
	kind := "seller.deactivated"
	if active {
		kind = "seller.activated"
	}
	s.activity.Record(ctx, kind, EntitySeller, id, seller.Name)
	return seller, nil
}

func (s *sellerService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrap(err, "delete seller "+id)
	}
	s.activity.Record(ctx, "seller.deleted", EntitySeller, id, "")
	return nil
}

func (s *sellerService) Watch(activeOnly bool) realtime.Opener[model.Seller] {
	return s.repo.Watch(repository.SellerQuery{ActiveOnly: activeOnly})
}
