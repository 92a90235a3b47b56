package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/pharmacy-admin-backend/internal/location"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/orderstatus"
	"github.com/shinyyama/pharmacy-admin-backend/internal/realtime"
	"github.com/shinyyama/pharmacy-admin-backend/internal/repository"
	"github.com/shinyyama/pharmacy-admin-backend/internal/reqctx"
)

// OrderFilter narrows an order listing. Label takes precedence over Status
// when both are set.
type OrderFilter struct {
	Status   model.OrderStatus
	Label    orderstatus.Label
	UserID   string
	Location string
}

type CreateOrderInput struct {
	UserID          string
	Items           []model.OrderItem
	TotalAmount     *float64
	DeliveryAddress string
}

type OrderService interface {
	List(ctx context.Context, f OrderFilter) ([]model.Order, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	Create(ctx context.Context, in CreateOrderInput) (*model.Order, error)
	UpdateStatus(ctx context.Context, id string, label orderstatus.Label, note string) (*model.Order, error)
	UpdateTracking(ctx context.Context, id, trackingNumber string) (*model.Order, error)
	Delete(ctx context.Context, id string) error
	Watch(f OrderFilter) realtime.Opener[model.Order]
}

type orderService struct {
	repo     repository.OrderRepository
	activity ActivityService
	now      func() time.Time
}

func NewOrderService(repo repository.OrderRepository, activity ActivityService) OrderService {
	return &orderService{repo: repo, activity: activity, now: time.Now}
}

func (f OrderFilter) query() repository.OrderQuery {
	q := repository.OrderQuery{Status: f.Status, UserID: f.UserID}
	if f.Label != "" {
		q.Status = orderstatus.ToStorage(f.Label)
	}
	q.Locations = location.Spellings(f.Location)
	return q
}

func (s *orderService) List(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	list, err := s.repo.List(ctx, f.query())
	if err != nil {
		return nil, wrap(err, "list orders")
	}
	return list, nil
}

func (s *orderService) Get(ctx context.Context, id string) (*model.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("order id is required")
	}
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get order "+id)
	}
	return o, nil
}

func (s *orderService) Create(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return nil, invalid("user_id is required")
	}
	if len(in.Items) == 0 {
		return nil, invalid("at least one item is required")
	}
	for i, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, invalid("item %d: quantity must be positive", i)
		}
		if it.Price < 0 {
			return nil, invalid("item %d: price must not be negative", i)
		}
	}
	now := s.now()
	o := &model.Order{
		UserID:          in.UserID,
		Items:           append([]model.OrderItem(nil), in.Items...),
		DeliveryAddress: in.DeliveryAddress,
		Location:        location.Extract(in.DeliveryAddress),
		CreatedAt:       now,
	}
	if in.TotalAmount != nil {
		o.TotalAmount = *in.TotalAmount
	} else {
		o.TotalAmount = o.ItemsTotal()
	}
	o.ApplyStatus(model.OrderStatusPending, orderstatus.Note(orderstatus.LabelPendingVerification), now)
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, wrap(err, "create order")
	}
	s.activity.Record(ctx, "order.created", EntityOrder, o.ID, fmt.Sprintf("order for %s, total %.2f", o.Customer(), o.TotalAmount))
	return o, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, label orderstatus.Label, note string) (*model.Order, error) {
	if strings.TrimSpace(string(label)) == "" {
		return nil, invalid("status is required")
	}
	status, defaultNote := orderstatus.Translate(label)
	if strings.TrimSpace(note) == "" {
		note = defaultNote
	}
	o, err := s.repo.UpdateStatus(ctx, id, status, note, s.now())
	if err != nil {
		return nil, wrap(err, "update order "+id)
	}
	log.Printf("[orders] rid=%s id=%s status=%s label=%q", reqctx.RID(ctx), id, status, label)
	s.activity.Record(ctx, "order.status", EntityOrder, id, fmt.Sprintf("%s: %s", label, note))
	return o, nil
}

func (s *orderService) UpdateTracking(ctx context.Context, id, trackingNumber string) (*model.Order, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, invalid("trackingNumber is required")
	}
	if err := s.repo.UpdateTracking(ctx, id, trackingNumber, s.now()); err != nil {
		return nil, wrap(err, "update tracking "+id)
	}
	s.activity.Record(ctx, "order.tracking", EntityOrder, id, "tracking "+trackingNumber)
	return s.Get(ctx, id)
}

func (s *orderService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrap(err, "delete order "+id)
	}
	s.activity.Record(ctx, "order.deleted", EntityOrder, id, "")
	return nil
}

func (s *orderService) Watch(f OrderFilter) realtime.Opener[model.Order] {
	return s.repo.Watch(f.query())
}
