package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/realtime"
)

type OrderQuery struct {
	Status    model.OrderStatus
	UserID    string
	Locations []string // any of these stored spellings
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, q OrderQuery) ([]model.Order, error)
	// UpdateStatus applies the transition inside a transaction so the history
	// append and the item statuses land together.
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus, note string, at time.Time) (*model.Order, error)
	UpdateTracking(ctx context.Context, id, trackingNumber string, at time.Time) error
	Delete(ctx context.Context, id string) error
	Watch(q OrderQuery) realtime.Opener[model.Order]
}

type orderRepository struct {
	fs *firestore.Client
}

func NewOrderRepository(fs *firestore.Client) OrderRepository {
	return &orderRepository{fs: fs}
}

var decodeOrder = decodeWithID(func(o *model.Order, id string) { o.ID = id })

func (r *orderRepository) query(q OrderQuery) firestore.Query {
	query := r.fs.Collection(ordersCollection).Query
	if q.Status != "" {
		query = query.Where("status", "==", string(q.Status))
	}
	if q.UserID != "" {
		query = query.Where("user_id", "==", q.UserID)
	}
	if len(q.Locations) > 0 {
		query = query.Where("location", "in", q.Locations)
	}
	return query.OrderBy("created_at", firestore.Desc)
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	ref := r.fs.Collection(ordersCollection).NewDoc()
	if _, err := ref.Create(ctx, o); err != nil {
		return err
	}
	o.ID = ref.ID
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return getDoc(ctx, r.fs.Collection(ordersCollection).Doc(id), decodeOrder)
}

func (r *orderRepository) List(ctx context.Context, q OrderQuery) ([]model.Order, error) {
	return queryAll(ctx, r.query(q), decodeOrder)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, note string, at time.Time) (*model.Order, error) {
	ref := r.fs.Collection(ordersCollection).Doc(id)
	var updated *model.Order
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		o, err := txGetDoc(tx, ref, decodeOrder)
		if err != nil {
			return err
		}
		o.ApplyStatus(status, note, at)
		updated = o
		return tx.Update(ref, []firestore.Update{
			{Path: "items", Value: o.Items},
			{Path: "status", Value: string(o.Status)},
			{Path: "statusHistory", Value: o.StatusHistory},
			{Path: "updated_at", Value: o.UpdatedAt},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *orderRepository) UpdateTracking(ctx context.Context, id, trackingNumber string, at time.Time) error {
	_, err := r.fs.Collection(ordersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "trackingNumber", Value: trackingNumber},
		{Path: "updated_at", Value: at},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	_, err := r.fs.Collection(ordersCollection).Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *orderRepository) Watch(q OrderQuery) realtime.Opener[model.Order] {
	return watchQuery(r.query(q), decodeOrder)
}
