package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/realtime"
)

type SellerQuery struct {
	ActiveOnly bool
}

type SellerRepository interface {
	Create(ctx context.Context, s *model.Seller) error
	FindByID(ctx context.Context, id string) (*model.Seller, error)
	List(ctx context.Context, q SellerQuery) ([]model.Seller, error)
	Update(ctx context.Context, id string, fn func(s *model.Seller) error) (*model.Seller, error)
	Delete(ctx context.Context, id string) error
	Watch(q SellerQuery) realtime.Opener[model.Seller]
}

type sellerRepository struct {
	fs *firestore.Client
}

func NewSellerRepository(fs *firestore.Client) SellerRepository {
	return &sellerRepository{fs: fs}
}

var decodeSeller = decodeWithID(func(s *model.Seller, id string) { s.ID = id })

func (r *sellerRepository) query(q SellerQuery) firestore.Query {
	query := r.fs.Collection(sellersCollection).Query
	if q.ActiveOnly {
		query = query.Where("active", "==", true)
	}
	return query.OrderBy("created_at", firestore.Desc)
}

func (r *sellerRepository) Create(ctx context.Context, s *model.Seller) error {
	ref := r.fs.Collection(sellersCollection).NewDoc()
	if _, err := ref.Create(ctx, s); err != nil {
		return err
	}
	s.ID = ref.ID
	return nil
}

func (r *sellerRepository) FindByID(ctx context.Context, id string) (*model.Seller, error) {
	return getDoc(ctx, r.fs.Collection(sellersCollection).Doc(id), decodeSeller)
}

func (r *sellerRepository) List(ctx context.Context, q SellerQuery) ([]model.Seller, error) {
	return queryAll(ctx, r.query(q), decodeSeller)
}

func (r *sellerRepository) Update(ctx context.Context, id string, fn func(s *model.Seller) error) (*model.Seller, error) {
	ref := r.fs.Collection(sellersCollection).Doc(id)
	var updated *model.Seller
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		s, err := txGetDoc(tx, ref, decodeSeller)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		updated = s
		return tx.Set(ref, s)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *sellerRepository) Delete(ctx context.Context, id string) error {
	_, err := r.fs.Collection(sellersCollection).Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *sellerRepository) Watch(q SellerQuery) realtime.Opener[model.Seller] {
	return watchQuery(r.query(q), decodeSeller)
}
