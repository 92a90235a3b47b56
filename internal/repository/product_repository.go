package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, sellerID string) ([]model.Product, error)
	Update(ctx context.Context, id string, fn func(p *model.Product) error) (*model.Product, error)
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	fs *firestore.Client
}

func NewProductRepository(fs *firestore.Client) ProductRepository {
	return &productRepository{fs: fs}
}

var decodeProduct = decodeWithID(func(p *model.Product, id string) { p.ID = id })

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	ref := r.fs.Collection(productsCollection).NewDoc()
	if _, err := ref.Create(ctx, p); err != nil {
		return err
	}
	p.ID = ref.ID
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return getDoc(ctx, r.fs.Collection(productsCollection).Doc(id), decodeProduct)
}

func (r *productRepository) List(ctx context.Context, sellerID string) ([]model.Product, error) {
	query := r.fs.Collection(productsCollection).Query
	if sellerID != "" {
		query = query.Where("seller_id", "==", sellerID)
	}
	return queryAll(ctx, query.OrderBy("created_at", firestore.Desc), decodeProduct)
}

func (r *productRepository) Update(ctx context.Context, id string, fn func(p *model.Product) error) (*model.Product, error) {
	ref := r.fs.Collection(productsCollection).Doc(id)
	var updated *model.Product
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		p, err := txGetDoc(tx, ref, decodeProduct)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		updated = p
		return tx.Set(ref, p)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	_, err := r.fs.Collection(productsCollection).Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}
