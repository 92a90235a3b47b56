package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
)

type AdminRepository interface {
	Create(ctx context.Context, a *model.Admin) error
	FindByUID(ctx context.Context, uid string) (*model.Admin, error)
	TouchLastLogin(ctx context.Context, uid string, at time.Time) error
	UpdateLocation(ctx context.Context, uid, location string) error
}

type adminRepository struct {
	fs *firestore.Client
}

func NewAdminRepository(fs *firestore.Client) AdminRepository {
	return &adminRepository{fs: fs}
}

var decodeAdmin = decodeWithID(func(a *model.Admin, id string) {
	if a.UID == "" {
		a.UID = id
	}
})

func (r *adminRepository) Create(ctx context.Context, a *model.Admin) error {
	_, err := r.fs.Collection(adminsCollection).Doc(a.UID).Set(ctx, a)
	return err
}

func (r *adminRepository) FindByUID(ctx context.Context, uid string) (*model.Admin, error) {
	return getDoc(ctx, r.fs.Collection(adminsCollection).Doc(uid), decodeAdmin)
}

func (r *adminRepository) TouchLastLogin(ctx context.Context, uid string, at time.Time) error {
	_, err := r.fs.Collection(adminsCollection).Doc(uid).Set(ctx, map[string]interface{}{
		"lastLogin": at,
	}, firestore.MergeAll)
	return err
}

func (r *adminRepository) UpdateLocation(ctx context.Context, uid, location string) error {
	_, err := r.fs.Collection(adminsCollection).Doc(uid).Update(ctx, []firestore.Update{
		{Path: "location", Value: location},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}
