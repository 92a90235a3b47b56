package service

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSellerFixture() (SellerService, fakeSellerRepo) {
	m := newMemStore()
	repo := fakeSellerRepo{m}
	return NewSellerService(repo, NewActivityService(&fakeActivityRepo{})), repo
}

func fakeSellerInput(city string) SellerInput {
	return SellerInput{
		Name:    gofakeit.Company(),
		Email:   gofakeit.Email(),
		Phone:   gofakeit.Phone(),
		City:    city,
		Pincode: "560001",
		Address: gofakeit.Street(),
	}
}

func TestSellerService_CreateStartsActiveWithZeroCounters(t *testing.T) {
	svc, _ := newSellerFixture()
	s, err := svc.Create(context.Background(), fakeSellerInput("Pune"))
	require.NoError(t, err)
	assert.True(t, s.Active)
	assert.Zero(t, s.TotalOrders)
	assert.Zero(t, s.CompletedOrders)
	assert.False(t, s.CreatedAt.IsZero())

	_, err = svc.Create(context.Background(), SellerInput{Name: "No City"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSellerService_UpdateNeverTouchesCounters(t *testing.T) {
	svc, repo := newSellerFixture()
	repo.put(model.Seller{ID: "s1", Name: "Old", City: "Delhi", Active: true, TotalOrders: 7, CompletedOrders: 3})

	in := fakeSellerInput("Noida")
	in.Name = "New"
	s, err := svc.Update(context.Background(), "s1", in)
	require.NoError(t, err)
	assert.Equal(t, "New", s.Name)
	assert.Equal(t, "Noida", s.City)
	assert.Equal(t, int64(7), s.TotalOrders)
	assert.Equal(t, int64(3), s.CompletedOrders)

	_, err = svc.Update(context.Background(), "missing", in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSellerService_ListByCityAndActive(t *testing.T) {
	svc, repo := newSellerFixture()
	repo.put(model.Seller{ID: "a", Name: "A", City: "Bengaluru", Active: true})
	repo.put(model.Seller{ID: "b", Name: "B", City: "bangalore", Active: false})
	repo.put(model.Seller{ID: "c", Name: "C", City: "Chennai", Active: true})

	all, err := svc.List(context.Background(), false, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.List(context.Background(), true, "")
	require.NoError(t, err)
	assert.Len(t, active, 2)

	blr, err := svc.List(context.Background(), false, "Bangalore")
	require.NoError(t, err)
	assert.Len(t, blr, 2)

	blrActive, err := svc.List(context.Background(), true, "BANGALORE")
	require.NoError(t, err)
	require.Len(t, blrActive, 1)
	assert.Equal(t, "a", blrActive[0].ID)
}

func TestSellerService_SetActiveAndDelete(t *testing.T) {
	svc, repo := newSellerFixture()
	repo.put(model.Seller{ID: "s1", Name: "A", City: "Delhi", Active: true, TotalOrders: 4})

	s, err := svc.SetActive(context.Background(), "s1", false)
	require.NoError(t, err)
	assert.False(t, s.Active)
	assert.Equal(t, int64(4), s.TotalOrders)

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	_, err = svc.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}
