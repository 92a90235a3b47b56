package service

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/reqctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rxFixture struct {
	svc     *prescriptionService
	m       *memStore
	sellers fakeSellerRepo
	acts    *fakeActivityRepo
}

func newRxFixture(t *testing.T, sellers ...model.Seller) rxFixture {
	t.Helper()
	m := newMemStore()
	acts := &fakeActivityRepo{}
	sr := fakeSellerRepo{m}
	for _, s := range sellers {
		sr.put(s)
	}
	svc := NewPrescriptionService(fakePrescriptionRepo{m}, sr, nil, NewActivityService(acts)).(*prescriptionService)
	svc.now = fixedClock(time.Date(2024, 6, 2, 8, 30, 0, 0, time.UTC))
	return rxFixture{svc: svc, m: m, sellers: sr, acts: acts}
}

func (f rxFixture) create(t *testing.T, address string) *model.Prescription {
	t.Helper()
	p, err := f.svc.Create(context.Background(), CreatePrescriptionInput{
		UserID:          "cust-1",
		CustomerName:    "Ravi",
		FileName:        "rx.jpg",
		FileURL:         "https://cdn.example/rx.jpg",
		DeliveryAddress: address,
	})
	require.NoError(t, err)
	return p
}

func (f rxFixture) seller(t *testing.T, id string) model.Seller {
	t.Helper()
	s, err := f.sellers.FindByID(context.Background(), id)
	require.NoError(t, err)
	return *s
}

func TestPrescription_CreateDerivesLocation(t *testing.T) {
	f := newRxFixture(t)
	p := f.create(t, "4/6 lane, South Masi Street, madurai 625001, Tamil Nadu")
	assert.Equal(t, model.PrescriptionStatusPending, p.Status)
	assert.Equal(t, "Madurai", p.Location)

	_, err := f.svc.Create(context.Background(), CreatePrescriptionInput{UserID: "u"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPrescription_VerifyRecordsActor(t *testing.T) {
	f := newRxFixture(t)
	p := f.create(t, "Chennai")
	ctx := reqctx.WithActor(context.Background(), "admin-7")

	v, err := f.svc.Verify(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PrescriptionStatusVerified, v.Status)
	assert.Equal(t, "admin-7", v.VerifiedBy)
	require.NotNil(t, v.VerifiedAt)

	_, err = f.svc.Verify(ctx, p.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPrescription_RejectWithoutReasonMutatesNothing(t *testing.T) {
	f := newRxFixture(t)
	p := f.create(t, "Pune")
	writes := f.m.writes

	_, err := f.svc.Reject(context.Background(), p.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, writes, f.m.writes)

	got, err := f.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PrescriptionStatusPending, got.Status)
	assert.Empty(t, got.RejectionReason)
}

func TestPrescription_RejectRecordsActor(t *testing.T) {
	f := newRxFixture(t)
	p := f.create(t, "Pune")
	ctx := reqctx.WithActor(context.Background(), "admin-3")

	r, err := f.svc.Reject(ctx, p.ID, "illegible scan")
	require.NoError(t, err)
	assert.Equal(t, model.PrescriptionStatusRejected, r.Status)
	assert.Equal(t, "illegible scan", r.RejectionReason)
	assert.Empty(t, r.AssignedSellerID)
	assert.Equal(t, "admin-3", r.VerifiedBy)
	require.NotNil(t, r.VerifiedAt)
	assert.Equal(t, time.Date(2024, 6, 2, 8, 30, 0, 0, time.UTC), *r.VerifiedAt)

	got, err := f.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin-3", got.VerifiedBy)
}

func TestPrescription_AssignRequiresSeller(t *testing.T) {
	f := newRxFixture(t)
	p := f.create(t, "Pune")
	writes := f.m.writes

	_, err := f.svc.Assign(context.Background(), p.ID, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Assign(context.Background(), p.ID, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, writes, f.m.writes)
}

func TestPrescription_AssignInactiveSeller(t *testing.T) {
	f := newRxFixture(t, model.Seller{ID: "s1", Name: "Closed", City: "Pune", Active: false})
	p := f.create(t, "Pune")

	_, err := f.svc.Assign(context.Background(), p.ID, "s1")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, f.seller(t, "s1").TotalOrders)
}

func TestPrescription_AutoAssignFallsBackToActivePool(t *testing.T) {
	f := newRxFixture(t,
		model.Seller{ID: "a", Name: "A", City: "Delhi", Active: true, TotalOrders: 5},
		model.Seller{ID: "b", Name: "B", City: "Mumbai", Active: true, TotalOrders: 2},
		model.Seller{ID: "c", Name: "C", City: "Pune", Active: true, TotalOrders: 8},
		model.Seller{ID: "d", Name: "D", City: "Jaipur", Active: false, TotalOrders: 0},
	)
	p := f.create(t, "221B Baker Street, Springfield, ZZ 999999")

	got, err := f.svc.AutoAssign(context.Background(), p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.PrescriptionStatusAssigned, got.Status)
	assert.Equal(t, "b", got.AssignedSellerID)
	assert.Equal(t, "B", got.AssignedSellerName)
	assert.Equal(t, int64(3), f.seller(t, "b").TotalOrders)
	assert.Equal(t, int64(5), f.seller(t, "a").TotalOrders)
}

func TestPrescription_AutoAssignPrefersCity(t *testing.T) {
	f := newRxFixture(t,
		model.Seller{ID: "a", Name: "A", City: "Bangalore", Active: true, TotalOrders: 9},
		model.Seller{ID: "b", Name: "B", City: "Mumbai", Active: true, TotalOrders: 1},
	)
	p := f.create(t, "12 MG Road, Bengaluru, Karnataka 560001")

	got, err := f.svc.AutoAssign(context.Background(), p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "a", got.AssignedSellerID)

	q := f.create(t, "anywhere")
	got, err = f.svc.AutoAssign(context.Background(), q.ID, "bangalore")
	require.NoError(t, err)
	assert.Equal(t, "a", got.AssignedSellerID)
	assert.Equal(t, int64(11), f.seller(t, "a").TotalOrders)
}

func TestPrescription_AutoAssignNoCapacityMutatesNothing(t *testing.T) {
	f := newRxFixture(t, model.Seller{ID: "a", Name: "A", City: "Delhi", Active: false})
	p := f.create(t, "Delhi")
	writes := f.m.writes

	_, err := f.svc.AutoAssign(context.Background(), p.ID, "")
	assert.ErrorIs(t, err, ErrNoSellerAvailable)
	assert.Equal(t, writes, f.m.writes)

	got, err := f.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PrescriptionStatusPending, got.Status)
	assert.Empty(t, got.AssignedSellerID)
}

func TestPrescription_AutoAssignRejectedIsInvalid(t *testing.T) {
	f := newRxFixture(t, model.Seller{ID: "a", Name: "A", City: "Delhi", Active: true})
	p := f.create(t, "Delhi")
	_, err := f.svc.Reject(context.Background(), p.ID, "expired")
	require.NoError(t, err)

	_, err = f.svc.AutoAssign(context.Background(), p.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, f.seller(t, "a").TotalOrders)
}

func TestPrescription_CompleteBumpsCompletedOrders(t *testing.T) {
	f := newRxFixture(t, model.Seller{ID: "a", Name: "A", City: "Delhi", Active: true})
	p := f.create(t, "Delhi")

	_, err := f.svc.UpdateStatus(context.Background(), p.ID, model.PrescriptionStatusCompleted, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.Verify(context.Background(), p.ID)
	require.NoError(t, err)
	_, err = f.svc.Assign(context.Background(), p.ID, "a")
	require.NoError(t, err)

	done, err := f.svc.UpdateStatus(context.Background(), p.ID, model.PrescriptionStatusCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, model.PrescriptionStatusCompleted, done.Status)
	assert.Equal(t, "a", done.AssignedSellerID)

	s := f.seller(t, "a")
	assert.Equal(t, int64(1), s.TotalOrders)
	assert.Equal(t, int64(1), s.CompletedOrders)
	assert.Equal(t,
		[]string{"prescription.created", "prescription.verified", "prescription.assigned", "prescription.completed"},
		f.acts.kinds())
}

func TestPrescription_UpdateStatusRouting(t *testing.T) {
	f := newRxFixture(t)
	p := f.create(t, "Delhi")

	_, err := f.svc.UpdateStatus(context.Background(), p.ID, model.PrescriptionStatusAssigned, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.UpdateStatus(context.Background(), p.ID, model.PrescriptionStatusPending, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.UpdateStatus(context.Background(), p.ID, "archived", "")
	assert.ErrorIs(t, err, ErrValidation)

	r, err := f.svc.UpdateStatus(context.Background(), p.ID, model.PrescriptionStatusRejected, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, "duplicate", r.RejectionReason)
}

func TestPrescription_ListBySellerAndLocation(t *testing.T) {
	f := newRxFixture(t, model.Seller{ID: "a", Name: "A", City: "Kolkata", Active: true})
	p := f.create(t, "Park Street, Calcutta, West Bengal")
	f.create(t, "Connaught Place, Delhi")
	_, err := f.svc.Assign(context.Background(), p.ID, "a")
	require.NoError(t, err)

	bySeller, err := f.svc.List(context.Background(), PrescriptionFilter{SellerID: "a"})
	require.NoError(t, err)
	require.Len(t, bySeller, 1)
	assert.Equal(t, p.ID, bySeller[0].ID)

	byLoc, err := f.svc.List(context.Background(), PrescriptionFilter{Location: "Kolkata", Status: model.PrescriptionStatusAssigned})
	require.NoError(t, err)
	assert.Len(t, byLoc, 1)
}

func TestPrescription_ListMatchesLocationAsWritten(t *testing.T) {
	f := newRxFixture(t)
	ours := f.create(t, "4/6 lane, South Masi Street, madurai 625001, Tamil Nadu")
	// written by the customer app and by older releases
	f.m.prescriptions["ext-1"] = model.Prescription{ID: "ext-1", Location: "Madurai", Status: model.PrescriptionStatusPending}
	f.m.prescriptions["old-1"] = model.Prescription{ID: "old-1", Location: "madurai", Status: model.PrescriptionStatusPending}
	f.m.prescriptions["other"] = model.Prescription{ID: "other", Location: "Chennai", Status: model.PrescriptionStatusPending}

	for _, admin := range []string{"Madurai", "madurai", " MADURAI "} {
		list, err := f.svc.List(context.Background(), PrescriptionFilter{Location: admin})
		require.NoError(t, err)
		ids := lo.Map(list, func(p model.Prescription, _ int) string { return p.ID })
		assert.ElementsMatch(t, []string{ours.ID, "ext-1", "old-1"}, ids, admin)
	}
}

func TestPrescription_FileURL(t *testing.T) {
	f := newRxFixture(t)
	p := f.create(t, "Delhi")

	u, err := f.svc.FileURL(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/rx.jpg", u)

	_, err = f.svc.FileURL(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
