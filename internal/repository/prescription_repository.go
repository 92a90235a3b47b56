package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/realtime"
)

type PrescriptionQuery struct {
	Status    model.PrescriptionStatus
	SellerID  string
	Locations []string // any of these stored spellings
}

// PrescriptionMutator edits a prescription read inside a transaction. A
// non-nil error aborts the write.
type PrescriptionMutator func(p *model.Prescription) error

// AssignMutator edits the prescription given the seller it is being assigned to.
type AssignMutator func(p *model.Prescription, s *model.Seller) error

type PrescriptionRepository interface {
	Create(ctx context.Context, p *model.Prescription) error
	FindByID(ctx context.Context, id string) (*model.Prescription, error)
	List(ctx context.Context, q PrescriptionQuery) ([]model.Prescription, error)
	Update(ctx context.Context, id string, fn PrescriptionMutator) (*model.Prescription, error)
	// Assign writes the prescription and bumps the seller's total_orders in
	// one transaction.
	Assign(ctx context.Context, id, sellerID string, at time.Time, fn AssignMutator) (*model.Prescription, error)
	// Complete writes the prescription and bumps the assigned seller's
	// completed_orders in one transaction.
	Complete(ctx context.Context, id string, at time.Time, fn PrescriptionMutator) (*model.Prescription, error)
	Delete(ctx context.Context, id string) error
	Watch(q PrescriptionQuery) realtime.Opener[model.Prescription]
}

type prescriptionRepository struct {
	fs *firestore.Client
}

func NewPrescriptionRepository(fs *firestore.Client) PrescriptionRepository {
	return &prescriptionRepository{fs: fs}
}

var decodePrescription = decodeWithID(func(p *model.Prescription, id string) { p.ID = id })

func (r *prescriptionRepository) query(q PrescriptionQuery) firestore.Query {
	query := r.fs.Collection(prescriptionsCollection).Query
	if q.Status != "" {
		query = query.Where("status", "==", string(q.Status))
	}
	if q.SellerID != "" {
		query = query.Where("assigned_seller_id", "==", q.SellerID)
	}
	if len(q.Locations) > 0 {
		query = query.Where("location", "in", q.Locations)
	}
	return query.OrderBy("created_at", firestore.Desc)
}

func (r *prescriptionRepository) Create(ctx context.Context, p *model.Prescription) error {
	ref := r.fs.Collection(prescriptionsCollection).NewDoc()
	if _, err := ref.Create(ctx, p); err != nil {
		return err
	}
	p.ID = ref.ID
	return nil
}

func (r *prescriptionRepository) FindByID(ctx context.Context, id string) (*model.Prescription, error) {
	return getDoc(ctx, r.fs.Collection(prescriptionsCollection).Doc(id), decodePrescription)
}

func (r *prescriptionRepository) List(ctx context.Context, q PrescriptionQuery) ([]model.Prescription, error) {
	return queryAll(ctx, r.query(q), decodePrescription)
}

func (r *prescriptionRepository) Update(ctx context.Context, id string, fn PrescriptionMutator) (*model.Prescription, error) {
	ref := r.fs.Collection(prescriptionsCollection).Doc(id)
	var updated *model.Prescription
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		p, err := txGetDoc(tx, ref, decodePrescription)
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

func (r *prescriptionRepository) Assign(ctx context.Context, id, sellerID string, at time.Time, fn AssignMutator) (*model.Prescription, error) {
	pRef := r.fs.Collection(prescriptionsCollection).Doc(id)
	sRef := r.fs.Collection(sellersCollection).Doc(sellerID)
	var updated *model.Prescription
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		p, err := txGetDoc(tx, pRef, decodePrescription)
		if err != nil {
			return err
		}
		s, err := txGetDoc(tx, sRef, decodeSeller)
		if err != nil {
			return err
		}
		if err := fn(p, s); err != nil {
			return err
		}
		if err := tx.Set(pRef, p); err != nil {
			return err
		}
		updated = p
		return tx.Update(sRef, []firestore.Update{
			{Path: "total_orders", Value: firestore.Increment(1)},
			{Path: "updated_at", Value: at},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *prescriptionRepository) Complete(ctx context.Context, id string, at time.Time, fn PrescriptionMutator) (*model.Prescription, error) {
	pRef := r.fs.Collection(prescriptionsCollection).Doc(id)
	var updated *model.Prescription
	err := r.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		p, err := txGetDoc(tx, pRef, decodePrescription)
		if err != nil {
			return err
		}
		sellerID := p.AssignedSellerID
		var sRef *firestore.DocumentRef
		if sellerID != "" {
			// reads must precede writes in a transaction
			sRef = r.fs.Collection(sellersCollection).Doc(sellerID)
			if _, err := tx.Get(sRef); err != nil {
				if !isNotFound(err) {
					return err
				}
				sRef = nil
			}
		}
		if err := fn(p); err != nil {
			return err
		}
		if err := tx.Set(pRef, p); err != nil {
			return err
		}
		updated = p
		if sRef == nil {
			return nil
		}
		return tx.Update(sRef, []firestore.Update{
			{Path: "completed_orders", Value: firestore.Increment(1)},
			{Path: "updated_at", Value: at},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *prescriptionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.fs.Collection(prescriptionsCollection).Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *prescriptionRepository) Watch(q PrescriptionQuery) realtime.Opener[model.Prescription] {
	return watchQuery(r.query(q), decodePrescription)
}
