package model

import "time"

type PrescriptionStatus string

const (
	PrescriptionStatusPending   PrescriptionStatus = "pending"
	PrescriptionStatusVerified  PrescriptionStatus = "verified"
	PrescriptionStatusRejected  PrescriptionStatus = "rejected"
	PrescriptionStatusAssigned  PrescriptionStatus = "assigned"
	PrescriptionStatusCompleted PrescriptionStatus = "completed"
)

// remember to extend prescriptionTransitions when adding a status
var prescriptionTransitions = map[PrescriptionStatus][]PrescriptionStatus{
	PrescriptionStatusPending:  {PrescriptionStatusVerified, PrescriptionStatusRejected, PrescriptionStatusAssigned},
	PrescriptionStatusVerified: {PrescriptionStatusAssigned},
	PrescriptionStatusAssigned: {PrescriptionStatusCompleted},
}

func ToPrescriptionStatus(s string) (PrescriptionStatus, bool) {
	switch st := PrescriptionStatus(s); st {
	case PrescriptionStatusPending, PrescriptionStatusVerified, PrescriptionStatusRejected,
		PrescriptionStatusAssigned, PrescriptionStatusCompleted:
		return st, true
	}
	return "", false
}

// CanMoveTo reports whether a prescription in status s may move to next.
func (s PrescriptionStatus) CanMoveTo(next PrescriptionStatus) bool {
	for _, allowed := range prescriptionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Prescription struct {
	ID                 string             `firestore:"-"`
	UserID             string             `firestore:"user_id"`
	CustomerName       string             `firestore:"customer_name"`
	CustomerPhone      string             `firestore:"customer_phone"`
	OrderID            string             `firestore:"order_id,omitempty"`
	FileName           string             `firestore:"file_name"`
	FileURL            string             `firestore:"file_url"`
	FileType           string             `firestore:"file_type,omitempty"`
	DeliveryAddress    string             `firestore:"delivery_address"`
	Location           string             `firestore:"location"`
	Notes              string             `firestore:"notes,omitempty"`
	Status             PrescriptionStatus `firestore:"status"`
	AssignedSellerID   string             `firestore:"assigned_seller_id,omitempty"`
	AssignedSellerName string             `firestore:"assigned_seller_name,omitempty"`
	VerifiedBy         string             `firestore:"verified_by,omitempty"`
	VerifiedAt         *time.Time         `firestore:"verified_at,omitempty"`
	RejectionReason    string             `firestore:"rejection_reason,omitempty"`
	CreatedAt          time.Time          `firestore:"created_at"`
	UpdatedAt          time.Time          `firestore:"updated_at"`
}
