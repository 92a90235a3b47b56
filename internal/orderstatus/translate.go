// Package orderstatus maps order statuses between the values persisted in
// Firestore and the labels shown to staff on the dashboard.
package orderstatus

import "github.com/shinyyama/pharmacy-admin-backend/internal/model"

// Label is a staff-facing order status.
type Label string

const (
	LabelPendingVerification Label = "Pending Verification"
	LabelVerified            Label = "Verified"
	LabelAssignedToSeller    Label = "Assigned to Seller"
	LabelInProgress          Label = "In Progress"
	LabelDispatched          Label = "Dispatched"
	LabelDelivered           Label = "Delivered"
	LabelRejected            Label = "Rejected"
)

var toLabel = map[model.OrderStatus]Label{
	model.OrderStatusPending:    LabelPendingVerification,
	model.OrderStatusConfirmed:  LabelVerified,
	model.OrderStatusProcessing: LabelInProgress,
	model.OrderStatusShipped:    LabelDispatched,
	model.OrderStatusDelivered:  LabelDelivered,
	model.OrderStatusCancelled:  LabelRejected,
}

// Both "Assigned to Seller" and "In Progress" collapse onto Processing, and
// Processing reads back as "In Progress".
var toStorage = map[Label]model.OrderStatus{
	LabelPendingVerification: model.OrderStatusPending,
	LabelVerified:            model.OrderStatusConfirmed,
	LabelAssignedToSeller:    model.OrderStatusProcessing,
	LabelInProgress:          model.OrderStatusProcessing,
	LabelDispatched:          model.OrderStatusShipped,
	LabelDelivered:           model.OrderStatusDelivered,
	LabelRejected:            model.OrderStatusCancelled,
}

var notes = map[Label]string{
	LabelPendingVerification: "Order is pending verification",
	LabelVerified:            "Order has been verified and approved",
	LabelAssignedToSeller:    "Order has been assigned to pharmacy",
	LabelInProgress:          "Order is being prepared",
	LabelDispatched:          "Order has been dispatched for delivery",
	LabelDelivered:           "Order has been successfully delivered",
	LabelRejected:            "Order has been rejected",
}

// Labels lists the staff statuses in dashboard order.
func Labels() []Label {
	return []Label{
		LabelPendingVerification,
		LabelVerified,
		LabelAssignedToSeller,
		LabelInProgress,
		LabelDispatched,
		LabelDelivered,
		LabelRejected,
	}
}

// ToLabel returns the staff label for a stored status. Unknown values pass
// through unchanged.
func ToLabel(s model.OrderStatus) Label {
	if l, ok := toLabel[s]; ok {
		return l
	}
	return Label(s)
}

// ToStorage returns the stored status for a staff label. Unknown values pass
// through unchanged.
func ToStorage(l Label) model.OrderStatus {
	if s, ok := toStorage[l]; ok {
		return s
	}
	return model.OrderStatus(l)
}

// Note is the default history note recorded when staff move an order to l.
func Note(l Label) string {
	if n, ok := notes[l]; ok {
		return n
	}
	return "Status updated to " + string(l)
}

// Translate converts a staff label into the stored status plus its default note.
func Translate(l Label) (model.OrderStatus, string) {
	return ToStorage(l), Note(l)
}
