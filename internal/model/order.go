package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle value persisted in the orders collection.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "Confirmed"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

type OrderItem struct {
	ID             string  `firestore:"id" json:"id"`
	Name           string  `firestore:"name" json:"name"`
	Image          string  `firestore:"image" json:"image"`
	Price          float64 `firestore:"price" json:"price"`
	Quantity       int64   `firestore:"quantity" json:"quantity"`
	Phone          string  `firestore:"phone" json:"phone"`
	PrescriptionID *string `firestore:"prescription_id" json:"prescriptionId"`
	Status         string  `firestore:"status" json:"status"`
}

type StatusHistoryEntry struct {
	Status    string    `firestore:"status"`
	Note      string    `firestore:"note"`
	Timestamp time.Time `firestore:"timestamp"`
}

type Order struct {
	ID                string               `firestore:"-"`
	UserID            string               `firestore:"user_id"`
	Items             []OrderItem          `firestore:"items"`
	TotalAmount       float64              `firestore:"total_amount"`
	Status            OrderStatus          `firestore:"status"`
	StatusHistory     []StatusHistoryEntry `firestore:"statusHistory"`
	DeliveryAddress   string               `firestore:"delivery_address"`
	Location          string               `firestore:"location"`
	TrackingNumber    *string              `firestore:"trackingNumber"`
	EstimatedDelivery *time.Time           `firestore:"estimatedDelivery"`
	CreatedAt         time.Time            `firestore:"created_at"`
	UpdatedAt         time.Time            `firestore:"updated_at"`
}

// ApplyStatus moves the order to status, appends one history entry and
// stamps every line item with the same status.
func (o *Order) ApplyStatus(status OrderStatus, note string, at time.Time) {
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusHistoryEntry{
		Status:    string(status),
		Note:      note,
		Timestamp: at,
	})
	for i := range o.Items {
		o.Items[i].Status = string(status)
	}
	o.UpdatedAt = at
}

// ItemsTotal sums price*quantity over the line items, rounded to paise.
func (o *Order) ItemsTotal() float64 {
	sum := decimal.Zero
	for _, it := range o.Items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(it.Quantity))
		sum = sum.Add(line)
	}
	return sum.Round(2).InexactFloat64()
}

// Customer returns the best available contact handle for display.
func (o *Order) Customer() string {
	if len(o.Items) > 0 && o.Items[0].Phone != "" {
		return o.Items[0].Phone
	}
	if len(o.UserID) > 10 {
		return o.UserID[:10]
	}
	if o.UserID != "" {
		return o.UserID
	}
	return "Unknown"
}
