package model

import (
	"testing"
	"time"
)

func TestApplyStatus(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	o := &Order{
		Status: OrderStatusPending,
		Items: []OrderItem{
			{ID: "p1", Status: "pending"},
			{ID: "p2", Status: "pending"},
		},
		StatusHistory: []StatusHistoryEntry{{Status: "pending", Note: "Order placed successfully"}},
	}

	o.ApplyStatus(OrderStatusShipped, "left the warehouse", now)

	if len(o.StatusHistory) != 2 {
		t.Fatalf("history len=%d want=2", len(o.StatusHistory))
	}
	last := o.StatusHistory[len(o.StatusHistory)-1]
	if last.Status != string(o.Status) || last.Note != "left the warehouse" || !last.Timestamp.Equal(now) {
		t.Fatalf("unexpected last entry %+v", last)
	}
	for _, it := range o.Items {
		if it.Status != string(OrderStatusShipped) {
			t.Fatalf("item %s status=%q", it.ID, it.Status)
		}
	}
	if !o.UpdatedAt.Equal(now) {
		t.Fatalf("updatedAt not stamped")
	}
}

func TestItemsTotal(t *testing.T) {
	o := &Order{Items: []OrderItem{
		{Price: 45, Quantity: 2},
		{Price: 0.1, Quantity: 3},
		{Price: 19.99, Quantity: 1},
	}}
	if got := o.ItemsTotal(); got != 110.29 {
		t.Fatalf("got=%v want=110.29", got)
	}
}

func TestCustomer(t *testing.T) {
	tests := []struct {
		name  string
		order Order
		want  string
	}{
		{"phone", Order{UserID: "ixayNX17IGPRFGsYZoaMu4IkW7w1", Items: []OrderItem{{Phone: "08438433653"}}}, "08438433653"},
		{"user prefix", Order{UserID: "ixayNX17IGPRFGsYZoaMu4IkW7w1"}, "ixayNX17IG"},
		{"nothing", Order{}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.order.Customer(); got != tt.want {
				t.Fatalf("got=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestPrescriptionTransitions(t *testing.T) {
	tests := []struct {
		from, to PrescriptionStatus
		want     bool
	}{
		{PrescriptionStatusPending, PrescriptionStatusVerified, true},
		{PrescriptionStatusPending, PrescriptionStatusRejected, true},
		{PrescriptionStatusVerified, PrescriptionStatusAssigned, true},
		{PrescriptionStatusAssigned, PrescriptionStatusCompleted, true},
		{PrescriptionStatusVerified, PrescriptionStatusRejected, false},
		{PrescriptionStatusRejected, PrescriptionStatusVerified, false},
		{PrescriptionStatusCompleted, PrescriptionStatusAssigned, false},
		{PrescriptionStatusPending, PrescriptionStatusCompleted, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanMoveTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v want %v", tt.from, tt.to, got, tt.want)
		}
	}
	if _, ok := ToPrescriptionStatus("archived"); ok {
		t.Errorf("archived should not parse")
	}
}
