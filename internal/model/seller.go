package model

import "time"

type Seller struct {
	ID              string    `firestore:"-"`
	Name            string    `firestore:"name"`
	Email           string    `firestore:"email"`
	Phone           string    `firestore:"phone"`
	City            string    `firestore:"city"`
	Pincode         string    `firestore:"pincode"`
	Address         string    `firestore:"address"`
	Active          bool      `firestore:"active"`
	TotalOrders     int64     `firestore:"total_orders"`
	CompletedOrders int64     `firestore:"completed_orders"`
	Rating          float64   `firestore:"rating"`
	CreatedAt       time.Time `firestore:"created_at"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}
