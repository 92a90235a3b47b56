package model

import "time"

type Product struct {
	ID                   string    `firestore:"-"`
	Name                 string    `firestore:"name"`
	Category             string    `firestore:"category"`
	Price                float64   `firestore:"price"`
	Rating               float64   `firestore:"rating"`
	Stock                int64     `firestore:"stock"`
	Description          string    `firestore:"description"`
	SellerID             string    `firestore:"seller_id"`
	SellerName           string    `firestore:"seller_name,omitempty"`
	Image                string    `firestore:"image"`
	RequiresPrescription bool      `firestore:"requiresPrescription"`
	Available            bool      `firestore:"available"`
	CreatedAt            time.Time `firestore:"created_at"`
	UpdatedAt            time.Time `firestore:"updated_at"`
}
