package model

import "time"

const RoleAdmin = "admin"

// Admin is the staff profile stored at admins/{uid}.
type Admin struct {
	UID         string    `firestore:"uid"`
	Email       string    `firestore:"email"`
	DisplayName string    `firestore:"displayName"`
	Location    string    `firestore:"location"`
	Role        string    `firestore:"role"`
	CreatedAt   time.Time `firestore:"createdAt"`
	LastLogin   time.Time `firestore:"lastLogin"`
}
