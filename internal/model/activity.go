package model

import "time"

// Activity is one staff action in the audit trail.
type Activity struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	ActorUID   string    `gorm:"column:actor_uid;size:128;index;not null"`
	Kind       string    `gorm:"column:kind;size:64;not null"`
	EntityType string    `gorm:"column:entity_type;size:32;index;not null"`
	EntityID   string    `gorm:"column:entity_id;size:128;index"`
	Message    string    `gorm:"column:message;type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

func (Activity) TableName() string {
	return "activities"
}
