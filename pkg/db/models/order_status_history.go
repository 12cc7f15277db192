package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusHistory is the append-only trail of fulfillment changes and
// notes on an order. EntryType holds a fulfillment status value or "note".
type OrderStatusHistory struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	EntryType string     `gorm:"column:entry_type;not null"`
	Note      *string    `gorm:"column:note"`
	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}
