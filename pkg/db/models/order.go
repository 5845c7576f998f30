package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is the shipment record RTO receipts link back to.
type Order struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey"`
	OrderNumber       string      `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	Channel           *string     `gorm:"column:channel"`
	RTOTrackingNumber *string     `gorm:"column:rto_tracking_number"`
	IsArchived        bool        `gorm:"column:is_archived;not null;default:false"`
	Lines             []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
