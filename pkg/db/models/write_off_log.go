package models

import (
	"time"

	"github.com/google/uuid"
)

// WriteOffLog records stock that left the sellable pool without an order,
// e.g. a damaged RTO unit. SourceType/SourceID point at whatever triggered
// the write-off.
type WriteOffLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SkuID       uuid.UUID  `gorm:"column:sku_id;type:uuid;not null;index"`
	Quantity    int        `gorm:"column:quantity;not null"`
	Reason      string     `gorm:"column:reason;type:text;not null"`
	SourceType  string     `gorm:"column:source_type;type:text;not null"`
	SourceID    *uuid.UUID `gorm:"column:source_id;type:uuid;index"`
	Notes       *string    `gorm:"column:notes"`
	CreatedByID uuid.UUID  `gorm:"column:created_by_id;type:uuid;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
