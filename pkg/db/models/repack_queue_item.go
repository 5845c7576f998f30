package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/pkg/enums"
)

// RepackQueueItem holds a returned good-condition unit until QC clears it
// back into the sellable pool.
type RepackQueueItem struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	SkuID       uuid.UUID          `gorm:"column:sku_id;type:uuid;not null;index"`
	OrderLineID uuid.UUID          `gorm:"column:order_line_id;type:uuid;not null;index"`
	Quantity    int                `gorm:"column:quantity;not null"`
	Status      enums.RepackStatus `gorm:"column:status;type:text;not null;default:pending;index"`
	QCNote      *string            `gorm:"column:qc_note"`
	QCByID      *uuid.UUID         `gorm:"column:qc_by_id;type:uuid"`
	QCAt        *time.Time         `gorm:"column:qc_at"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// RevertToPending sends the item back to the queue and clears its QC fields.
func (i *RepackQueueItem) RevertToPending() {
	i.Status = enums.RepackStatusPending
	i.QCNote = nil
	i.QCByID = nil
	i.QCAt = nil
}
