package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/pkg/enums"
)

// ProductionBatch tracks planned vs completed units for one SKU run.
type ProductionBatch struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	SkuID        uuid.UUID         `gorm:"column:sku_id;type:uuid;not null;index"`
	QtyPlanned   int               `gorm:"column:qty_planned;not null"`
	QtyCompleted int               `gorm:"column:qty_completed;not null;default:0"`
	BatchDate    time.Time         `gorm:"column:batch_date;not null;index"`
	Status       enums.BatchStatus `gorm:"column:status;type:text;not null;default:planned"`
	CompletedAt  *time.Time        `gorm:"column:completed_at"`
	Note         *string           `gorm:"column:note"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// QtyPending returns the units still expected from the run, never negative.
func (b ProductionBatch) QtyPending() int {
	pending := b.QtyPlanned - b.QtyCompleted
	if pending < 0 {
		return 0
	}
	return pending
}

// ApplyCompletion counts qty units against the batch. The counter clamps to
// qty_planned and the status and completed_at fields derive from it.
func (b *ProductionBatch) ApplyCompletion(qty int, at time.Time) {
	b.QtyCompleted += qty
	if b.QtyCompleted > b.QtyPlanned {
		b.QtyCompleted = b.QtyPlanned
	}
	if b.QtyCompleted >= b.QtyPlanned {
		b.Status = enums.BatchStatusCompleted
		if b.CompletedAt == nil {
			completed := at
			b.CompletedAt = &completed
		}
		return
	}
	b.Status = enums.BatchStatusInProgress
	b.CompletedAt = nil
}

// ReverseCompletion removes qty units from the batch counter, flooring at
// zero and reopening the batch.
func (b *ProductionBatch) ReverseCompletion(qty int) {
	b.QtyCompleted -= qty
	if b.QtyCompleted < 0 {
		b.QtyCompleted = 0
	}
	if b.QtyCompleted == 0 {
		b.Status = enums.BatchStatusPlanned
	} else {
		b.Status = enums.BatchStatusInProgress
	}
	b.CompletedAt = nil
}
