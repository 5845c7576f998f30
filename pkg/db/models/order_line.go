package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/pkg/enums"
)

// OrderLine is one SKU position on an order. RTOCondition doubles as the
// allocation engine's record that the line has been resolved; clearing it
// returns the line to the unprocessed candidate pool. RTOReceiptTxnID points
// at the inward ledger row created when the returned unit was received, which
// makes repeat receipts idempotent.
type OrderLine struct {
	ID              uuid.UUID            `gorm:"type:uuid;primaryKey"`
	OrderID         uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	SkuID           uuid.UUID            `gorm:"column:sku_id;type:uuid;not null;index"`
	Quantity        int                  `gorm:"column:quantity;not null"`
	TrackingStatus  enums.TrackingStatus `gorm:"column:tracking_status;type:text;not null;default:pending;index"`
	RTOInitiatedAt  *time.Time           `gorm:"column:rto_initiated_at"`
	RTOReceivedAt   *time.Time           `gorm:"column:rto_received_at"`
	RTOInwardedAt   *time.Time           `gorm:"column:rto_inwarded_at"`
	RTOInwardedByID *uuid.UUID           `gorm:"column:rto_inwarded_by_id;type:uuid"`
	RTOCondition    *enums.RTOCondition  `gorm:"column:rto_condition;type:text"`
	RTONotes        *string              `gorm:"column:rto_notes"`
	RTOReceiptTxnID *uuid.UUID           `gorm:"column:rto_receipt_txn_id;type:uuid"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ClearRTO resets the line's resolution state so it re-enters the
// unprocessed candidate pool.
func (l *OrderLine) ClearRTO() {
	l.RTOCondition = nil
	l.RTOInwardedAt = nil
	l.RTOInwardedByID = nil
	l.RTOReceivedAt = nil
	l.RTOReceiptTxnID = nil
}

// MarkRTOProcessed records who resolved the line and with what condition.
func (l *OrderLine) MarkRTOProcessed(condition enums.RTOCondition, byID uuid.UUID, at time.Time) {
	cond := condition
	l.RTOCondition = &cond
	inwardedAt := at
	l.RTOInwardedAt = &inwardedAt
	by := byID
	l.RTOInwardedByID = &by
}
