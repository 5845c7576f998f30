package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/pkg/enums"
)

// InventoryTransaction is one append-only ledger row. Balances are never
// stored; they are derived by summing inward minus outward per SKU.
type InventoryTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SkuID       uuid.UUID       `gorm:"column:sku_id;type:uuid;not null;index"`
	TxnType     enums.TxnType   `gorm:"column:txn_type;type:text;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	Reason      enums.TxnReason `gorm:"column:reason;type:text;not null"`
	ReferenceID *uuid.UUID      `gorm:"column:reference_id;type:uuid;index"`
	Notes       *string         `gorm:"column:notes"`
	// WarehouseLocation is display metadata only; it is never reconciled.
	WarehouseLocation *string `gorm:"column:warehouse_location"`
	CreatedByID uuid.UUID       `gorm:"column:created_by_id;type:uuid;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
