package inventory

import (
	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/pkg/enums"
)

// InwardInput holds the validated payload for inward/outward mutations.
type InwardInput struct {
	SkuID             uuid.UUID
	Qty               int
	Reason            enums.TxnReason
	ReferenceID       *uuid.UUID
	Notes             *string
	WarehouseLocation *string
	AdjustmentReason  *string
}

// MutationResult is the shared success payload for single-row mutations.
type MutationResult struct {
	TransactionID    uuid.UUID `json:"transaction_id"`
	SkuID            uuid.UUID `json:"sku_id"`
	Qty              int       `json:"qty"`
	NewBalance       int       `json:"new_balance"`
	AvailableBalance int       `json:"available_balance"`
}

// QuickInwardItem is one SKU/qty pair in a batch receipt.
type QuickInwardItem struct {
	SkuID uuid.UUID
	Qty   int
}

// QuickInwardInput holds the batch receipt payload.
type QuickInwardInput struct {
	Items  []QuickInwardItem
	Reason enums.TxnReason
	Notes  *string
}

// QuickInwardTxn reports one created row in a batch receipt.
type QuickInwardTxn struct {
	SkuID         uuid.UUID `json:"sku_id"`
	Qty           int       `json:"qty"`
	TransactionID uuid.UUID `json:"transaction_id"`
}

// QuickInwardResult is the batch receipt success payload.
type QuickInwardResult struct {
	Transactions []QuickInwardTxn `json:"transactions"`
	TotalQty     int              `json:"total_qty"`
}

// InstantInwardResult reports a scan-first receipt into a known batch.
type InstantInwardResult struct {
	TransactionID uuid.UUID  `json:"transaction_id"`
	SkuID         uuid.UUID  `json:"sku_id"`
	SkuCode       string     `json:"sku_code"`
	Qty           int        `json:"qty"`
	NewBalance    int        `json:"new_balance"`
	BatchID       *uuid.UUID `json:"batch_id,omitempty"`
}

// ScanResult carries enough variant display data for immediate UI feedback
// after a barcode scan.
type ScanResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	SkuID         uuid.UUID `json:"sku_id"`
	SkuCode       string    `json:"sku_code"`
	ProductName   string    `json:"product_name"`
	ColorName     string    `json:"color_name"`
	Size          string    `json:"size"`
	Qty           int       `json:"qty"`
	NewBalance    int       `json:"new_balance"`
}

// EditInwardInput holds the optional fields an inward edit may change.
type EditInwardInput struct {
	Qty   *int
	Notes *string
}

// EditResult reports whether an edit changed anything.
type EditResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Updated       bool      `json:"updated"`
}

// DeleteResult reports a removed ledger row and the resulting balance.
type DeleteResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Deleted       bool      `json:"deleted"`
	NewBalance    int       `json:"new_balance"`
	Message       string    `json:"message,omitempty"`
}

// UndoInwardResult reports a time-boxed undo selected by SKU.
type UndoInwardResult struct {
	TransactionID   uuid.UUID `json:"transaction_id"`
	SkuID           uuid.UUID `json:"sku_id"`
	Qty             int       `json:"qty"`
	NewBalance      int       `json:"new_balance"`
	RevertedToQueue bool      `json:"reverted_to_queue"`
}

// UndoResult reports a time-boxed undo selected by transaction id.
type UndoResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	SkuID         uuid.UUID `json:"sku_id"`
	Qty           int       `json:"qty"`
	NewBalance    int       `json:"new_balance"`
}

// AdjustInput holds a signed stock correction.
type AdjustInput struct {
	SkuID            uuid.UUID
	AdjustedQuantity int
	Reason           enums.TxnReason
	Notes            *string
}

// AdjustResult reports the direction and effect of an adjustment.
type AdjustResult struct {
	TransactionID  uuid.UUID `json:"transaction_id"`
	SkuID          uuid.UUID `json:"sku_id"`
	AdjustmentType string    `json:"adjustment_type"`
	Qty            int       `json:"qty"`
	NewBalance     int       `json:"new_balance"`
}

// RTOReceiptResult reports an RTO order line received into stock.
type RTOReceiptResult struct {
	LineID        uuid.UUID          `json:"line_id"`
	TransactionID uuid.UUID          `json:"transaction_id"`
	SkuID         uuid.UUID          `json:"sku_id"`
	Qty           int                `json:"qty"`
	Condition     enums.RTOCondition `json:"condition"`
	NewBalance    int                `json:"new_balance"`
}

// SkuDTO is the variant lookup payload scanners resolve barcodes against.
type SkuDTO struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	StyleName     string    `json:"style_name"`
	Size          string    `json:"size"`
	Color         string    `json:"color"`
	IsActive      bool      `json:"is_active"`
	WriteOffCount int       `json:"write_off_count"`
}

// TransactionDTO is the read-model projection of one ledger row.
type TransactionDTO struct {
	ID                uuid.UUID       `json:"id"`
	SkuID             uuid.UUID       `json:"sku_id"`
	TxnType           enums.TxnType   `json:"txn_type"`
	Qty               int             `json:"qty"`
	Reason            enums.TxnReason `json:"reason"`
	ReferenceID       *uuid.UUID      `json:"reference_id,omitempty"`
	Notes             *string         `json:"notes,omitempty"`
	WarehouseLocation *string         `json:"warehouse_location,omitempty"`
	CreatedByID       uuid.UUID       `json:"created_by_id"`
	CreatedAt         string          `json:"created_at"`
}
