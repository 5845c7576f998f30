package allocation

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/pkg/enums"
)

// Input holds the validated payload for an allocation transition.
type Input struct {
	TransactionID uuid.UUID
	Type          enums.AllocationType
	AllocationID  *uuid.UUID
	RTOCondition  *enums.RTOCondition
}

// Result reports the allocation state the transaction ended up in. WrittenOff
// means the ledger row was removed and the unit logged as unsellable.
type Result struct {
	TransactionID uuid.UUID            `json:"transaction_id"`
	Type          enums.AllocationType `json:"type"`
	ReferenceID   *uuid.UUID           `json:"reference_id,omitempty"`
	Condition     *enums.RTOCondition  `json:"condition,omitempty"`
	WrittenOff    bool                 `json:"written_off"`
	NewBalance    int                  `json:"new_balance"`
}

// CurrentAllocation describes how the transaction is attributed right now.
type CurrentAllocation struct {
	Reason      enums.TxnReason `json:"reason"`
	ReferenceID *uuid.UUID      `json:"reference_id,omitempty"`
}

// BatchMatch is one open production batch the row could be counted against.
type BatchMatch struct {
	BatchID    uuid.UUID `json:"batch_id"`
	QtyPlanned int       `json:"qty_planned"`
	QtyPending int       `json:"qty_pending"`
	BatchDate  time.Time `json:"batch_date"`
	Status     string    `json:"status"`
}

// RTOMatch is one unresolved returned order line the row could be matched to.
type RTOMatch struct {
	OrderLineID    uuid.UUID `json:"order_line_id"`
	OrderID        uuid.UUID `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	Qty            int       `json:"qty"`
	TrackingStatus string    `json:"tracking_status"`
	AtWarehouse    bool      `json:"at_warehouse"`
}

// Matches is the resolver payload for one transaction.
type Matches struct {
	TransactionID     uuid.UUID         `json:"transaction_id"`
	SkuID             uuid.UUID         `json:"sku_id"`
	SkuCode           string            `json:"sku_code"`
	Qty               int               `json:"qty"`
	IsAllocated       bool              `json:"is_allocated"`
	CurrentAllocation CurrentAllocation `json:"current_allocation"`
	BatchMatches      []BatchMatch      `json:"batch_matches"`
	RTOMatches        []RTOMatch        `json:"rto_matches"`
}
