package enums

import "fmt"

// TxnType is the direction of an inventory transaction.
type TxnType string

const (
	TxnTypeInward  TxnType = "inward"
	TxnTypeOutward TxnType = "outward"
)

func (t TxnType) IsValid() bool {
	switch t {
	case TxnTypeInward, TxnTypeOutward:
		return true
	}
	return false
}

func (t TxnType) String() string { return string(t) }

func ParseTxnType(raw string) (TxnType, error) {
	t := TxnType(raw)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid transaction type %q", raw)
	}
	return t, nil
}

// TxnReason categorizes why stock moved.
type TxnReason string

const (
	ReasonReceived        TxnReason = "received"
	ReasonProduction      TxnReason = "production"
	ReasonRTOReceived     TxnReason = "rto_received"
	ReasonAdjustment      TxnReason = "adjustment"
	ReasonOrderAllocation TxnReason = "order_allocation"
	ReasonReturnReceipt   TxnReason = "return_receipt"
	ReasonDamage          TxnReason = "damage"
)

// IsValid reports whether the reason is one of the distinguished values that
// drive allocation semantics. The ledger itself accepts free-form reasons,
// historical tags included.
func (r TxnReason) IsValid() bool {
	switch r {
	case ReasonReceived, ReasonProduction, ReasonRTOReceived, ReasonAdjustment,
		ReasonOrderAllocation, ReasonReturnReceipt, ReasonDamage:
		return true
	}
	return false
}

func (r TxnReason) String() string { return string(r) }

// CompletionLinked reports whether an inward row with this reason feeds a
// completion counter on its referenced entity.
func (r TxnReason) CompletionLinked() bool {
	return r == ReasonProduction || r == ReasonRTOReceived
}

func ParseTxnReason(raw string) (TxnReason, error) {
	r := TxnReason(raw)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid transaction reason %q", raw)
	}
	return r, nil
}

// RTOCondition is the assessed condition of a returned unit.
type RTOCondition string

const (
	RTOConditionGood         RTOCondition = "good"
	RTOConditionUnopened     RTOCondition = "unopened"
	RTOConditionDamaged      RTOCondition = "damaged"
	RTOConditionWrongProduct RTOCondition = "wrong_product"
)

func (c RTOCondition) IsValid() bool {
	switch c {
	case RTOConditionGood, RTOConditionUnopened, RTOConditionDamaged, RTOConditionWrongProduct:
		return true
	}
	return false
}

// Sellable reports whether a unit returned in this condition can re-enter stock.
func (c RTOCondition) Sellable() bool {
	return c == RTOConditionGood || c == RTOConditionUnopened
}

func (c RTOCondition) String() string { return string(c) }

func ParseRTOCondition(raw string) (RTOCondition, error) {
	c := RTOCondition(raw)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid rto condition %q", raw)
	}
	return c, nil
}

// BatchStatus is the lifecycle state of a production batch.
type BatchStatus string

const (
	BatchStatusPlanned    BatchStatus = "planned"
	BatchStatusInProgress BatchStatus = "in_progress"
	BatchStatusCompleted  BatchStatus = "completed"
)

func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusPlanned, BatchStatusInProgress, BatchStatusCompleted:
		return true
	}
	return false
}

func (s BatchStatus) String() string { return string(s) }

// TrackingStatus is the courier-facing state of an order.
type TrackingStatus string

const (
	TrackingPending      TrackingStatus = "pending"
	TrackingShipped      TrackingStatus = "shipped"
	TrackingDelivered    TrackingStatus = "delivered"
	TrackingRTOInTransit TrackingStatus = "rto_in_transit"
	TrackingRTODelivered TrackingStatus = "rto_delivered"
)

func (s TrackingStatus) IsValid() bool {
	switch s {
	case TrackingPending, TrackingShipped, TrackingDelivered, TrackingRTOInTransit, TrackingRTODelivered:
		return true
	}
	return false
}

func (s TrackingStatus) String() string { return string(s) }

// RTOEligible reports whether an order in this state can receive returned stock.
func (s TrackingStatus) RTOEligible() bool {
	return s == TrackingRTOInTransit || s == TrackingRTODelivered
}

// RepackStatus is the state of a repack queue item.
type RepackStatus string

const (
	RepackStatusPending RepackStatus = "pending"
	RepackStatusReady   RepackStatus = "ready"
)

func (s RepackStatus) IsValid() bool {
	return s == RepackStatusPending || s == RepackStatusReady
}

func (s RepackStatus) String() string { return string(s) }

// AllocationType selects the target aggregate when linking a transaction to
// its source.
type AllocationType string

const (
	AllocationProduction AllocationType = "production"
	AllocationRTO        AllocationType = "rto"
	AllocationAdjustment AllocationType = "adjustment"
)

func (a AllocationType) IsValid() bool {
	switch a {
	case AllocationProduction, AllocationRTO, AllocationAdjustment:
		return true
	}
	return false
}

func (a AllocationType) String() string { return string(a) }

func ParseAllocationType(raw string) (AllocationType, error) {
	a := AllocationType(raw)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid allocation type %q", raw)
	}
	return a, nil
}

// UserRole gates mutation access on the ledger.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleStaff   UserRole = "staff"
	RoleScanner UserRole = "scanner"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleScanner:
		return true
	}
	return false
}

func (r UserRole) String() string { return string(r) }

func ParseUserRole(raw string) (UserRole, error) {
	r := UserRole(raw)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid user role %q", raw)
	}
	return r, nil
}
