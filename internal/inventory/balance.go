package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/pkg/enums"
)

// Balance is the derived stock position for one SKU. Nothing here is stored;
// it is recomputed from the transaction log on every call.
type Balance struct {
	CurrentBalance   int `json:"current_balance"`
	AvailableBalance int `json:"available_balance"`
	TotalInward      int `json:"total_inward"`
	TotalOutward     int `json:"total_outward"`
}

// ComputeBalance aggregates the SKU's ledger rows into a balance. Safe to call
// inside or outside a write transaction.
func (r *Repository) ComputeBalance(ctx context.Context, skuID uuid.UUID) (Balance, error) {
	type row struct {
		TxnType enums.TxnType
		Total   int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("inventory_transactions").
		Select("txn_type, COALESCE(SUM(quantity), 0) AS total").
		Where("sku_id = ?", skuID).
		Group("txn_type").
		Scan(&rows).Error
	if err != nil {
		return Balance{}, err
	}

	var bal Balance
	for _, r := range rows {
		switch r.TxnType {
		case enums.TxnTypeInward:
			bal.TotalInward = r.Total
		case enums.TxnTypeOutward:
			bal.TotalOutward = r.Total
		}
	}
	bal.CurrentBalance = bal.TotalInward - bal.TotalOutward
	// No separate reservation pool in this subsystem.
	bal.AvailableBalance = bal.CurrentBalance
	return bal, nil
}
