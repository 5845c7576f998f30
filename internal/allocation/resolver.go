package allocation

import (
	"context"

	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/pkg/enums"
	pkgerrors "github.com/threadline/warehouse-backend/pkg/errors"
)

// GetTransactionMatches returns everything the floor UI needs to attribute
// one inward row: its current allocation state plus up to five open
// production batches and five unresolved returned lines for the same SKU.
func (s *service) GetTransactionMatches(ctx context.Context, transactionID uuid.UUID) (*Matches, error) {
	txn, err := s.ledger.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, notFoundOr(err, "transaction not found")
	}
	if txn.TxnType != enums.TxnTypeInward {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "only inward transactions can be allocated")
	}

	sku, err := s.ledger.FindSkuByID(ctx, txn.SkuID)
	if err != nil {
		return nil, notFoundOr(err, "sku not found")
	}

	batches, err := s.repo.FindCandidateBatches(ctx, txn.SkuID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.FindCandidateRTOLines(ctx, txn.SkuID)
	if err != nil {
		return nil, err
	}

	out := &Matches{
		TransactionID: txn.ID,
		SkuID:         txn.SkuID,
		SkuCode:       sku.Code,
		Qty:           txn.Quantity,
		// A plain receipt carries no provenance yet; anything else is
		// already attributed.
		IsAllocated: txn.Reason != enums.ReasonReceived,
		CurrentAllocation: CurrentAllocation{
			Reason:      txn.Reason,
			ReferenceID: txn.ReferenceID,
		},
		BatchMatches: make([]BatchMatch, 0, len(batches)),
		RTOMatches:   make([]RTOMatch, 0, len(lines)),
	}

	for _, batch := range batches {
		out.BatchMatches = append(out.BatchMatches, BatchMatch{
			BatchID:    batch.ID,
			QtyPlanned: batch.QtyPlanned,
			QtyPending: batch.QtyPending(),
			BatchDate:  batch.BatchDate,
			Status:     batch.Status.String(),
		})
	}
	for _, line := range lines {
		out.RTOMatches = append(out.RTOMatches, RTOMatch{
			OrderLineID:    line.ID,
			OrderID:        line.OrderID,
			OrderNumber:    line.OrderNumber,
			Qty:            line.Quantity,
			TrackingStatus: line.TrackingStatus.String(),
			AtWarehouse:    line.TrackingStatus == enums.TrackingRTODelivered,
		})
	}
	return out, nil
}
