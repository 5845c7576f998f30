package allocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadline/warehouse-backend/internal/inventory"
	"github.com/threadline/warehouse-backend/pkg/db/models"
	"github.com/threadline/warehouse-backend/pkg/enums"
	pkgerrors "github.com/threadline/warehouse-backend/pkg/errors"
	"github.com/threadline/warehouse-backend/pkg/types"
)

// Allocate moves an inward row to a new source of truth. Every transition
// runs as: load the row, reverse the side effects of its current
// attribution, apply the new target's side effects, then persist the new
// reason and reference, all inside one transaction.
func (s *service) Allocate(ctx context.Context, actor types.Actor, input Input) (res *Result, err error) {
	start := s.now()
	defer func() { s.finish("allocate", start, err) }()

	if !input.Type.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeBadRequest, "invalid allocation type %q", input.Type)
	}

	var (
		skuID uuid.UUID
		units int
	)
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		ledger := s.ledger.WithTx(tx)

		txn, terr := ledger.FindTransactionByID(ctx, input.TransactionID)
		if terr != nil {
			return notFoundOr(terr, "transaction not found")
		}
		if txn.TxnType != enums.TxnTypeInward {
			return pkgerrors.New(pkgerrors.CodeBadRequest, "only inward transactions can be allocated")
		}
		skuID = txn.SkuID
		units = txn.Quantity

		if rerr := s.reversePrevious(ctx, ledger, txn); rerr != nil {
			return rerr
		}

		var aerr error
		switch input.Type {
		case enums.AllocationProduction:
			res, aerr = s.applyProduction(ctx, ledger, txn, input)
		case enums.AllocationRTO:
			res, aerr = s.applyRTO(ctx, ledger, actor, txn, input)
		case enums.AllocationAdjustment:
			res, aerr = s.applyAdjustment(ctx, ledger, txn)
		}
		if aerr != nil {
			return aerr
		}

		bal, berr := ledger.ComputeBalance(ctx, skuID)
		if berr != nil {
			return berr
		}
		res.NewBalance = bal.CurrentBalance
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddAllocated(input.Type.String(), units)
	bal := inventory.Balance{CurrentBalance: res.NewBalance, AvailableBalance: res.NewBalance}
	s.afterCommit(ctx, skuID, bal)
	return res, nil
}

// reversePrevious undoes whatever the row's current reason+reference did to
// downstream aggregates before the new attribution is applied.
func (s *service) reversePrevious(ctx context.Context, ledger *inventory.Repository, txn *models.InventoryTransaction) error {
	if txn.ReferenceID == nil {
		return nil
	}
	switch txn.Reason {
	case enums.ReasonProduction:
		batch, err := ledger.FindBatchByID(ctx, *txn.ReferenceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		batch.ReverseCompletion(txn.Quantity)
		return ledger.SaveBatch(ctx, batch)
	case enums.ReasonRTOReceived:
		line, err := ledger.FindOrderLineByID(ctx, *txn.ReferenceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		line.ClearRTO()
		return ledger.SaveOrderLine(ctx, line)
	}
	return nil
}

func (s *service) applyProduction(ctx context.Context, ledger *inventory.Repository, txn *models.InventoryTransaction, input Input) (*Result, error) {
	if input.AllocationID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "allocation id is required for production allocation")
	}
	batch, err := ledger.FindBatchByID(ctx, *input.AllocationID)
	if err != nil {
		return nil, notFoundOr(err, "production batch not found")
	}
	if batch.SkuID != txn.SkuID {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "production batch does not belong to this sku")
	}

	batch.ApplyCompletion(txn.Quantity, s.now())
	if err := ledger.SaveBatch(ctx, batch); err != nil {
		return nil, err
	}

	txn.Reason = enums.ReasonProduction
	txn.ReferenceID = &batch.ID
	if err := ledger.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return &Result{
		TransactionID: txn.ID,
		Type:          enums.AllocationProduction,
		ReferenceID:   &batch.ID,
	}, nil
}

// applyRTO matches the row to a returned order line. Sellable conditions
// keep the row and link it; damaged or wrong_product removes the row from
// the ledger entirely and logs a write-off instead.
func (s *service) applyRTO(ctx context.Context, ledger *inventory.Repository, actor types.Actor, txn *models.InventoryTransaction, input Input) (*Result, error) {
	if input.AllocationID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "allocation id is required for rto allocation")
	}
	line, err := ledger.FindOrderLineByID(ctx, *input.AllocationID)
	if err != nil {
		return nil, notFoundOr(err, "order line not found")
	}
	if line.SkuID != txn.SkuID {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "order line does not belong to this sku")
	}
	if line.RTOCondition != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order line has already been processed")
	}

	condition := enums.RTOConditionGood
	if input.RTOCondition != nil {
		condition = *input.RTOCondition
	}
	if !condition.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeBadRequest, "invalid rto condition %q", condition)
	}

	order, err := ledger.FindOrderByID(ctx, line.OrderID)
	if err != nil {
		return nil, notFoundOr(err, "order not found")
	}

	now := s.now()
	line.MarkRTOProcessed(condition, actor.UserID, now)

	cond := condition
	result := &Result{
		TransactionID: txn.ID,
		Type:          enums.AllocationRTO,
		ReferenceID:   &line.ID,
		Condition:     &cond,
	}

	if condition.Sellable() {
		note := fmt.Sprintf("returned from order %s", order.OrderNumber)
		txn.Reason = enums.ReasonRTOReceived
		txn.ReferenceID = &line.ID
		txn.Notes = &note
		if err := ledger.SaveTransaction(ctx, txn); err != nil {
			return nil, err
		}
		line.RTOReceiptTxnID = &txn.ID
	} else {
		// The unit never re-enters stock: drop the inward row and record
		// the loss against the SKU.
		if err := ledger.DeleteTransaction(ctx, txn.ID); err != nil {
			return nil, err
		}
		writeOff := &models.WriteOffLog{
			ID:          uuid.New(),
			SkuID:       txn.SkuID,
			Quantity:    txn.Quantity,
			Reason:      condition.String(),
			SourceType:  "order_line",
			SourceID:    &line.ID,
			Notes:       line.RTONotes,
			CreatedByID: actor.UserID,
		}
		if err := ledger.CreateWriteOff(ctx, writeOff); err != nil {
			return nil, err
		}
		if err := ledger.IncrementWriteOffCount(ctx, txn.SkuID, txn.Quantity); err != nil {
			return nil, err
		}
		result.ReferenceID = nil
		result.WrittenOff = true
	}

	if err := ledger.SaveOrderLine(ctx, line); err != nil {
		return nil, err
	}

	return result, s.stampOrderReceipt(ctx, ledger, line.OrderID, now)
}

// stampOrderReceipt marks the whole order as received once every line has
// been resolved.
func (s *service) stampOrderReceipt(ctx context.Context, ledger *inventory.Repository, orderID uuid.UUID, at time.Time) error {
	lines, err := ledger.ListOrderLines(ctx, orderID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if line.RTOCondition == nil {
			return nil
		}
	}
	for i := range lines {
		if lines[i].RTOReceivedAt != nil {
			continue
		}
		received := at
		lines[i].RTOReceivedAt = &received
		if err := ledger.SaveOrderLine(ctx, &lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) applyAdjustment(ctx context.Context, ledger *inventory.Repository, txn *models.InventoryTransaction) (*Result, error) {
	txn.Reason = enums.ReasonAdjustment
	txn.ReferenceID = nil
	if err := ledger.SaveTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return &Result{
		TransactionID: txn.ID,
		Type:          enums.AllocationAdjustment,
	}, nil
}
