package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/threadline/warehouse-backend/internal/events"
	"github.com/threadline/warehouse-backend/internal/stockcache"
	"github.com/threadline/warehouse-backend/pkg/db"
	"github.com/threadline/warehouse-backend/pkg/db/models"
	"github.com/threadline/warehouse-backend/pkg/enums"
	pkgerrors "github.com/threadline/warehouse-backend/pkg/errors"
	"github.com/threadline/warehouse-backend/pkg/logger"
	"github.com/threadline/warehouse-backend/pkg/metrics"
	"github.com/threadline/warehouse-backend/pkg/types"
)

// Service exposes the ledger mutation operations. Every mutation runs as one
// atomic unit followed by best-effort cache invalidation and event broadcast.
type Service interface {
	Inward(ctx context.Context, actor types.Actor, input InwardInput) (*MutationResult, error)
	Outward(ctx context.Context, actor types.Actor, input InwardInput) (*MutationResult, error)
	QuickInward(ctx context.Context, actor types.Actor, input QuickInwardInput) (*QuickInwardResult, error)
	InstantInward(ctx context.Context, actor types.Actor, skuID uuid.UUID, qty int, batchID *uuid.UUID) (*InstantInwardResult, error)
	InstantInwardBySkuCode(ctx context.Context, actor types.Actor, skuCode string) (*ScanResult, error)
	QuickInwardBySkuCode(ctx context.Context, actor types.Actor, skuCode string, qty int, reason enums.TxnReason, notes *string) (*ScanResult, error)
	EditInward(ctx context.Context, actor types.Actor, transactionID uuid.UUID, input EditInwardInput) (*EditResult, error)
	DeleteInward(ctx context.Context, actor types.Actor, transactionID uuid.UUID, force bool) (*DeleteResult, error)
	DeleteTransaction(ctx context.Context, actor types.Actor, transactionID uuid.UUID, force bool) (*DeleteResult, error)
	UndoInward(ctx context.Context, actor types.Actor, skuID uuid.UUID) (*UndoInwardResult, error)
	UndoTransaction(ctx context.Context, actor types.Actor, transactionID uuid.UUID) (*UndoResult, error)
	Adjust(ctx context.Context, actor types.Actor, input AdjustInput) (*AdjustResult, error)
	AllocateTransaction(ctx context.Context, actor types.Actor, skuID uuid.UUID, qty int, reason *enums.TxnReason) (*MutationResult, error)
	RTOInwardLine(ctx context.Context, actor types.Actor, lineID uuid.UUID, condition enums.RTOCondition, notes *string) (*RTOReceiptResult, error)

	GetBalance(ctx context.Context, skuID uuid.UUID) (*Balance, error)
	GetSkuByCode(ctx context.Context, code string) (*SkuDTO, error)
	ListTransactions(ctx context.Context, skuID uuid.UUID, limit int) ([]TransactionDTO, error)
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	cache       stockcache.Invalidator
	broadcaster events.Broadcaster
	ledger      *metrics.LedgerMetrics
	logg        *logger.Logger
	undoWindow  time.Duration
	now         func() time.Time
}

// NewService constructs the ledger mutation service.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	cache stockcache.Invalidator,
	broadcaster events.Broadcaster,
	ledger *metrics.LedgerMetrics,
	logg *logger.Logger,
	undoWindow time.Duration,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if cache == nil {
		cache = stockcache.NewNoopInvalidator()
	}
	if broadcaster == nil {
		broadcaster = events.NewNoopBroadcaster()
	}
	if undoWindow <= 0 {
		undoWindow = 24 * time.Hour
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		cache:       cache,
		broadcaster: broadcaster,
		ledger:      ledger,
		logg:        logg,
		undoWindow:  undoWindow,
		now:         time.Now,
	}, nil
}

// afterCommit runs the best-effort side effects. Failures are logged by the
// collaborators themselves and never surface to the caller.
func (s *service) afterCommit(ctx context.Context, skuID uuid.UUID, bal Balance) {
	s.cache.Invalidate(ctx, skuID.String())
	s.broadcaster.BroadcastBalanceUpdate(ctx, skuID.String(), events.BalanceChanges{
		CurrentBalance:   bal.CurrentBalance,
		AvailableBalance: bal.AvailableBalance,
	})
}

func (s *service) finish(op string, start time.Time, err error) {
	if s.ledger == nil {
		return
	}
	s.ledger.ObserveDuration(op, time.Since(start))
	if err != nil {
		code := string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			code = string(typed.Code())
		}
		s.ledger.IncFailure(op, code)
		return
	}
	s.ledger.IncSuccess(op)
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return err
}

func (s *service) loadActiveSku(ctx context.Context, repo *Repository, skuID uuid.UUID) (*models.Sku, error) {
	sku, err := repo.FindSkuByID(ctx, skuID)
	if err != nil {
		return nil, notFoundOr(err, "sku not found")
	}
	if !sku.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "sku is inactive")
	}
	return sku, nil
}

func (s *service) loadActiveSkuByCode(ctx context.Context, repo *Repository, code string) (*models.Sku, error) {
	sku, err := repo.FindSkuByCode(ctx, code)
	if err != nil {
		return nil, notFoundOr(err, "sku not found")
	}
	if !sku.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "sku is inactive")
	}
	return sku, nil
}

// guardOutward enforces the insufficient-stock rules shared by every
// outward-creating operation. It must run inside the same transaction as the
// row insert so the read-then-write race stays closed.
func guardOutward(bal Balance, qty int) error {
	if bal.CurrentBalance < 0 {
		return pkgerrors.New(pkgerrors.CodeBadRequest, "stock balance is negative; reconcile the ledger before recording outward movement")
	}
	if qty > bal.AvailableBalance {
		return pkgerrors.Newf(pkgerrors.CodeBadRequest, "insufficient stock: requested %d, available %d", qty, bal.AvailableBalance)
	}
	return nil
}

func (s *service) Inward(ctx context.Context, actor types.Actor, input InwardInput) (res *MutationResult, err error) {
	start := s.now()
	defer func() { s.finish("inward", start, err) }()

	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "qty must be positive")
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, lerr := s.loadActiveSku(ctx, repo, input.SkuID); lerr != nil {
			return lerr
		}

		notes := input.Notes
		if input.Reason == enums.ReasonAdjustment {
			justification := ""
			if input.AdjustmentReason != nil {
				justification = *input.AdjustmentReason
			}
			notes = appendAuditHeader(notes, actor, s.now(), justification)
		}

		txn := &models.InventoryTransaction{
			ID:                uuid.New(),
			SkuID:             input.SkuID,
			TxnType:           enums.TxnTypeInward,
			Quantity:          input.Qty,
			Reason:            input.Reason,
			ReferenceID:       input.ReferenceID,
			Notes:             notes,
			WarehouseLocation: input.WarehouseLocation,
			CreatedByID:       actor.UserID,
		}
		if cerr := repo.CreateTransaction(ctx, txn); cerr != nil {
			return cerr
		}

		bal, berr := repo.ComputeBalance(ctx, input.SkuID)
		if berr != nil {
			return berr
		}
		res = &MutationResult{
			TransactionID:    txn.ID,
			SkuID:            input.SkuID,
			Qty:              input.Qty,
			NewBalance:       bal.CurrentBalance,
			AvailableBalance: bal.AvailableBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, input.SkuID, Balance{CurrentBalance: res.NewBalance, AvailableBalance: res.AvailableBalance})
	return res, nil
}

func (s *service) Outward(ctx context.Context, actor types.Actor, input InwardInput) (res *MutationResult, err error) {
	start := s.now()
	defer func() { s.finish("outward", start, err) }()

	res, err = s.createOutward(ctx, actor, input)
	return res, err
}

// createOutward holds the outward write path shared with AllocateTransaction.
func (s *service) createOutward(ctx context.Context, actor types.Actor, input InwardInput) (*MutationResult, error) {
	if input.Qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "qty must be positive")
	}

	var res *MutationResult
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, lerr := s.loadActiveSku(ctx, repo, input.SkuID); lerr != nil {
			return lerr
		}

		bal, berr := repo.ComputeBalance(ctx, input.SkuID)
		if berr != nil {
			return berr
		}
		if gerr := guardOutward(bal, input.Qty); gerr != nil {
			return gerr
		}

		notes := input.Notes
		if input.Reason == enums.ReasonAdjustment || input.Reason == enums.ReasonDamage {
			justification := ""
			if input.AdjustmentReason != nil {
				justification = *input.AdjustmentReason
			}
			notes = appendAuditHeader(notes, actor, s.now(), justification)
		}

		txn := &models.InventoryTransaction{
			ID:                uuid.New(),
			SkuID:             input.SkuID,
			TxnType:           enums.TxnTypeOutward,
			Quantity:          input.Qty,
			Reason:            input.Reason,
			ReferenceID:       input.ReferenceID,
			Notes:             notes,
			WarehouseLocation: input.WarehouseLocation,
			CreatedByID:       actor.UserID,
		}
		if cerr := repo.CreateTransaction(ctx, txn); cerr != nil {
			return cerr
		}

		after, aerr := repo.ComputeBalance(ctx, input.SkuID)
		if aerr != nil {
			return aerr
		}
		res = &MutationResult{
			TransactionID:    txn.ID,
			SkuID:            input.SkuID,
			Qty:              input.Qty,
			NewBalance:       after.CurrentBalance,
			AvailableBalance: after.AvailableBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, input.SkuID, Balance{CurrentBalance: res.NewBalance, AvailableBalance: res.AvailableBalance})
	return res, nil
}

func (s *service) QuickInward(ctx context.Context, actor types.Actor, input QuickInwardInput) (res *QuickInwardResult, err error) {
	start := s.now()
	defer func() { s.finish("quick_inward", start, err) }()

	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "at least one item is required")
	}
	for _, item := range input.Items {
		if item.Qty <= 0 {
			return nil, pkgerrors.Newf(pkgerrors.CodeBadRequest, "qty must be positive for sku %s", item.SkuID)
		}
	}

	affected := make([]uuid.UUID, 0, len(input.Items))
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ids := make([]uuid.UUID, 0, len(input.Items))
		for _, item := range input.Items {
			ids = append(ids, item.SkuID)
		}
		found, ferr := repo.FindSkusByIDs(ctx, ids)
		if ferr != nil {
			return ferr
		}
		known := make(map[uuid.UUID]struct{}, len(found))
		for _, sku := range found {
			known[sku.ID] = struct{}{}
		}

		// All missing SKUs are reported together, not just the first.
		var missing error
		missingIDs := []string{}
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				missing = multierr.Append(missing, fmt.Errorf("sku %s not found", id))
				missingIDs = append(missingIDs, id.String())
			}
		}
		if missing != nil {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, missing, "one or more skus not found").
				WithDetails(map[string]any{"missing_sku_ids": missingIDs})
		}

		result := &QuickInwardResult{Transactions: make([]QuickInwardTxn, 0, len(input.Items))}
		for _, item := range input.Items {
			txn := &models.InventoryTransaction{
				ID:          uuid.New(),
				SkuID:       item.SkuID,
				TxnType:     enums.TxnTypeInward,
				Quantity:    item.Qty,
				Reason:      input.Reason,
				Notes:       input.Notes,
				CreatedByID: actor.UserID,
			}
			if cerr := repo.CreateTransaction(ctx, txn); cerr != nil {
				return cerr
			}
			result.Transactions = append(result.Transactions, QuickInwardTxn{
				SkuID:         item.SkuID,
				Qty:           item.Qty,
				TransactionID: txn.ID,
			})
			result.TotalQty += item.Qty
			affected = append(affected, item.SkuID)
		}
		res = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, skuID := range affected {
		bal, berr := s.repo.ComputeBalance(ctx, skuID)
		if berr != nil {
			continue
		}
		s.afterCommit(ctx, skuID, bal)
	}
	return res, nil
}

func (s *service) InstantInward(ctx context.Context, actor types.Actor, skuID uuid.UUID, qty int, batchID *uuid.UUID) (res *InstantInwardResult, err error) {
	start := s.now()
	defer func() { s.finish("instant_inward", start, err) }()

	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "qty must be positive")
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sku, lerr := s.loadActiveSku(ctx, repo, skuID)
		if lerr != nil {
			return lerr
		}

		if batchID != nil {
			batch, berr := repo.FindBatchByID(ctx, *batchID)
			if berr != nil {
				return notFoundOr(berr, "production batch not found")
			}
			if batch.SkuID != skuID {
				return pkgerrors.New(pkgerrors.CodeBadRequest, "production batch does not belong to this sku")
			}
			batch.ApplyCompletion(qty, s.now())
			if serr := repo.SaveBatch(ctx, batch); serr != nil {
				return serr
			}
		}

		txn := &models.InventoryTransaction{
			ID:          uuid.New(),
			SkuID:       skuID,
			TxnType:     enums.TxnTypeInward,
			Quantity:    qty,
			Reason:      enums.ReasonProduction,
			ReferenceID: batchID,
			CreatedByID: actor.UserID,
		}
		if cerr := repo.CreateTransaction(ctx, txn); cerr != nil {
			return cerr
		}

		bal, berr := repo.ComputeBalance(ctx, skuID)
		if berr != nil {
			return berr
		}
		res = &InstantInwardResult{
			TransactionID: txn.ID,
			SkuID:         skuID,
			SkuCode:       sku.Code,
			Qty:           qty,
			NewBalance:    bal.CurrentBalance,
			BatchID:       batchID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, skuID, Balance{CurrentBalance: res.NewBalance, AvailableBalance: res.NewBalance})
	return res, nil
}

// InstantInwardBySkuCode is the rapid scanning entry point: one lookup, one
// insert, one balance recompute. The row is deliberately left unallocated
// (reason "received") so provenance can be assigned later.
func (s *service) InstantInwardBySkuCode(ctx context.Context, actor types.Actor, skuCode string) (res *ScanResult, err error) {
	start := s.now()
	defer func() { s.finish("instant_inward_by_sku_code", start, err) }()

	res, err = s.scanInward(ctx, actor, skuCode, 1, enums.ReasonReceived, nil)
	return res, err
}

func (s *service) QuickInwardBySkuCode(ctx context.Context, actor types.Actor, skuCode string, qty int, reason enums.TxnReason, notes *string) (res *ScanResult, err error) {
	start := s.now()
	defer func() { s.finish("quick_inward_by_sku_code", start, err) }()

	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "qty must be positive")
	}
	res, err = s.scanInward(ctx, actor, skuCode, qty, reason, notes)
	return res, err
}

// scanInward is the shared lookup-by-code insert path for the scanning
// entry points.
func (s *service) scanInward(ctx context.Context, actor types.Actor, skuCode string, qty int, reason enums.TxnReason, notes *string) (*ScanResult, error) {
	var res *ScanResult
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sku, lerr := s.loadActiveSkuByCode(ctx, repo, skuCode)
		if lerr != nil {
			return lerr
		}

		stored := notes
		if reason == enums.ReasonAdjustment {
			stored = appendAuditHeader(notes, actor, s.now(), "")
		}

		txn := &models.InventoryTransaction{
			ID:          uuid.New(),
			SkuID:       sku.ID,
			TxnType:     enums.TxnTypeInward,
			Quantity:    qty,
			Reason:      reason,
			Notes:       stored,
			CreatedByID: actor.UserID,
		}
		if cerr := repo.CreateTransaction(ctx, txn); cerr != nil {
			return cerr
		}

		bal, berr := repo.ComputeBalance(ctx, sku.ID)
		if berr != nil {
			return berr
		}
		res = &ScanResult{
			TransactionID: txn.ID,
			SkuID:         sku.ID,
			SkuCode:       sku.Code,
			ProductName:   sku.StyleName,
			ColorName:     sku.Color,
			Size:          sku.Size,
			Qty:           qty,
			NewBalance:    bal.CurrentBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, res.SkuID, Balance{CurrentBalance: res.NewBalance, AvailableBalance: res.NewBalance})
	return res, nil
}

func (s *service) EditInward(ctx context.Context, actor types.Actor, transactionID uuid.UUID, input EditInwardInput) (res *EditResult, err error) {
	start := s.now()
	defer func() { s.finish("edit_inward", start, err) }()

	var (
		qtyChanged bool
		skuID      uuid.UUID
		bal        Balance
	)
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txn, terr := repo.FindTransactionByID(ctx, transactionID)
		if terr != nil {
			return notFoundOr(terr, "transaction not found")
		}
		if txn.TxnType != enums.TxnTypeInward {
			return pkgerrors.New(pkgerrors.CodeBadRequest, "only inward transactions can be edited")
		}

		updated := false
		if input.Qty != nil && *input.Qty != txn.Quantity {
			if *input.Qty <= 0 {
				return pkgerrors.New(pkgerrors.CodeBadRequest, "qty must be positive")
			}
			// Quantity edits are only allowed on bare rows; rows already
			// counted against a completion counter must be re-allocated
			// instead.
			if txn.Reason.CompletionLinked() && txn.ReferenceID != nil {
				return pkgerrors.New(pkgerrors.CodeBadRequest, "transaction is linked to a completion counter; quantity cannot be edited")
			}
			txn.Quantity = *input.Qty
			updated = true
			qtyChanged = true
		}
		if input.Notes != nil {
			txn.Notes = input.Notes
			updated = true
		}

		if updated {
			if serr := repo.SaveTransaction(ctx, txn); serr != nil {
				return serr
			}
		}
		skuID = txn.SkuID
		if qtyChanged {
			var berr error
			if bal, berr = repo.ComputeBalance(ctx, txn.SkuID); berr != nil {
				return berr
			}
		}
		res = &EditResult{TransactionID: transactionID, Updated: updated}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if qtyChanged {
		s.afterCommit(ctx, skuID, bal)
	}
	return res, nil
}

func (s *service) DeleteInward(ctx context.Context, actor types.Actor, transactionID uuid.UUID, force bool) (res *DeleteResult, err error) {
	start := s.now()
	defer func() { s.finish("delete_inward", start, err) }()

	var skuID uuid.UUID
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txn, terr := repo.FindTransactionByID(ctx, transactionID)
		if terr != nil {
			return notFoundOr(terr, "transaction not found")
		}
		if txn.TxnType != enums.TxnTypeInward {
			return pkgerrors.New(pkgerrors.CodeBadRequest, "only inward transactions can be deleted with this operation")
		}

		if txn.Reason == enums.ReasonProduction && txn.ReferenceID != nil {
			batch, berr := repo.FindBatchByID(ctx, *txn.ReferenceID)
			if berr != nil && !errors.Is(berr, gorm.ErrRecordNotFound) {
				return berr
			}
			if berr == nil {
				if batch.Status == enums.BatchStatusCompleted && !force {
					return pkgerrors.New(pkgerrors.CodeBadRequest, "transaction belongs to a completed production batch; use force to delete")
				}
				batch.ReverseCompletion(txn.Quantity)
				if serr := repo.SaveBatch(ctx, batch); serr != nil {
					return serr
				}
			}
		}

		if derr := repo.DeleteTransaction(ctx, transactionID); derr != nil {
			return derr
		}
		skuID = txn.SkuID

		bal, berr := repo.ComputeBalance(ctx, txn.SkuID)
		if berr != nil {
			return berr
		}
		res = &DeleteResult{
			TransactionID: transactionID,
			Deleted:       true,
			NewBalance:    bal.CurrentBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, skuID, Balance{CurrentBalance: res.NewBalance, AvailableBalance: res.NewBalance})
	return res, nil
}

// DeleteTransaction is the privileged variant: it reverses downstream
// production counters and repack queue state before deleting the row.
func (s *service) DeleteTransaction(ctx context.Context, actor types.Actor, transactionID uuid.UUID, force bool) (res *DeleteResult, err error) {
	start := s.now()
	defer func() { s.finish("delete_transaction", start, err) }()

	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	var skuID uuid.UUID
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txn, terr := repo.FindTransactionByID(ctx, transactionID)
		if terr != nil {
			return notFoundOr(terr, "transaction not found")
		}

		reversal, rerr := s.reverseDownstream(ctx, repo, txn, force)
		if rerr != nil {
			return rerr
		}
		message := "transaction deleted"
		if reversal.summary != "" {
			message = "transaction deleted; " + reversal.summary
		}

		if derr := repo.DeleteTransaction(ctx, transactionID); derr != nil {
			return derr
		}
		skuID = txn.SkuID

		bal, berr := repo.ComputeBalance(ctx, txn.SkuID)
		if berr != nil {
			return berr
		}
		res = &DeleteResult{
			TransactionID: transactionID,
			Deleted:       true,
			NewBalance:    bal.CurrentBalance,
			Message:       message,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, skuID, Balance{CurrentBalance: res.NewBalance, AvailableBalance: res.NewBalance})
	return res, nil
}

type reversalOutcome struct {
	revertedToQueue bool
	summary         string
}

// reverseDownstream undoes the side effects keyed by the row's
// reason+referenceId before the row is removed from the log.
func (s *service) reverseDownstream(ctx context.Context, repo *Repository, txn *models.InventoryTransaction, force bool) (reversalOutcome, error) {
	var outcome reversalOutcome
	if txn.ReferenceID == nil {
		return outcome, nil
	}

	switch txn.Reason {
	case enums.ReasonProduction:
		batch, err := repo.FindBatchByID(ctx, *txn.ReferenceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return outcome, nil
			}
			return outcome, err
		}
		if batch.Status == enums.BatchStatusCompleted && !force {
			return outcome, pkgerrors.New(pkgerrors.CodeBadRequest, "transaction belongs to a completed production batch; use force to delete")
		}
		batch.ReverseCompletion(txn.Quantity)
		if err := repo.SaveBatch(ctx, batch); err != nil {
			return outcome, err
		}
		outcome.summary = "production batch counter reversed"

	case enums.ReasonRTOReceived:
		line, err := repo.FindOrderLineByID(ctx, *txn.ReferenceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return outcome, nil
			}
			return outcome, err
		}
		line.ClearRTO()
		if err := repo.SaveOrderLine(ctx, line); err != nil {
			return outcome, err
		}
		outcome.summary = "rto line returned to the unprocessed pool"

	case enums.ReasonReturnReceipt:
		item, err := repo.FindRepackItemByID(ctx, *txn.ReferenceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return outcome, nil
			}
			return outcome, err
		}
		if item.Status == enums.RepackStatusReady {
			item.RevertToPending()
			if err := repo.SaveRepackItem(ctx, item); err != nil {
				return outcome, err
			}
			outcome.revertedToQueue = true
			outcome.summary = "repack queue item reverted to pending"
		}
	}
	return outcome, nil
}

func (s *service) UndoInward(ctx context.Context, actor types.Actor, skuID uuid.UUID) (res *UndoInwardResult, err error) {
	start := s.now()
	defer func() { s.finish("undo_inward", start, err) }()

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txn, terr := repo.FindLatestInwardBySku(ctx, skuID)
		if terr != nil {
			return notFoundOr(terr, "no inward transaction found for sku")
		}
		if werr := s.checkUndoWindow(txn); werr != nil {
			return werr
		}

		reversal, rerr := s.reverseDownstream(ctx, repo, txn, true)
		if rerr != nil {
			return rerr
		}
		if derr := repo.DeleteTransaction(ctx, txn.ID); derr != nil {
			return derr
		}

		bal, berr := repo.ComputeBalance(ctx, skuID)
		if berr != nil {
			return berr
		}
		res = &UndoInwardResult{
			TransactionID:   txn.ID,
			SkuID:           skuID,
			Qty:             txn.Quantity,
			NewBalance:      bal.CurrentBalance,
			RevertedToQueue: reversal.revertedToQueue,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, skuID, Balance{CurrentBalance: res.NewBalance, AvailableBalance: res.NewBalance})
	return res, nil
}

func (s *service) UndoTransaction(ctx context.Context, actor types.Actor, transactionID uuid.UUID) (res *UndoResult, err error) {
	start := s.now()
	defer func() { s.finish("undo_transaction", start, err) }()

	var skuID uuid.UUID
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txn, terr := repo.FindTransactionByID(ctx, transactionID)
		if terr != nil {
			return notFoundOr(terr, "transaction not found")
		}
		if werr := s.checkUndoWindow(txn); werr != nil {
			return werr
		}

		if _, rerr := s.reverseDownstream(ctx, repo, txn, true); rerr != nil {
			return rerr
		}
		if derr := repo.DeleteTransaction(ctx, transactionID); derr != nil {
			return derr
		}
		skuID = txn.SkuID

		bal, berr := repo.ComputeBalance(ctx, txn.SkuID)
		if berr != nil {
			return berr
		}
		res = &UndoResult{
			TransactionID: transactionID,
			SkuID:         txn.SkuID,
			Qty:           txn.Quantity,
			NewBalance:    bal.CurrentBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, skuID, Balance{CurrentBalance: res.NewBalance, AvailableBalance: res.NewBalance})
	return res, nil
}

// checkUndoWindow enforces the 24-hour undo business rule.
func (s *service) checkUndoWindow(txn *models.InventoryTransaction) error {
	if s.now().Sub(txn.CreatedAt) > s.undoWindow {
		return pkgerrors.Newf(pkgerrors.CodeBadRequest, "transaction is older than %s and can no longer be undone", s.undoWindow)
	}
	return nil
}

func (s *service) Adjust(ctx context.Context, actor types.Actor, input AdjustInput) (res *AdjustResult, err error) {
	start := s.now()
	defer func() { s.finish("adjust", start, err) }()

	if input.AdjustedQuantity == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeBadRequest, "adjusted quantity must be non-zero")
	}

	qty := input.AdjustedQuantity
	txnType := enums.TxnTypeInward
	adjustmentType := "increase"
	if qty < 0 {
		qty = -qty
		txnType = enums.TxnTypeOutward
		adjustmentType = "decrease"
	}

	var skuID uuid.UUID
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, lerr := s.loadActiveSku(ctx, repo, input.SkuID); lerr != nil {
			return lerr
		}

		if txnType == enums.TxnTypeOutward {
			bal, berr := repo.ComputeBalance(ctx, input.SkuID)
			if berr != nil {
				return berr
			}
			if gerr := guardOutward(bal, qty); gerr != nil {
				return gerr
			}
		}

		justification := ""
		if input.Notes != nil {
			justification = *input.Notes
		}
		notes := appendAuditHeader(nil, actor, s.now(), justification)

		txn := &models.InventoryTransaction{
			ID:          uuid.New(),
			SkuID:       input.SkuID,
			TxnType:     txnType,
			Quantity:    qty,
			Reason:      input.Reason,
			Notes:       notes,
			CreatedByID: actor.UserID,
		}
		if cerr := repo.CreateTransaction(ctx, txn); cerr != nil {
			return cerr
		}
		skuID = input.SkuID

		bal, berr := repo.ComputeBalance(ctx, input.SkuID)
		if berr != nil {
			return berr
		}
		res = &AdjustResult{
			TransactionID:  txn.ID,
			SkuID:          input.SkuID,
			AdjustmentType: adjustmentType,
			Qty:            qty,
			NewBalance:     bal.CurrentBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, skuID, Balance{CurrentBalance: res.NewBalance, AvailableBalance: res.NewBalance})
	return res, nil
}

// AllocateTransaction is the manual-reservation variant: allocation is
// treated as consumption, so it always creates an outward row.
func (s *service) AllocateTransaction(ctx context.Context, actor types.Actor, skuID uuid.UUID, qty int, reason *enums.TxnReason) (res *MutationResult, err error) {
	start := s.now()
	defer func() { s.finish("allocate_transaction", start, err) }()

	allocationReason := enums.ReasonOrderAllocation
	if reason != nil && *reason != "" {
		allocationReason = *reason
	}

	res, err = s.createOutward(ctx, actor, InwardInput{SkuID: skuID, Qty: qty, Reason: allocationReason})
	return res, err
}

// RTOInwardLine receives a returned order line back into stock. Repeat calls
// for an already-received line return the original result instead of
// creating a duplicate inward row.
func (s *service) RTOInwardLine(ctx context.Context, actor types.Actor, lineID uuid.UUID, condition enums.RTOCondition, notes *string) (res *RTOReceiptResult, err error) {
	start := s.now()
	defer func() { s.finish("rto_inward_line", start, err) }()

	if !condition.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeBadRequest, "invalid rto condition %q", condition)
	}

	var skuID uuid.UUID
	var replay bool
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, lerr := repo.FindOrderLineByID(ctx, lineID)
		if lerr != nil {
			return notFoundOr(lerr, "order line not found")
		}
		if line.RTOInitiatedAt == nil {
			return pkgerrors.New(pkgerrors.CodeBadRequest, "rto has not been initiated for this order line")
		}
		if !line.TrackingStatus.RTOEligible() {
			return pkgerrors.Newf(pkgerrors.CodeBadRequest, "order line tracking status %q is not awaiting rto receipt", line.TrackingStatus)
		}

		if line.RTOCondition != nil {
			var existing *models.InventoryTransaction
			var eerr error
			if line.RTOReceiptTxnID != nil {
				existing, eerr = repo.FindTransactionByID(ctx, *line.RTOReceiptTxnID)
			} else {
				// Rows received before the receipt link was stamped.
				existing, eerr = repo.FindInwardByReference(ctx, enums.ReasonRTOReceived, line.ID)
			}
			if eerr != nil {
				if errors.Is(eerr, gorm.ErrRecordNotFound) {
					// The receipt row is gone because the unit was written
					// off; it never re-enters stock and the condition is
					// final.
					return pkgerrors.New(pkgerrors.CodeConflict, "order line was written off and cannot be received again")
				}
				return eerr
			}
			bal, berr := repo.ComputeBalance(ctx, line.SkuID)
			if berr != nil {
				return berr
			}
			replay = true
			res = &RTOReceiptResult{
				LineID:        lineID,
				TransactionID: existing.ID,
				SkuID:         line.SkuID,
				Qty:           existing.Quantity,
				Condition:     *line.RTOCondition,
				NewBalance:    bal.CurrentBalance,
			}
			return nil
		}

		now := s.now()
		receivedAt := now
		line.RTOReceivedAt = &receivedAt
		line.RTONotes = notes
		line.MarkRTOProcessed(condition, actor.UserID, now)

		txn := &models.InventoryTransaction{
			ID:          uuid.New(),
			SkuID:       line.SkuID,
			TxnType:     enums.TxnTypeInward,
			Quantity:    line.Quantity,
			Reason:      enums.ReasonRTOReceived,
			ReferenceID: &line.ID,
			Notes:       notes,
			CreatedByID: actor.UserID,
		}
		if cerr := repo.CreateTransaction(ctx, txn); cerr != nil {
			return cerr
		}

		line.RTOReceiptTxnID = &txn.ID
		if serr := repo.SaveOrderLine(ctx, line); serr != nil {
			return serr
		}
		skuID = line.SkuID

		bal, berr := repo.ComputeBalance(ctx, line.SkuID)
		if berr != nil {
			return berr
		}
		res = &RTOReceiptResult{
			LineID:        lineID,
			TransactionID: txn.ID,
			SkuID:         line.SkuID,
			Qty:           line.Quantity,
			Condition:     condition,
			NewBalance:    bal.CurrentBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !replay {
		s.afterCommit(ctx, skuID, Balance{CurrentBalance: res.NewBalance, AvailableBalance: res.NewBalance})
	}
	return res, nil
}

func (s *service) GetBalance(ctx context.Context, skuID uuid.UUID) (*Balance, error) {
	if _, err := s.repo.FindSkuByID(ctx, skuID); err != nil {
		return nil, notFoundOr(err, "sku not found")
	}
	bal, err := s.repo.ComputeBalance(ctx, skuID)
	if err != nil {
		return nil, err
	}
	return &bal, nil
}

func (s *service) GetSkuByCode(ctx context.Context, code string) (*SkuDTO, error) {
	sku, err := s.repo.FindSkuByCode(ctx, code)
	if err != nil {
		return nil, notFoundOr(err, "sku not found")
	}
	return &SkuDTO{
		ID:            sku.ID,
		Code:          sku.Code,
		StyleName:     sku.StyleName,
		Size:          sku.Size,
		Color:         sku.Color,
		IsActive:      sku.IsActive,
		WriteOffCount: sku.WriteOffCount,
	}, nil
}

func (s *service) ListTransactions(ctx context.Context, skuID uuid.UUID, limit int) ([]TransactionDTO, error) {
	if _, err := s.repo.FindSkuByID(ctx, skuID); err != nil {
		return nil, notFoundOr(err, "sku not found")
	}
	rows, err := s.repo.ListTransactions(ctx, skuID, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]TransactionDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, TransactionDTO{
			ID:                row.ID,
			SkuID:             row.SkuID,
			TxnType:           row.TxnType,
			Qty:               row.Quantity,
			Reason:            row.Reason,
			ReferenceID:       row.ReferenceID,
			Notes:             row.Notes,
			WarehouseLocation: row.WarehouseLocation,
			CreatedByID:       row.CreatedByID,
			CreatedAt:         row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return dtos, nil
}
