package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadline/warehouse-backend/pkg/db/models"
	"github.com/threadline/warehouse-backend/pkg/enums"
)

// Repository wires together all ledger persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindSkuByID loads a SKU by primary key.
func (r *Repository) FindSkuByID(ctx context.Context, id uuid.UUID) (*models.Sku, error) {
	var sku models.Sku
	if err := r.db.WithContext(ctx).First(&sku, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sku, nil
}

// FindSkuByCode loads a SKU by its human-readable code.
func (r *Repository) FindSkuByCode(ctx context.Context, code string) (*models.Sku, error) {
	var sku models.Sku
	if err := r.db.WithContext(ctx).First(&sku, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &sku, nil
}

// FindSkusByIDs loads the subset of the given SKU ids that exist.
func (r *Repository) FindSkusByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Sku, error) {
	var skus []models.Sku
	if len(ids) == 0 {
		return skus, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&skus).Error; err != nil {
		return nil, err
	}
	return skus, nil
}

// IncrementWriteOffCount bumps the SKU's write-off counter.
func (r *Repository) IncrementWriteOffCount(ctx context.Context, skuID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Sku{}).
		Where("id = ?", skuID).
		UpdateColumn("write_off_count", gorm.Expr("write_off_count + ?", qty)).Error
}

// CreateTransaction appends a ledger row.
func (r *Repository) CreateTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// FindTransactionByID loads a ledger row by primary key.
func (r *Repository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*models.InventoryTransaction, error) {
	var txn models.InventoryTransaction
	if err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindLatestInwardBySku returns the most recently created inward row for the SKU.
func (r *Repository) FindLatestInwardBySku(ctx context.Context, skuID uuid.UUID) (*models.InventoryTransaction, error) {
	var txn models.InventoryTransaction
	err := r.db.WithContext(ctx).
		Where("sku_id = ? AND txn_type = ?", skuID, enums.TxnTypeInward).
		Order("created_at DESC").
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindInwardByReference returns the inward row linked to the given reason and
// reference, if one exists.
func (r *Repository) FindInwardByReference(ctx context.Context, reason enums.TxnReason, referenceID uuid.UUID) (*models.InventoryTransaction, error) {
	var txn models.InventoryTransaction
	err := r.db.WithContext(ctx).
		Where("txn_type = ? AND reason = ? AND reference_id = ?", enums.TxnTypeInward, reason, referenceID).
		Order("created_at DESC").
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// SaveTransaction persists edits to a ledger row.
func (r *Repository) SaveTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	return r.db.WithContext(ctx).Save(txn).Error
}

// DeleteTransaction removes a ledger row.
func (r *Repository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.InventoryTransaction{}, "id = ?", id).Error
}

// ListTransactions returns the SKU's ledger rows, newest first.
func (r *Repository) ListTransactions(ctx context.Context, skuID uuid.UUID, limit int) ([]models.InventoryTransaction, error) {
	var rows []models.InventoryTransaction
	q := r.db.WithContext(ctx).
		Where("sku_id = ?", skuID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindBatchByID loads a production batch by primary key.
func (r *Repository) FindBatchByID(ctx context.Context, id uuid.UUID) (*models.ProductionBatch, error) {
	var batch models.ProductionBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// SaveBatch persists batch counter/status changes.
func (r *Repository) SaveBatch(ctx context.Context, batch *models.ProductionBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// FindOrderLineByID loads an order line by primary key.
func (r *Repository) FindOrderLineByID(ctx context.Context, id uuid.UUID) (*models.OrderLine, error) {
	var line models.OrderLine
	if err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// SaveOrderLine persists RTO state changes on a line.
func (r *Repository) SaveOrderLine(ctx context.Context, line *models.OrderLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// FindOrderByID loads the order header.
func (r *Repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrderLines returns all lines on the order.
func (r *Repository) ListOrderLines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// FindRepackItemByID loads a repack queue item by primary key.
func (r *Repository) FindRepackItemByID(ctx context.Context, id uuid.UUID) (*models.RepackQueueItem, error) {
	var item models.RepackQueueItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveRepackItem persists QC state changes on a repack queue item.
func (r *Repository) SaveRepackItem(ctx context.Context, item *models.RepackQueueItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// CreateWriteOff appends a write-off log row.
func (r *Repository) CreateWriteOff(ctx context.Context, row *models.WriteOffLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}
