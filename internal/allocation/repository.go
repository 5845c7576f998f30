package allocation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threadline/warehouse-backend/pkg/db/models"
	"github.com/threadline/warehouse-backend/pkg/enums"
)

const matchLimit = 5

// Repository holds the candidate queries the resolver needs.
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

// FindCandidateBatches returns the SKU's open production batches with units
// still pending, oldest run first.
func (r *Repository) FindCandidateBatches(ctx context.Context, skuID uuid.UUID) ([]models.ProductionBatch, error) {
	var batches []models.ProductionBatch
	err := r.db.WithContext(ctx).
		Where("sku_id = ?", skuID).
		Where("status IN ?", []enums.BatchStatus{enums.BatchStatusPlanned, enums.BatchStatusInProgress}).
		Where("qty_completed < qty_planned").
		Order("batch_date ASC").
		Limit(matchLimit).
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

// rtoCandidate joins the order header fields the resolver reports.
type rtoCandidate struct {
	models.OrderLine
	OrderNumber string `gorm:"column:order_number"`
}

// FindCandidateRTOLines returns the SKU's returned-but-unresolved order
// lines on non-archived orders.
func (r *Repository) FindCandidateRTOLines(ctx context.Context, skuID uuid.UUID) ([]rtoCandidate, error) {
	var lines []rtoCandidate
	err := r.db.WithContext(ctx).
		Table("order_lines").
		Select("order_lines.*, orders.order_number").
		Joins("JOIN orders ON orders.id = order_lines.order_id").
		Where("order_lines.sku_id = ?", skuID).
		Where("order_lines.rto_condition IS NULL").
		Where("order_lines.tracking_status IN ?", []enums.TrackingStatus{enums.TrackingRTOInTransit, enums.TrackingRTODelivered}).
		Where("orders.is_archived = ?", false).
		Order("order_lines.created_at ASC").
		Limit(matchLimit).
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
