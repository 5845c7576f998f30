package models

import (
	"time"

	"github.com/google/uuid"
)

// Sku represents one sellable style/size/color variant.
type Sku struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"column:code;type:text;not null;uniqueIndex"`
	StyleName string    `gorm:"column:style_name;not null"`
	Size      string    `gorm:"column:size;not null"`
	Color     string    `gorm:"column:color;not null"`
	Barcode   *string   `gorm:"column:barcode;uniqueIndex"`
	// No gorm default tag: Create would omit false values and persist
	// inactive rows as active.
	IsActive  bool      `gorm:"column:is_active;not null"`
	// WriteOffCount tracks units written off instead of re-entering stock.
	WriteOffCount int       `gorm:"column:write_off_count;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
