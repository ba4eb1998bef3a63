package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Categories a price item may belong to.
var AllowedCategories = []string{
	"general", "product", "service", "hourly_rate", "travel", "subscription",
}

func IsAllowedCategory(category string) bool {
	for _, c := range AllowedCategories {
		if c == category {
			return true
		}
	}
	return false
}

// PriceItem is one catalog entry reusable as a document line item.
type PriceItem struct {
	ID              snowflake.ID    `gorm:"primaryKey"`
	Name            string          `gorm:"type:text;not null;index"`
	Description     string          `gorm:"type:text;not null;default:''"`
	Category        string          `gorm:"type:text;not null;default:'general';index"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Unit            string          `gorm:"type:text;not null;default:''"`
	BtwPercentage   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:21"`
	DefaultQuantity decimal.Decimal `gorm:"type:decimal(10,2);not null;default:1"`
	SKU             string          `gorm:"type:text;not null;default:''"`
	IsActive        bool            `gorm:"not null;default:true;index"`
	SortOrder       int             `gorm:"not null;default:0"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PriceItem) TableName() string { return "price_items" }

func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

var (
	ErrInvalidID       = errors.New("invalid_price_item_id")
	ErrNotFound        = errors.New("price_item_not_found")
	ErrInvalidName     = errors.New("invalid_price_item_name")
	ErrInvalidCategory = errors.New("invalid_price_item_category")
)
