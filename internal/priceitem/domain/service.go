package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Category        string           `json:"category"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	Unit            string           `json:"unit"`
	BtwPercentage   *decimal.Decimal `json:"btw_percentage"`
	DefaultQuantity *decimal.Decimal `json:"default_quantity"`
	SKU             string           `json:"sku"`
	SortOrder       int              `json:"sort_order"`
}

type UpdateRequest struct {
	ID              snowflake.ID
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Category        *string          `json:"category"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	Unit            *string          `json:"unit"`
	BtwPercentage   *decimal.Decimal `json:"btw_percentage"`
	DefaultQuantity *decimal.Decimal `json:"default_quantity"`
	SKU             *string          `json:"sku"`
	IsActive        *bool            `json:"is_active"`
	SortOrder       *int             `json:"sort_order"`
}

// ListFilter narrows the catalog listing. Query searches name and
// description; ActiveOnly defaults to true at the API layer.
type ListFilter struct {
	Category   string
	Query      string
	ActiveOnly bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*PriceItem, error)
	List(ctx context.Context, filter ListFilter) ([]PriceItem, error)
	GetByID(ctx context.Context, id snowflake.ID) (*PriceItem, error)
	Update(ctx context.Context, req UpdateRequest) (*PriceItem, error)
	Delete(ctx context.Context, id snowflake.ID) error

	// Categories lists the distinct categories in use by active items.
	Categories(ctx context.Context) ([]string, error)
}
