package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Country     string `json:"country"`
	KvkNumber   string `json:"kvk_number"`
	BtwNumber   string `json:"btw_number"`
	Notes       string `json:"notes"`
}

type UpdateRequest struct {
	ID          snowflake.ID
	Name        *string `json:"name"`
	CompanyName *string `json:"company_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	PostalCode  *string `json:"postal_code"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
	KvkNumber   *string `json:"kvk_number"`
	BtwNumber   *string `json:"btw_number"`
	Notes       *string `json:"notes"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Customer, error)
	// List returns customers ordered by name; query matches name and
	// company name case-insensitively.
	List(ctx context.Context, query string) ([]Customer, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Customer, error)
	Update(ctx context.Context, req UpdateRequest) (*Customer, error)
	Delete(ctx context.Context, id snowflake.ID) error
}
