package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	TemplateJSON map[string]any `json:"template_json"`
}

type UpdateRequest struct {
	ID           snowflake.ID
	Name         *string        `json:"name"`
	Description  *string        `json:"description"`
	TemplateJSON map[string]any `json:"template_json"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Template, error)
	List(ctx context.Context) ([]Template, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Template, error)
	Update(ctx context.Context, req UpdateRequest) (*Template, error)
	Delete(ctx context.Context, id snowflake.ID) error

	// RecordUsage appends a usage log entry after a successful render.
	RecordUsage(ctx context.Context, templateID snowflake.ID, filename string, sizeBytes int64) error
}
