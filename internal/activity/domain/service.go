package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Record describes an entry to append.
type Record struct {
	DocumentID *snowflake.ID
	EntityType EntityType
	EntityID   *snowflake.ID
	Action     Action
	Detail     map[string]any
}

// ListFilter narrows activity queries.
type ListFilter struct {
	DocumentID snowflake.ID
	Limit      int
	Offset     int
}

type Service interface {
	// Log appends an entry. Failures are logged and swallowed so the
	// primary operation is never broken by audit bookkeeping.
	Log(ctx context.Context, record Record)

	// LogTx appends an entry inside an existing transaction and
	// propagates failures, for callers that need the entry committed
	// atomically with the state change.
	LogTx(ctx context.Context, tx *gorm.DB, record Record) error

	ForDocument(ctx context.Context, filter ListFilter) ([]Entry, error)
	Feed(ctx context.Context, limit int) ([]Entry, error)
}
