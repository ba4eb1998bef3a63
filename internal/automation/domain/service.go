package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	Name             string        `json:"name"`
	SourceDocumentID snowflake.ID  `json:"-"`
	Frequency        Frequency     `json:"frequency"`
	DayOfMonth       int           `json:"day_of_month"`
	IntervalDays     int           `json:"interval_days"`
	AutoSend         bool          `json:"auto_send"`
	StartDate        *time.Time    `json:"start_date"`
	EndDate          *time.Time    `json:"end_date"`
	MaxOccurrences   *int          `json:"max_occurrences"`
}

type UpdateRequest struct {
	ID             snowflake.ID
	Name           *string    `json:"name"`
	Frequency      *Frequency `json:"frequency"`
	DayOfMonth     *int       `json:"day_of_month"`
	IntervalDays   *int       `json:"interval_days"`
	AutoSend       *bool      `json:"auto_send"`
	EndDate        *time.Time `json:"end_date"`
	MaxOccurrences *int       `json:"max_occurrences"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Rule, error)
	List(ctx context.Context) ([]Rule, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Rule, error)
	Update(ctx context.Context, req UpdateRequest) (*Rule, error)
	Delete(ctx context.Context, id snowflake.ID) error

	// Pause deactivates a rule; Resume reactivates it and recomputes
	// next_run_at from now so a long pause does not fire a backlog.
	Pause(ctx context.Context, id snowflake.ID) (*Rule, error)
	Resume(ctx context.Context, id snowflake.ID) (*Rule, error)

	// ListDue returns active, unexpired rules whose next_run_at has
	// passed, ordered oldest slot first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]Rule, error)

	// Trigger fires one rule end-to-end and returns the resulting run.
	// When another trigger already owns the same slot the returned run
	// has status skipped and is not persisted.
	Trigger(ctx context.Context, id snowflake.ID) (*Run, error)

	// Runs returns the run history for a rule, newest first.
	Runs(ctx context.Context, ruleID snowflake.ID, limit int) ([]Run, error)
}
