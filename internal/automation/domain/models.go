package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Frequency is the cadence of a recurring rule.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyCustom    Frequency = "custom"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly, FrequencyCustom:
		return true
	}
	return false
}

// Rule is a recurring-document schedule. Each firing clones the source
// document into a fresh concept document.
type Rule struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	Name             string       `gorm:"type:text;not null"`
	SourceDocumentID snowflake.ID `gorm:"not null;index"`
	Frequency        Frequency    `gorm:"type:text;not null"`
	DayOfMonth       int          `gorm:"not null;default:1"`
	IntervalDays     int          `gorm:"not null;default:0"`
	IsActive         bool         `gorm:"not null;default:true;index"`
	AutoSend         bool         `gorm:"not null;default:false"`
	EndDate          *time.Time   `gorm:"type:date"`
	MaxOccurrences   *int         `gorm:""`
	OccurrencesCount int          `gorm:"not null;default:0"`
	NextRunAt        *time.Time   `gorm:"index"`
	LastRunAt        *time.Time   `gorm:""`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Rule) TableName() string { return "automation_rules" }

// RunStatus is the outcome state of one trigger attempt.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusSkipped   RunStatus = "skipped"
)

// Run records one trigger attempt for a rule. The unique (rule_id,
// scheduled_at) pair doubles as the trigger lease: the insert that wins
// the slot owns the firing, everyone else skips.
type Run struct {
	ID                snowflake.ID  `gorm:"primaryKey"`
	RuleID            snowflake.ID  `gorm:"not null;uniqueIndex:ux_runs_rule_slot,priority:1"`
	ScheduledAt       time.Time     `gorm:"not null;uniqueIndex:ux_runs_rule_slot,priority:2"`
	Status            RunStatus     `gorm:"type:text;not null;index"`
	StartedAt         *time.Time    `gorm:""`
	CompletedAt       *time.Time    `gorm:""`
	CreatedDocumentID *snowflake.ID `gorm:""`
	ErrorMessage      string        `gorm:"type:text;not null;default:''"`
	CreatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Run) TableName() string { return "automation_runs" }

func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

var (
	ErrInvalidID           = errors.New("invalid_rule_id")
	ErrNotFound            = errors.New("rule_not_found")
	ErrInvalidName         = errors.New("invalid_rule_name")
	ErrInvalidFrequency    = errors.New("invalid_frequency")
	ErrInvalidDayOfMonth   = errors.New("invalid_day_of_month")
	ErrInvalidIntervalDays = errors.New("invalid_interval_days")
	ErrMissingSource       = errors.New("missing_source_document")
)
