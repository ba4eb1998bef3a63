package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Action identifies what happened to an entity.
type Action string

const (
	ActionCreated          Action = "created"
	ActionUpdated          Action = "updated"
	ActionStatusChanged    Action = "status_changed"
	ActionSent             Action = "sent"
	ActionReminderSent     Action = "reminder_sent"
	ActionMarkedSent       Action = "marked_sent"
	ActionDeleted          Action = "deleted"
	ActionEmailReplied     Action = "email_replied"
	ActionPaymentConfirmed Action = "payment_confirmed"
	ActionAutomationRan    Action = "automation_ran"
	ActionDelivered        Action = "delivered"
	ActionOpened           Action = "opened"
	ActionBounced          Action = "bounced"
)

// EntityType identifies which kind of record an entry refers to.
type EntityType string

const (
	EntityDocument   EntityType = "document"
	EntityAutomation EntityType = "automation"
	EntityCustomer   EntityType = "customer"
	EntitySettings   EntityType = "settings"
)

// Entry is one append-only activity log record. Entries are never mutated
// or deleted after insert.
type Entry struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	DocumentID *snowflake.ID     `gorm:"index"`
	EntityType EntityType        `gorm:"type:text;not null"`
	EntityID   *snowflake.ID     `gorm:"index"`
	Action     Action            `gorm:"type:text;not null;index"`
	Detail     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "activity_log" }
