package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Template stores a pdfme layout definition owned by the PDF service's
// template schema format. The backend treats template_json as opaque
// apart from reading the first page schema for field mapping.
type Template struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	Name         string            `gorm:"type:text;not null"`
	Description  string            `gorm:"type:text;not null;default:''"`
	TemplateJSON datatypes.JSONMap `gorm:"type:jsonb;not null"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Template) TableName() string { return "templates" }

// UsageLog records one PDF generation against a template, driving the
// statistics dashboard.
type UsageLog struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	TemplateID    snowflake.ID `gorm:"not null;index"`
	PdfFilename   string       `gorm:"type:text;not null"`
	FileSizeBytes int64        `gorm:"not null;default:0"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (UsageLog) TableName() string { return "usage_logs" }

func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

var (
	ErrInvalidID   = errors.New("invalid_template_id")
	ErrInvalidName = errors.New("invalid_template_name")
	ErrInvalidJSON = errors.New("invalid_template_json")
	ErrNotFound    = errors.New("template_not_found")
)
