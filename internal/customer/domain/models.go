package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is an address-book entry documents can be issued to.
type Customer struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	Name        string       `gorm:"type:text;not null;index"`
	CompanyName string       `gorm:"type:text;not null;default:''"`
	Email       string       `gorm:"type:text;not null;default:''"`
	Phone       string       `gorm:"type:text;not null;default:''"`
	Address     string       `gorm:"type:text;not null;default:''"`
	PostalCode  string       `gorm:"type:text;not null;default:''"`
	City        string       `gorm:"type:text;not null;default:''"`
	Country     string       `gorm:"type:text;not null;default:''"`
	KvkNumber   string       `gorm:"type:text;not null;default:''"`
	BtwNumber   string       `gorm:"type:text;not null;default:''"`
	Notes       string       `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

var (
	ErrInvalidID   = errors.New("invalid_customer_id")
	ErrInvalidName = errors.New("invalid_customer_name")
	ErrNotFound    = errors.New("customer_not_found")
)
