package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	settingsdomain "github.com/RonanBeelen/InvoiceStudio/internal/settings/domain"
	"gorm.io/gorm"
)

// EnsureDefaultSettings seeds the singleton company settings row for startup bootstrap.
func EnsureDefaultSettings(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var settings settingsdomain.CompanySettings
		err := tx.WithContext(ctx).Order("id ASC").First(&settings).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		settings = settingsdomain.Defaults()
		settings.ID = node.Generate()
		settings.CreatedAt = now
		settings.UpdatedAt = now
		return tx.WithContext(ctx).Create(&settings).Error
	})
}
