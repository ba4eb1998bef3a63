package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/RonanBeelen/InvoiceStudio/internal/activity"
	"github.com/RonanBeelen/InvoiceStudio/internal/automation"
	"github.com/RonanBeelen/InvoiceStudio/internal/clock"
	"github.com/RonanBeelen/InvoiceStudio/internal/config"
	"github.com/RonanBeelen/InvoiceStudio/internal/customer"
	"github.com/RonanBeelen/InvoiceStudio/internal/document"
	"github.com/RonanBeelen/InvoiceStudio/internal/emailevent"
	"github.com/RonanBeelen/InvoiceStudio/internal/events"
	"github.com/RonanBeelen/InvoiceStudio/internal/migration"
	"github.com/RonanBeelen/InvoiceStudio/internal/observability"
	"github.com/RonanBeelen/InvoiceStudio/internal/priceitem"
	"github.com/RonanBeelen/InvoiceStudio/internal/render"
	"github.com/RonanBeelen/InvoiceStudio/internal/seed"
	"github.com/RonanBeelen/InvoiceStudio/internal/send"
	"github.com/RonanBeelen/InvoiceStudio/internal/server"
	"github.com/RonanBeelen/InvoiceStudio/internal/settings"
	"github.com/RonanBeelen/InvoiceStudio/internal/template"
	"github.com/RonanBeelen/InvoiceStudio/pkg/db"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			return seed.EnsureDefaultSettings(conn)
		}),
		events.Module,
		activity.Module,
		settings.Module,
		customer.Module,
		template.Module,
		render.Module,
		document.Module,
		send.Module,
		emailevent.Module,
		priceitem.Module,
		automation.Module,
		server.Module,
	)
	app.Run()
}
