// Package migration keeps the schema in sync at startup.
package migration

import (
	invoicedomain "github.com/opsdeck/opsbill/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Run(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLine{},
	); err != nil {
		return err
	}
	log.Info("database schema migrated")
	return nil
}

var Module = fx.Module("migration",
	fx.Invoke(Run),
)
