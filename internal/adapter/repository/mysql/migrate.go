package mysql

import (
	"tokenestate-backend/internal/domain/counter"
	"tokenestate-backend/internal/domain/event"
	"tokenestate-backend/internal/domain/ledger"
	"tokenestate-backend/internal/domain/loan"
	"tokenestate-backend/internal/domain/property"

	"gorm.io/gorm"
)

// Models lists every table the repositories own.
func Models() []any {
	return []any{
		&property.Property{},
		&ledger.Balance{},
		&counter.Counter{},
		&loan.Loan{},
		&loan.Investment{},
		&loan.Collateral{},
		&event.Event{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
