package database

import (
	"fmt"

	"bioAffiliate/domain"
	"bioAffiliate/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	// TranslateError turns the postgres unique-violation into
	// gorm.ErrDuplicatedKey, which the attribution and link layers rely on.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Partner{},
		&domain.Product{},
		&domain.Campaign{},
		&domain.Link{},
		&domain.Click{},
		&domain.Conversion{},
		&domain.Payout{},
		&domain.PostbackLog{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
