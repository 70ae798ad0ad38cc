package database

import (
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(dsn string) {
	var err error

	// PostgreSQL spesifik konfigürasyon
	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Prepared statement sorununu çözmek için
	}

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		PrepareStmt:    false,
		TranslateError: true, // unique ihlalleri gorm.ErrDuplicatedKey olarak döner
	}

	DB, err = gorm.Open(postgres.New(pgConfig), gormConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get database instance")
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info().Msg("Database connected successfully!")
}

func GetDB() *gorm.DB {
	return DB
}

func MigrateDatabase(models ...interface{}) error {
	for _, model := range models {
		if !DB.Migrator().HasTable(model) {
			if err := DB.Migrator().CreateTable(model); err != nil {
				return err
			}
			log.Info().Msgf("Created table for %T", model)
		} else {
			if err := DB.Migrator().AutoMigrate(model); err != nil {
				return err
			}
			log.Info().Msgf("Updated table for %T", model)
		}
	}
	return nil
}

// EnsureSubscriptionGuard installs the partial unique index that keeps at
// most one PENDING or ACTIVE subscription per user. Two concurrent checkouts
// for the same user both pass the application-level check; the loser fails
// here with a unique violation instead of creating a second open row.
func EnsureSubscriptionGuard() error {
	return DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_subscriptions_user_open
		ON subscriptions (user_id)
		WHERE status IN ('PENDING', 'ACTIVE') AND deleted_at IS NULL`).Error
}
