package db

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	applog "github.com/magacin-dev/magacin/internal/logger"
	"github.com/magacin-dev/magacin/internal/models"
)

// ConnectAndMigrate opens the database with retries, applies the schema and
// optionally seeds a bootstrap owner account.
//
// With MIGRATIONS=1 the SQL files under ./migrations run via golang-migrate;
// otherwise AutoMigrate keeps the schema current (dev convenience).
func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment configuration")
	}
	var db *gorm.DB
	var err error
	logLevel := gormlogger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = gormlogger.Info
	}
	cfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	}
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		applog.Log.Warn("retrying db connection", zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	applog.Log.Info("database connected", zap.String("dsn", MaskDSN(dsn)))

	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range []any{
			&models.User{}, &models.Supplier{}, &models.Product{},
			&models.Order{}, &models.OrderLine{},
		} {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	for _, table := range []string{"users", "products", "suppliers", "orders", "order_lines"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}

	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		seed(db)
	}
	return db, nil
}

// seed creates the bootstrap owner account when no user exists yet, so a fresh
// deployment has someone who can assign roles. Credentials come from
// SEED_OWNER_EMAIL / SEED_OWNER_PASSWORD, with dev defaults.
func seed(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	email := os.Getenv("SEED_OWNER_EMAIL")
	if email == "" {
		email = "owner@example.com"
	}
	password := os.Getenv("SEED_OWNER_PASSWORD")
	if password == "" {
		password = "changeme"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		applog.Log.Warn("seed owner hash failed", zap.Error(err))
		return
	}
	owner := models.User{
		FirstName:    "Bootstrap",
		LastName:     "Owner",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleOwner,
	}
	if err := db.Create(&owner).Error; err != nil {
		applog.Log.Warn("seed owner create failed", zap.Error(err))
		return
	}
	applog.Log.Info("seeded bootstrap owner", zap.String("email", email))
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
