// Package db opens the configured database engine
package db

import (
	"bitwise74/zeropass/model"
	"fmt"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New opens the database selected by database.driver and migrates the
// schema. SQLite is the default and keeps single-node deployments
// simple, postgres is there for anything bigger.
func New() (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	dsn := viper.GetString("database.dsn")

	switch viper.GetString("database.driver") {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn))
	default:
		db, err = gorm.Open(sqlite.Open(dsn))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.MailToken{}, model.OtpCode{}, model.File{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
