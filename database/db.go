// Package database manages the sqlite-backed gorm store: connection setup,
// schema migration, and first-run seeding.
package database

import (
	_ "embed"
	"io/fs"
	"log"
	"os"
	"path"

	"schooldesk/config"
	"schooldesk/database/model"
	"schooldesk/util/crypto"

	"github.com/goccy/go-json"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

const (
	defaultUsername = "admin"
	defaultPassword = "admin"
)

//go:embed categories.json
var defaultCategories []byte

func initModels() error {
	models := []any{
		&model.User{},
		&model.Category{},
		&model.Ticket{},
		&model.Setting{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// initUser seeds the initial admin account on an empty user table. The
// password should be changed right after first login.
func initUser() error {
	empty, err := isTableEmpty("users")
	if err != nil {
		log.Printf("Error checking if users table is empty: %v", err)
		return err
	}
	if !empty {
		return nil
	}
	hash, err := crypto.HashPassword(defaultPassword)
	if err != nil {
		return err
	}
	user := &model.User{
		Username:     defaultUsername,
		Role:         model.RoleAdmin,
		PasswordHash: hash,
	}
	return db.Create(user).Error
}

// initCategories seeds the reference categories on an empty category table.
func initCategories() error {
	empty, err := isTableEmpty("categories")
	if err != nil {
		log.Printf("Error checking if categories table is empty: %v", err)
		return err
	}
	if !empty {
		return nil
	}
	var categories []model.Category
	if err := json.Unmarshal(defaultCategories, &categories); err != nil {
		return err
	}
	return db.Create(&categories).Error
}

func isTableEmpty(tableName string) (bool, error) {
	var count int64
	err := db.Table(tableName).Count(&count).Error
	return count == 0, err
}

func InitDB(dbPath string) error {
	dir := path.Dir(dbPath)
	err := os.MkdirAll(dir, fs.ModePerm)
	if err != nil {
		return err
	}

	var gormLogger logger.Interface

	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger: gormLogger,
	}

	dsn := dbPath + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL"
	db, err = gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if _, err = sqlDB.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return err
	}

	if err := initModels(); err != nil {
		return err
	}
	if err := initUser(); err != nil {
		return err
	}
	return initCategories()
}

func CloseDB() error {
	if db != nil {
		if err := Checkpoint(); err != nil {
			log.Printf("error executing checkpoint: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}

// Checkpoint flushes the sqlite WAL into the main database file.
func Checkpoint() error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
