package kvstore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mestawet/gebeya/config"
)

// KVEntry is the row shape behind the sql driver.
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     []byte
	UpdatedAt time.Time
}

func (KVEntry) TableName() string { return "kv_entries" }

// sqlStore persists client state in a kv_entries table. The dialect is
// chosen by DB_DRIVER exactly like a server-side GORM setup would.
type sqlStore struct {
	db *gorm.DB
}

func newSQLStore() (*sqlStore, error) {
	dialector, err := buildDialector(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("kvstore/sql: build dialector: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent), // pkg/logger owns output
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore/sql: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("kvstore/sql: get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("kvstore/sql: migrate: %w", err)
	}

	return &sqlStore{db: db}, nil
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}
}

func (s *sqlStore) Get(key string) ([]byte, bool, error) {
	var entry KVEntry
	err := s.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kvstore/sql: get %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *sqlStore) Put(key string, value []byte) error {
	entry := KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Save(&entry).Error
	if err != nil {
		return fmt.Errorf("kvstore/sql: put %s: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Delete(key string) error {
	if err := s.db.Delete(&KVEntry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("kvstore/sql: delete %s: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Exists(key string) bool {
	var n int64
	s.db.Model(&KVEntry{}).Where("key = ?", key).Count(&n)
	return n > 0
}
