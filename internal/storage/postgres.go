package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/glucoguide/insulin-tracker/internal/config"
)

// KVRecord is the single table behind the Postgres backend. The tracker's
// data model is key-value with JSON payloads, so one row per logical key.
type KVRecord struct {
	Key       string `gorm:"primaryKey;size:512"`
	Value     []byte
	ExpiresAt *time.Time
	UpdatedAt time.Time
}

func (KVRecord) TableName() string { return "kv_records" }

// PostgresStore keeps values in a Postgres table via gorm.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to Postgres and migrates the KV table.
func NewPostgresStore(cfg config.DBConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&KVRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var rec KVRecord
	err := s.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if rec.ExpiresAt != nil && time.Now().After(*rec.ExpiresAt) {
		_ = s.db.WithContext(ctx).Delete(&KVRecord{}, "key = ?", key).Error
		return nil, ErrNotFound
	}
	return rec.Value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	return s.upsert(ctx, key, value, nil)
}

func (s *PostgresStore) SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expires := time.Now().Add(ttl)
	return s.upsert(ctx, key, value, &expires)
}

func (s *PostgresStore) upsert(ctx context.Context, key string, value []byte, expiresAt *time.Time) error {
	rec := KVRecord{Key: key, Value: value, ExpiresAt: expiresAt}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
}

func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&KVRecord{}, "key = ?", key).Error
}
