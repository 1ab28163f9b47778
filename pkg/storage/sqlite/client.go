// Package sqlite is the durable tier: an append-only log of every validated
// trade, independent of the fast tier's retention.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tradecollector/config"
	"tradecollector/pkg/retry"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Client struct {
	DB *gorm.DB
}

func NewClient(path string) (*Client, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create backup directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite backup: %w", err)
	}

	return &Client{DB: db}, nil
}

// InitializeAndMigrate opens the backup database and runs AutoMigrate.
func InitializeAndMigrate(cfg config.BackupConfig) (*Client, error) {
	client, err := NewClient(cfg.Path)
	if err != nil {
		return nil, err
	}

	if err := client.AutoMigrateTradeRecord(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (c *Client) AutoMigrateTradeRecord() error {
	if err := c.DB.AutoMigrate(&TradeRecord{}); err != nil {
		return fmt.Errorf("auto-migrate trades table: %w", err)
	}
	return nil
}

func (c *Client) IsHealthy(ctx context.Context) bool {
	db, err := c.DB.DB()
	if err != nil {
		return false
	}
	return db.PingContext(ctx) == nil
}

func (c *Client) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	return db.Close()
}

// classify marks SQLite busy/locked conditions as retryable. Constraint and
// schema errors pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") {
		return retry.MarkTransient(err)
	}
	return err
}
