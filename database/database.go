package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var _ DB = (*Client)(nil) // Ensure Client implements DB

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New creates a new database connection, performs migrations and seeds the
// default settings.
func New(dbpath string) (*Client, error) {
	db, err := gorm.Open(sqlite.Open(dbpath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(
		&Account{},
		&AccountLevel{},
		&AccountField{},
		&Setting{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	c := &Client{db: db}
	if err := c.seedSettings(); err != nil {
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}

	return c, nil
}

// Close closes the underlying database connection.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
