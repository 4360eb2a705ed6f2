package database

import (
	"context"
	"time"
)

// DB defines the interface for database operations.
type DB interface {
	// Account repository
	CountAccountsByUsername(ctx context.Context, username string) (int64, error)
	CountAccountsByEmail(ctx context.Context, email string) (int64, error)
	CreateAccount(ctx context.Context, account *Account) error
	GetAccountByID(ctx context.Context, id uint) (*Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)
	FindPendingConfirmation(ctx context.Context, username, confirmCode string) (*Account, error)
	ActivateAccount(ctx context.Context, id uint) error
	DeleteStalePending(ctx context.Context, before time.Time) (int64, error)

	// Settings store
	GetSettingValues(ctx context.Context, names ...string) (map[string]string, error)
	GetAllSettings(ctx context.Context) ([]Setting, error)
	SetSetting(ctx context.Context, name, value string) error

	// Utility
	Close() error
}
