package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus int

const (
	// StatusPending marks an account that still needs verification.
	StatusPending AccountStatus = 0
	// StatusActive marks an account that is allowed to log in.
	StatusActive AccountStatus = 1
)

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("record already exists")

// Account represents a registered member account.
// Username and email are each unique across all accounts; the unique indexes
// are the authoritative guard, the workflow's existence checks only exist to
// produce friendlier errors.
type Account struct {
	gorm.Model
	Username    string `gorm:"uniqueIndex;not null"`
	Email       string `gorm:"uniqueIndex;not null"`
	Password    string `gorm:"not null"` // bcrypt hash, never plaintext
	CreatedUTC  time.Time
	Status      AccountStatus `gorm:"not null;default:0"`
	StatusText  *string
	ConfirmCode *string
	LastLogin   *time.Time
	Levels      []AccountLevel
	Fields      []AccountField `gorm:"constraint:OnDelete:CASCADE;"`
}

// AccountLevel assigns an account to a permission group.
// Levels are not cascade-deleted with their account, purge removes them
// explicitly.
type AccountLevel struct {
	gorm.Model
	AccountID    uint `gorm:"index;not null"`
	LevelGroupID int  `gorm:"not null"`
}

// AccountField is an arbitrary name/value pair submitted at registration
// time, e.g. profile links.
type AccountField struct {
	gorm.Model
	AccountID uint   `gorm:"index;not null"`
	Name      string `gorm:"not null"`
	Value     string
}

func (c *Client) CountAccountsByUsername(ctx context.Context, username string) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&Account{}).Where("username = ?", username).Count(&count).Error; err != nil {
		log.Error("failed to count accounts by username", "error", err)
		return 0, err
	}
	return count, nil
}

func (c *Client) CountAccountsByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		log.Error("failed to count accounts by email", "error", err)
		return 0, err
	}
	return count, nil
}

// CreateAccount persists the account together with its levels and fields in
// a single transaction. Field rows keep the order of the Fields slice.
func (c *Client) CreateAccount(ctx context.Context, account *Account) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(account).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		log.Error("failed to create account", "error", err)
		return err
	}
	return nil
}

func (c *Client) GetAccountByID(ctx context.Context, id uint) (*Account, error) {
	var account Account
	err := c.db.WithContext(ctx).
		Preload("Levels").
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&account, id).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get account by ID", "error", err)
		}
		return nil, err
	}
	return &account, nil
}

func (c *Client) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	var account Account
	err := c.db.WithContext(ctx).
		Preload("Levels").
		Preload("Fields", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("username = ?", username).
		First(&account).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get account by username", "error", err)
		}
		return nil, err
	}
	return &account, nil
}

// FindPendingConfirmation looks up the account matching the confirmation
// handshake: exact username and code, still pending and never logged in.
// Returns nil without error when no account matches.
func (c *Client) FindPendingConfirmation(ctx context.Context, username, confirmCode string) (*Account, error) {
	var account Account
	err := c.db.WithContext(ctx).
		Where("username = ? AND confirm_code = ? AND status = ? AND last_login IS NULL",
			username, confirmCode, StatusPending).
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to find pending confirmation", "error", err)
		return nil, err
	}
	return &account, nil
}

// ActivateAccount flips the account to active and clears the confirmation
// state.
func (c *Client) ActivateAccount(ctx context.Context, id uint) error {
	result := c.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).Updates(map[string]any{
		"status":       StatusActive,
		"confirm_code": nil,
		"status_text":  nil,
	})
	if result.Error != nil {
		log.Error("failed to activate account", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteStalePending removes pending accounts created before the cutoff that
// never logged in, together with their levels and fields. Returns the number
// of accounts removed.
func (c *Client) DeleteStalePending(ctx context.Context, before time.Time) (int64, error) {
	var deleted int64
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&Account{}).
			Where("status = ? AND last_login IS NULL AND created_utc < ?", StatusPending, before).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Unscoped().Where("account_id IN ?", ids).Delete(&AccountField{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("account_id IN ?", ids).Delete(&AccountLevel{}).Error; err != nil {
			return err
		}
		result := tx.Unscoped().Where("id IN ?", ids).Delete(&Account{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		log.Error("failed to delete stale pending accounts", "error", err)
		return 0, err
	}
	return deleted, nil
}

// isUniqueViolation reports whether the error comes from a unique index.
// The sqlite driver doesn't expose a typed error for this, so the message
// check is the fallback.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
