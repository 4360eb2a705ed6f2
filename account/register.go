package account

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/jvre/memberd/database"
)

const (
	confirmCodeLength   = 6
	confirmCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RegisterAccount validates the submitted fields, sends the workflow emails
// and persists the new account with its default level and any custom fields.
// The first failure short-circuits; nothing is written to the database until
// every email that the verification mode requires has been sent.
func (s *Service) RegisterAccount(ctx context.Context, data RegisterData, fields []CustomField) (*database.Account, error) {
	if data.Username == "" || data.Email == "" || data.Password == "" {
		return nil, ErrInvalidInput
	}

	cfg, err := s.db.GetSettingValues(ctx,
		database.SettingMemberVerification,
		database.SettingDisallowedUsernames,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	mode := ParseVerificationMode(cfg[database.SettingMemberVerification])

	if usernameDisallowed(data.Username, cfg[database.SettingDisallowedUsernames]) {
		return nil, ErrUsernameDisallowed
	}

	count, err := s.db.CountAccountsByUsername(ctx, data.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameExists
	}

	count, err = s.db.CountAccountsByEmail(ctx, data.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}

	if mode != VerificationNone {
		code, err := confirmCode(confirmCodeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate confirm code: %w", err)
		}
		data.ConfirmCode = code
	}

	// The submitted address has to be reachable before anything is written,
	// so the workflow emails go out first and a failure aborts the whole
	// registration.
	if err := s.SendRegisterEmail(ctx, data, SendOptions{}); err != nil {
		return nil, err
	}

	hash, err := HashPassword(data.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	acc := &database.Account{
		Username:   data.Username,
		Email:      data.Email,
		Password:   hash,
		CreatedUTC: now.UTC(),
	}
	acc.CreatedAt = now

	switch mode {
	case VerificationNone:
		acc.Status = database.StatusActive
	case VerificationUser:
		acc.Status = database.StatusPending
		acc.StatusText = lo.ToPtr(s.printer.Sprintf("Please confirm your registration from the link in your email."))
		acc.ConfirmCode = lo.ToPtr(data.ConfirmCode)
	case VerificationAdmin:
		acc.Status = database.StatusPending
		acc.StatusText = lo.ToPtr(s.printer.Sprintf("Waiting for admin verification."))
		acc.ConfirmCode = lo.ToPtr(data.ConfirmCode)
	}

	acc.Levels = []database.AccountLevel{{LevelGroupID: DefaultLevelGroup}}
	acc.Fields = lo.Map(fields, func(f CustomField, _ int) database.AccountField {
		return database.AccountField{Name: f.Name, Value: f.Value}
	})

	if err := s.db.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			// Lost the race against a concurrent registration, the unique
			// index caught it. Re-check to report the right kind.
			if n, cerr := s.db.CountAccountsByUsername(ctx, data.Username); cerr == nil && n > 0 {
				return nil, ErrUsernameExists
			}
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.Info("registered new account",
		"account_id", acc.ID,
		"username", acc.Username,
		"verification", int(mode),
	)

	return acc, nil
}

// usernameDisallowed checks the submitted username against the configured
// comma-separated list. Spacing after commas is tolerated, matching is exact
// after trimming.
func usernameDisallowed(username, configured string) bool {
	if configured == "" {
		return false
	}
	disallowed := strings.Split(strings.ReplaceAll(configured, ", ", ","), ",")
	return lo.SomeBy(disallowed, func(entry string) bool {
		return strings.TrimSpace(entry) == username
	})
}

// confirmCode generates a random alphanumeric code of length n.
func confirmCode(n int) (string, error) {
	max := big.NewInt(int64(len(confirmCodeAlphabet)))
	code := make([]byte, n)
	for i := range code {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = confirmCodeAlphabet[idx.Int64()]
	}
	return string(code), nil
}
