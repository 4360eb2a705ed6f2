package account

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// ConfirmRegister completes an email-based registration: the exact username
// and confirmation code must match an account that is still pending and has
// never logged in. On success the account becomes active and the
// confirmation state is cleared.
func (s *Service) ConfirmRegister(ctx context.Context, username, confirmCode string) error {
	if username == "" || confirmCode == "" {
		return ErrInvalidInput
	}

	acc, err := s.db.FindPendingConfirmation(ctx, username, confirmCode)
	if err != nil {
		return fmt.Errorf("failed to look up pending confirmation: %w", err)
	}
	if acc == nil {
		return ErrConfirmCodeInvalid
	}

	if err := s.db.ActivateAccount(ctx, acc.ID); err != nil {
		return fmt.Errorf("failed to activate account: %w", err)
	}

	log.Info("account confirmed", "account_id", acc.ID, "username", username)
	return nil
}
