package account

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// PurgeUnconfirmed removes pending accounts that never completed their
// confirmation within the given window. Returns the number of accounts
// removed.
func (s *Service) PurgeUnconfirmed(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	deleted, err := s.db.DeleteStalePending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge unconfirmed accounts: %w", err)
	}

	if deleted > 0 {
		log.Info("purged unconfirmed accounts", "count", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}
