package account

import (
	"context"
	"time"
)

func (s *RegistrationSuite) TestPurgeUnconfirmed() {
	s.setVerification("1")

	_, err := s.register("stale", "stale@example.com")
	s.Require().NoError(err)
	s.db.SetCreatedUTC(1, time.Now().UTC().Add(-14*24*time.Hour))

	_, err = s.register("fresh", "fresh@example.com")
	s.Require().NoError(err)

	deleted, err := s.svc.PurgeUnconfirmed(context.Background(), 7*24*time.Hour)
	s.Require().NoError(err)
	s.EqualValues(1, deleted)
	s.Equal(1, s.db.AccountCount())
}

func (s *RegistrationSuite) TestPurgeUnconfirmedError() {
	s.db.DeleteStalePendingError = errTransport

	_, err := s.svc.PurgeUnconfirmed(context.Background(), 7*24*time.Hour)
	s.ErrorIs(err, errTransport)
}
