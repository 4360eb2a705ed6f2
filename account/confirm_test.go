package account

import (
	"context"

	"github.com/samber/lo"

	"github.com/jvre/memberd/database"
)

func (s *RegistrationSuite) TestConfirmRegister() {
	s.setVerification("1")

	acc, err := s.register("alice", "alice@example.com")
	s.Require().NoError(err)
	s.Require().NotNil(acc.ConfirmCode)

	s.Require().NoError(s.svc.ConfirmRegister(context.Background(), "alice", *acc.ConfirmCode))

	stored, err := s.db.GetAccountByID(context.Background(), acc.ID)
	s.Require().NoError(err)
	s.Equal(database.StatusActive, stored.Status)
	s.Nil(stored.ConfirmCode)
	s.Nil(stored.StatusText)
}

func (s *RegistrationSuite) TestConfirmRegisterEmptyInput() {
	s.ErrorIs(s.svc.ConfirmRegister(context.Background(), "", "a1B2c3"), ErrInvalidInput)
	s.ErrorIs(s.svc.ConfirmRegister(context.Background(), "alice", ""), ErrInvalidInput)
}

func (s *RegistrationSuite) TestConfirmRegisterWrongCode() {
	s.setVerification("1")

	acc, err := s.register("alice", "alice@example.com")
	s.Require().NoError(err)

	err = s.svc.ConfirmRegister(context.Background(), "alice", "zzzzzz")
	s.ErrorIs(err, ErrConfirmCodeInvalid)

	// Still pending, code untouched.
	stored, err := s.db.GetAccountByID(context.Background(), acc.ID)
	s.Require().NoError(err)
	s.Equal(database.StatusPending, stored.Status)
	s.Equal(acc.ConfirmCode, stored.ConfirmCode)
}

func (s *RegistrationSuite) TestConfirmRegisterWrongUsername() {
	s.setVerification("1")

	acc, err := s.register("alice", "alice@example.com")
	s.Require().NoError(err)

	err = s.svc.ConfirmRegister(context.Background(), "bob", *acc.ConfirmCode)
	s.ErrorIs(err, ErrConfirmCodeInvalid)
}

func (s *RegistrationSuite) TestConfirmRegisterAlreadyActive() {
	s.setVerification("1")

	acc, err := s.register("alice", "alice@example.com")
	s.Require().NoError(err)

	code := *acc.ConfirmCode
	s.Require().NoError(s.svc.ConfirmRegister(context.Background(), "alice", code))

	// A second confirmation finds no pending account.
	err = s.svc.ConfirmRegister(context.Background(), "alice", code)
	s.ErrorIs(err, ErrConfirmCodeInvalid)
}

func (s *RegistrationSuite) TestConfirmRegisterSkipsLoggedInAccounts() {
	s.setVerification("1")

	acc, err := s.register("alice", "alice@example.com")
	s.Require().NoError(err)

	s.db.SetLastLogin(acc.ID, lo.ToPtr(acc.CreatedAt))

	err = s.svc.ConfirmRegister(context.Background(), "alice", *acc.ConfirmCode)
	s.ErrorIs(err, ErrConfirmCodeInvalid)
}
