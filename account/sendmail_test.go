package account

import (
	"context"

	"github.com/jvre/memberd/database"
)

func (s *RegistrationSuite) TestSendRegisterEmailMissingFields() {
	err := s.svc.SendRegisterEmail(context.Background(), RegisterData{}, SendOptions{})
	s.ErrorIs(err, ErrInvalidInput)

	// Verification enabled but no code on the record.
	s.setVerification("1")
	err = s.svc.SendRegisterEmail(context.Background(), RegisterData{
		Username: "alice",
		Email:    "alice@example.com",
	}, SendOptions{})
	s.ErrorIs(err, ErrInvalidInput)
	s.Empty(s.mailer.Messages())
}

func (s *RegistrationSuite) TestSendRegisterEmailNoVerification() {
	err := s.svc.SendRegisterEmail(context.Background(), RegisterData{
		Username: "alice",
		Email:    "alice@example.com",
	}, SendOptions{})
	s.NoError(err)
	s.Empty(s.mailer.Messages())
}

func (s *RegistrationSuite) TestSendRegisterEmailUsesConfiguredSender() {
	s.setVerification("1")
	s.Require().NoError(s.db.SetSetting(context.Background(),
		database.SettingMailSenderEmail, "register@example.com"))

	err := s.svc.SendRegisterEmail(context.Background(), RegisterData{
		Username:    "alice",
		Email:       "alice@example.com",
		ConfirmCode: "a1B2c3",
	}, SendOptions{})
	s.Require().NoError(err)

	messages := s.mailer.Messages()
	s.Require().Len(messages, 1)
	s.Equal("register@example.com", messages[0].From)
}

func (s *RegistrationSuite) TestSendRegisterEmailEscapesUsername() {
	s.setVerification("1")

	err := s.svc.SendRegisterEmail(context.Background(), RegisterData{
		Username:    "<b>alice</b>",
		Email:       "alice@example.com",
		ConfirmCode: "a1B2c3",
	}, SendOptions{})
	s.Require().NoError(err)

	messages := s.mailer.Messages()
	s.Require().Len(messages, 1)
	s.NotContains(messages[0].HTMLBody, "<b>alice</b>")
	s.Contains(messages[0].HTMLBody, "&lt;b&gt;alice&lt;/b&gt;")
}

func (s *RegistrationSuite) TestSendRegisterEmailEscapesConfirmLink() {
	s.setVerification("1")

	err := s.svc.SendRegisterEmail(context.Background(), RegisterData{
		Username:    "alice smith",
		Email:       "alice@example.com",
		ConfirmCode: "a1B2c3",
	}, SendOptions{})
	s.Require().NoError(err)

	messages := s.mailer.Messages()
	s.Require().Len(messages, 1)
	s.Contains(messages[0].HTMLBody, "/account/confirm-register/alice%20smith/a1B2c3")
}

func (s *RegistrationSuite) TestSendRegisterEmailSkipAdminNotify() {
	s.setVerification("2")
	s.Require().NoError(s.db.SetSetting(context.Background(),
		database.SettingAdminVerifyEmails, "admin@example.com"))

	err := s.svc.SendRegisterEmail(context.Background(), RegisterData{
		Username:    "alice",
		Email:       "alice@example.com",
		ConfirmCode: "a1B2c3",
	}, SendOptions{SkipAdminNotify: true})
	s.Require().NoError(err)

	// Only the user-facing email was sent.
	messages := s.mailer.Messages()
	s.Require().Len(messages, 1)
	s.Equal([]string{"alice@example.com"}, messages[0].To)
}

func (s *RegistrationSuite) TestSendRegisterEmailNotifyToggleWithoutVerification() {
	s.Require().NoError(s.db.SetSetting(context.Background(), database.SettingRegisterNotifyAdmin, "1"))
	s.Require().NoError(s.db.SetSetting(context.Background(), database.SettingAdminVerifyEmails, "admin@example.com"))

	err := s.svc.SendRegisterEmail(context.Background(), RegisterData{
		Username: "alice",
		Email:    "alice@example.com",
	}, SendOptions{})
	s.Require().NoError(err)

	// No verification email, only the admin notification.
	messages := s.mailer.Messages()
	s.Require().Len(messages, 1)
	s.Equal([]string{"admin@example.com"}, messages[0].To)
}

func (s *RegistrationSuite) TestAdminNotifyWithoutRecipients() {
	s.setVerification("2")
	// member_admin_verify_emails left at its empty default.

	acc, err := s.svc.RegisterAccount(context.Background(), RegisterData{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	}, nil)
	s.Require().NoError(err)
	s.Equal(database.StatusPending, acc.Status)

	// Only the user-facing email went out; the missing recipient list is
	// logged, not treated as a send failure.
	messages := s.mailer.Messages()
	s.Require().Len(messages, 1)
	s.Equal([]string{"alice@example.com"}, messages[0].To)
	s.Equal(1, s.db.AccountCount())
}

func (s *RegistrationSuite) TestUnreadableTemplate() {
	s.setVerification("1")
	svc := New(s.db, s.mailer, &mockTemplates{RenderError: errTransport}, s.svc.printer, testServerURL)

	_, err := svc.RegisterAccount(context.Background(), RegisterData{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse battery staple",
	}, nil)
	s.ErrorIs(err, ErrTemplateUnreadable)
	s.Zero(s.db.AccountCount())
	s.Empty(s.mailer.Messages())
}
