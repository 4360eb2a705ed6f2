package account

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/jvre/memberd/database"
	"github.com/jvre/memberd/notify/email"
)

// SendOptions tunes the email dispatch of a registration.
type SendOptions struct {
	// SkipAdminNotify suppresses the admin notification email.
	SkipAdminNotify bool
}

// verifyEmailData is passed to the user/admin verification templates.
// Username is HTML-escaped by the template engine.
type verifyEmailData struct {
	Username    string
	ConfirmLink string
}

type notifyAdminEmailData struct {
	Username string
}

// SendRegisterEmail dispatches the emails the current verification mode
// requires: the verification email to the registrant (modes 1 and 2) and the
// admin notification (mode 2, or when the notify toggle is on). It succeeds
// only if every required send succeeded.
func (s *Service) SendRegisterEmail(ctx context.Context, data RegisterData, opts SendOptions) error {
	if data.Username == "" || data.Email == "" {
		return ErrInvalidInput
	}

	cfg, err := s.db.GetSettingValues(ctx,
		database.SettingMemberVerification,
		database.SettingMailSenderEmail,
		database.SettingRegisterNotifyAdmin,
		database.SettingAdminVerifyEmails,
	)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	mode := ParseVerificationMode(cfg[database.SettingMemberVerification])
	if mode != VerificationNone && data.ConfirmCode == "" {
		return ErrInvalidInput
	}
	sender := cfg[database.SettingMailSenderEmail]

	if mode != VerificationNone {
		templateName := email.TemplateUserVerify
		subject := s.printer.Sprintf("Please confirm your account.")
		if mode == VerificationAdmin {
			templateName = email.TemplateAdminVerify
			subject = s.printer.Sprintf("Please verify user registration.")
		}

		body, err := s.templates.Render(templateName, verifyEmailData{
			Username:    data.Username,
			ConfirmLink: s.confirmLink(data.Username, data.ConfirmCode),
		})
		if err != nil {
			return fmt.Errorf("%w: %s", ErrTemplateUnreadable, err)
		}

		msg := email.Message{
			From:     sender,
			To:       []string{data.Email},
			Subject:  subject,
			HTMLBody: body,
		}
		if err := s.mailer.Send(msg); err != nil {
			log.Error("failed to send verification email", "to", data.Email, "error", err)
			return fmt.Errorf("%w: %s", ErrEmailSendFailed, err)
		}
	}

	notifyAdmin := mode == VerificationAdmin || cfg[database.SettingRegisterNotifyAdmin] == "1"
	if notifyAdmin && !opts.SkipAdminNotify {
		body, err := s.templates.Render(email.TemplateNotifyAdmin, notifyAdminEmailData{
			Username: data.Username,
		})
		if err != nil {
			return fmt.Errorf("%w: %s", ErrTemplateUnreadable, err)
		}

		recipients := splitEmails(cfg[database.SettingAdminVerifyEmails])
		if len(recipients) == 0 {
			log.Warn("admin notification requested but no admin emails configured")
			return nil
		}

		msg := email.Message{
			From:     sender,
			To:       recipients,
			Subject:  s.printer.Sprintf("A new account %s has been registered, please verify.", data.Username),
			HTMLBody: body,
		}
		if err := s.mailer.Send(msg); err != nil {
			log.Error("failed to send admin notification email", "to", recipients, "error", err)
			return fmt.Errorf("%w: %s", ErrEmailSendFailed, err)
		}
	}

	return nil
}

// confirmLink builds the confirmation URL with username and code escaped.
func (s *Service) confirmLink(username, code string) string {
	return fmt.Sprintf("%s/account/confirm-register/%s/%s",
		s.serverURL, url.PathEscape(username), url.PathEscape(code))
}

func splitEmails(configured string) []string {
	return lo.FilterMap(strings.Split(configured, ","), func(entry string, _ int) (string, bool) {
		entry = strings.TrimSpace(entry)
		return entry, entry != ""
	})
}
