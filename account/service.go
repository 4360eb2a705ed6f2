// Package account implements the registration workflow: validating submitted
// fields against the settings store and existing records, persisting new
// accounts with their default permission level, and dispatching the
// verification and notification emails.
package account

import (
	"strings"

	"golang.org/x/text/message"

	"github.com/jvre/memberd/database"
	"github.com/jvre/memberd/notify/email"
)

// DefaultLevelGroup is the permission group assigned to every new account.
const DefaultLevelGroup = 3

// VerificationMode controls how a new registration is verified.
type VerificationMode int

const (
	// VerificationNone activates accounts immediately.
	VerificationNone VerificationMode = 0
	// VerificationUser requires the user to confirm via an emailed link.
	VerificationUser VerificationMode = 1
	// VerificationAdmin requires an administrator to approve the account.
	VerificationAdmin VerificationMode = 2
)

// ParseVerificationMode interprets the stored member_verification value.
// Anything unrecognized means no verification.
func ParseVerificationMode(value string) VerificationMode {
	switch strings.TrimSpace(value) {
	case "1":
		return VerificationUser
	case "2":
		return VerificationAdmin
	default:
		return VerificationNone
	}
}

// Mailer delivers outbound messages.
type Mailer interface {
	Send(msg email.Message) error
}

// Templates loads and renders named email templates.
type Templates interface {
	Render(name string, data any) (string, error)
}

// Service runs the registration workflow against its collaborators.
type Service struct {
	db        database.DB
	mailer    Mailer
	templates Templates
	printer   *message.Printer
	serverURL string
}

// New creates a new registration service. serverURL is the public base URL
// used to build confirmation links.
func New(db database.DB, mailer Mailer, templates Templates, printer *message.Printer, serverURL string) *Service {
	return &Service{
		db:        db,
		mailer:    mailer,
		templates: templates,
		printer:   printer,
		serverURL: strings.TrimSuffix(serverURL, "/"),
	}
}

// RegisterData carries the submitted registration fields.
type RegisterData struct {
	Username string
	Email    string
	Password string
	// ConfirmCode is filled by the workflow when verification is enabled.
	ConfirmCode string
}

// CustomField is an arbitrary name/value pair stored with the account.
type CustomField struct {
	Name  string
	Value string
}
