package account

import "errors"

// The closed set of failure kinds the registration workflow can return.
// They carry no user-facing wording, the locale package attaches that at the
// presentation layer. ErrInvalidInput is the odd one out: it signals a
// malformed call rather than a business failure and has no message at all.
var (
	ErrInvalidInput       = errors.New("invalid registration input")
	ErrUsernameDisallowed = errors.New("username is disallowed")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrTemplateUnreadable = errors.New("unable to load email template")
	ErrEmailSendFailed    = errors.New("email could not be sent")
	ErrConfirmCodeInvalid = errors.New("confirm register code is invalid")
)
