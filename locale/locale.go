// Package locale maps workflow outcomes to human-readable text.
// The registration workflow itself only returns typed error kinds, the
// wording lives here.
package locale

import (
	"errors"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jvre/memberd/account"
)

func init() {
	register()
}

// register fills the default catalog. English is the source language, so it
// only needs entries where the key and the text differ.
func register() {
	for _, entry := range entries {
		for lang, text := range entry.translations {
			if err := message.SetString(lang, entry.key, text); err != nil {
				log.Error("failed to register translation", "key", entry.key, "error", err)
			}
		}
	}
}

type catalogEntry struct {
	key          string
	translations map[language.Tag]string
}

var entries = []catalogEntry{
	{
		key: "This username is not allowed.",
		translations: map[language.Tag]string{
			language.English: "This username is not allowed.",
			language.German:  "Dieser Benutzername ist nicht erlaubt.",
		},
	},
	{
		key: "This username already exists.",
		translations: map[language.Tag]string{
			language.English: "This username already exists.",
			language.German:  "Dieser Benutzername existiert bereits.",
		},
	},
	{
		key: "This email already exists.",
		translations: map[language.Tag]string{
			language.English: "This email already exists.",
			language.German:  "Diese E-Mail-Adresse existiert bereits.",
		},
	},
	{
		key: "Unable to load the email template.",
		translations: map[language.Tag]string{
			language.English: "Unable to load the email template.",
			language.German:  "Die E-Mail-Vorlage konnte nicht geladen werden.",
		},
	},
	{
		key: "The email could not be sent.",
		translations: map[language.Tag]string{
			language.English: "The email could not be sent.",
			language.German:  "Die E-Mail konnte nicht gesendet werden.",
		},
	},
	{
		key: "Your confirm register code is invalid.",
		translations: map[language.Tag]string{
			language.English: "Your confirm register code is invalid.",
			language.German:  "Ihr Bestätigungscode ist ungültig.",
		},
	},
	{
		key: "Your account has been activated. You can now sign in.",
		translations: map[language.Tag]string{
			language.English: "Your account has been activated. You can now sign in.",
			language.German:  "Ihr Konto wurde aktiviert. Sie können sich jetzt anmelden.",
		},
	},
	{
		key: "Waiting for admin verification.",
		translations: map[language.Tag]string{
			language.English: "Waiting for admin verification.",
			language.German:  "Warten auf die Freigabe durch einen Administrator.",
		},
	},
	{
		key: "Please confirm your registration from the link in your email.",
		translations: map[language.Tag]string{
			language.English: "Please confirm your registration from the link in your email.",
			language.German:  "Bitte bestätigen Sie Ihre Registrierung über den Link in Ihrer E-Mail.",
		},
	},
	{
		key: "Please confirm your account.",
		translations: map[language.Tag]string{
			language.English: "Please confirm your account.",
			language.German:  "Bitte bestätigen Sie Ihr Konto.",
		},
	},
	{
		key: "Please verify user registration.",
		translations: map[language.Tag]string{
			language.English: "Please verify user registration.",
			language.German:  "Bitte überprüfen Sie die Registrierung.",
		},
	},
	{
		key: "A new account %s has been registered, please verify.",
		translations: map[language.Tag]string{
			language.English: "A new account %s has been registered, please verify.",
			language.German:  "Ein neues Konto %s wurde registriert, bitte überprüfen.",
		},
	},
}

// NewPrinter returns a message printer for the given BCP 47 language tag.
// Unknown or empty tags fall back to English.
func NewPrinter(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		if lang != "" {
			log.Warn("unknown locale, falling back to English", "locale", lang)
		}
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// ErrorMessage maps a workflow failure to a localized human-readable string.
// account.ErrInvalidInput deliberately has no message of its own, callers
// are expected to handle it before the message-bearing kinds.
func ErrorMessage(p *message.Printer, err error) string {
	switch {
	case errors.Is(err, account.ErrUsernameDisallowed):
		return p.Sprintf("This username is not allowed.")
	case errors.Is(err, account.ErrUsernameExists):
		return p.Sprintf("This username already exists.")
	case errors.Is(err, account.ErrEmailExists):
		return p.Sprintf("This email already exists.")
	case errors.Is(err, account.ErrTemplateUnreadable):
		return p.Sprintf("Unable to load the email template.")
	case errors.Is(err, account.ErrEmailSendFailed):
		return p.Sprintf("The email could not be sent.")
	case errors.Is(err, account.ErrConfirmCodeInvalid):
		return p.Sprintf("Your confirm register code is invalid.")
	default:
		return ""
	}
}
