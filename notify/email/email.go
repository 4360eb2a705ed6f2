package email

import (
	"crypto/tls"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	mail "github.com/xhit/go-simple-mail/v2"

	"github.com/jvre/memberd/config"
)

// Message is a single outbound mail.
type Message struct {
	// From overrides the configured sender address when set.
	From     string
	To       []string
	Subject  string
	HTMLBody string
}

// Sender delivers messages over SMTP using go-simple-mail.
type Sender struct {
	config *config.EmailConfig
}

// New creates a new email sender.
func New(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
	}
}

// Send delivers a single message. The plain-text alternative is derived from
// the HTML body.
func (s *Sender) Send(msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	// Create SMTP server configuration
	server := mail.NewSMTPClient()
	server.Host = s.config.SMTPHost
	server.Port = s.config.SMTPPort
	server.Username = s.config.Username
	server.Password = s.config.Password

	// Configure encryption
	if s.config.UseSSL {
		server.Encryption = mail.EncryptionSSLTLS
	} else if s.config.UseTLS {
		server.Encryption = mail.EncryptionSTARTTLS
	} else {
		server.Encryption = mail.EncryptionNone
	}

	// Configure TLS settings
	if s.config.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	// Create SMTP client
	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() {
		if closeErr := smtpClient.Close(); closeErr != nil {
			log.Warn("Failed to close SMTP client", "error", closeErr)
		}
	}()

	// Create email
	email := mail.NewMSG()

	from := msg.From
	if from == "" {
		from = s.config.FromEmail
	}
	if s.config.FromName != "" {
		email.SetFrom(fmt.Sprintf("%s <%s>", s.config.FromName, from))
	} else {
		email.SetFrom(from)
	}

	for _, to := range msg.To {
		email.AddTo(to)
	}

	email.SetSubject(msg.Subject)

	// Set HTML body plus the stripped plain-text alternative
	email.SetBody(mail.TextHTML, msg.HTMLBody)
	email.AddAlternative(mail.TextPlain, PlainAlternative(msg.HTMLBody))

	if email.Error != nil {
		return fmt.Errorf("failed to build email: %w", email.Error)
	}

	// Send email
	if err := email.Send(smtpClient); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info("Email sent successfully", "to", msg.To, "subject", msg.Subject)
	return nil
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// PlainAlternative derives the text/plain part from an HTML body: tags are
// stripped and tabs removed.
func PlainAlternative(htmlBody string) string {
	return strings.ReplaceAll(htmlTagPattern.ReplaceAllString(htmlBody, ""), "\t", "")
}
