package email

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
)

// Template names used by the registration workflow.
const (
	TemplateUserVerify  = "register_user_verify.html"
	TemplateAdminVerify = "register_admin_verify.html"
	TemplateNotifyAdmin = "register_notify_admin.html"
)

// ErrTemplateNotFound is returned when a template is missing or empty.
var ErrTemplateNotFound = errors.New("email template not found")

//go:embed templates/*.html
var defaultTemplates embed.FS

// Store resolves named email templates. Templates in the override directory
// take precedence over the embedded defaults, so operators can rebrand the
// emails without rebuilding.
type Store struct {
	overrideDir string
}

// NewStore creates a template store. overrideDir may be empty.
func NewStore(overrideDir string) *Store {
	return &Store{
		overrideDir: overrideDir,
	}
}

// Render loads the named template and executes it with data.
func (s *Store) Render(name string, data any) (string, error) {
	content, err := s.read(name)
	if err != nil {
		return "", err
	}

	t, err := template.New(name).Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

func (s *Store) read(name string) (string, error) {
	if s.overrideDir != "" {
		content, err := os.ReadFile(filepath.Join(s.overrideDir, name))
		switch {
		case err == nil:
			if len(bytes.TrimSpace(content)) == 0 {
				return "", fmt.Errorf("%w: %s resolves to empty", ErrTemplateNotFound, name)
			}
			return string(content), nil
		case !os.IsNotExist(err):
			return "", fmt.Errorf("failed to read template %s: %w", name, err)
		}
	}

	content, err := defaultTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return "", fmt.Errorf("%w: %s resolves to empty", ErrTemplateNotFound, name)
	}
	return string(content), nil
}
