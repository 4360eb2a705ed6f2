package database

import (
	"context"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Setting is a single administrator-tunable value consulted at request time.
// Settings live in the database so admins can change them without a restart.
type Setting struct {
	gorm.Model
	Name  string `gorm:"uniqueIndex;not null"`
	Value string
}

// Setting names consulted by the registration workflow.
const (
	// SettingMemberVerification selects the verification mode:
	// "0" none, "1" user confirms via email link, "2" admin approves.
	SettingMemberVerification = "member_verification"
	// SettingDisallowedUsernames is a comma-separated list of usernames
	// that can never be registered.
	SettingDisallowedUsernames = "member_disallow_username"
	// SettingMailSenderEmail is the from address for workflow emails.
	SettingMailSenderEmail = "mail_sender_email"
	// SettingRegisterNotifyAdmin toggles the admin notification email
	// ("1" on, anything else off).
	SettingRegisterNotifyAdmin = "member_register_notify_admin"
	// SettingAdminVerifyEmails is the comma-separated admin recipient list.
	SettingAdminVerifyEmails = "member_admin_verify_emails"
)

func defaultSettings() []Setting {
	return []Setting{
		{Name: SettingMemberVerification, Value: "0"},
		{Name: SettingDisallowedUsernames, Value: "admin, administrator, root, webmaster"},
		{Name: SettingMailSenderEmail, Value: "no-reply@localhost"},
		{Name: SettingRegisterNotifyAdmin, Value: "0"},
		{Name: SettingAdminVerifyEmails, Value: ""},
	}
}

// KnownSettingNames returns the setting names the server understands.
func KnownSettingNames() []string {
	defaults := defaultSettings()
	names := make([]string, 0, len(defaults))
	for _, s := range defaults {
		names = append(names, s.Name)
	}
	return names
}

// seedSettings inserts missing defaults without touching existing values.
func (c *Client) seedSettings() error {
	for _, s := range defaultSettings() {
		err := c.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&s).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// GetSettingValues returns the current values for the requested names.
// Names without a stored row are absent from the result.
func (c *Client) GetSettingValues(ctx context.Context, names ...string) (map[string]string, error) {
	var settings []Setting
	if err := c.db.WithContext(ctx).Where("name IN ?", names).Find(&settings).Error; err != nil {
		log.Error("failed to get settings", "error", err)
		return nil, err
	}
	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Name] = s.Value
	}
	return values, nil
}

func (c *Client) GetAllSettings(ctx context.Context) ([]Setting, error) {
	var settings []Setting
	if err := c.db.WithContext(ctx).Order("name").Find(&settings).Error; err != nil {
		log.Error("failed to get all settings", "error", err)
		return nil, err
	}
	return settings, nil
}

// SetSetting creates or updates a single setting.
func (c *Client) SetSetting(ctx context.Context, name, value string) error {
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{"value": value}),
	}).Create(&Setting{Name: name, Value: value}).Error
	if err != nil {
		log.Error("failed to set setting", "name", name, "error", err)
		return err
	}
	return nil
}
