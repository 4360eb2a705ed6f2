package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the memberd server and its dependencies.
type Config struct {
	// Listen is the address the memberd server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the base URL of the memberd server, used to build
	// confirmation links in outgoing emails.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// SessionKey is the key used to encrypt session data.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// APIKey protects the admin API endpoints.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// Locale selects the language for user-facing messages (BCP 47 tag).
	Locale string `yaml:"locale" mapstructure:"locale"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Email holds the SMTP configuration for workflow emails.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// Registration holds the registration maintenance configuration.
	Registration *RegistrationConfig `yaml:"registration" mapstructure:"registration"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the path to the SQLite database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// EmailConfig holds the SMTP configuration.
type EmailConfig struct {
	// SMTPHost is the hostname of the SMTP server.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the port of the SMTP server.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username for SMTP authentication, empty disables auth.
	Username string `yaml:"username" mapstructure:"username"`
	// Password for SMTP authentication.
	Password string `yaml:"password" mapstructure:"password"`
	// FromName is the display name used in the From header.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// FromEmail is the fallback sender address when the settings store
	// has no mail_sender_email value.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// UseTLS enables STARTTLS (typically port 587).
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL enables implicit SSL/TLS (typically port 465).
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	// TemplatesDir overrides the embedded email templates when set.
	TemplatesDir string `yaml:"templates_dir" mapstructure:"templates_dir"`
}

// RegistrationConfig holds settings for registration maintenance.
type RegistrationConfig struct {
	// PurgeEnabled controls the scheduled purge of never-confirmed accounts.
	PurgeEnabled bool `yaml:"purge_enabled" mapstructure:"purge_enabled"`
	// PurgeSchedule is the cron schedule for the purge job.
	PurgeSchedule string `yaml:"purge_schedule" mapstructure:"purge_schedule"`
	// PurgeAfterDays is the age in days after which a pending account
	// that never confirmed is removed.
	PurgeAfterDays int `yaml:"purge_after_days" mapstructure:"purge_after_days"`
}

// Load reads the configuration from the specified path and returns a Config
// struct. If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Configure Viper
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MEMBERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		// Use specific config file
		v.SetConfigFile(path)
	} else {
		// Search for config in common locations
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.memberd")
		v.AddConfigPath("/etc/memberd")
	}

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with the MEMBERD_ prefix override config file values")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required configs
	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3010")
	v.SetDefault("server_url", "http://localhost:3010")
	v.SetDefault("session_key", "")
	v.SetDefault("api_key", "")
	v.SetDefault("locale", "en")

	// Database defaults
	v.SetDefault("database.path", "./data/memberd.db")

	// Email defaults
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_name", "Memberd")
	v.SetDefault("email.from_email", "")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.insecure_skip_verify", false)
	v.SetDefault("email.templates_dir", "")

	// Registration defaults
	v.SetDefault("registration.purge_enabled", false)
	v.SetDefault("registration.purge_schedule", "0 3 * * *") // Every day at 3am
	v.SetDefault("registration.purge_after_days", 7)
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing memberd config")
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	if c.SessionKey == "" {
		return fmt.Errorf("session key is required")
	}

	if c.Database == nil || c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Email == nil {
		return fmt.Errorf("missing email config")
	}
	if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
		return fmt.Errorf("smtp port must be between 1 and 65535")
	}
	if c.Email.UseTLS && c.Email.UseSSL {
		return fmt.Errorf("use_tls and use_ssl are mutually exclusive")
	}

	if c.Registration == nil {
		return fmt.Errorf("missing registration config")
	}
	if c.Registration.PurgeEnabled {
		// Basic validation for cron format (5 fields)
		cronFields := strings.Fields(c.Registration.PurgeSchedule)
		if len(cronFields) != 5 {
			return fmt.Errorf("purge schedule must be a valid cron expression with 5 fields (minute hour day month weekday)")
		}
		if c.Registration.PurgeAfterDays <= 0 {
			return fmt.Errorf("purge after days must be greater than 0 when the purge job is enabled")
		}
	}

	return nil
}
