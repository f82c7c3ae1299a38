package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Criteria values accepted for the aggregate verified policy. Anything else
// is treated as a comma-separated list of channel keys.
const (
	CriteriaAny = "any"
	CriteriaAll = "all"
)

// SMTPConfig holds mail server settings shared by the smtp channel provider
// and the reset-password mail sender.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"25"`
	TLS      bool   `yaml:"tls" env:"SMTP_TLS" env-default:"false"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM" env-default:"no-reply@example.com"`
}

// TwilioConfig holds the telephony API credentials for the twilio channel
// provider.
type TwilioConfig struct {
	AccountSid string `yaml:"account_sid" env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `yaml:"auth_token" env:"TWILIO_AUTH_TOKEN"`
	From       string `yaml:"from" env:"TWILIO_FROM" env-default:"+15005550006"`
}

// ProviderConfig binds a channel key to a delivery provider by name.
// Name selects the provider implementation ("smtp", "twilio", "debug");
// the matching credential block applies.
type ProviderConfig struct {
	Name    string       `yaml:"name" env-default:"debug"`
	Subject string       `yaml:"subject" env-default:"User Verification"`
	SMTP    SMTPConfig   `yaml:"smtp"`
	Twilio  TwilioConfig `yaml:"twilio"`
}

// ChannelConfig holds per-channel verification settings.
type ChannelConfig struct {
	CodeFormat      string         `yaml:"code_format" env-default:"complex"`
	Expiry          int            `yaml:"expiry"` // seconds; 0 means no expiry
	SuccessRedirect string         `yaml:"success_redirect"`
	ErrorRedirect   string         `yaml:"error_redirect"`
	Provider        ProviderConfig `yaml:"provider"`
}

// VerificationConfig holds the stateful verify-code flow settings. The Keys
// map is loaded from a YAML file because channels are open-ended and do not
// fit flat environment variables.
type VerificationConfig struct {
	Criteria       string                   `yaml:"criteria" env:"VERIFY_CRITERIA" env-default:"any"`
	AutoUpdate     bool                     `yaml:"auto_update" env:"VERIFY_AUTO_UPDATE" env-default:"true"`
	AutoSendSignup bool                     `yaml:"auto_send_signup" env:"VERIFY_AUTO_SEND_SIGNUP" env-default:"false"`
	AutoSendUpdate bool                     `yaml:"auto_send_update" env:"VERIFY_AUTO_SEND_UPDATE" env-default:"false"`
	Required       bool                     `yaml:"required" env:"VERIFY_REQUIRED" env-default:"false"`
	ModifySchema   bool                     `yaml:"modify_schema" env:"VERIFY_MODIFY_SCHEMA" env-default:"true"`
	ErrorRedirect  string                   `yaml:"error_redirect" env:"VERIFY_ERROR_REDIRECT"`
	Keys           map[string]ChannelConfig `yaml:"keys"`
}

// ResetConfig holds the stateless reset-password flow settings.
type ResetConfig struct {
	AppName             string `yaml:"app_name" env:"APP_NAME" env-default:"simple-verify"`
	URLPrefix           string `yaml:"url_prefix" env:"URL_PREFIX" env-default:"http://localhost:4000"`
	SecretKey           string `yaml:"secret_key" env:"RESET_SECRET_KEY" env-required:"true"`
	SecureMatch         bool   `yaml:"secure_match" env:"RESET_SECURE_MATCH" env-default:"false"`
	Sender              string `yaml:"sender" env:"RESET_SENDER" env-default:"no-reply@example.com"`
	SenderName          string `yaml:"sender_name" env:"RESET_SENDER_NAME"`
	ReplyTo             string `yaml:"reply_to" env:"RESET_REPLY_TO"`
	ReplyToName         string `yaml:"reply_to_name" env:"RESET_REPLY_TO_NAME"`
	Subject             string `yaml:"subject" env:"RESET_SUBJECT" env-default:"Reset password instructions"`
	ResetURLLifetime    int    `yaml:"reset_url_lifetime" env:"RESET_URL_LIFETIME" env-default:"43200"` // seconds
	SuccessRedirect     string `yaml:"success_redirect" env:"RESET_SUCCESS_REDIRECT"`
	ErrorRedirect       string `yaml:"error_redirect" env:"RESET_ERROR_REDIRECT"`
	NotificationEnabled bool   `yaml:"notification_enabled" env:"RESET_NOTIFICATION_ENABLED" env-default:"false"`
	WelcomeEnabled      bool   `yaml:"welcome_enabled" env:"WELCOME_EMAIL_ENABLED" env-default:"false"`
}

// Config is the root configuration loaded once at startup and immutable
// afterwards.
type Config struct {
	Reset        ResetConfig        `yaml:"reset"`
	Verification VerificationConfig `yaml:"verification"`
	SMTP         SMTPConfig         `yaml:"smtp"`
	Twilio       TwilioConfig       `yaml:"twilio"`
}

// Load reads configuration from the optional YAML file at path, then applies
// environment overrides. An empty path loads from environment only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants that cannot be expressed with struct tags.
func (c *Config) Validate() error {
	if err := c.Verification.Validate(); err != nil {
		return err
	}
	if c.Reset.ResetURLLifetime <= 0 {
		return fmt.Errorf("reset_url_lifetime must be positive")
	}
	return nil
}

// Validate checks the verification criteria against the configured keys.
func (v *VerificationConfig) Validate() error {
	switch v.Criteria {
	case CriteriaAny, CriteriaAll:
		return nil
	}
	for _, key := range v.CriteriaKeys() {
		if _, ok := v.Keys[key]; !ok {
			return fmt.Errorf("criteria names unconfigured channel key %q", key)
		}
	}
	return nil
}

// CriteriaKeys returns the channel keys named by a comma-list criteria.
func (v *VerificationConfig) CriteriaKeys() []string {
	parts := strings.Split(v.Criteria, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// HasKey reports whether a channel key is configured for verification.
func (v *VerificationConfig) HasKey(key string) bool {
	_, ok := v.Keys[key]
	return ok
}
