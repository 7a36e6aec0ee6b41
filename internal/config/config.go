// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"repoguard/internal/templates"
)

// Config is built once at startup and handed to every component.
type Config struct {
	APIToken      string `envconfig:"GH_API_TOKEN"`
	BaseEndpoint  string `envconfig:"GH_BASE_ENDPOINT" default:"https://api.github.com"`
	APIAccept     string `envconfig:"GH_API_ACCEPT" default:"application/vnd.github.v3+json"`
	Verbose       bool   `envconfig:"GH_VERBOSE"`
	AlertUsers    string `envconfig:"ALERT_USERS"`
	ServiceSecret string `envconfig:"SERVICE_SECRET"`

	Port      string `envconfig:"PORT" default:"3000"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// BulkConcurrency bounds how many repositories /repo/protect works on at
	// once. 1 processes the list strictly in order.
	BulkConcurrency int `envconfig:"BULK_CONCURRENCY" default:"1"`

	TemplateFiles
	Jira Jira `envconfig:"JIRA"`
}

// TemplateFiles are optional paths replacing the bundled templates.
type TemplateFiles struct {
	Protection string `envconfig:"REPO_PROTECTION_TEMPLATE_FILE"`
	IssueBody  string `envconfig:"REPO_ISSUE_BODY_TEMPLATE_FILE"`
	Issue      string `envconfig:"REPO_ISSUE_TEMPLATE_FILE"`
	Readme     string `envconfig:"REPO_DEFAULT_README_FILE"`
}

// Jira configures the optional issue mirror. It is enabled when BaseURL,
// Email and APIToken are all set.
type Jira struct {
	BaseURL    string `envconfig:"BASE_URL"`
	Email      string `envconfig:"EMAIL"`
	APIToken   string `envconfig:"API_TOKEN"`
	ProjectKey string `envconfig:"PROJECT_KEY" default:"GOV"`
	IssueType  string `envconfig:"ISSUE_TYPE" default:"Task"`
}

// Enabled reports whether the Jira mirror is fully configured.
func (j Jira) Enabled() bool {
	return j.BaseURL != "" && j.Email != "" && j.APIToken != ""
}

// Overrides converts the template paths for templates.NewLoader.
func (t TemplateFiles) Overrides() templates.Overrides {
	return templates.Overrides{
		templates.Protection: t.Protection,
		templates.IssueBody:  t.IssueBody,
		templates.Issue:      t.Issue,
		templates.Readme:     t.Readme,
	}
}

// Load reads a .env file when present, then the process environment.
// It reports whether a .env file was found so the caller can log it.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, dotenv, fmt.Errorf("reading environment: %w", err)
	}
	cfg.AlertUsers = strings.TrimSpace(cfg.AlertUsers)
	return &cfg, dotenv, nil
}

// Validate checks the settings the service cannot run without.
// Webhook intake requires a secret; the CLI protect path does not.
func (c *Config) Validate(requireSecret bool) error {
	var errs []error
	if requireSecret && c.ServiceSecret == "" {
		errs = append(errs, errors.New("SERVICE_SECRET is required"))
	}
	if u, err := url.Parse(c.BaseEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("GH_BASE_ENDPOINT %q must be an absolute URL", c.BaseEndpoint))
	}
	if c.BulkConcurrency < 1 {
		errs = append(errs, fmt.Errorf("BULK_CONCURRENCY must be >= 1, got %d", c.BulkConcurrency))
	}
	if c.APIToken == "" {
		errs = append(errs, errors.New("GH_API_TOKEN is required"))
	}
	return errors.Join(errs...)
}
