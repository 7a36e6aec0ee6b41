package templates

import (
	"embed"
	"fmt"
	"os"

	"repoguard/internal/utils"
)

//go:embed defaults/*
var defaults embed.FS

// Name identifies one of the four governance templates.
type Name string

const (
	Protection Name = "repo_protection_template.json"
	IssueBody  Name = "repo_protection_issue.md"
	Issue      Name = "repo_protection_issue_template.json"
	Readme     Name = "repo_default_readme.md"
)

// Overrides maps a template to a file on disk that replaces the bundled copy.
type Overrides map[Name]string

// Loader resolves templates from override files first and the bundled
// defaults second. Nothing is cached: every Load reads the source again so
// edited override files take effect without a restart.
type Loader struct {
	overrides Overrides
	logger    *utils.Logger
}

func NewLoader(overrides Overrides, logger *utils.Logger) *Loader {
	return &Loader{overrides: overrides, logger: logger}
}

// Load returns the template text, or "" when it cannot be read.
func (l *Loader) Load(name Name) string {
	text, err := l.read(name)
	if err != nil {
		l.logger.Error(fmt.Sprintf("Failed to load template %s: %v", name, err))
		return ""
	}
	return text
}

func (l *Loader) read(name Name) (string, error) {
	if path := l.overrides[name]; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading override %s: %w", path, err)
		}
		return string(data), nil
	}

	data, err := defaults.ReadFile("defaults/" + string(name))
	if err != nil {
		return "", fmt.Errorf("reading bundled template: %w", err)
	}
	return string(data), nil
}
