package github

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v56/github"
)

// RepositoryRef carries the repository fields the governance workflow
// substitutes into endpoint URLs.
type RepositoryRef struct {
	FullName      string
	DefaultBranch string
	ContentsURL   string
}

func (r RepositoryRef) String() string {
	return fmt.Sprintf("%s@%s", r.FullName, r.DefaultBranch)
}

// Validate reports the fields the workflow cannot build endpoint URLs
// without. An empty field would expand to a path on the API root.
func (r RepositoryRef) Validate() error {
	var missing []string
	if r.FullName == "" {
		missing = append(missing, "full_name")
	}
	if r.DefaultBranch == "" {
		missing = append(missing, "default_branch")
	}
	if r.ContentsURL == "" {
		missing = append(missing, "contents_url")
	}
	if len(missing) > 0 {
		return errors.New("repository is missing " + strings.Join(missing, ", "))
	}
	return nil
}

// BranchInfo is the part of a branch response used to test existence.
type BranchInfo struct {
	Name      string
	Protected bool
}

// WebhookEvent is a decoded "repository" webhook delivery.
type WebhookEvent struct {
	Action     string
	Repository RepositoryRef
}

func refFromRepository(repo *github.Repository) RepositoryRef {
	return RepositoryRef{
		FullName:      repo.GetFullName(),
		DefaultBranch: repo.GetDefaultBranch(),
		ContentsURL:   repo.GetContentsURL(),
	}
}

// DecodeWebhookEvent parses a repository webhook body. Unknown fields are
// ignored and a missing action decodes as "".
func DecodeWebhookEvent(body []byte) (WebhookEvent, error) {
	var event github.RepositoryEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return WebhookEvent{}, fmt.Errorf("failed to decode webhook event: %w", err)
	}
	return WebhookEvent{
		Action:     event.GetAction(),
		Repository: refFromRepository(event.GetRepo()),
	}, nil
}

// ExpandURL fills the {full_name} and {branch} tokens of an endpoint template.
func ExpandURL(template string, repo RepositoryRef) string {
	return strings.NewReplacer(
		"{full_name}", repo.FullName,
		"{branch}", repo.DefaultBranch,
	).Replace(template)
}

// ContentsURL fills the {+path} token of the repository contents URL.
func ContentsURL(repo RepositoryRef, path string) string {
	return strings.ReplaceAll(repo.ContentsURL, "{+path}", path)
}
