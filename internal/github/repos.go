package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/go-github/v56/github"
)

// Endpoint templates, relative to the configured base endpoint.
const (
	repoPath       = "/repos/{full_name}"
	branchPath     = "/repos/{full_name}/branches/{branch}"
	protectionPath = "/repos/{full_name}/branches/{branch}/protection"
	issuesPath     = "/repos/{full_name}/issues"
)

func (c *Client) RepoURL(repo RepositoryRef) string {
	return ExpandURL(c.base+repoPath, repo)
}

func (c *Client) BranchURL(repo RepositoryRef) string {
	return ExpandURL(c.base+branchPath, repo)
}

func (c *Client) ProtectionURL(repo RepositoryRef) string {
	return ExpandURL(c.base+protectionPath, repo)
}

func (c *Client) IssuesURL(repo RepositoryRef) string {
	return ExpandURL(c.base+issuesPath, repo)
}

// GetRepository fetches the full representation of repo, which only needs
// FullName set.
func (c *Client) GetRepository(ctx context.Context, repo RepositoryRef) (RepositoryRef, error) {
	var r github.Repository
	status, err := c.Get(ctx, c.RepoURL(repo), &r)
	if err != nil {
		return RepositoryRef{}, fmt.Errorf("failed to get repository %s: %w", repo.FullName, err)
	}
	if status == http.StatusNotFound {
		return RepositoryRef{}, fmt.Errorf("failed to get repository %s: %w", repo.FullName,
			&APIError{Method: http.MethodGet, URL: c.RepoURL(repo), StatusCode: status, Body: "Not Found"})
	}
	return refFromRepository(&r), nil
}

// GetBranch fetches the default branch of repo. A nil BranchInfo with
// status 404 means the branch does not exist.
func (c *Client) GetBranch(ctx context.Context, repo RepositoryRef) (*BranchInfo, int, error) {
	var b github.Branch
	status, err := c.Get(ctx, c.BranchURL(repo), &b)
	if err != nil || status == http.StatusNotFound {
		return nil, status, err
	}
	return &BranchInfo{Name: b.GetName(), Protected: b.GetProtected()}, status, nil
}

// PutFile creates or updates a file through the contents API. GitHub
// expects content base64 encoded; the []byte field marshals that way.
func (c *Client) PutFile(ctx context.Context, repo RepositoryRef, path, message string, content []byte) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
	}
	if _, err := c.Put(ctx, ContentsURL(repo, path), opts); err != nil {
		return fmt.Errorf("failed to put %s in %s: %w", path, repo.FullName, err)
	}
	return nil
}

// ProtectBranch replaces the protection of the default branch of repo.
func (c *Client) ProtectBranch(ctx context.Context, repo RepositoryRef, settings *ProtectionSettings) error {
	if _, err := c.Put(ctx, c.ProtectionURL(repo), settings); err != nil {
		return fmt.Errorf("failed to protect branch %s: %w", repo, err)
	}
	return nil
}

// CreateIssue posts a prepared JSON issue payload and returns its location.
func (c *Client) CreateIssue(ctx context.Context, repo RepositoryRef, payload []byte) (string, error) {
	loc, err := c.Post(ctx, c.IssuesURL(repo), json.RawMessage(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create issue in %s: %w", repo.FullName, err)
	}
	return loc, nil
}
