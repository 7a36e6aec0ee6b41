package jira

import (
	"context"
	"fmt"
	"time"

	"github.com/andygrunwald/go-jira"
)

// Client mirrors GitHub tracking issues into a Jira project.
type Client struct {
	client     *jira.Client
	projectKey string
	issueType  string
}

// NewClient creates a Jira API client using basic auth with an API token.
func NewClient(baseURL, email, apiToken, projectKey, issueType string) (*Client, error) {
	tp := jira.BasicAuthTransport{
		Username: email,
		Password: apiToken,
	}

	client, err := jira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Jira client: %w", err)
	}

	return &Client{
		client:     client,
		projectKey: projectKey,
		issueType:  issueType,
	}, nil
}

// MirrorIssue files a Jira issue pointing at the GitHub tracking issue.
func (c *Client) MirrorIssue(ctx context.Context, repoFullName, issueURL string) error {
	description := fmt.Sprintf(`
*Repository governance applied*
• Repository: %s
• Tracking issue: [View on GitHub|%s]

_Created: %s_
`, repoFullName, issueURL, time.Now().UTC().Format("2006-01-02 15:04:05"))

	issueData := jira.Issue{
		Fields: &jira.IssueFields{
			Project: jira.Project{
				Key: c.projectKey,
			},
			Type: jira.IssueType{
				Name: c.issueType,
			},
			Summary:     fmt.Sprintf("Branch protection applied to %s", repoFullName),
			Description: description,
			Labels: []string{
				"github-governance",
			},
		},
	}

	if _, _, err := c.client.Issue.CreateWithContext(ctx, &issueData); err != nil {
		return fmt.Errorf("failed to create issue in project %s: %w", c.projectKey, err)
	}
	return nil
}
