// Package provisioner applies the repository governance workflow: make sure
// the default branch exists, protect it, and file a tracking issue.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"repoguard/internal/github"
	"repoguard/internal/templates"
	"repoguard/internal/utils"
)

const (
	readmePath    = "README.md"
	readmeMessage = "Added default README file"
)

// IssueMirror copies a filed tracking issue into another tracker.
type IssueMirror interface {
	MirrorIssue(ctx context.Context, repoFullName, issueURL string) error
}

// Provisioner runs the workflow against one repository at a time. It holds
// no per-repository state, so one instance serves every request.
type Provisioner struct {
	client     *github.Client
	templates  *templates.Loader
	alertUsers string
	mirror     IssueMirror
	logger     *utils.Logger
}

// New creates a Provisioner. mirror may be nil.
func New(client *github.Client, loader *templates.Loader, alertUsers string, mirror IssueMirror, logger *utils.Logger) *Provisioner {
	return &Provisioner{
		client:     client,
		templates:  loader,
		alertUsers: alertUsers,
		mirror:     mirror,
		logger:     logger,
	}
}

// Provision ensures the default branch, protects it and files the tracking
// issue, stopping at the first failing stage. It returns the location of
// the new issue.
//
// Nothing here is idempotent beyond the branch existence check: running it
// twice re-applies protection and files a second issue.
func (p *Provisioner) Provision(ctx context.Context, repo github.RepositoryRef) (string, error) {
	if err := repo.Validate(); err != nil {
		return "", err
	}
	log := p.logger.WithField("repo", repo.FullName)

	if err := p.ensureBranch(ctx, repo, log); err != nil {
		return "", err
	}

	protection, err := p.protectBranch(ctx, repo, log)
	if err != nil {
		return "", err
	}

	loc, err := p.fileIssue(ctx, repo, protection)
	if err != nil {
		return "", err
	}
	log.Info(fmt.Sprintf("Issue created at %s", loc))

	if p.mirror != nil {
		if err := p.mirror.MirrorIssue(ctx, repo.FullName, loc); err != nil {
			log.Error(fmt.Sprintf("Failed to mirror issue %s: %v", loc, err))
		}
	}
	return loc, nil
}

// ensureBranch creates the default branch when it is missing. GitHub only
// creates a branch with its first commit, so a README is committed.
func (p *Provisioner) ensureBranch(ctx context.Context, repo github.RepositoryRef, log *utils.Logger) error {
	log.Info(fmt.Sprintf("Retrieving branch from %s", p.client.BranchURL(repo)))

	_, status, err := p.client.GetBranch(ctx, repo)
	switch {
	case err != nil && status != 0:
		// GitHub answered with something other than 404; the branch is
		// assumed to exist and protection will report any real problem.
		log.Warn(fmt.Sprintf("Could not check branch %s: %v", repo.DefaultBranch, err))
		return nil
	case err == nil && status != http.StatusNotFound:
		return nil
	case err != nil:
		log.Info(fmt.Sprintf("Could not retrieve branch %s: %v", repo.DefaultBranch, err))
	}

	log.Info("Creating a default branch")
	readme := p.templates.Load(templates.Readme)
	if err := p.client.PutFile(ctx, repo, readmePath, readmeMessage, []byte(readme)); err != nil {
		return fmt.Errorf("failed to create default branch: %w", err)
	}
	log.Info(fmt.Sprintf("Created a readme at: %s", github.ContentsURL(repo, readmePath)))
	return nil
}

// protectBranch applies the protection template and returns its text for
// the tracking issue.
func (p *Provisioner) protectBranch(ctx context.Context, repo github.RepositoryRef, log *utils.Logger) (string, error) {
	text := p.templates.Load(templates.Protection)
	settings, err := github.ParseProtectionSettings(text)
	if err != nil {
		return "", fmt.Errorf("protection template: %w", err)
	}

	log.Info(fmt.Sprintf("Applying branch protection to: %s", p.client.ProtectionURL(repo)))
	if err := p.client.ProtectBranch(ctx, repo, settings); err != nil {
		return "", err
	}
	return text, nil
}

func (p *Provisioner) fileIssue(ctx context.Context, repo github.RepositoryRef, protection string) (string, error) {
	issue := templates.ComposeIssue(
		p.templates.Load(templates.IssueBody),
		p.templates.Load(templates.Issue),
		p.alertUsers,
		protection,
	)
	if issue == "" {
		return "", errors.New("issue template is empty")
	}
	return p.client.CreateIssue(ctx, repo, []byte(issue))
}
