package handlers

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"repoguard/internal/github"
	"repoguard/internal/signature"
	"repoguard/internal/utils"
)

const actionCreated = "created"

// Provisioner applies the governance workflow to one repository.
type Provisioner interface {
	Provision(ctx context.Context, repo github.RepositoryRef) (string, error)
}

// RepositoryFetcher loads the current state of a repository by full name.
type RepositoryFetcher interface {
	GetRepository(ctx context.Context, repo github.RepositoryRef) (github.RepositoryRef, error)
}

// Dispatcher routes verified webhook events and bulk requests to the
// provisioner. Every outcome is logged; nothing is returned to callers.
type Dispatcher struct {
	secret      string
	repos       RepositoryFetcher
	provisioner Provisioner
	concurrency int
	logger      *utils.Logger
}

// NewDispatcher creates a Dispatcher. concurrency below 1 is treated as 1.
func NewDispatcher(secret string, repos RepositoryFetcher, provisioner Provisioner, concurrency int, logger *utils.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{
		secret:      secret,
		repos:       repos,
		provisioner: provisioner,
		concurrency: concurrency,
		logger:      logger,
	}
}

// HandleEvent authenticates a raw webhook body against its signature
// header and provisions the repository of a "created" event.
func (d *Dispatcher) HandleEvent(ctx context.Context, body []byte, sig string) {
	if !signature.Verify(body, sig, d.secret) {
		d.logger.Error(fmt.Sprintf("Signature supplied is not valid. Not processing request of %d bytes", len(body)))
		return
	}

	event, err := github.DecodeWebhookEvent(body)
	if err != nil {
		d.logger.Error(err.Error())
		return
	}

	if event.Action != actionCreated {
		d.logger.Info(fmt.Sprintf("Ignoring event: action=%q repo=%s", event.Action, event.Repository.FullName))
		return
	}
	if err := event.Repository.Validate(); err != nil {
		d.logger.Error(fmt.Sprintf("failed to decode webhook event: %v", err))
		return
	}

	d.logger.Info(fmt.Sprintf("Processing event: action=%q repo=%s default_branch=%s",
		event.Action, event.Repository.FullName, event.Repository.DefaultBranch))
	if _, err := d.provisioner.Provision(ctx, event.Repository); err != nil {
		d.logger.Error(fmt.Sprintf("Could not apply protections to repo %s. Error is %v", event.Repository.FullName, err))
	}
}

// ProtectRepositories runs the workflow for each full name. A failure is
// logged and never stops the remaining repositories. With a concurrency of
// 1 the names are processed strictly in order.
func (d *Dispatcher) ProtectRepositories(ctx context.Context, fullNames []string) {
	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for _, name := range fullNames {
		g.Go(func() error {
			d.protect(ctx, name)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) protect(ctx context.Context, fullName string) {
	log := d.logger.WithField("repo", fullName)

	repo, err := d.repos.GetRepository(ctx, github.RepositoryRef{FullName: fullName})
	if err == nil {
		err = repo.Validate()
	}
	if err != nil {
		log.Error(fmt.Sprintf("Could not apply protections to repo %s. Error is %v", fullName, err))
		return
	}
	if _, err := d.provisioner.Provision(ctx, repo); err != nil {
		log.Error(fmt.Sprintf("Could not apply protections to repo %s. Error is %v", fullName, err))
		return
	}
	log.Info(fmt.Sprintf("Protection applied to repo %s", fullName))
}
