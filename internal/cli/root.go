package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"repoguard/internal/config"
	"repoguard/internal/github"
	"repoguard/internal/handlers"
	"repoguard/internal/jira"
	"repoguard/internal/provisioner"
	"repoguard/internal/templates"
	"repoguard/internal/utils"
)

type globalFlags struct {
	logLevel string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "repoguard",
		Short: "Apply branch protection and a tracking issue to newly created GitHub repositories",
		Long: `repoguard receives GitHub "repository" webhooks and, for every created repository,
makes sure the default branch exists, protects it, and files an issue describing
the protection that was applied.

Examples:
	# Run the webhook service (default command)
	repoguard serve

	# Apply the workflow to existing repositories
	repoguard protect my-org/api my-org/web

	# Compute the X-Hub-Signature-256 header for a payload
	repoguard sign payload.json

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Log every GitHub API call at debug level")

	serve := newServeCmd(flags)
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newProtectCmd(flags), newSignCmd())
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// setup loads and validates configuration and builds the logger.
func setup(flags *globalFlags, requireSecret bool) (*config.Config, *utils.Logger, error) {
	cfg, dotenv, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.verbose {
		cfg.Verbose = true
		if flags.logLevel == "" {
			cfg.LogLevel = "debug"
		}
	}
	if err := cfg.Validate(requireSecret); err != nil {
		return nil, nil, err
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	if !dotenv {
		logger.Debug("No .env file found, using system environment variables")
	}
	return cfg, logger, nil
}

// newDispatcher wires the GitHub client, templates, optional Jira mirror and
// provisioner from cfg.
func newDispatcher(cfg *config.Config, logger *utils.Logger) (*handlers.Dispatcher, error) {
	client, err := github.NewClient(github.Options{
		Token:        cfg.APIToken,
		BaseEndpoint: cfg.BaseEndpoint,
		Accept:       cfg.APIAccept,
		Verbose:      cfg.Verbose,
	}, logger)
	if err != nil {
		return nil, err
	}

	var mirror provisioner.IssueMirror
	if cfg.Jira.Enabled() {
		jiraClient, err := jira.NewClient(cfg.Jira.BaseURL, cfg.Jira.Email, cfg.Jira.APIToken, cfg.Jira.ProjectKey, cfg.Jira.IssueType)
		if err != nil {
			logger.Error(fmt.Sprintf("Jira client initialization failed: %v (continuing without Jira)", err))
		} else {
			mirror = jiraClient
			logger.Info("Jira issue mirror enabled")
		}
	}

	loader := templates.NewLoader(cfg.TemplateFiles.Overrides(), logger)
	prov := provisioner.New(client, loader, cfg.AlertUsers, mirror, logger)
	return handlers.NewDispatcher(cfg.ServiceSecret, client, prov, cfg.BulkConcurrency, logger), nil
}
