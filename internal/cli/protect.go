package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newProtectCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "protect OWNER/REPO...",
		Short: "Apply the governance workflow to existing repositories",
		Long: `Fetch each repository and apply the same workflow a "created" webhook triggers.
Failures are logged per repository and do not stop the remaining ones.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags, false)
			if err != nil {
				return err
			}
			dispatcher, err := newDispatcher(cfg, logger)
			if err != nil {
				return err
			}
			dispatcher.ProtectRepositories(context.Background(), args)
			return nil
		},
	}
}
