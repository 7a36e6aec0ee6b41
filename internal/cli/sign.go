package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"repoguard/internal/config"
	"repoguard/internal/signature"
)

func newSignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign FILE",
		Short: "Print the X-Hub-Signature-256 value for a payload (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.ServiceSecret == "" {
				return errors.New("SERVICE_SECRET is required")
			}

			var body []byte
			if args[0] == "-" {
				body, err = io.ReadAll(cmd.InOrStdin())
			} else {
				body, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading payload: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), signature.Sign(body, cfg.ServiceSecret))
			return nil
		},
	}
}
