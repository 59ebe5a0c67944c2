package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkrein/sigfuzz/internal/config"
)

func newConfigCmd(manifestPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the fuzzing manifest",
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the fuzzing manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*manifestPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d workers, backend %s)\n",
				*manifestPath, cfg.Run.Workers, cfg.Run.Backend)
			return nil
		},
	}

	cmd.AddCommand(validate)
	return cmd
}
