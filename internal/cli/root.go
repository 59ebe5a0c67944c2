// Package cli wires the sigfuzz command surface.
package cli

import (
	stdcontext "context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the sigfuzz command tree.
func NewRootCmd() *cobra.Command {
	var manifestPath string

	root := &cobra.Command{
		Use:   "sigfuzz",
		Short: "Signal-driven fuzzing runner",
		Long: "sigfuzz feeds candidate inputs to a target program and triages its " +
			"terminations: crash-worthy signals persist the triggering input as a " +
			"crash artifact.",
	}

	root.PersistentFlags().
		StringVarP(&manifestPath, "file", "f", "sigfuzz.yaml", "Path to fuzzing manifest")

	root.AddCommand(newRunCmd(&manifestPath))
	root.AddCommand(newConfigCmd(&manifestPath))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	root.SetContext(ctx)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
