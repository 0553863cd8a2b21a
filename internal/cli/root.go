// Package cli implements the submit-order command, which drives wizard
// sessions against a running order service.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath  string
	BaseURL     string
	UserID      string
	Format      string // "json" | "text"
	Pushgateway string
	Verbose     bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for submit-order.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "submit-order",
		Short: "Drive order wizard sessions against the order service",
		Long: `Drive order wizard sessions against the order service.

Every command runs a real session: drafts are saved on each step, edits are
committed step by step and submission runs the full finalization.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (defaults and environment when empty)")
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "base-url", "", "order service URL, overrides client.base_url")
	cmd.PersistentFlags().StringVar(&opts.UserID, "user", "", "acting user id, overrides client.owner_id")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Pushgateway, "pushgateway", "", "push run metrics to this Prometheus pushgateway")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	// Add subcommands
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewViewCommand(opts))
	cmd.AddCommand(NewAssignCommand(opts))
	cmd.AddCommand(NewNotifyCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
