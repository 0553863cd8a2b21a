package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/garyjia/order-intake/internal/domain/wizard"
)

// AssignResult is the JSON output of assign
type AssignResult struct {
	OrderID  int64  `json:"orderId"`
	Assignee string `json:"assignee"`
}

// NewAssignCommand creates the assign command.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <orderID> <assignee>",
		Short: "Assign an order to a user",
		Long: `Assign an order to a user.

The order service notifies the assignee.

Example:
  submit-order assign 17 prod-lead`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			if args[1] == "" {
				return NewExitError(ExitCommandError, "assignee is required")
			}
			return runAssign(cmd.Context(), rootOpts, orderID, args[1], cmd)
		},
	}

	return cmd
}

func runAssign(ctx context.Context, opts *RootOptions, orderID int64, assignee string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	rt, err := newRuntime(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	session, err := rt.newSession(wizard.ModeAssign, orderID)
	if err != nil {
		return WrapExitError(ExitCommandError, "start session", err)
	}

	if err := session.Assign(ctx, assignee); err != nil {
		return finishWith(rt, WrapExitError(ExitFailure, "assign order", err))
	}

	if err := rt.finish(); err != nil {
		return WrapExitError(ExitFailure, "finish", err)
	}

	return out.Success(session.State().Success, AssignResult{OrderID: orderID, Assignee: assignee})
}
