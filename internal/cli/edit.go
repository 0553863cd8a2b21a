package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/order-intake/internal/domain/order"
	"github.com/garyjia/order-intake/internal/domain/wizard"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	FormPath string
	DraftID  int64
	From     int
	To       int
}

// EditResult is the JSON output of edit
type EditResult struct {
	OrderID   int64  `json:"orderId"`
	Committed []int  `json:"committed"`
	Message   string `json:"message"`
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <orderID>",
		Short: "Commit form edits to an existing order",
		Long: `Commit form edits to an existing order.

Each step in the range is committed with the form file's content, then the
order summary is refreshed from the edited form. With --draft the edit also
keeps that draft current, so an interrupted edit can be picked up again.

Example:
  submit-order edit 17 --form shipment.yaml --from 7 --to 7`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			return runEdit(cmd.Context(), opts, orderID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.FormPath, "form", "", "form file (YAML)")
	cmd.Flags().Int64Var(&opts.DraftID, "draft", 0, "draft to keep in step with the edit")
	cmd.Flags().IntVar(&opts.From, "from", order.FirstStep, "first step to commit")
	cmd.Flags().IntVar(&opts.To, "to", order.LastStep, "last step to commit")
	_ = cmd.MarkFlagRequired("form")

	return cmd
}

func runEdit(ctx context.Context, opts *EditOptions, orderID int64, cmd *cobra.Command) error {
	if opts.From < order.FirstStep || opts.To > order.LastStep || opts.From > opts.To {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("step range %d..%d must lie within %d..%d", opts.From, opts.To, order.FirstStep, order.LastStep))
	}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	ff, err := LoadFormFile(opts.FormPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load form", err)
	}

	rt, err := newRuntime(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	session, err := rt.newSession(wizard.ModeEdit, orderID)
	if err != nil {
		return WrapExitError(ExitCommandError, "start session", err)
	}

	if opts.DraftID != 0 {
		if err := session.Resume(ctx, opts.DraftID); err != nil {
			return finishWith(rt, WrapExitError(ExitFailure, fmt.Sprintf("resume draft %d", opts.DraftID), err))
		}
	}

	actions := append(ff.Actions(), wizard.SetStep{Step: opts.From})
	if _, err := session.Edit(actions...); err != nil {
		return finishWith(rt, WrapExitError(ExitFailure, "apply form", err))
	}

	var committed []int
	for session.State().CurrentStep < opts.To {
		step := session.State().CurrentStep
		if err := session.Next(ctx); err != nil {
			return finishWith(rt, WrapExitError(ExitFailure, fmt.Sprintf("commit step %d", step), err))
		}
		committed = append(committed, step)
	}
	if _, err := session.Submit(ctx); err != nil {
		return finishWith(rt, WrapExitError(ExitFailure, fmt.Sprintf("commit step %d", opts.To), err))
	}
	committed = append(committed, opts.To)

	if err := rt.finish(); err != nil {
		return WrapExitError(ExitFailure, "finish", err)
	}

	message := session.State().Success
	return out.Success(
		fmt.Sprintf("%s\n  committed steps: %v", message, committed),
		EditResult{OrderID: orderID, Committed: committed, Message: message},
	)
}
