package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/order-intake/internal/application/workflow"
	"github.com/garyjia/order-intake/internal/domain/order"
	"github.com/garyjia/order-intake/internal/domain/wizard"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	FormPath string
	DraftID  int64
}

// CreateResult is the JSON output of create
type CreateResult struct {
	OrderID           int64    `json:"orderId"`
	DraftID           int64    `json:"draftId"`
	State             string   `json:"state"`
	NotificationsSent int      `json:"notificationsSent"`
	DraftDeleted      bool     `json:"draftDeleted"`
	FailedSteps       []string `json:"failedSteps,omitempty"`
	Failures          []string `json:"failures,omitempty"`
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sales order from a form file",
		Long: `Create a sales order from a form file.

The session walks all eight steps. The first step creates a draft, later
steps update it, and the last step submits: the order is created, every step
is committed, assignees and the creator are notified and the draft is removed.

Example:
  submit-order create --form order.yaml --user sales-1
  submit-order create --draft 42 --form rest-of-order.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.FormPath, "form", "", "form file (YAML)")
	cmd.Flags().Int64Var(&opts.DraftID, "draft", 0, "resume this draft instead of starting a new one")

	return cmd
}

func runCreate(ctx context.Context, opts *CreateOptions, cmd *cobra.Command) error {
	if opts.FormPath == "" && opts.DraftID == 0 {
		return NewExitError(ExitCommandError, "either --form or --draft is required")
	}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	var ff *FormFile
	if opts.FormPath != "" {
		loaded, err := LoadFormFile(opts.FormPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "load form", err)
		}
		ff = loaded
	}

	rt, err := newRuntime(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	session, err := rt.newSession(wizard.ModeCreate, 0)
	if err != nil {
		return WrapExitError(ExitCommandError, "start session", err)
	}

	if opts.DraftID != 0 {
		if err := session.Resume(ctx, opts.DraftID); err != nil {
			return finishWith(rt, WrapExitError(ExitFailure, fmt.Sprintf("resume draft %d", opts.DraftID), err))
		}
	}
	if ff != nil {
		if _, err := session.Edit(ff.Actions()...); err != nil {
			return finishWith(rt, WrapExitError(ExitFailure, "apply form", err))
		}
	}

	for session.State().CurrentStep < order.LastStep {
		if err := session.Next(ctx); err != nil {
			return finishWith(rt, WrapExitError(ExitFailure,
				fmt.Sprintf("save step %d", session.State().CurrentStep), err))
		}
	}
	draftID := session.State().DraftID

	result, err := session.Submit(ctx)
	if err != nil {
		return finishWith(rt, WrapExitError(ExitFailure, "submit order", err))
	}

	if err := rt.finish(); err != nil {
		return WrapExitError(ExitFailure, "finish", err)
	}

	if err := out.Success(describeResult(result, draftID), CreateResult{
		OrderID:           result.OrderID,
		DraftID:           draftID,
		State:             string(result.State),
		NotificationsSent: result.NotificationsSent,
		DraftDeleted:      result.DraftDeleted,
		FailedSteps:       result.FailedSteps(),
		Failures:          result.Failures,
	}); err != nil {
		return err
	}

	if result.Partial() {
		return NewExitError(ExitPartial, result.Summary())
	}
	return nil
}

func describeResult(result *workflow.FinalizeResult, draftID int64) string {
	var b strings.Builder
	fmt.Fprintln(&b, result.Summary())
	fmt.Fprintf(&b, "  draft:         #%d (deleted: %t)\n", draftID, result.DraftDeleted)
	fmt.Fprintf(&b, "  notifications: %d sent\n", result.NotificationsSent)
	for _, step := range result.Steps {
		status := "ok"
		if step.Err != nil {
			status = step.Err.Error()
		}
		fmt.Fprintf(&b, "  step %d %-20s %s\n", step.Step, step.Slug, status)
	}
	return strings.TrimRight(b.String(), "\n")
}

// finishWith flushes metrics and returns err
func finishWith(rt *runtime, err error) error {
	if ferr := rt.finish(); ferr != nil {
		rt.logger.Error("Finish failed", zap.Error(ferr))
	}
	return err
}
