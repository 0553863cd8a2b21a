package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/entity"
)

// NotifyOptions holds flags for the notify command.
type NotifyOptions struct {
	*RootOptions
	Type      string
	RelatedID int64
}

// NotifyResult is the JSON output of notify
type NotifyResult struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
}

// NewNotifyCommand creates the notify command.
func NewNotifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NotifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "notify <userID> <message>",
		Short: "Send a test notification",
		Long: `Send a test notification through the order service.

When chat delivery is enabled on the service, the user also receives the
message in chat. Use this to check a deployment's delivery path.

Example:
  submit-order notify ou_123 "delivery check"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotify(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "test", "notification type")
	cmd.Flags().Int64Var(&opts.RelatedID, "order", 0, "related order id")

	return cmd
}

func runNotify(ctx context.Context, opts *NotifyOptions, userID, message string, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	rt, err := newRuntime(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	req := port.NotificationRequest{
		UserID:  userID,
		Message: message,
		Type:    opts.Type,
	}
	if opts.RelatedID > 0 {
		related := opts.RelatedID
		req.RelatedID = &related
		req.RelatedType = entity.RelatedTypeSalesOrder
	}

	if err := rt.client.SendNotification(ctx, req); err != nil {
		return finishWith(rt, WrapExitError(ExitFailure, "send notification", err))
	}

	if err := rt.finish(); err != nil {
		return WrapExitError(ExitFailure, "finish", err)
	}

	return out.Success(fmt.Sprintf("Notification sent to %s", userID), NotifyResult{UserID: userID, Type: opts.Type})
}
