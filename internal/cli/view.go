package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garyjia/order-intake/internal/application/workflow"
	"github.com/garyjia/order-intake/internal/domain/wizard"
)

// ViewOptions holds flags for the view command.
type ViewOptions struct {
	*RootOptions
}

// StepView is one step in the JSON output of view
type StepView struct {
	Step  int                        `json:"step"`
	Slug  string                     `json:"slug"`
	Found bool                       `json:"found"`
	Data  json.RawMessage            `json:"data,omitempty"`
	Tabs  map[string]json.RawMessage `json:"tabs,omitempty"`
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "view <orderID>",
		Short: "Show every saved step of an order",
		Long: `Show every saved step of an order.

Steps that were never saved are listed as missing.

Example:
  submit-order view 17 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := parseOrderID(args[0])
			if err != nil {
				return err
			}
			return runView(cmd.Context(), opts, orderID, cmd)
		},
	}

	return cmd
}

func runView(ctx context.Context, opts *ViewOptions, orderID int64, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	rt, err := newRuntime(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	session, err := rt.newSession(wizard.ModeView, orderID)
	if err != nil {
		return WrapExitError(ExitCommandError, "start session", err)
	}

	steps, err := session.Load(ctx)
	if err != nil {
		return finishWith(rt, WrapExitError(ExitFailure, fmt.Sprintf("load order %d", orderID), err))
	}

	if err := rt.finish(); err != nil {
		return WrapExitError(ExitFailure, "finish", err)
	}

	views := make([]StepView, 0, len(steps))
	for _, s := range steps {
		views = append(views, StepView{Step: s.Step, Slug: s.Slug, Found: s.Found, Data: s.Data, Tabs: s.Tabs})
	}
	return out.Success(describeSteps(orderID, steps), views)
}

func describeSteps(orderID int64, steps []workflow.StepData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sales order #%d\n", orderID)
	for _, s := range steps {
		switch {
		case !s.Found:
			fmt.Fprintf(&b, "  step %d %-20s missing\n", s.Step, s.Slug)
		case len(s.Tabs) > 0:
			fmt.Fprintf(&b, "  step %d %-20s %d tab(s)\n", s.Step, s.Slug, len(s.Tabs))
		default:
			fmt.Fprintf(&b, "  step %d %-20s %d bytes\n", s.Step, s.Slug, len(s.Data))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseOrderID accepts positive integers only
func parseOrderID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid order id %q", arg))
	}
	return id, nil
}
