package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/garyjia/order-intake/internal/application/port"
	"github.com/garyjia/order-intake/internal/domain/order"
)

// StepCommitter writes step payloads of an existing order
type StepCommitter struct {
	api    port.StepAPI
	logger Logger
}

// NewStepCommitter creates a new StepCommitter
func NewStepCommitter(api port.StepAPI, logger Logger) *StepCommitter {
	return &StepCommitter{
		api:    api,
		logger: logger,
	}
}

// CommitStep builds the payload of step from tree and saves it, returning the
// payload that was sent. Step 2 is saved as three independent tabs: all are
// attempted and failures come back together as *TabCommitError.
func (c *StepCommitter) CommitStep(ctx context.Context, step int, orderID int64, tree order.FormTree) (json.RawMessage, error) {
	fd, err := order.DecodeForm(tree)
	if err != nil {
		return nil, err
	}
	return c.commitDecoded(ctx, step, orderID, fd)
}

func (c *StepCommitter) commitDecoded(ctx context.Context, step int, orderID int64, fd order.FormData) (json.RawMessage, error) {
	info, ok := order.Step(step)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}

	payload := order.BuildPayload(step, fd)
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode step %d payload: %w", step, err)
	}

	if step == 2 {
		return data, c.commitTabs(ctx, orderID, fd)
	}

	if err := c.api.SaveStep(ctx, orderID, info.Slug, payload); err != nil {
		c.logger.Error("Failed to save step", "error", err, "order_id", orderID, "step", info.Slug)
		return nil, fmt.Errorf("save step %s: %w", info.Slug, err)
	}

	c.logger.Info("Step saved", "order_id", orderID, "step", info.Slug)
	return data, nil
}

func (c *StepCommitter) commitTabs(ctx context.Context, orderID int64, fd order.FormData) error {
	tabErr := &TabCommitError{OrderID: orderID}

	for _, tab := range order.BuildSalesOrderTabs(fd) {
		if err := c.api.SaveStep(ctx, orderID, order.TabStepKey(tab.Tab), tab.Payload); err != nil {
			c.logger.Error("Failed to save sales order tab", "error", err, "order_id", orderID, "tab", tab.Tab)
			tabErr.add(tab.Tab, err)
		}
	}

	if len(tabErr.Failed) > 0 {
		return tabErr
	}
	c.logger.Info("Step saved", "order_id", orderID, "step", "sales-order")
	return nil
}

// StepData is what the server holds for one step. For step 2, Tabs carries
// the tab payloads and Data is unset.
type StepData struct {
	Step  int
	Slug  string
	Found bool
	Data  json.RawMessage
	Tabs  map[string]json.RawMessage
}

// FetchStep reads a step back. A step that was never saved is not an error.
func (c *StepCommitter) FetchStep(ctx context.Context, step int, orderID int64) (StepData, error) {
	info, ok := order.Step(step)
	if !ok {
		return StepData{}, fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	out := StepData{Step: step, Slug: info.Slug}

	if step == 2 {
		out.Tabs = make(map[string]json.RawMessage)
		for _, tab := range order.SalesOrderTabs {
			data, found, err := c.api.GetStep(ctx, orderID, order.TabStepKey(tab))
			if err != nil {
				return StepData{}, fmt.Errorf("fetch sales order tab %s: %w", tab, err)
			}
			if found {
				out.Tabs[tab] = data
				out.Found = true
			}
		}
		return out, nil
	}

	data, found, err := c.api.GetStep(ctx, orderID, info.Slug)
	if err != nil {
		return StepData{}, fmt.Errorf("fetch step %s: %w", info.Slug, err)
	}
	out.Found = found
	out.Data = data
	return out, nil
}

// FetchAll reads every step of an order back, in step order
func (c *StepCommitter) FetchAll(ctx context.Context, orderID int64) ([]StepData, error) {
	all := make([]StepData, 0, order.LastStep)
	for step := order.FirstStep; step <= order.LastStep; step++ {
		data, err := c.FetchStep(ctx, step, orderID)
		if err != nil {
			return nil, err
		}
		all = append(all, data)
	}
	return all, nil
}
