package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/order-intake/internal/container"
)

// startService runs a complete order service on a temporary database
func startService(t *testing.T) string {
	t.Helper()

	cfg := container.DefaultConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "orders.db")
	cfg.Metrics.Runtime = false

	c, err := container.NewContainer(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	t.Cleanup(func() { _ = c.Close() })

	srv := httptest.NewServer(c.Server().Router())
	t.Cleanup(srv.Close)
	return srv.URL
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeData(t *testing.T, output string, data interface{}) {
	t.Helper()

	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp), output)
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, data))
}

func TestCommands_ArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "create without form or draft", args: []string{"create"}, code: ExitCommandError},
		{name: "create with missing form file", args: []string{"create", "--form", "/nonexistent/form.yaml"}, code: ExitCommandError},
		{name: "view with invalid id", args: []string{"view", "abc"}, code: ExitCommandError},
		{name: "assign with zero id", args: []string{"assign", "0", "someone"}, code: ExitCommandError},
		{name: "edit with inverted range", args: []string{"edit", "1", "--form", "x.yaml", "--from", "5", "--to", "2"}, code: ExitCommandError},
		{name: "edit past last step", args: []string{"edit", "1", "--form", "x.yaml", "--to", "9"}, code: ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, GetExitCode(err))
		})
	}
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "view", "1", "--format", "xml")
	assert.ErrorContains(t, err, `invalid format "xml"`)
}

func apiJSON(t *testing.T, method, url string, body, data interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Less(t, resp.StatusCode, 300)

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, data))
}

func TestEdit_KeepsDraftCurrent(t *testing.T) {
	baseURL := startService(t)
	form := writeForm(t, sampleForm)

	out, err := execute(t, "create", "--form", form, "--base-url", baseURL, "--format", "json")
	require.NoError(t, err, out)
	var created CreateResult
	decodeData(t, out, &created)

	var draft struct {
		ID int64 `json:"id"`
	}
	apiJSON(t, http.MethodPost, baseURL+"/api/drafts", map[string]interface{}{
		"formData":    map[string]interface{}{},
		"currentStep": 2,
		"poDocuments": []interface{}{},
	}, &draft)
	require.Positive(t, draft.ID)

	out, err = execute(t, "edit", strconv.FormatInt(created.OrderID, 10), "--form", form,
		"--draft", strconv.FormatInt(draft.ID, 10), "--from", "6", "--base-url", baseURL, "--format", "json")
	require.NoError(t, err, out)

	var stored struct {
		CurrentStep int             `json:"currentStep"`
		FormData    json.RawMessage `json:"formData"`
	}
	apiJSON(t, http.MethodGet, baseURL+"/api/drafts/"+strconv.FormatInt(draft.ID, 10), nil, &stored)
	assert.Equal(t, 8, stored.CurrentStep, "the draft follows the edit to its last step")
	assert.Contains(t, string(stored.FormData), "PO-1")
}

func TestCreateViewEditAssign(t *testing.T) {
	baseURL := startService(t)
	form := writeForm(t, sampleForm)

	out, err := execute(t, "create", "--form", form, "--base-url", baseURL, "--user", "sales-1", "--format", "json")
	require.NoError(t, err, out)

	var created CreateResult
	decodeData(t, out, &created)
	assert.Positive(t, created.OrderID)
	assert.Positive(t, created.DraftID)
	assert.Equal(t, "DONE", created.State)
	assert.True(t, created.DraftDeleted)
	assert.Equal(t, 3, created.NotificationsSent, "two assignees and the creator")
	assert.Empty(t, created.Failures)

	orderID := strconv.FormatInt(created.OrderID, 10)

	out, err = execute(t, "view", orderID, "--base-url", baseURL, "--format", "json")
	require.NoError(t, err, out)

	var steps []StepView
	decodeData(t, out, &steps)
	require.Len(t, steps, 8)
	for _, s := range steps {
		assert.True(t, s.Found, "step %d", s.Step)
	}
	assert.Contains(t, string(steps[0].Data), `"poNumber":"PO-1"`)
	assert.NotEmpty(t, steps[1].Tabs)

	out, err = execute(t, "edit", orderID, "--form", form, "--from", "7", "--base-url", baseURL, "--format", "json")
	require.NoError(t, err, out)

	var edited EditResult
	decodeData(t, out, &edited)
	assert.Equal(t, []int{7, 8}, edited.Committed)
	assert.Contains(t, edited.Message, "updated successfully")

	out, err = execute(t, "assign", orderID, "prod-lead", "--base-url", baseURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "assigned to prod-lead")

	resp, err := http.Get(baseURL + "/api/notifications?userId=qc-lead")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "check welds")
}

func TestView_UnsavedStepsAreMissing(t *testing.T) {
	baseURL := startService(t)

	out, err := execute(t, "view", "999", "--base-url", baseURL)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Sales order #999")
	assert.Contains(t, out, "step 1 client-po")
	assert.NotContains(t, out, "bytes")
}

func TestAssign_UnknownOrder(t *testing.T) {
	baseURL := startService(t)

	_, err := execute(t, "assign", "999", "prod-lead", "--base-url", baseURL)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestNotify(t *testing.T) {
	baseURL := startService(t)

	out, err := execute(t, "notify", "ops-1", "delivery check", "--base-url", baseURL)
	require.NoError(t, err)
	assert.Contains(t, out, "Notification sent to ops-1")

	resp, err := http.Get(baseURL + "/api/notifications?userId=ops-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "delivery check")
}
