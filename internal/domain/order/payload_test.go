package order

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalPayload(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	return data
}

func TestBuildPayload_EmptyFormDefaults(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for step := FirstStep; step <= LastStep; step++ {
		t.Run(fmt.Sprintf("step %d", step), func(t *testing.T) {
			payload, err := BuildPayloadFromTree(step, FormTree{})
			require.NoError(t, err)
			g.Assert(t, fmt.Sprintf("empty_step_%d", step), marshalPayload(t, payload))
		})
	}

	t.Run("unknown step", func(t *testing.T) {
		tree := FormTree{SectionClientPO: map[string]any{"poNumber": "PO-1"}}

		payload, err := BuildPayloadFromTree(9, tree)
		require.NoError(t, err)
		g.Assert(t, "empty_step_unknown", marshalPayload(t, payload))

		for _, step := range []int{0, -3, 42} {
			payload, err := BuildPayloadFromTree(step, tree)
			require.NoError(t, err)
			assert.JSONEq(t, `{}`, string(marshalPayload(t, payload)))
		}
	})
}

func TestBuildPayload_Idempotent(t *testing.T) {
	tree := FormTree{
		SectionClientPO: map[string]any{"clientName": "Acme", "poNumber": "PO-1"},
		SectionMaterialProcurement: map[string]any{
			"materials": []any{map[string]any{"id": "m1", "materialType": "steel", "quantity": "4"}},
		},
	}

	for step := FirstStep; step <= LastStep; step++ {
		first, err := BuildPayloadFromTree(step, tree)
		require.NoError(t, err)
		second, err := BuildPayloadFromTree(step, tree)
		require.NoError(t, err)
		assert.Equal(t, marshalPayload(t, first), marshalPayload(t, second), "step %d", step)
	}
}

func TestBuildPayload_ClientPO(t *testing.T) {
	tree := FormTree{
		SectionClientPO: map[string]any{
			"clientName":  "Acme",
			"poNumber":    "PO-1",
			"notes":       "",
			"clientPhone": 5551234,
		},
	}

	payload, err := BuildPayloadFromTree(1, tree)
	require.NoError(t, err)

	p, ok := payload.(ClientPOPayload)
	require.True(t, ok)
	assert.Equal(t, "Acme", p.ClientName)
	assert.Equal(t, "PO-1", p.PONumber)
	assert.Equal(t, "5551234", p.ClientPhone)
	assert.Equal(t, "", p.ClientAddress)
	assert.Nil(t, p.Notes)
	assert.NotNil(t, p.ProjectRequirements)
}

func TestBuildPayload_SalesOrderNullables(t *testing.T) {
	tree := FormTree{
		SectionSalesOrder: map[string]any{
			"totalAmount":     "1200.50",
			"projectPriority": "High",
			"paymentTerms":    "",
		},
	}

	payload, err := BuildPayloadFromTree(2, tree)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(marshalPayload(t, payload), &decoded))
	assert.Equal(t, 1200.5, decoded["totalAmount"])
	assert.Equal(t, "High", decoded["projectPriority"])
	assert.Nil(t, decoded["paymentTerms"])
	assert.Contains(t, decoded, "paymentTerms")
	assert.Len(t, decoded, 14)
}

func TestBuildSalesOrderTabs_Disjoint(t *testing.T) {
	tabs := BuildSalesOrderTabs(FormData{})
	require.Len(t, tabs, 3)

	seen := map[string]string{}
	total := 0
	for i, tab := range tabs {
		assert.Equal(t, SalesOrderTabs[i], tab.Tab)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(marshalPayload(t, tab.Payload), &fields))
		for k := range fields {
			prev, dup := seen[k]
			assert.False(t, dup, "field %s in both %s and %s", k, prev, tab.Tab)
			seen[k] = tab.Tab
		}
		total += len(fields)
	}

	var union map[string]any
	require.NoError(t, json.Unmarshal(marshalPayload(t, BuildPayload(2, FormData{})), &union))
	assert.Equal(t, len(union), total)
}

func TestBuildPayload_DesignDocuments(t *testing.T) {
	tree := FormTree{
		SectionDesignEngineering: map[string]any{
			"attachments": map[string]any{
				"drawings":  []any{map[string]any{"name": "a.dwg"}, map[string]any{"size": 10}},
				"documents": []any{map[string]any{"name": "spec.pdf"}},
			},
			"generalDesignInfo": map[string]any{"designStatus": "Approved"},
		},
	}

	payload, err := BuildPayloadFromTree(3, tree)
	require.NoError(t, err)
	p := payload.(DesignEngineeringPayload)

	assert.Equal(t, "Approved", p.GeneralDesignInfo.DesignStatus)
	assert.Equal(t, []DocumentRef{
		{Type: DocumentTypeDrawing, FilePath: "a.dwg", FileName: "a.dwg"},
		{Type: DocumentTypeDrawing, FilePath: "drawing_1", FileName: ""},
		{Type: DocumentTypePD, FilePath: "spec.pdf", FileName: "spec.pdf"},
	}, p.Documents)
}

func TestBuildPayload_MaterialsConcatenation(t *testing.T) {
	tree := FormTree{
		SectionMaterialProcurement: map[string]any{
			"materials": []any{
				map[string]any{"id": "m1", "materialType": "steel", "quantity": 4, "vendorHint": "ACME"},
				map[string]any{"id": "m2", "materialType": "paint"},
			},
			"materialDetailsTable": map[string]any{
				"plateType":    []any{map[string]any{"id": "p1", "quantity": "2", "materialType": "ignored"}},
				"fastenerType": []any{map[string]any{"id": "f1"}},
			},
		},
	}

	payload, err := BuildPayloadFromTree(4, tree)
	require.NoError(t, err)
	p := payload.(MaterialRequirementsPayload)

	require.Len(t, p.Materials, 4)
	assert.Equal(t, "m1", p.Materials[0].ID)
	assert.Equal(t, float64(4), p.Materials[0].Quantity)
	assert.Equal(t, "m2", p.Materials[1].ID)
	assert.Equal(t, float64(0), p.Materials[1].Quantity)
	assert.Equal(t, "f1", p.Materials[2].ID)
	assert.Equal(t, "fastenerType", p.Materials[2].MaterialType)
	assert.Equal(t, "p1", p.Materials[3].ID)
	assert.Equal(t, "plateType", p.Materials[3].MaterialType)
	assert.Equal(t, float64(2), p.Materials[3].Quantity)

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(marshalPayload(t, p), &decoded))
	assert.Equal(t, "ACME", decoded["materials"][0]["vendorHint"])
	assert.Equal(t, float64(0), decoded["materials"][1]["quantity"])
}

func TestBuildPayload_ProductionPlanWorkedExample(t *testing.T) {
	payload, err := BuildPayloadFromTree(5, FormTree{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"timeline":{"startDate":"","endDate":""},"selectedPhases":{}}`, string(marshalPayload(t, payload)))
}

func TestDecodeForm_RejectsMalformedSection(t *testing.T) {
	_, err := DecodeForm(FormTree{SectionClientPO: "not an object"})
	assert.Error(t, err)

	_, err = BuildPayloadFromTree(1, FormTree{SectionClientPO: []any{1, 2}})
	assert.Error(t, err)
}

func TestBuildSummary_DateDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		form      FormData
		wantOrder string
		wantDue   string
	}{
		{
			name:      "no dates",
			wantOrder: "2026-03-01",
			wantDue:   "2026-03-31",
		},
		{
			name:      "po date",
			form:      FormData{ClientPO: ClientPO{PODate: "2026-02-10"}},
			wantOrder: "2026-02-10",
			wantDue:   "2026-03-31",
		},
		{
			name: "explicit order and end dates",
			form: FormData{
				ClientPO:   ClientPO{PODate: "2026-02-10"},
				SalesOrder: SalesOrder{OrderDate: "2026-02-12", EstimatedEndDate: "2026-06-01"},
			},
			wantOrder: "2026-02-12",
			wantDue:   "2026-06-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := BuildSummary(tt.form, "sales-1", now)
			assert.Equal(t, tt.wantOrder, s.OrderDate)
			assert.Equal(t, tt.wantDue, s.DueDate)
			assert.Equal(t, "sales-1", s.CreatedBy)
		})
	}
}

func TestStepLookup(t *testing.T) {
	info, ok := Step(4)
	require.True(t, ok)
	assert.Equal(t, "material-requirements", info.Slug)

	_, ok = Step(9)
	assert.False(t, ok)

	bySlug, ok := StepBySlug("quality-check")
	require.True(t, ok)
	assert.Equal(t, 6, bySlug.Number)

	assert.True(t, IsSalesOrderTab(TabPaymentInternal))
	assert.False(t, IsSalesOrderTab("shipping"))
	assert.Equal(t, "sales-order/quality-compliance", TabStepKey(TabQualityCompliance))
}
