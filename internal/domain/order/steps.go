package order

import "strings"

// Wizard bounds
const (
	FirstStep = 1
	LastStep  = 8
)

// Step-2 tab slugs, committed under sales-order/<tab>
const (
	TabSalesProduct      = "sales-product"
	TabQualityCompliance = "quality-compliance"
	TabPaymentInternal   = "payment-internal"
)

// SalesOrderTabs lists the step-2 tabs in commit order
var SalesOrderTabs = []string{TabSalesProduct, TabQualityCompliance, TabPaymentInternal}

// StepInfo describes one wizard step
type StepInfo struct {
	Number     int
	Slug       string
	Section    string
	Department string
	Title      string
}

var steps = []StepInfo{
	{1, "client-po", SectionClientPO, "sales", "Client PO"},
	{2, "sales-order", SectionSalesOrder, "sales", "Sales Order"},
	{3, "design-engineering", SectionDesignEngineering, "design", "Design Engineering"},
	{4, "material-requirements", SectionMaterialProcurement, "procurement", "Material Requirements"},
	{5, "production-plan", SectionProductionPlan, "production", "Production Plan"},
	{6, "quality-check", SectionQualityCheck, "quality", "Quality Check"},
	{7, "shipment", SectionShipment, "logistics", "Shipment"},
	{8, "delivery", SectionDelivery, "delivery", "Delivery"},
}

// Steps returns all wizard steps in order
func Steps() []StepInfo {
	out := make([]StepInfo, len(steps))
	copy(out, steps)
	return out
}

// Step returns the description of step n
func Step(n int) (StepInfo, bool) {
	if n < FirstStep || n > LastStep {
		return StepInfo{}, false
	}
	return steps[n-1], true
}

// StepBySlug looks a step up by its endpoint slug
func StepBySlug(slug string) (StepInfo, bool) {
	for _, s := range steps {
		if s.Slug == slug {
			return s, true
		}
	}
	return StepInfo{}, false
}

// IsSalesOrderTab reports whether tab is a known step-2 tab
func IsSalesOrderTab(tab string) bool {
	for _, t := range SalesOrderTabs {
		if t == tab {
			return true
		}
	}
	return false
}

// TabStepKey is the storage key of a step-2 tab
func TabStepKey(tab string) string {
	return steps[1].Slug + "/" + tab
}

// ValidStepKey accepts a step slug or a sales-order/<tab> key
func ValidStepKey(key string) bool {
	if _, ok := StepBySlug(key); ok {
		return true
	}
	prefix := steps[1].Slug + "/"
	return strings.HasPrefix(key, prefix) && IsSalesOrderTab(strings.TrimPrefix(key, prefix))
}
