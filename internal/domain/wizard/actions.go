package wizard

import "github.com/garyjia/order-intake/internal/domain/order"

// Action is a state transition request. Actions of types Reduce does not
// know are ignored.
type Action interface {
	Type() string
}

// Action type names
const (
	ActionSetStep               = "SET_STEP"
	ActionUpdateField           = "UPDATE_FIELD"
	ActionSetNestedField        = "SET_NESTED_FIELD"
	ActionUpdateDeepNestedField = "UPDATE_DEEP_NESTED_FIELD"
	ActionSetLoading            = "SET_LOADING"
	ActionSetError              = "SET_ERROR"
	ActionSetSuccess            = "SET_SUCCESS"
	ActionToggleMaterialType    = "TOGGLE_MATERIAL_TYPE"
	ActionReset                 = "RESET"
	ActionSetDraftID            = "SET_DRAFT_ID"
	ActionSetOrderID            = "SET_ORDER_ID"
	ActionSetSubmitted          = "SET_SUBMITTED"
	ActionSetPODocuments        = "SET_PO_DOCUMENTS"
	ActionSetStepAssignee       = "SET_STEP_ASSIGNEE"
	ActionSetStepNote           = "SET_STEP_NOTE"
	ActionAddMaterial           = "ADD_MATERIAL"
	ActionUpdateMaterialDetail  = "UPDATE_MATERIAL_DETAIL"
	ActionDeleteMaterialDetail  = "DELETE_MATERIAL_DETAIL"
)

// SetStep moves to Step without bounds checking
type SetStep struct{ Step int }

// UpdateField replaces a top-level entry of the form
type UpdateField struct {
	Field string
	Value any
}

// SetNestedField sets Section.Field, creating Section when absent
type SetNestedField struct {
	Section string
	Field   string
	Value   any
}

// UpdateDeepNestedField sets Section.Subsection.Field
type UpdateDeepNestedField struct {
	Section    string
	Subsection string
	Field      string
	Value      any
}

type SetLoading struct{ Loading bool }

type SetError struct{ Message string }

type SetSuccess struct{ Message string }

// ToggleMaterialType flips whether a material category is enabled
type ToggleMaterialType struct{ MaterialType string }

// Reset discards all progress; the session mode is kept
type Reset struct{}

type SetDraftID struct{ ID int64 }

type SetOrderID struct{ ID int64 }

type SetSubmitted struct{ Submitted bool }

type SetPODocuments struct{ Documents []order.Document }

type SetStepAssignee struct {
	Step     int
	Assignee string
}

type SetStepNote struct {
	Step int
	Note string
}

// AddMaterial appends an item to materialProcurement.materials
type AddMaterial struct{ Item map[string]any }

// UpdateMaterialDetail replaces row Index of a category table; Index equal to
// the row count appends
type UpdateMaterialDetail struct {
	Category string
	Index    int
	Details  map[string]any
}

// DeleteMaterialDetail removes row Index of a category table
type DeleteMaterialDetail struct {
	Category string
	Index    int
}

func (SetStep) Type() string               { return ActionSetStep }
func (UpdateField) Type() string           { return ActionUpdateField }
func (SetNestedField) Type() string        { return ActionSetNestedField }
func (UpdateDeepNestedField) Type() string { return ActionUpdateDeepNestedField }
func (SetLoading) Type() string            { return ActionSetLoading }
func (SetError) Type() string              { return ActionSetError }
func (SetSuccess) Type() string            { return ActionSetSuccess }
func (ToggleMaterialType) Type() string    { return ActionToggleMaterialType }
func (Reset) Type() string                 { return ActionReset }
func (SetDraftID) Type() string            { return ActionSetDraftID }
func (SetOrderID) Type() string            { return ActionSetOrderID }
func (SetSubmitted) Type() string          { return ActionSetSubmitted }
func (SetPODocuments) Type() string        { return ActionSetPODocuments }
func (SetStepAssignee) Type() string       { return ActionSetStepAssignee }
func (SetStepNote) Type() string           { return ActionSetStepNote }
func (AddMaterial) Type() string           { return ActionAddMaterial }
func (UpdateMaterialDetail) Type() string  { return ActionUpdateMaterialDetail }
func (DeleteMaterialDetail) Type() string  { return ActionDeleteMaterialDetail }
