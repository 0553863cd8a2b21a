package wizard

import (
	"github.com/garyjia/order-intake/internal/domain/order"
)

const (
	materialsField    = "materials"
	detailsTableField = "materialDetailsTable"
)

// Reduce applies action to s and returns the next state. It never mutates s:
// only the path an action touches is copied, every other branch of the
// result is the same map or slice as in s. Unknown actions return s itself.
func Reduce(s *State, action Action) *State {
	switch a := action.(type) {
	case SetStep:
		next := s.clone()
		next.CurrentStep = a.Step
		return next

	case UpdateField:
		next := s.clone()
		next.FormData = setPath(s.FormData, a.Value, a.Field)
		return next

	case SetNestedField:
		next := s.clone()
		next.FormData = setPath(s.FormData, a.Value, a.Section, a.Field)
		return next

	case UpdateDeepNestedField:
		next := s.clone()
		next.FormData = setPath(s.FormData, a.Value, a.Section, a.Subsection, a.Field)
		return next

	case SetLoading:
		next := s.clone()
		next.Loading = a.Loading
		return next

	case SetError:
		next := s.clone()
		next.Error = a.Message
		return next

	case SetSuccess:
		next := s.clone()
		next.Success = a.Message
		return next

	case ToggleMaterialType:
		next := s.clone()
		enabled := make(map[string]bool, len(s.EnabledMaterials)+1)
		for k, v := range s.EnabledMaterials {
			enabled[k] = v
		}
		enabled[a.MaterialType] = !s.EnabledMaterials[a.MaterialType]
		next.EnabledMaterials = enabled
		return next

	case Reset:
		return NewState(s.Mode)

	case SetDraftID:
		next := s.clone()
		next.DraftID = a.ID
		return next

	case SetOrderID:
		next := s.clone()
		next.OrderID = a.ID
		return next

	case SetSubmitted:
		next := s.clone()
		next.Submitted = a.Submitted
		return next

	case SetPODocuments:
		next := s.clone()
		docs := make([]order.Document, len(a.Documents))
		copy(docs, a.Documents)
		next.PODocuments = docs
		return next

	case SetStepAssignee:
		next := s.clone()
		next.StepAssignees = withStepValue(s.StepAssignees, a.Step, a.Assignee)
		return next

	case SetStepNote:
		next := s.clone()
		next.StepNotes = withStepValue(s.StepNotes, a.Step, a.Note)
		return next

	case AddMaterial:
		section := asMap(s.FormData[order.SectionMaterialProcurement])
		items := append(copyList(section[materialsField]), a.Item)
		next := s.clone()
		next.FormData = setPath(s.FormData, items, order.SectionMaterialProcurement, materialsField)
		return next

	case UpdateMaterialDetail:
		rows := copyList(detailRows(s, a.Category))
		switch {
		case a.Index < 0 || a.Index > len(rows):
			return s
		case a.Index == len(rows):
			rows = append(rows, a.Details)
		default:
			rows[a.Index] = a.Details
		}
		next := s.clone()
		next.FormData = setPath(s.FormData, rows, order.SectionMaterialProcurement, detailsTableField, a.Category)
		return next

	case DeleteMaterialDetail:
		rows := detailRows(s, a.Category)
		if a.Index < 0 || a.Index >= len(rows) {
			return s
		}
		kept := make([]any, 0, len(rows)-1)
		kept = append(kept, rows[:a.Index]...)
		kept = append(kept, rows[a.Index+1:]...)
		next := s.clone()
		next.FormData = setPath(s.FormData, kept, order.SectionMaterialProcurement, detailsTableField, a.Category)
		return next

	default:
		return s
	}
}

func detailRows(s *State, category string) []any {
	section := asMap(s.FormData[order.SectionMaterialProcurement])
	table := asMap(section[detailsTableField])
	return copyList(table[category])
}

// setPath returns a copy of tree with value stored at path. Maps along the
// path are copied; missing or non-object intermediate entries become new
// objects.
func setPath(tree order.FormTree, value any, path ...string) order.FormTree {
	return order.FormTree(setIn(map[string]any(tree), value, path))
}

func setIn(m map[string]any, value any, path []string) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	if len(path) == 1 {
		out[path[0]] = value
		return out
	}
	out[path[0]] = setIn(asMap(m[path[0]]), value, path[1:])
	return out
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case order.FormTree:
		return map[string]any(m)
	default:
		return nil
	}
}

func copyList(v any) []any {
	switch l := v.(type) {
	case []any:
		out := make([]any, len(l))
		copy(out, l)
		return out
	case []map[string]any:
		out := make([]any, len(l))
		for i, item := range l {
			out[i] = item
		}
		return out
	default:
		return []any{}
	}
}

func withStepValue(m map[int]string, step int, value string) map[int]string {
	out := make(map[int]string, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[step] = value
	return out
}
