package cli

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/garyjia/order-intake/internal/domain/order"
	"github.com/garyjia/order-intake/internal/domain/wizard"
)

// FormFile is a wizard run written down as YAML:
//
//	form:
//	  clientPO:
//	    poNumber: PO-1
//	assignees:
//	  6: qc-lead
//	notes:
//	  6: check welds
//	documents:
//	  - name: po.pdf
//	    path: /uploads/po.pdf
type FormFile struct {
	Form      map[string]any   `yaml:"form"`
	Assignees map[int]string   `yaml:"assignees"`
	Notes     map[int]string   `yaml:"notes"`
	Documents []order.Document `yaml:"documents"`
}

// LoadFormFile reads and checks a form file
func LoadFormFile(path string) (*FormFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file: %w", err)
	}

	var ff FormFile
	if err := yaml.Unmarshal(raw, &ff); err != nil {
		return nil, fmt.Errorf("parse form file %s: %w", path, err)
	}

	for step := range ff.Assignees {
		if _, ok := order.Step(step); !ok {
			return nil, fmt.Errorf("form file %s: assignee for unknown step %d", path, step)
		}
	}
	for step := range ff.Notes {
		if _, ok := order.Step(step); !ok {
			return nil, fmt.Errorf("form file %s: note for unknown step %d", path, step)
		}
	}
	if _, err := order.DecodeForm(ff.Form); err != nil {
		return nil, fmt.Errorf("form file %s: %w", path, err)
	}
	return &ff, nil
}

// Actions turns the file into wizard edits. Sections and steps are applied
// in a fixed order so runs are repeatable.
func (ff *FormFile) Actions() []wizard.Action {
	var actions []wizard.Action

	sections := make([]string, 0, len(ff.Form))
	for name := range ff.Form {
		sections = append(sections, name)
	}
	sort.Strings(sections)
	for _, name := range sections {
		actions = append(actions, wizard.UpdateField{Field: name, Value: ff.Form[name]})
	}

	for _, step := range sortedSteps(ff.Assignees) {
		actions = append(actions, wizard.SetStepAssignee{Step: step, Assignee: ff.Assignees[step]})
	}
	for _, step := range sortedSteps(ff.Notes) {
		actions = append(actions, wizard.SetStepNote{Step: step, Note: ff.Notes[step]})
	}
	if len(ff.Documents) > 0 {
		actions = append(actions, wizard.SetPODocuments{Documents: ff.Documents})
	}
	return actions
}

func sortedSteps(m map[int]string) []int {
	steps := make([]int, 0, len(m))
	for step := range m {
		steps = append(steps, step)
	}
	sort.Ints(steps)
	return steps
}
