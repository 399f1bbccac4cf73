package reconcile

import (
	"project-manager/core/agol"
)

// ObjectIDField is the remote-assigned unique identifier attribute.
const ObjectIDField = "OBJECTID"

// InputType is the declared rendering/serialization type of a form field.
// It replaces runtime type inspection of stored values.
type InputType string

const (
	InputText  InputType = "text"
	InputInt   InputType = "int"
	InputFloat InputType = "float"
	InputDate  InputType = "date"
)

// Valid reports whether the input type is one of the declared kinds.
func (t InputType) Valid() bool {
	switch t {
	case InputText, InputInt, InputFloat, InputDate:
		return true
	default:
		return false
	}
}

// DomainValue is one allowed option for a dropdown-constrained field.
// ObjectID is nil on locally-authored records that have not been added yet.
type DomainValue struct {
	// FieldName is the form field this option belongs to.
	FieldName string `json:"field_name"`

	// Value is the stored option value and the natural key for diffing.
	Value string `json:"domain_value"`

	// Label is the display label shown in the form.
	Label string `json:"domain_label"`

	// Active marks whether the option is offered (1) or retired (0).
	Active int `json:"active"`

	// Email optionally routes notifications for this option.
	Email string `json:"email"`

	// ObjectID is the remote identifier, absent until the record is added.
	ObjectID *int64 `json:"objectid,omitempty"`
}

// Feature converts the record to a service feature. The remote identifier is
// included only when present, so the same conversion serves adds and updates.
func (d DomainValue) Feature() agol.Feature {
	attrs := map[string]any{
		"field_name":   d.FieldName,
		"domain_value": d.Value,
		"domain_label": d.Label,
		"active":       d.Active,
		"email":        d.Email,
	}
	if d.ObjectID != nil {
		attrs[ObjectIDField] = *d.ObjectID
	}
	return agol.Feature{Attributes: attrs}
}

// FieldConfig drives client-side rendering of one form field. One logical
// record per field; created on first save, updated thereafter, never
// auto-deleted.
type FieldConfig struct {
	FieldName  string    `json:"field_name"`
	IsDropdown bool      `json:"is_dropdown"`
	InputType  InputType `json:"input_type"`
	MaxLen     int       `json:"max_len"`
	Required   bool      `json:"required"`

	// ObjectID is the remote identifier of the config row, nil before the
	// first save.
	ObjectID *int64 `json:"objectid,omitempty"`
}

// Feature converts the config to a service feature. Booleans are stored as
// 0/1 smallints, matching the remote schema.
func (c FieldConfig) Feature() agol.Feature {
	attrs := map[string]any{
		"field_name":  c.FieldName,
		"is_dropdown": boolToInt(c.IsDropdown),
		"input_type":  string(c.InputType),
		"max_len":     c.MaxLen,
		"required":    boolToInt(c.Required),
	}
	if c.ObjectID != nil {
		attrs[ObjectIDField] = *c.ObjectID
	}
	return agol.Feature{Attributes: attrs}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Plan is the computed operation set for one field.
type Plan struct {
	// FieldName is the field the plan reconciles.
	FieldName string `json:"field_name"`

	// Adds are edited rows with no matching current record.
	Adds []DomainValue `json:"adds"`

	// Updates are edited rows matched to a current record, carrying its
	// remote identifier.
	Updates []DomainValue `json:"updates"`

	// DeletedValues are current keys absent from the edited table.
	DeletedValues []string `json:"deleted_values"`

	// DeleteWhere is the single escaped predicate matching every record to
	// remove, empty when nothing is deleted.
	DeleteWhere string `json:"delete_where"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// Current is the number of remote records before reconciliation.
	Current int `json:"current"`
	// Edited is the number of rows in the edited table.
	Edited int `json:"edited"`
	Adds    int `json:"adds"`
	Updates int `json:"updates"`
	Deletes int `json:"deletes"`
}

// Empty reports whether the plan contains no operations.
func (p *Plan) Empty() bool {
	return len(p.Adds) == 0 && len(p.Updates) == 0 && p.DeleteWhere == ""
}

// Options controls apply behavior.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// Confirmed indicates the caller has confirmed destructive actions.
	// If false, mutations will not execute regardless of DryRun.
	Confirmed bool
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	// Plan is the computed operation set.
	Plan *Plan `json:"plan"`

	// Applied is true when the plan was executed against the service.
	Applied bool `json:"applied"`

	// AddResults, UpdateResults and DeleteResults are the per-record
	// outcomes of the applied steps.
	AddResults    []agol.EditResult `json:"add_results,omitempty"`
	UpdateResults []agol.EditResult `json:"update_results,omitempty"`
	DeleteResults []agol.EditResult `json:"delete_results,omitempty"`

	// ConfigSaved is true when the field configuration record was written.
	ConfigSaved bool `json:"config_saved"`
}
