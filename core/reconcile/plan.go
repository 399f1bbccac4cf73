package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// EscapeLiteral doubles literal single quotes so a value can be embedded in
// a predicate string without breaking its syntax.
func EscapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// BuildPlan diffs the edited table against the current remote records for
// one field, keyed by domain value. Rows keep their edited-table order;
// deleted values are sorted for deterministic predicates.
//
// Keys are the string domain values as-is: no trimming, no case folding. An
// empty value is a degenerate but legal key; validating non-emptiness is the
// caller's job.
func BuildPlan(fieldName string, current, edited []DomainValue) *Plan {
	plan := &Plan{FieldName: fieldName}

	currentByValue := make(map[string]DomainValue, len(current))
	for _, record := range current {
		currentByValue[record.Value] = record
	}

	editedKeys := make(map[string]struct{}, len(edited))
	for _, row := range edited {
		editedKeys[row.Value] = struct{}{}

		row.FieldName = fieldName
		if existing, ok := currentByValue[row.Value]; ok {
			row.ObjectID = existing.ObjectID
			plan.Updates = append(plan.Updates, row)
		} else {
			row.ObjectID = nil
			plan.Adds = append(plan.Adds, row)
		}
	}

	for value := range currentByValue {
		if _, ok := editedKeys[value]; !ok {
			plan.DeletedValues = append(plan.DeletedValues, value)
		}
	}
	sort.Strings(plan.DeletedValues)

	if len(plan.DeletedValues) > 0 {
		quoted := make([]string, len(plan.DeletedValues))
		for i, value := range plan.DeletedValues {
			quoted[i] = "'" + EscapeLiteral(value) + "'"
		}
		plan.DeleteWhere = fmt.Sprintf("field_name='%s' AND domain_value IN (%s)",
			EscapeLiteral(fieldName), strings.Join(quoted, ","))
	}

	plan.Summary = PlanSummary{
		Current: len(current),
		Edited:  len(edited),
		Adds:    len(plan.Adds),
		Updates: len(plan.Updates),
		Deletes: len(plan.DeletedValues),
	}
	return plan
}
