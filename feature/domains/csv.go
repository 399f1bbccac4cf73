package domains

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"project-manager/core/reconcile"
	"project-manager/core/utils"
)

// ParseCSV reads an uploaded replacement table. The first row must be a
// header naming at least a value column; label, active and email columns are
// optional. Rows become the edited table for the given field, so values
// absent from the file are deleted on reconciliation.
func ParseCSV(r io.Reader, fieldName string) ([]reconcile.DomainValue, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	valueCol, ok := cols["value"]
	if !ok {
		// Also accept the remote attribute names as headers.
		if valueCol, ok = cols["domain_value"]; !ok {
			return nil, fmt.Errorf("csv header misses a 'value' column")
		}
	}
	labelCol, hasLabel := pickColumn(cols, "label", "domain_label")
	activeCol, hasActive := pickColumn(cols, "active")
	emailCol, hasEmail := pickColumn(cols, "email")

	var values []reconcile.DomainValue
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		row := reconcile.DomainValue{
			FieldName: fieldName,
			Value:     field(record, valueCol),
			Active:    1,
		}
		if hasLabel {
			row.Label = field(record, labelCol)
		}
		if row.Label == "" {
			row.Label = row.Value
		}
		if hasActive {
			if raw := field(record, activeCol); raw != "" {
				row.Active = utils.ToInt(raw)
			}
		}
		if hasEmail {
			row.Email = field(record, emailCol)
		}

		values = append(values, row)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("csv contains no data rows")
	}
	return values, nil
}

func pickColumn(cols map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := cols[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
