package utils

import (
	"fmt"
	"strings"
	"time"
)

// Declared field types. These travel in the field configuration record and
// drive both rendering and serialization, replacing runtime inspection of
// whatever type the stored value happened to have.
const (
	TypeText  = "text"
	TypeInt   = "int"
	TypeFloat = "float"
	TypeDate  = "date"
)

// CoerceScalar converts an edited value to the declared field type before it
// is serialized into an update. An unknown kind falls back to text. Dates
// are accepted as ISO 8601 dates and serialized as epoch milliseconds, which
// is how the feature service stores date fields.
func CoerceScalar(val any, kind string) (any, error) {
	if val == nil {
		return nil, nil
	}

	switch kind {
	case TypeInt:
		return ToInt64(val), nil
	case TypeFloat:
		return ToFloat(val), nil
	case TypeDate:
		s := strings.TrimSpace(ToString(val))
		if s == "" {
			return nil, nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UnixMilli(), nil
			}
		}
		return nil, fmt.Errorf("invalid date value %q", s)
	default:
		return ToString(val), nil
	}
}
