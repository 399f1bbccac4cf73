package domains

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_FullHeader(t *testing.T) {
	input := "value,label,active,email\n" +
		"Open,Open project,1,team@example.test\n" +
		"Closed,Closed project,0,\n"

	values, err := ParseCSV(strings.NewReader(input), "Status")
	require.NoError(t, err)

	require.Len(t, values, 2)
	assert.Equal(t, "Status", values[0].FieldName)
	assert.Equal(t, "Open", values[0].Value)
	assert.Equal(t, "Open project", values[0].Label)
	assert.Equal(t, 1, values[0].Active)
	assert.Equal(t, "team@example.test", values[0].Email)
	assert.Equal(t, 0, values[1].Active)
}

func TestParseCSV_ValueOnlyHeader(t *testing.T) {
	input := "value\nOpen\nClosed\n"

	values, err := ParseCSV(strings.NewReader(input), "Status")
	require.NoError(t, err)

	require.Len(t, values, 2)
	// Missing label falls back to the value, missing active defaults to 1.
	assert.Equal(t, "Open", values[0].Label)
	assert.Equal(t, 1, values[0].Active)
}

func TestParseCSV_RemoteAttributeHeader(t *testing.T) {
	input := "domain_value,domain_label\nOpen,Open project\n"

	values, err := ParseCSV(strings.NewReader(input), "Status")
	require.NoError(t, err)

	require.Len(t, values, 1)
	assert.Equal(t, "Open", values[0].Value)
	assert.Equal(t, "Open project", values[0].Label)
}

func TestParseCSV_MissingValueColumn(t *testing.T) {
	input := "label,active\nOpen,1\n"

	_, err := ParseCSV(strings.NewReader(input), "Status")
	assert.ErrorContains(t, err, "'value' column")
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""), "Status")
	assert.ErrorContains(t, err, "empty")

	_, err = ParseCSV(strings.NewReader("value\n"), "Status")
	assert.ErrorContains(t, err, "no data rows")
}
