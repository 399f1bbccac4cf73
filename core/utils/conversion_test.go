package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt(t *testing.T) {
	assert.Equal(t, 0, ToInt(nil))
	assert.Equal(t, 7, ToInt(7))
	assert.Equal(t, 7, ToInt(int64(7)))
	assert.Equal(t, 7, ToInt(7.9))
	assert.Equal(t, 7, ToInt("7"))
	assert.Equal(t, 0, ToInt("seven"))
	assert.Equal(t, 1, ToInt(true))
}

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(0), ToInt64(nil))
	// JSON object ids decode as float64.
	assert.Equal(t, int64(123456789), ToInt64(float64(123456789)))
	assert.Equal(t, int64(-3), ToInt64("-3"))
}

func TestToFloat(t *testing.T) {
	assert.Equal(t, 0.0, ToFloat(nil))
	assert.Equal(t, 1.5, ToFloat(1.5))
	assert.Equal(t, 1.5, ToFloat("1.5"))
	assert.Equal(t, 2.0, ToFloat(int64(2)))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "7", ToString(float64(7)))
	assert.Equal(t, "7.25", ToString(7.25))
	assert.Equal(t, "true", ToString(true))
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool(1))
	assert.True(t, ToBool(float64(1)))
	assert.True(t, ToBool("true"))
	assert.True(t, ToBool("1"))
	assert.False(t, ToBool(nil))
	assert.False(t, ToBool(0))
	assert.False(t, ToBool("no"))
}

func TestCoerceScalar(t *testing.T) {
	v, err := CoerceScalar("42", TypeInt)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = CoerceScalar(42.5, TypeFloat)
	require.NoError(t, err)
	assert.Equal(t, 42.5, v)

	v, err = CoerceScalar(42, TypeText)
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	v, err = CoerceScalar(nil, TypeInt)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCoerceScalar_Dates(t *testing.T) {
	v, err := CoerceScalar("2024-05-01", TypeDate)
	require.NoError(t, err)
	assert.Equal(t, int64(1714521600000), v)

	v, err = CoerceScalar("", TypeDate)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = CoerceScalar("yesterday", TypeDate)
	require.Error(t, err)
}
