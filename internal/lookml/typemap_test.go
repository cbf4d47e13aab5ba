package lookml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTypeMap_Dimensions(t *testing.T) {
	tm := DefaultTypeMap()

	tests := []struct {
		bq       string
		wantType string
	}{
		{"INT64", "number"},
		{"INTEGER", "number"},
		{"FLOAT", "number"},
		{"FLOAT64", "number"},
		{"NUMERIC", "number"},
		{"BIGNUMERIC", "number"},
		{"STRING", "string"},
		{"TIME", "string"},
		{"BOOL", "yesno"},
		{"BOOLEAN", "yesno"},
	}
	for _, tt := range tests {
		t.Run(tt.bq, func(t *testing.T) {
			mt := tm.Map(tt.bq)
			assert.Equal(t, KindDimension, mt.Kind)
			assert.Equal(t, tt.wantType, mt.Type)
			assert.False(t, mt.Unmapped)
		})
	}
}

func TestDefaultTypeMap_HiddenTypes(t *testing.T) {
	tm := DefaultTypeMap()
	for _, bq := range []string{"GEOGRAPHY", "BYTES"} {
		mt := tm.Map(bq)
		assert.Equal(t, "string", mt.Type, bq)
		assert.Equal(t, "yes", mt.Attrs["hidden"], bq)
	}
}

func TestDefaultTypeMap_TimeTypes(t *testing.T) {
	tm := DefaultTypeMap()

	date := tm.Map("DATE")
	require.Equal(t, KindDimensionGroup, date.Kind)
	assert.Equal(t, "time", date.Type)
	assert.Equal(t, []string{"date", "week", "month", "quarter", "year"}, date.Timeframes)
	assert.Equal(t, "no", date.Attrs["convert_tz"])
	assert.Equal(t, "date", date.Attrs["datatype"])

	for _, bq := range []string{"TIMESTAMP", "DATETIME"} {
		mt := tm.Map(bq)
		require.Equal(t, KindDimensionGroup, mt.Kind, bq)
		assert.Equal(t, []string{"raw", "time", "date", "week", "month", "quarter", "year"}, mt.Timeframes, bq)
		assert.Equal(t, "yes", mt.Attrs["convert_tz"], bq)
	}
}

func TestTypeMap_UnmappedDegradesToString(t *testing.T) {
	tm := DefaultTypeMap()

	mt := tm.Map("INTERVAL")
	assert.Equal(t, KindDimension, mt.Kind)
	assert.Equal(t, "string", mt.Type)
	assert.True(t, mt.Unmapped)
	assert.False(t, tm.Known("INTERVAL"))
}

func TestTypeMap_ZeroValueMapsNothing(t *testing.T) {
	var tm TypeMap
	assert.True(t, tm.Map("INT64").Unmapped)
}

func TestNewTypeMap_CopiesEntries(t *testing.T) {
	entries := map[string]MappedType{
		"CUSTOM": {Kind: KindDimension, Type: "number"},
	}
	tm := NewTypeMap(entries)
	delete(entries, "CUSTOM")

	assert.True(t, tm.Known("CUSTOM"))
}
