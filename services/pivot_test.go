package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costconsole/sqlexec"
)

func TestBuildPivotColumnOrder(t *testing.T) {
	p := BuildPivot([]AttributeRow{
		{EntityID: "1", AttributeID: "42", Value: "7.8", DisplayName: "tensile", UnitName: "MPa"},
		{EntityID: "1", AttributeID: "STD_2", Value: "S45C", DisplayName: "KS"},
		{EntityID: "1", AttributeID: "17", Value: "x", DisplayName: "Hardness"},
		{EntityID: "2", AttributeID: "STD_1", Value: "1045", DisplayName: "AISI"},
	})

	var ids []string
	for _, c := range p.Columns {
		ids = append(ids, c.AttributeID)
	}
	assert.Equal(t, []string{"STD_1", "STD_2", "17", "42"}, ids)
	assert.Equal(t, []string{"AISI", "KS", "Hardness", "tensile (MPa)"}, p.Headers(HeaderExport))
	assert.Equal(t, []string{"AISI", "KS", "Hardness", "tensile"}, p.Headers(HeaderScreen))
}

func TestBuildPivotStandardBeforeMeasured(t *testing.T) {
	p := BuildPivot([]AttributeRow{
		{EntityID: "1", AttributeID: "STD_9", Value: "DIN 123", DisplayName: "DIN"},
		{EntityID: "1", AttributeID: "42", Value: "120", DisplayName: "Tensile"},
	})

	require.Len(t, p.Columns, 2)
	assert.Equal(t, "STD_9", p.Columns[0].AttributeID)
	assert.Equal(t, "42", p.Columns[1].AttributeID)
	assert.Equal(t, []string{"DIN", "Tensile"}, p.Headers(HeaderScreen))
	assert.Equal(t, "DIN 123", p.Cell("1", "STD_9", ScreenPlaceholder))
	assert.Equal(t, "120", p.Cell("1", "42", ScreenPlaceholder))
}

func TestBuildPivotFirstHeaderLastValue(t *testing.T) {
	p := BuildPivot([]AttributeRow{
		{EntityID: "1", AttributeID: "9", Value: "old", DisplayName: "First"},
		{EntityID: "1", AttributeID: "9", Value: "new", DisplayName: "Second"},
	})
	require.Len(t, p.Columns, 1)
	assert.Equal(t, "First", p.Columns[0].DisplayName)

	v, ok := p.Value("1", "9")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestPivotCellPlaceholder(t *testing.T) {
	p := BuildPivot([]AttributeRow{
		{EntityID: "1", AttributeID: "9", Value: "", DisplayName: "Empty"},
	})
	assert.Equal(t, "-", p.Cell("1", "9", ScreenPlaceholder))
	assert.Equal(t, "-", p.Cell("2", "9", ScreenPlaceholder))
	assert.Equal(t, "", p.Cell("2", "9", ExportPlaceholder))
}

func TestFlattenEmptyAttributes(t *testing.T) {
	table := BuildPivot(nil).Flatten([]BaseRow{
		{EntityID: "1", Fields: map[string]string{"Key": "A"}},
		{EntityID: "2", Fields: map[string]string{"Key": "B"}},
	}, FlattenOptions{FixedColumns: []string{"Key"}, Placeholder: ScreenPlaceholder})

	assert.Equal(t, []string{"Key"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"B"}, table.Values(1))
}

func TestFlattenMissingEntityGetsPlaceholders(t *testing.T) {
	p := BuildPivot([]AttributeRow{
		{EntityID: "1", AttributeID: "a", Value: "10", DisplayName: "Alpha", UnitName: "mm"},
		{EntityID: "1", AttributeID: "b", Value: "20", DisplayName: "Beta"},
	})
	table := p.Flatten([]BaseRow{
		{EntityID: "1", Fields: map[string]string{"No": "1", "Key": "K1"}},
		{EntityID: "3", Fields: map[string]string{"No": "2", "Key": "K3"}},
	}, FlattenOptions{FixedColumns: []string{"No", "Key"}, Placeholder: ScreenPlaceholder, Headers: HeaderExport})

	assert.Equal(t, []string{"No", "Key", "Alpha (mm)", "Beta"}, table.Columns)
	assert.Equal(t, []string{"1", "K1", "10", "20"}, table.Values(0))
	assert.Equal(t, []string{"2", "K3", "-", "-"}, table.Values(1))
}

func TestFlattenDuplicateTitlesShareCell(t *testing.T) {
	p := BuildPivot([]AttributeRow{
		{EntityID: "1", AttributeID: "a", Value: "first", DisplayName: "Size"},
		{EntityID: "1", AttributeID: "b", Value: "second", DisplayName: "Size"},
	})
	table := p.Flatten([]BaseRow{{EntityID: "1"}}, FlattenOptions{Placeholder: ExportPlaceholder})
	assert.Equal(t, []string{"Size"}, table.Columns)
	assert.Equal(t, []string{"second"}, table.Values(0))
}

func TestAttributeRowsFromResult(t *testing.T) {
	rows := AttributeRowsFromResult([]sqlexec.Row{
		{"SubstanceId": 12, "PropertyId": "STD_1", "Value": 7.85, "PropertyName": "Density", "UnitName": "g/cm3"},
		{"SubstanceId": nil, "PropertyId": "3", "Value": "x"},
		{"SubstanceId": 12, "PropertyId": "", "Value": "y"},
		{"SubstanceId": "13", "PropertyId": 5, "Value": nil, "PropertyName": "Grade"},
	}, AttributeMapping{Entity: "SubstanceId", Attribute: "PropertyId", Value: "Value", Name: "PropertyName", Unit: "UnitName"})

	require.Len(t, rows, 2)
	assert.Equal(t, AttributeRow{EntityID: "12", AttributeID: "STD_1", Value: "7.85", DisplayName: "Density", UnitName: "g/cm3"}, rows[0])
	assert.Equal(t, AttributeRow{EntityID: "13", AttributeID: "5", DisplayName: "Grade"}, rows[1])
}
