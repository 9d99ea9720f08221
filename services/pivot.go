package services

import (
	"cmp"
	"slices"
	"strings"

	"costconsole/sqlexec"
)

// StandardAttributePrefix marks attribute ids that sort ahead of measured
// properties in pivoted output.
const StandardAttributePrefix = "STD_"

const (
	ScreenPlaceholder = "-"
	ExportPlaceholder = ""
)

// AttributeRow is one (entity, attribute, value) triple.
type AttributeRow struct {
	EntityID    string
	AttributeID string
	Value       string
	DisplayName string
	UnitName    string
}

// PivotColumn is a pivoted header. Name and unit come from the first row
// that mentioned the attribute.
type PivotColumn struct {
	AttributeID string
	DisplayName string
	UnitName    string
}

func (c PivotColumn) IsStandard() bool {
	return strings.HasPrefix(c.AttributeID, StandardAttributePrefix)
}

// ExportHeader is "name (unit)", or just the name without a unit.
func (c PivotColumn) ExportHeader() string {
	if c.UnitName == "" {
		return c.DisplayName
	}
	return c.DisplayName + " (" + c.UnitName + ")"
}

func PivotKey(entityID, attributeID string) string {
	return entityID + "_" + attributeID
}

// Pivot is the value lookup plus the ordered column list.
type Pivot struct {
	Columns []PivotColumn
	values  map[string]string
}

// BuildPivot scans rows once. Headers keep the first name seen for an id;
// values keep the last value seen for an (entity, attribute) pair.
func BuildPivot(rows []AttributeRow) Pivot {
	values := make(map[string]string, len(rows))
	seen := make(map[string]bool)
	var columns []PivotColumn

	for _, r := range rows {
		values[PivotKey(r.EntityID, r.AttributeID)] = r.Value
		if seen[r.AttributeID] {
			continue
		}
		seen[r.AttributeID] = true
		columns = append(columns, PivotColumn{
			AttributeID: r.AttributeID,
			DisplayName: r.DisplayName,
			UnitName:    r.UnitName,
		})
	}

	slices.SortStableFunc(columns, func(a, b PivotColumn) int {
		if a.IsStandard() != b.IsStandard() {
			if a.IsStandard() {
				return -1
			}
			return 1
		}
		return cmp.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName))
	})

	return Pivot{Columns: columns, values: values}
}

// Value reports the raw value and whether the pair was present at all.
func (p Pivot) Value(entityID, attributeID string) (string, bool) {
	v, ok := p.values[PivotKey(entityID, attributeID)]
	return v, ok
}

// Cell returns the value, or placeholder when absent or empty.
func (p Pivot) Cell(entityID, attributeID, placeholder string) string {
	if v, ok := p.Value(entityID, attributeID); ok && v != "" {
		return v
	}
	return placeholder
}

// HeaderStyle selects how pivot columns are titled in a flat table.
type HeaderStyle int

const (
	HeaderScreen HeaderStyle = iota
	HeaderExport
)

func (p Pivot) header(c PivotColumn, style HeaderStyle) string {
	if style == HeaderExport {
		return c.ExportHeader()
	}
	return c.DisplayName
}

// Headers returns the pivot column titles in order.
func (p Pivot) Headers(style HeaderStyle) []string {
	out := make([]string, 0, len(p.Columns))
	for _, c := range p.Columns {
		h := p.header(c, style)
		if !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	return out
}

// BaseRow is an entity of the base list with its caller-defined fixed fields.
type BaseRow struct {
	EntityID string
	Fields   map[string]string
}

type FlattenOptions struct {
	FixedColumns []string
	Placeholder  string
	Headers      HeaderStyle
}

type FlatRow map[string]string

// FlatTable is a grid or sheet: ordered column titles and one row per entity.
type FlatTable struct {
	Columns []string
	Rows    []FlatRow
}

// Values returns the cells of row i in column order.
func (t FlatTable) Values(i int) []string {
	row := t.Rows[i]
	out := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		out[j] = row[c]
	}
	return out
}

// Flatten builds one row per base row: fixed columns first, then one cell per
// pivot column. Two columns whose titles coincide share one cell, and the
// later column's value wins.
func (p Pivot) Flatten(base []BaseRow, opts FlattenOptions) FlatTable {
	columns := slices.Clone(opts.FixedColumns)
	for _, h := range p.Headers(opts.Headers) {
		if !slices.Contains(columns, h) {
			columns = append(columns, h)
		}
	}

	rows := make([]FlatRow, 0, len(base))
	for _, b := range base {
		row := make(FlatRow, len(columns))
		for _, c := range opts.FixedColumns {
			row[c] = b.Fields[c]
		}
		for _, c := range p.Columns {
			row[p.header(c, opts.Headers)] = p.Cell(b.EntityID, c.AttributeID, opts.Placeholder)
		}
		rows = append(rows, row)
	}
	return FlatTable{Columns: columns, Rows: rows}
}

// AttributeMapping names the result columns carrying each AttributeRow field.
type AttributeMapping struct {
	Entity    string
	Attribute string
	Value     string
	Name      string
	Unit      string
}

// AttributeRowsFromResult converts loosely typed result rows, dropping any
// without an entity or attribute id.
func AttributeRowsFromResult(rows []sqlexec.Row, m AttributeMapping) []AttributeRow {
	out := make([]AttributeRow, 0, len(rows))
	for _, r := range rows {
		entity, attr := r.String(m.Entity), r.String(m.Attribute)
		if entity == "" || attr == "" {
			continue
		}
		out = append(out, AttributeRow{
			EntityID:    entity,
			AttributeID: attr,
			Value:       r.String(m.Value),
			DisplayName: r.String(m.Name),
			UnitName:    r.String(m.Unit),
		})
	}
	return out
}
