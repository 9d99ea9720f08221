package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"costconsole/sqlexec"
)

// MasterDataKind is the master-data category handled by the plant/region
// screen. Its value is also the config name of the import configuration.
type MasterDataKind string

const (
	KindRegion MasterDataKind = "Region"
	KindPlant  MasterDataKind = "Plant"
)

// ImportConfigClass is the config class holding import configuration GUIDs.
const ImportConfigClass = "Category"

// ParseMasterDataKind accepts "region" or "plant" in any case; anything else
// is the region tab.
func ParseMasterDataKind(s string) MasterDataKind {
	if strings.EqualFold(strings.TrimSpace(s), string(KindPlant)) {
		return KindPlant
	}
	return KindRegion
}

var (
	// ErrConfirmationRequired is returned by CommitImport when plant rows
	// reference unknown regions and the caller has not confirmed.
	ErrConfirmationRequired = errors.New("import contains invalid region keys")
	ErrEmptyImport          = errors.New("import file contains no rows")
	ErrUnknownSheet         = errors.New("sheet not found in import file")
)

// MasterDataRow is one region or plant: a list row or a parsed import row.
type MasterDataRow struct {
	ID          string
	Key         string
	NameKo      string
	NameEn      string
	Region      string
	ValidRegion bool
}

// Header aliases accepted by the import, matched after trimming.
var (
	keyHeaders    = []string{"Key", "UniqueKey", "키 (Key)", "코드 (Key)"}
	nameKoHeaders = []string{"NameKo", "국문명", "Name (KR)"}
	nameEnHeaders = []string{"NameEn", "영문명", "Name (EN)"}
	regionHeaders = []string{"Region", "지역", "지역 코드", "Region Code"}
)

// Export headers; each is one of the import aliases so exports re-import.
const (
	headerNo     = "No"
	headerRegion = "Region Code"
	headerKey    = "Key"
	headerNameKo = "Name (KR)"
	headerNameEn = "Name (EN)"
)

// importColumns maps each field to the index of its column, or -1.
type importColumns struct {
	key, nameKo, nameEn, region int
}

func findColumn(headers []string, aliases []string) int {
	for _, alias := range aliases {
		if i := slices.IndexFunc(headers, func(h string) bool { return strings.TrimSpace(h) == alias }); i >= 0 {
			return i
		}
	}
	return -1
}

func mapImportColumns(headers []string) importColumns {
	return importColumns{
		key:    findColumn(headers, keyHeaders),
		nameKo: findColumn(headers, nameKoHeaders),
		nameEn: findColumn(headers, nameEnHeaders),
		region: findColumn(headers, regionHeaders),
	}
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ImportPreview is a parsed import file held until the user commits it. The
// raw sheets are kept so another sheet can be selected without re-upload.
type ImportPreview struct {
	Kind     MasterDataKind
	FileName string
	Sheets   []string
	Current  string
	Rows     []MasterDataRow

	raw          map[string][][]string
	validRegions map[string]bool
}

// ParseImportFile reads an .xlsx (all sheets) or .csv (one sheet) upload and
// previews its first sheet. validRegions is consulted for plants only; nil
// skips region validation.
func ParseImportFile(kind MasterDataKind, fileName string, r io.Reader, validRegions map[string]bool) (*ImportPreview, error) {
	p := &ImportPreview{
		Kind:         kind,
		FileName:     fileName,
		raw:          make(map[string][][]string),
		validRegions: validRegions,
	}

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".xlsx"):
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open Excel file: %w", err)
		}
		defer f.Close()
		for _, name := range f.GetSheetList() {
			rows, err := f.GetRows(name)
			if err != nil {
				return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
			}
			p.Sheets = append(p.Sheets, name)
			p.raw[name] = rows
		}
	case strings.HasSuffix(lowerName, ".csv"):
		reader := csv.NewReader(r)
		reader.TrimLeadingSpace = true
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		p.Sheets = []string{string(kind)}
		p.raw[string(kind)] = rows
	default:
		return nil, fmt.Errorf("unsupported file format: must be .xlsx or .csv")
	}

	if len(p.Sheets) == 0 {
		return nil, ErrEmptyImport
	}
	if err := p.SelectSheet(p.Sheets[0]); err != nil {
		return nil, err
	}
	return p, nil
}

// SelectSheet re-parses the preview from another sheet of the file.
func (p *ImportPreview) SelectSheet(name string) error {
	rows, ok := p.raw[name]
	if !ok {
		return ErrUnknownSheet
	}
	p.Current = name
	p.Rows = nil
	if len(rows) == 0 {
		return nil
	}

	cols := mapImportColumns(rows[0])
	for _, raw := range rows[1:] {
		r := MasterDataRow{
			Key:    cell(raw, cols.key),
			NameKo: cell(raw, cols.nameKo),
			NameEn: cell(raw, cols.nameEn),
		}
		if r.Key == "" {
			continue
		}
		if p.Kind == KindPlant {
			r.Region = cell(raw, cols.region)
			r.ValidRegion = p.validRegions == nil || p.validRegions[r.Region]
		} else {
			r.ValidRegion = true
		}
		p.Rows = append(p.Rows, r)
	}
	return nil
}

// InvalidRegionCount counts plant rows whose non-empty region key is unknown.
func (p *ImportPreview) InvalidRegionCount() int {
	if p.Kind != KindPlant {
		return 0
	}
	n := 0
	for _, r := range p.Rows {
		if !r.ValidRegion && r.Region != "" {
			n++
		}
	}
	return n
}

const englishNamePrefix = "(DYA)"

// Payload converts the preview rows to the import endpoint's row format.
func (p *ImportPreview) Payload() []map[string]any {
	out := make([]map[string]any, 0, len(p.Rows))
	for _, r := range p.Rows {
		nameEn := r.NameEn
		if !strings.HasPrefix(nameEn, englishNamePrefix) {
			nameEn = englishNamePrefix + nameEn
		}
		row := map[string]any{
			"Number":      r.Key,
			"Designation": r.NameKo,
			"영문명":         nameEn,
		}
		if p.Kind == KindPlant {
			row["지역"] = r.Region
		}
		out = append(out, row)
	}
	return out
}

// MasterDataImporter posts rows to the cost system's import endpoint.
type MasterDataImporter interface {
	ImportMasterData(ctx context.Context, guid string, data []map[string]any) (sqlexec.ImportResult, error)
}

// GUIDLookup resolves the import configuration GUID for (class, name).
type GUIDLookup func(class, name string) (string, error)

// CommitImport sends the preview to the import endpoint and returns the
// number of rows sent. Plant previews with unknown regions need confirmed.
func CommitImport(ctx context.Context, importer MasterDataImporter, lookup GUIDLookup, p *ImportPreview, confirmed bool) (int, error) {
	if p == nil || len(p.Rows) == 0 {
		return 0, ErrEmptyImport
	}
	if p.InvalidRegionCount() > 0 && !confirmed {
		return 0, ErrConfirmationRequired
	}
	guid, err := lookup(ImportConfigClass, string(p.Kind))
	if err != nil {
		return 0, fmt.Errorf("import configuration %s/%s: %w", ImportConfigClass, p.Kind, err)
	}
	if _, err := importer.ImportMasterData(ctx, guid, p.Payload()); err != nil {
		return 0, err
	}
	return len(p.Rows), nil
}

func masterDataFromRow(r sqlexec.Row) MasterDataRow {
	return MasterDataRow{
		ID:          r.String("id"),
		Key:         r.String("uniqueKey"),
		NameKo:      r.String("nameKo"),
		NameEn:      r.String("nameEn"),
		Region:      r.String("region"),
		ValidRegion: true,
	}
}

// MasterDataList returns the regions or plants of the cost database; a failed
// read is logged and yields no rows.
func (m *MasterData) MasterDataList(ctx context.Context, kind MasterDataKind, includeRef bool) []MasterDataRow {
	stmt := RegionsStatement(includeRef)
	if kind == KindPlant {
		stmt = PlantsStatement(includeRef)
	}
	rows, err := m.query(ctx, stmt)
	if err != nil {
		m.log().WithError(err).WithField("kind", kind).Warn("loading master data failed")
		return nil
	}
	out := make([]MasterDataRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, masterDataFromRow(r))
	}
	return out
}

// ValidRegionKeys returns the set of existing region keys.
func (m *MasterData) ValidRegionKeys(ctx context.Context) (map[string]bool, error) {
	rows, err := m.query(ctx, RegionKeysStatement())
	if err != nil {
		return nil, err
	}
	keys := make(map[string]bool, len(rows))
	for _, r := range rows {
		keys[r.String("UniqueKey")] = true
	}
	return keys, nil
}

// FilterMasterData keeps rows whose key or either name contains text,
// ignoring case.
func FilterMasterData(rows []MasterDataRow, text string) []MasterDataRow {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return rows
	}
	var out []MasterDataRow
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Key), text) ||
			strings.Contains(strings.ToLower(r.NameKo), text) ||
			strings.Contains(strings.ToLower(r.NameEn), text) {
			out = append(out, r)
		}
	}
	return out
}

func masterDataColumns(kind MasterDataKind) []string {
	if kind == KindPlant {
		return []string{headerNo, headerRegion, headerKey, headerNameKo, headerNameEn}
	}
	return []string{headerNo, headerKey, headerNameKo, headerNameEn}
}

// MasterDataExport flattens regions or plants into the export sheet layout.
func MasterDataExport(kind MasterDataKind, rows []MasterDataRow) FlatTable {
	table := FlatTable{Columns: masterDataColumns(kind), Rows: make([]FlatRow, 0, len(rows))}
	for i, r := range rows {
		row := FlatRow{
			headerNo:     strconv.Itoa(i + 1),
			headerKey:    r.Key,
			headerNameKo: r.NameKo,
			headerNameEn: r.NameEn,
		}
		if kind == KindPlant {
			row[headerRegion] = r.Region
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// GenerateMasterDataTemplate creates an empty import workbook for kind with
// the header row, one example row and a region dropdown for plants.
func GenerateMasterDataTemplate(kind MasterDataKind, regionKeys []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := string(kind)
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#0F766E"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	headers := []string{headerKey, headerNameKo, headerNameEn}
	example := []string{"KR-01", "울산", "Ulsan"}
	if kind == KindPlant {
		headers = append(headers, headerRegion)
		example = append(example, "KR")
	}

	columns := columnLetters(len(headers))
	for i, h := range headers {
		f.SetCellValue(sheetName, columns[i]+"1", h)
		f.SetCellValue(sheetName, columns[i]+"2", example[i])
		f.SetColWidth(sheetName, columns[i], columns[i], 20)
	}
	f.SetCellStyle(sheetName, "A1", columns[len(columns)-1]+"1", headerStyle)

	if kind == KindPlant && len(regionKeys) > 0 {
		col := columns[len(columns)-1]
		dv := excelize.NewDataValidation(true)
		dv.Sqref = fmt.Sprintf("%s2:%s1048576", col, col)
		// Excel limits inline lists to 255 characters.
		if err := dv.SetDropList(regionKeys); err == nil {
			f.AddDataValidation(sheetName, dv)
		}
	}

	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel template: %w", err)
	}
	return buf.Bytes(), nil
}

// columnLetters returns Excel column letters for n columns: A, B, ... Z, AA, AB ...
func columnLetters(n int) []string {
	cols := make([]string, n)
	for i := 0; i < n; i++ {
		name, _ := excelize.ColumnNumberToName(i + 1)
		cols[i] = name
	}
	return cols
}
