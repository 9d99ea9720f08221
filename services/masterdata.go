package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"costconsole/locales"
	"costconsole/sqlexec"
)

var (
	// ErrNoData is returned by exports whose filter matched nothing.
	ErrNoData = errors.New("no data to export")
	// ErrInvalidDateRange is returned when a price filter ends before it starts.
	ErrInvalidDateRange = errors.New("end date is before start date")
)

// MasterData reads the material, machine and price grids from the cost
// database. Read failures degrade to empty results and are logged.
type MasterData struct {
	Exec     sqlexec.Executor
	Database string
	PageSize int
	Seq      *RequestSequence
	Log      logrus.FieldLogger
}

func (m *MasterData) log() logrus.FieldLogger {
	if m.Log == nil {
		return logrus.StandardLogger()
	}
	return m.Log
}

func (m *MasterData) pageSize() int {
	if m.PageSize <= 0 {
		return 15
	}
	return m.PageSize
}

func (m *MasterData) query(ctx context.Context, stmt string) ([]sqlexec.Row, error) {
	res, err := m.Exec.Execute(ctx, m.Database, stmt)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

func (m *MasterData) count(ctx context.Context, stmt string) (int, error) {
	rows, err := m.query(ctx, stmt)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Int("total"), nil
}

// Option is an entry of a filter dropdown.
type Option struct {
	Key  string
	Name string
}

func (m *MasterData) options(ctx context.Context, stmt string) []Option {
	rows, err := m.query(ctx, stmt)
	if err != nil {
		m.log().WithError(err).Warn("loading options failed")
		return nil
	}
	out := make([]Option, 0, len(rows))
	for _, r := range rows {
		key := r.String("UniqueKey")
		if key == "" {
			continue
		}
		name := r.String("Name")
		if name == "" {
			name = key
		}
		out = append(out, Option{Key: key, Name: name})
	}
	return out
}

// loadGrid runs one sequenced page load: count and rows concurrently, a
// refetch of rows when the requested page was past the end, then attrs for
// the fetched rows. The result is ErrSuperseded when a newer load for key
// started meanwhile.
func loadGrid[T any](
	ctx context.Context,
	m *MasterData,
	key string,
	page int,
	countStmt string,
	pageStmt func(offset, limit int) string,
	convert func(sqlexec.Row) T,
	attrs func([]T) Pivot,
) (GridPage[T], error) {
	var ticket uint64
	if m.Seq != nil {
		ticket = m.Seq.Next(key)
	}
	size := m.pageSize()
	read := func(offset int) func(context.Context) ([]T, error) {
		return func(ctx context.Context) ([]T, error) {
			rows, err := m.query(ctx, pageStmt(offset, size))
			if err != nil {
				return nil, err
			}
			out := make([]T, 0, len(rows))
			for _, r := range rows {
				out = append(out, convert(r))
			}
			return out, nil
		}
	}

	requested := max(page, 1)
	res, err := LoadPage(ctx,
		func(ctx context.Context) (int, error) { return m.count(ctx, countStmt) },
		read((requested-1)*size),
		m.log().WithField("grid", key))
	if err != nil {
		return GridPage[T]{}, err
	}

	pager := NewPaginator(res.Total, size)
	pager.GoTo(requested)
	if pager.CurrentPage() != requested && res.Total > 0 {
		rows, err := read(pager.Offset())(ctx)
		if err != nil {
			m.log().WithError(err).Warn("reloading clamped page failed")
		}
		res.Rows = rows
	}

	grid := GridPage[T]{Pager: pager, Rows: res.Rows}
	if attrs != nil && len(res.Rows) > 0 {
		grid.Pivot = attrs(res.Rows)
	}

	if m.Seq != nil {
		if err := m.Seq.Check(key, ticket); err != nil {
			return GridPage[T]{}, err
		}
	}
	return grid, nil
}

// GridPage is one rendered page of a list grid.
type GridPage[T any] struct {
	Pager *Paginator
	Rows  []T
	Pivot Pivot
}

// Material is one row of the material property grid.
type Material struct {
	SubstanceID  string
	Key          string
	Density      string
	DensityUnit  string
	StandardName string
	StandardType string
}

func materialFromRow(r sqlexec.Row) Material {
	return Material{
		SubstanceID:  r.String("SubstanceId"),
		Key:          r.String("UniqueKey"),
		Density:      r.String("Density"),
		DensityUnit:  r.String("DensityUnit"),
		StandardName: r.String("StandardName"),
		StandardType: r.String("StandardType"),
	}
}

var materialAttrs = AttributeMapping{Entity: "SubstanceId", Attribute: "PropertyId", Value: "Value", Name: "PropertyName", Unit: "UnitName"}

func (m *MasterData) materialPivot(ctx context.Context, ids []string, lang locales.Language) Pivot {
	rows, err := m.query(ctx, MaterialPropertiesStatement(ids, lang))
	if err != nil {
		m.log().WithError(err).Warn("loading material properties failed")
		return BuildPivot(nil)
	}
	return BuildPivot(AttributeRowsFromResult(rows, materialAttrs))
}

// MaterialPage loads one page of the material property grid.
func (m *MasterData) MaterialPage(ctx context.Context, key string, f MaterialFilter, lang locales.Language, page int) (GridPage[Material], error) {
	return loadGrid(ctx, m, key, page,
		MaterialCountStatement(f),
		func(offset, limit int) string { return MaterialPageStatement(f, offset, limit) },
		materialFromRow,
		func(rows []Material) Pivot {
			ids := make([]string, len(rows))
			for i, r := range rows {
				ids[i] = r.SubstanceID
			}
			return m.materialPivot(ctx, ids, lang)
		})
}

// MaterialOptions returns the classification and material type dropdowns.
func (m *MasterData) MaterialOptions(ctx context.Context, lang locales.Language) (classes, types []Option) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		classes = m.options(gctx, MaterialClassOptionsStatement(lang))
		return nil
	})
	g.Go(func() error {
		types = m.options(gctx, MaterialTypeOptionsStatement())
		return nil
	})
	_ = g.Wait()
	return classes, types
}

// MaterialExportColumns are the fixed leading columns of the material sheet.
var MaterialExportColumns = []string{"No", "Key", "Standard Name", "Standard Type", "Density"}

// MaterialExport flattens every matching material with its properties.
// Property headers carry units; missing values are blank.
func (m *MasterData) MaterialExport(ctx context.Context, f MaterialFilter, lang locales.Language) (FlatTable, error) {
	rows, err := m.query(ctx, MaterialExportStatement(f))
	if err != nil {
		return FlatTable{}, err
	}
	if len(rows) == 0 {
		return FlatTable{}, ErrNoData
	}

	base := make([]BaseRow, len(rows))
	ids := make([]string, len(rows))
	for i, r := range rows {
		mat := materialFromRow(r)
		ids[i] = mat.SubstanceID
		base[i] = BaseRow{EntityID: mat.SubstanceID, Fields: map[string]string{
			"No":            strconv.Itoa(i + 1),
			"Key":           mat.Key,
			"Standard Name": mat.StandardName,
			"Standard Type": mat.StandardType,
			"Density":       WithUnit(mat.Density, mat.DensityUnit),
		}}
	}

	pivot := m.materialPivot(ctx, ids, lang)
	return pivot.Flatten(base, FlattenOptions{
		FixedColumns: MaterialExportColumns,
		Placeholder:  ExportPlaceholder,
		Headers:      HeaderExport,
	}), nil
}

// Machine is one row of the machine grid.
type Machine struct {
	AssetID      string
	Key          string
	Name         string
	Plant        string
	Invest       string
	Currency     string
	Depreciation string
	PowerOnRate  float64
	SpaceNet     string
	CreatedAt    string
}

func machineFromRow(r sqlexec.Row) Machine {
	rate, _ := r.Float("PowerOnTimeRate")
	return Machine{
		AssetID:      r.String("AssetId"),
		Key:          r.String("UniqueKey"),
		Name:         r.String("Name"),
		Plant:        r.String("PlantName"),
		Invest:       r.String("Invest"),
		Currency:     r.String("CurrencyName"),
		Depreciation: r.String("DepreciationTime"),
		PowerOnRate:  rate,
		SpaceNet:     r.String("RequiredSpaceNet"),
		CreatedAt:    r.String("CreatedAt"),
	}
}

var machineAttrs = AttributeMapping{Entity: "AssetId", Attribute: "PropertyId", Value: "Value", Name: "PropertyName", Unit: "UnitName"}

func (m *MasterData) machinePivot(ctx context.Context, ids []string, lang locales.Language) Pivot {
	rows, err := m.query(ctx, MachinePropertiesStatement(ids, lang))
	if err != nil {
		m.log().WithError(err).Warn("loading machine properties failed")
		return BuildPivot(nil)
	}
	return BuildPivot(AttributeRowsFromResult(rows, machineAttrs))
}

func (m *MasterData) MachinePage(ctx context.Context, key string, f MachineFilter, lang locales.Language, page int) (GridPage[Machine], error) {
	return loadGrid(ctx, m, key, page,
		MachineCountStatement(f),
		func(offset, limit int) string { return MachinePageStatement(f, lang, offset, limit) },
		machineFromRow,
		func(rows []Machine) Pivot {
			ids := make([]string, len(rows))
			for i, r := range rows {
				ids[i] = r.AssetID
			}
			return m.machinePivot(ctx, ids, lang)
		})
}

// MachineGroup is a classification below the machine root.
type MachineGroup struct {
	ID       string
	ParentID string
	Key      string
	Name     string
}

func (m *MasterData) MachineGroups(ctx context.Context, lang locales.Language) []MachineGroup {
	rows, err := m.query(ctx, MachineGroupsStatement(lang))
	if err != nil {
		m.log().WithError(err).Warn("loading machine groups failed")
		return nil
	}
	out := make([]MachineGroup, 0, len(rows))
	for _, r := range rows {
		out = append(out, MachineGroup{
			ID:       r.String("Id"),
			ParentID: r.String("ParentId"),
			Key:      r.String("UniqueKey"),
			Name:     r.String("Name"),
		})
	}
	return out
}

var MachineExportColumns = []string{
	"No", "Key", "Name", "Plant", "Invest", "Currency",
	"Depreciation (Y)", "Power On Rate (%)", "Space Net", "Created",
}

// MachineExport flattens every matching machine. Property headers are bare
// names and missing values are "-".
func (m *MasterData) MachineExport(ctx context.Context, f MachineFilter, lang locales.Language) (FlatTable, error) {
	rows, err := m.query(ctx, MachineExportStatement(f, lang))
	if err != nil {
		return FlatTable{}, err
	}
	if len(rows) == 0 {
		return FlatTable{}, ErrNoData
	}

	base := make([]BaseRow, len(rows))
	ids := make([]string, len(rows))
	for i, r := range rows {
		mc := machineFromRow(r)
		ids[i] = mc.AssetID
		base[i] = BaseRow{EntityID: mc.AssetID, Fields: map[string]string{
			"No":                strconv.Itoa(i + 1),
			"Key":               mc.Key,
			"Name":              mc.Name,
			"Plant":             mc.Plant,
			"Invest":            mc.Invest,
			"Currency":          mc.Currency,
			"Depreciation (Y)":  mc.Depreciation,
			"Power On Rate (%)": FormatRatePercent(mc.PowerOnRate),
			"Space Net":         mc.SpaceNet,
			"Created":           mc.CreatedAt,
		}}
	}

	pivot := m.machinePivot(ctx, ids, lang)
	return pivot.Flatten(base, FlattenOptions{
		FixedColumns: MachineExportColumns,
		Placeholder:  ScreenPlaceholder,
		Headers:      HeaderScreen,
	}), nil
}

// Price is one row of the material price grid.
type Price struct {
	ID         string
	Key        string
	Revision   string
	Name       string
	ValidFrom  string
	Region     string
	Currency   string
	Price      float64
	ScrapPrice float64
	Unit       string
}

func priceFromRow(r sqlexec.Row) Price {
	price, _ := r.Float("price")
	scrap, _ := r.Float("scrapPrice")
	return Price{
		ID:         r.String("id"),
		Key:        r.String("uniqueKey"),
		Revision:   r.String("revisionName"),
		Name:       r.String("name"),
		ValidFrom:  r.String("validFrom"),
		Region:     r.String("region"),
		Currency:   r.String("currency"),
		Price:      price,
		ScrapPrice: scrap,
		Unit:       r.String("unit"),
	}
}

// Validate checks the date range; dates must be yyyy-mm-dd.
func (f PriceFilter) Validate() error {
	if f.AllPeriods {
		return nil
	}
	var start, end time.Time
	var err error
	if f.StartDate != "" {
		if start, err = time.Parse(time.DateOnly, f.StartDate); err != nil {
			return fmt.Errorf("start date: %w", err)
		}
	}
	if f.EndDate != "" {
		if end, err = time.Parse(time.DateOnly, f.EndDate); err != nil {
			return fmt.Errorf("end date: %w", err)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

func (m *MasterData) PricePage(ctx context.Context, key string, f PriceFilter, lang locales.Language, page int) (GridPage[Price], error) {
	if err := f.Validate(); err != nil {
		return GridPage[Price]{}, err
	}
	return loadGrid(ctx, m, key, page,
		PriceCountStatement(f),
		func(offset, limit int) string { return PricePageStatement(f, lang, offset, limit) },
		priceFromRow,
		nil)
}

// PriceOptions returns the region and class dropdowns.
func (m *MasterData) PriceOptions(ctx context.Context, lang locales.Language) (regions, classes []Option) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		regions = m.options(gctx, PriceRegionOptionsStatement(lang))
		return nil
	})
	g.Go(func() error {
		classes = m.options(gctx, PriceClassOptionsStatement(lang))
		return nil
	})
	_ = g.Wait()
	return regions, classes
}

var PriceExportColumns = []string{
	"No", "Valid From", "Region", "Key", "Name", "Revision", "Currency", "Unit", "Price", "Scrap Price",
}

// PriceExport returns every matching price. Scrap prices are not looked up
// for exports and report 0.
func (m *MasterData) PriceExport(ctx context.Context, f PriceFilter, lang locales.Language) (FlatTable, error) {
	if err := f.Validate(); err != nil {
		return FlatTable{}, err
	}
	rows, err := m.query(ctx, PriceExportStatement(f, lang))
	if err != nil {
		return FlatTable{}, err
	}
	if len(rows) == 0 {
		return FlatTable{}, ErrNoData
	}

	table := FlatTable{Columns: PriceExportColumns, Rows: make([]FlatRow, 0, len(rows))}
	for i, r := range rows {
		p := priceFromRow(r)
		table.Rows = append(table.Rows, FlatRow{
			"No":          strconv.Itoa(i + 1),
			"Valid From":  p.ValidFrom,
			"Region":      p.Region,
			"Key":         p.Key,
			"Name":        p.Name,
			"Revision":    p.Revision,
			"Currency":    p.Currency,
			"Unit":        p.Unit,
			"Price":       TrimDecimal(p.Price),
			"Scrap Price": TrimDecimal(p.ScrapPrice),
		})
	}
	return table, nil
}
