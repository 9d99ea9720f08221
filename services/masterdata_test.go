package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costconsole/locales"
	"costconsole/sqlexec"
	"costconsole/testhelpers"
)

func newMasterData(exec sqlexec.Executor) *MasterData {
	return &MasterData{Exec: exec, Database: "TcPCM_Test", PageSize: 15, Seq: NewRequestSequence()}
}

func TestMaterialPage(t *testing.T) {
	exec := testhelpers.NewFakeExecutor().
		On("COUNT(DISTINCT s.Id)", sqlexec.Row{"total": 2}).
		On("MDSubstancePropertyValues] v",
			sqlexec.Row{"SubstanceId": 1, "PropertyId": "10", "Value": "205", "PropertyName": "Tensile", "UnitName": "MPa"},
			sqlexec.Row{"SubstanceId": 1, "PropertyId": "STD_3", "Value": "S45C", "PropertyName": "KS"}).
		On("WITH PagedRows",
			sqlexec.Row{"SubstanceId": 1, "UniqueKey": "MAT-001", "Density": 7.85, "DensityUnit": "g/cm3"},
			sqlexec.Row{"SubstanceId": 2, "UniqueKey": "MAT-002"})

	md := newMasterData(exec)
	page, err := md.MaterialPage(context.Background(), "s/materials", MaterialFilter{}, locales.English, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Pager.TotalItems)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "MAT-001", page.Rows[0].Key)
	assert.Equal(t, "7.85", page.Rows[0].Density)
	require.Len(t, page.Pivot.Columns, 2)
	assert.Equal(t, "STD_3", page.Pivot.Columns[0].AttributeID)
	assert.Equal(t, "205", page.Pivot.Cell("1", "10", ScreenPlaceholder))
	assert.Equal(t, "-", page.Pivot.Cell("2", "10", ScreenPlaceholder))
}

func TestMaterialPageDegradesOnFailure(t *testing.T) {
	exec := testhelpers.NewFakeExecutor().Fail("MDSubstances", errors.New("proxy down"))
	page, err := newMasterData(exec).MaterialPage(context.Background(), "s/materials", MaterialFilter{}, locales.English, 3)
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Equal(t, 1, page.Pager.CurrentPage())
	assert.Equal(t, 1, page.Pager.TotalPages())
}

func TestMaterialPageClampsPastEnd(t *testing.T) {
	exec := testhelpers.NewFakeExecutor().
		On("COUNT(DISTINCT s.Id)", sqlexec.Row{"total": 20}).
		On("OFFSET 15 ROWS", sqlexec.Row{"SubstanceId": 16, "UniqueKey": "MAT-016"}).
		On("WITH PagedRows")

	page, err := newMasterData(exec).MaterialPage(context.Background(), "s/materials", MaterialFilter{}, locales.English, 9)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pager.CurrentPage())
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "MAT-016", page.Rows[0].Key)
}

type supersedingExecutor struct {
	*testhelpers.FakeExecutor
	seq *RequestSequence
	key string
}

func (s supersedingExecutor) Execute(ctx context.Context, db, stmt string) (sqlexec.Result, error) {
	// A newer request for the same grid starts while this one is in flight.
	s.seq.Next(s.key)
	return s.FakeExecutor.Execute(ctx, db, stmt)
}

func TestMaterialPageSuperseded(t *testing.T) {
	md := newMasterData(nil)
	md.Exec = supersedingExecutor{FakeExecutor: testhelpers.NewFakeExecutor(), seq: md.Seq, key: "s/materials"}

	_, err := md.MaterialPage(context.Background(), "s/materials", MaterialFilter{}, locales.English, 1)
	assert.ErrorIs(t, err, ErrSuperseded)
}

func TestMaterialExport(t *testing.T) {
	exec := testhelpers.NewFakeExecutor().
		On("MDSubstancePropertyValues] v",
			sqlexec.Row{"SubstanceId": 1, "PropertyId": "10", "Value": "205", "PropertyName": "Tensile", "UnitName": "MPa"}).
		On("BDSubstanceStandards] std_b ON std_n.SubstanceStandardId",
			sqlexec.Row{"SubstanceId": 1, "UniqueKey": "MAT-001", "Density": 7.85, "DensityUnit": "g/cm3", "StandardName": "S45C", "StandardType": "KS"},
			sqlexec.Row{"SubstanceId": 2, "UniqueKey": "MAT-002"})

	table, err := newMasterData(exec).MaterialExport(context.Background(), MaterialFilter{}, locales.Korean)
	require.NoError(t, err)
	assert.Equal(t, append(append([]string{}, MaterialExportColumns...), "Tensile (MPa)"), table.Columns)
	assert.Equal(t, []string{"1", "MAT-001", "S45C", "KS", "7.85 g/cm3", "205"}, table.Values(0))
	assert.Equal(t, []string{"2", "MAT-002", "", "", "", ""}, table.Values(1))
}

func TestExportNoData(t *testing.T) {
	md := newMasterData(testhelpers.NewFakeExecutor())
	_, err := md.MaterialExport(context.Background(), MaterialFilter{}, locales.English)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = md.MachineExport(context.Background(), MachineFilter{}, locales.English)
	assert.ErrorIs(t, err, ErrNoData)
	_, err = md.PriceExport(context.Background(), PriceFilter{}, locales.English)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestMachineExport(t *testing.T) {
	exec := testhelpers.NewFakeExecutor().
		On("MDAssetHeaderPropertyValues",
			sqlexec.Row{"AssetId": 5, "PropertyId": "3", "Value": "380", "PropertyName": "Voltage", "UnitName": "V"}).
		On("MDAssetHeaders",
			sqlexec.Row{"AssetId": 5, "UniqueKey": "MC-01", "Name": "Press", "PlantName": "Ulsan", "Invest": 120000,
				"CurrencyName": "KRW", "DepreciationTime": 8, "PowerOnTimeRate": 0.85, "RequiredSpaceNet": 12.5, "CreatedAt": "2024-02-01"},
			sqlexec.Row{"AssetId": 6, "UniqueKey": "MC-02", "Name": "Lathe"})

	table, err := newMasterData(exec).MachineExport(context.Background(), MachineFilter{}, locales.English)
	require.NoError(t, err)
	assert.Equal(t, "Voltage", table.Columns[len(table.Columns)-1])
	assert.Equal(t, []string{"1", "MC-01", "Press", "Ulsan", "120000", "KRW", "8", "85", "12.5", "2024-02-01", "380"}, table.Values(0))
	row := table.Values(1)
	assert.Equal(t, "", row[7])
	assert.Equal(t, "-", row[len(row)-1])
}

func TestPricePageValidatesDates(t *testing.T) {
	md := newMasterData(testhelpers.NewFakeExecutor())
	_, err := md.PricePage(context.Background(), "s/prices", PriceFilter{StartDate: "2024-05-01", EndDate: "2024-04-01"}, locales.English, 1)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = md.PricePage(context.Background(), "s/prices", PriceFilter{StartDate: "2024-05-01", EndDate: "2024-04-01", AllPeriods: true}, locales.English, 1)
	assert.NoError(t, err)

	assert.Error(t, PriceFilter{StartDate: "05/01/2024"}.Validate())
}

func TestPriceExport(t *testing.T) {
	exec := testhelpers.NewFakeExecutor().
		On("MDMaterialDetails",
			sqlexec.Row{"validFrom": "2024-03-01", "region": "KR", "uniqueKey": "RAW-1", "revisionName": "R2", "name": "Coil",
				"currency": "KRW", "unit": "kg", "price": 1250.5, "scrapPrice": 0})

	table, err := newMasterData(exec).PriceExport(context.Background(), PriceFilter{AllPeriods: true}, locales.English)
	require.NoError(t, err)
	assert.Equal(t, PriceExportColumns, table.Columns)
	assert.Equal(t, []string{"1", "2024-03-01", "KR", "RAW-1", "Coil", "R2", "KRW", "kg", "1250.5", "0"}, table.Values(0))
}

func TestOptions(t *testing.T) {
	exec := testhelpers.NewFakeExecutor().
		On("BDRegions] reg ON d.RegionId", sqlexec.Row{"UniqueKey": "KR", "Name": "Korea"}, sqlexec.Row{"UniqueKey": "", "Name": "skip"}).
		On("MDMaterialHeaderRevisions", sqlexec.Row{"UniqueKey": "Steel"})

	regions, classes := newMasterData(exec).PriceOptions(context.Background(), locales.English)
	assert.Equal(t, []Option{{Key: "KR", Name: "Korea"}}, regions)
	assert.Equal(t, []Option{{Key: "Steel", Name: "Steel"}}, classes)
}
