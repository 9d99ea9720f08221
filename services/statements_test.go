package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"costconsole/locales"
)

func TestNstrEscapesQuotes(t *testing.T) {
	assert.Equal(t, "N'O''Brien'", nstr("O'Brien"))
	assert.Equal(t, "N'%x''y%'", like("x'y"))
	assert.Equal(t, "('1','2''3')", inList([]string{"1", "2'3"}))
	assert.Equal(t, "(NULL)", inList(nil))
}

func TestChildrenStatement(t *testing.T) {
	folder := ChildrenStatement(TreeNode{Kind: KindFolder, BackendID: "12"})
	assert.Contains(t, folder, "where ParentId = 12")
	assert.Contains(t, folder, "FolderEntries where FolderId = 12")
	assert.Contains(t, folder, "CONCAT('p&~&'")

	project := ChildrenStatement(TreeNode{Kind: KindProject, BackendID: "7"})
	assert.Contains(t, project, "ProjectID = 7")
	assert.Contains(t, project, "master = 1")

	part := ChildrenStatement(TreeNode{Kind: KindPart, BackendID: "99"})
	assert.Contains(t, part, "CalcBomChildren(99) where ParentCalcId = 99")

	assert.Empty(t, ChildrenStatement(TreeNode{Kind: KindTool, BackendID: "1"}))
	assert.Empty(t, ChildrenStatement(TreeNode{Kind: KindFolder, BackendID: "1; drop table x"}))
}

func TestRootFoldersStatement(t *testing.T) {
	s := RootFoldersStatement()
	assert.Contains(t, s, "Private folder")
	assert.Contains(t, s, "Public folder")
}

func TestNameSQLFallbackOrder(t *testing.T) {
	s := NameSQL("s.Name_LOC", locales.Korean)
	ko := strings.Index(s, "N'ko-KR'")
	en := strings.Index(s, "N'en-US'")
	assert.True(t, ko >= 0 && en > ko, s)
	assert.Equal(t, 2, strings.Count(s, "N'ko-KR'"))
}

func TestMaterialStatements(t *testing.T) {
	f := MaterialFilter{Text: "S45", ClassKey: "Steel", MaterialType: "Bar"}
	where := f.where()
	assert.Contains(t, where, "s.ExternallyManaged = 0")
	assert.Contains(t, where, "cls.UniqueKey = N'Steel'")
	assert.Contains(t, where, "s.UniqueKey LIKE N'%S45%'")
	assert.Contains(t, where, "pv.ListItemValues = N'Bar'")

	assert.NotContains(t, MaterialFilter{IncludeRef: true}.where(), "ExternallyManaged")
	assert.Contains(t, MaterialPageStatement(f, 30, 15), "OFFSET 30 ROWS FETCH NEXT 15 ROWS ONLY")
	assert.Contains(t, MaterialCountStatement(f), "COUNT(DISTINCT s.Id)")
	assert.Contains(t, MaterialPropertiesStatement([]string{"5"}, locales.English), "IN ('5')")
}

func TestMachineStatementsGroupCTE(t *testing.T) {
	plain := MachinePageStatement(MachineFilter{}, locales.English, 0, 15)
	assert.True(t, strings.HasPrefix(plain, "WITH PagedRows AS ("))
	assert.NotContains(t, plain, "TargetGroup")

	grouped := MachineFilter{GroupKey: "CNC"}
	assert.True(t, strings.HasPrefix(MachinePageStatement(grouped, locales.English, 0, 15), "WITH TargetGroup AS ("))
	assert.Contains(t, MachinePageStatement(grouped, locales.English, 0, 15), ", PagedRows AS (")
	assert.True(t, strings.HasPrefix(MachineCountStatement(grouped), "WITH TargetGroup"))
	assert.Contains(t, MachineExportStatement(grouped, locales.Korean), "h.AssetClassId IN (SELECT Id FROM TargetGroup)")
}

func TestPriceFilterDates(t *testing.T) {
	f := PriceFilter{StartDate: "2024-01-01", EndDate: "2024-03-31", Region: "KR"}
	where := f.where()
	assert.Contains(t, where, "d.DateValidFrom >= N'2024-01-01'")
	assert.Contains(t, where, "d.DateValidFrom <= N'2024-03-31 23:59:59'")
	assert.Contains(t, where, "reg.UniqueKey = N'KR'")

	f.AllPeriods = true
	assert.NotContains(t, f.where(), "DateValidFrom")

	page := PricePageStatement(f, locales.English, 15, 15)
	assert.Contains(t, page, "LIKE '%Scrap%'")
	assert.Contains(t, page, "OFFSET 15 ROWS")
}

func TestPlantRegionStatements(t *testing.T) {
	assert.Contains(t, RegionsStatement(false), "WHERE ExternallyManaged = 0")
	assert.NotContains(t, RegionsStatement(true), "WHERE")
	assert.Contains(t, PlantsStatement(false), "P.ExternallyManaged = 0")
	assert.Contains(t, PlantsStatement(true), "R.UniqueKey AS region")
}
