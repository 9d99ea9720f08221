package services

import (
	"fmt"
	"strconv"
	"strings"

	"costconsole/locales"
)

// Statements for the cost database. The query proxy accepts only statement
// text, so filter values are embedded as escaped N'' literals.

// nstr renders s as an escaped Unicode string literal.
func nstr(s string) string {
	return "N'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func like(s string) string {
	return nstr("%" + s + "%")
}

// inList renders ids as a quoted IN list. An empty list matches nothing.
func inList(ids []string) string {
	if len(ids) == 0 {
		return "(NULL)"
	}
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + strings.ReplaceAll(id, "'", "''") + "'"
	}
	return "(" + strings.Join(quoted, ",") + ")"
}

// numericID keeps only ids that are integers; tree ids are embedded unquoted.
func numericID(id string) (string, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}

// NameSQL resolves a translated column with the fallback
// session language, then en-US, then ko-KR.
func NameSQL(col string, lang locales.Language) string {
	return fmt.Sprintf(`COALESCE(
            NULLIF([dbo].[GetSingleTranslation](%[1]s, N'%[2]s', ''), ''),
            NULLIF([dbo].[GetSingleTranslation](%[1]s, N'en-US', ''), ''),
            [dbo].[GetSingleTranslation](%[1]s, N'ko-KR', '')
        )`, col, lang.DBLocale())
}

func translation(col, locale string) string {
	return fmt.Sprintf("[dbo].[GetSingleTranslation](%s, N'%s', '')", col, locale)
}

const translatedNames = `STRING_AGG(CONCAT(m.c.value('@lang', 'varchar(max)'), ':', m.c.value('.', 'nvarchar(max)')), '|')`

// RootFoldersStatement lists the private and public root folders as
// delimited records in column "name".
func RootFoldersStatement() string {
	return `select CONCAT('f&~&', Id, '&~&', ` + translatedNames + `) as name
    from Folders
    OUTER APPLY Folders.Name_LOC.nodes('/translations/value') as m(c)
    where m.c.value('.', 'nvarchar(max)') like '%Private folder%' or m.c.value('.', 'nvarchar(max)') like '%Public folder%'
    GROUP BY Id`
}

// ChildrenStatement returns the statement listing the children of node, or
// "" when the node kind has none or the id is not numeric.
func ChildrenStatement(node TreeNode) string {
	id, ok := numericID(node.BackendID)
	if !ok {
		return ""
	}
	switch node.Kind {
	case KindFolder:
		return `select CONCAT('f&~&', Id, '&~&', ` + translatedNames + `) as name
    from Folders
    OUTER APPLY Folders.Name_LOC.nodes('/translations/value') as m(c)
    where ParentId = ` + id + `
    GROUP BY Id
    UNION
    select CONCAT('p&~&', a.Id, '&~&', a.projectName) as name from (
        select s.Id, s.FolderID, ` + translatedNames + ` as projectName
        from Projects as s outer apply s.Name_LOC.nodes('/translations/value') as m(c)
        where s.FolderID in (` + id + `) group by s.Id, s.FolderID
    ) as a
    UNION
    select CONCAT('&~&', a.Id, '&~&', ` + translatedNames + `) as name
    from Calculations as a
    right join (select * from Parts where Id in (select PartID from FolderEntries where FolderId = ` + id + `)) as b on a.Partid = b.Id
    outer apply b.Name_LOC.nodes('/translations/value') as m(c)
    GROUP BY a.Id`
	case KindProject:
		return `select CONCAT('&~&', a.Id, '&~&', ` + translatedNames + `) as name
    from Calculations as a
    right join (select * from Parts where Id in (select PartID from ProjectPartEntries where ProjectID = ` + id + `)) as b on a.Partid = b.Id
    outer apply b.Name_LOC.nodes('/translations/value') as m(c) where master = 1 GROUP BY a.Id`
	case KindPart:
		return `select CONCAT('&~&', b.Id, '&~&', ` + translatedNames + `) as name
    from Parts as a
    right join (select * from Calculations where id in (select CurrentCalcId from CalcBomChildren(` + id + `) where ParentCalcId = ` + id + `)) as b on a.Id = b.PartId
    outer apply a.Name_LOC.nodes('/translations/value') as m(c) GROUP BY b.Id`
	}
	return ""
}

// materialTypePropertyID is the classification property holding the
// material type list value.
const materialTypePropertyID = 28

// MaterialFilter narrows the material property grid.
type MaterialFilter struct {
	Text         string
	ClassKey     string
	MaterialType string
	IncludeRef   bool
}

func (f MaterialFilter) where() string {
	var b strings.Builder
	b.WriteString("WHERE s.Obsolete IS NULL")
	if !f.IncludeRef {
		b.WriteString(" AND s.ExternallyManaged = 0")
	}
	if f.ClassKey != "" {
		b.WriteString(" AND cls.UniqueKey = " + nstr(f.ClassKey))
	}
	if f.Text != "" {
		b.WriteString(" AND (s.UniqueKey LIKE " + like(f.Text) + " OR std_n.Name_LOC LIKE " + like(f.Text) + ")")
	}
	if f.MaterialType != "" {
		fmt.Fprintf(&b, `
        AND EXISTS (
            SELECT 1 FROM [dbo].[MDSubstancePropertyValues] pv
            WHERE pv.SubstanceId = s.Id
              AND pv.ClassificationPropertyId = %d
              AND pv.ListItemValues = %s
        )`, materialTypePropertyID, nstr(f.MaterialType))
	}
	return b.String()
}

func MaterialCountStatement(f MaterialFilter) string {
	return `SELECT COUNT(DISTINCT s.Id) AS total
    FROM [dbo].[MDSubstances] s
    LEFT JOIN [dbo].[Classifications] cls ON s.ClassId = cls.Id
    LEFT JOIN [dbo].[MDSubstanceStandardNames] std_n ON s.Id = std_n.SubstanceId
    ` + f.where()
}

func MaterialPageStatement(f MaterialFilter, offset, limit int) string {
	return fmt.Sprintf(`WITH PagedRows AS (
        SELECT DISTINCT s.Id, s.UniqueKey
        FROM [dbo].[MDSubstances] s
        LEFT JOIN [dbo].[Classifications] cls ON s.ClassId = cls.Id
        LEFT JOIN [dbo].[MDSubstanceStandardNames] std_n ON s.Id = std_n.SubstanceId
        %s
        ORDER BY s.UniqueKey ASC
        OFFSET %d ROWS FETCH NEXT %d ROWS ONLY
    )
    SELECT DISTINCT s.Id AS SubstanceId, s.UniqueKey, s.Density, u.Name AS DensityUnit
    FROM PagedRows p
    JOIN [dbo].[MDSubstances] s ON p.Id = s.Id
    LEFT JOIN [dbo].[Units] u ON s.DensityUnitId = u.Id
    ORDER BY s.UniqueKey ASC`, f.where(), offset, limit)
}

// MaterialExportStatement returns every matching material with its
// standard name and type.
func MaterialExportStatement(f MaterialFilter) string {
	return `SELECT s.Id AS SubstanceId, s.UniqueKey, s.Density, u.Name AS DensityUnit,
        ` + translation("std_n.Name_LOC", "ko-KR") + ` AS StandardName,
        ` + translation("std_b.Name_LOC", "ko-KR") + ` AS StandardType
    FROM [dbo].[MDSubstances] s
    LEFT JOIN [dbo].[Classifications] cls ON s.ClassId = cls.Id
    LEFT JOIN [dbo].[Units] u ON s.DensityUnitId = u.Id
    LEFT JOIN [dbo].[MDSubstanceStandardNames] std_n ON s.Id = std_n.SubstanceId
    LEFT JOIN [dbo].[BDSubstanceStandards] std_b ON std_n.SubstanceStandardId = std_b.Id
    ` + f.where() + `
    ORDER BY s.UniqueKey ASC`
}

// MaterialPropertiesStatement returns the property values of the given
// substances with translated property names and units.
func MaterialPropertiesStatement(ids []string, lang locales.Language) string {
	return `SELECT v.SubstanceId, CAST(v.ClassificationPropertyId AS NVARCHAR(50)) AS PropertyId,
        COALESCE(CAST(v.DecimalValue AS NVARCHAR(50)), v.TextValue, v.ListItemValues, FORMAT(v.DateTimeValue, 'yyyy-MM-dd')) AS Value,
        ` + NameSQL("cp.Name_LOC", lang) + ` AS PropertyName,
        u.Name AS UnitName
    FROM [dbo].[MDSubstancePropertyValues] v
    JOIN [dbo].[ClassificationProperties] cp ON v.ClassificationPropertyId = cp.Id
    LEFT JOIN [dbo].[Units] u ON cp.UnitId = u.Id
    WHERE v.SubstanceId IN ` + inList(ids) + `
    UNION ALL
    SELECT std_n.SubstanceId, CONCAT('STD_', std_b.Id) AS PropertyId,
        ` + NameSQL("std_n.Name_LOC", lang) + ` AS Value,
        ` + NameSQL("std_b.Name_LOC", lang) + ` AS PropertyName,
        NULL AS UnitName
    FROM [dbo].[MDSubstanceStandardNames] std_n
    JOIN [dbo].[BDSubstanceStandards] std_b ON std_n.SubstanceStandardId = std_b.Id
    WHERE std_n.SubstanceId IN ` + inList(ids)
}

func MaterialClassOptionsStatement(lang locales.Language) string {
	return `SELECT DISTINCT c.Id, c.UniqueKey, ` + NameSQL("c.Name_LOC", lang) + ` AS Name
    FROM [dbo].[Classifications] c
    JOIN [dbo].[MDSubstances] s ON c.Id = s.ClassId
    WHERE c.UniqueKey NOT LIKE '%Scrap%' AND s.Obsolete IS NULL
    ORDER BY c.UniqueKey`
}

func MaterialTypeOptionsStatement() string {
	return fmt.Sprintf(`SELECT DISTINCT pv.ListItemValues AS UniqueKey, pv.ListItemValues AS Name
    FROM [dbo].[MDSubstancePropertyValues] pv
    WHERE pv.ClassificationPropertyId = %d AND pv.ListItemValues IS NOT NULL
    ORDER BY pv.ListItemValues`, materialTypePropertyID)
}

// machineRootClassID is the classification root of all machine groups.
const machineRootClassID = 19

// MachineFilter narrows the machine grid. GroupKey includes all descendant
// classifications.
type MachineFilter struct {
	Text       string
	GroupKey   string
	IncludeRef bool
}

func (f MachineFilter) parts() (cte, where string) {
	var b strings.Builder
	b.WriteString("WHERE h.Obsolete IS NULL")
	if !f.IncludeRef {
		b.WriteString(" AND h.ExternallyManaged = 0")
	}
	if f.GroupKey != "" {
		cte = `TargetGroup AS (
        SELECT Id FROM [dbo].[Classifications] WHERE UniqueKey = ` + nstr(f.GroupKey) + `
        UNION ALL
        SELECT c.Id FROM [dbo].[Classifications] c
        JOIN TargetGroup p ON c.ParentClassificationId = p.Id
    )`
		b.WriteString(" AND h.AssetClassId IN (SELECT Id FROM TargetGroup)")
	}
	if f.Text != "" {
		b.WriteString(" AND (h.UniqueKey LIKE " + like(f.Text) + " OR h.Name_LOC LIKE " + like(f.Text) + ")")
	}
	return cte, b.String()
}

func MachineCountStatement(f MachineFilter) string {
	cte, where := f.parts()
	prefix := ""
	if cte != "" {
		prefix = "WITH " + cte + "\n    "
	}
	return prefix + `SELECT COUNT(DISTINCT h.Id) AS total
    FROM [dbo].[MDAssetHeaders] h
    LEFT JOIN [dbo].[Classifications] cls ON h.AssetClassId = cls.Id
    ` + where
}

const machineColumns = `h.Id AS AssetId
        ,h.UniqueKey
        ,%s AS Name
        ,d.Invest
        ,d.DepreciationTime
        ,d.PowerOnTimeRate
        ,d.RequiredSpaceNet
        ,FORMAT(d.CreationDate, 'yyyy-MM-dd') AS CreatedAt
        ,cur.Name AS CurrencyName
        ,pl.Name AS PlantName`

const machineJoins = `LEFT JOIN [dbo].[MDAssetDetails] d ON h.Id = d.AssetHeaderId
    LEFT JOIN [dbo].[Currencies] cur ON d.CurrencyId = cur.Id
    LEFT JOIN [dbo].[BDPlants] pl ON d.PlantId = pl.Id`

func MachinePageStatement(f MachineFilter, lang locales.Language, offset, limit int) string {
	cte, where := f.parts()
	with := "WITH PagedRows AS ("
	if cte != "" {
		with = "WITH " + cte + ", PagedRows AS ("
	}
	return fmt.Sprintf(`%s
        SELECT h.Id
        FROM [dbo].[MDAssetHeaders] h
        LEFT JOIN [dbo].[Classifications] cls ON h.AssetClassId = cls.Id
        %s
        ORDER BY h.UniqueKey ASC
        OFFSET %d ROWS FETCH NEXT %d ROWS ONLY
    )
    SELECT DISTINCT
        %s
    FROM PagedRows p
    JOIN [dbo].[MDAssetHeaders] h ON p.Id = h.Id
    %s
    ORDER BY h.UniqueKey ASC`, with, where, offset, limit,
		fmt.Sprintf(machineColumns, NameSQL("h.Name_LOC", lang)), machineJoins)
}

func MachineExportStatement(f MachineFilter, lang locales.Language) string {
	cte, where := f.parts()
	prefix := ""
	if cte != "" {
		prefix = "WITH " + cte + "\n    "
	}
	return prefix + `SELECT DISTINCT
        ` + fmt.Sprintf(machineColumns, NameSQL("h.Name_LOC", lang)) + `
    FROM [dbo].[MDAssetHeaders] h
    LEFT JOIN [dbo].[Classifications] cls ON h.AssetClassId = cls.Id
    ` + machineJoins + `
    ` + where + `
    ORDER BY h.UniqueKey ASC`
}

func MachinePropertiesStatement(ids []string, lang locales.Language) string {
	return `SELECT v.AssetHeaderId AS AssetId
        ,CAST(v.ClassificationPropertyId AS NVARCHAR(50)) AS PropertyId
        ,COALESCE(CAST(v.DecimalValue AS NVARCHAR(50)), v.TextValue, v.ListItemValues, FORMAT(v.DateTimeValue, 'yyyy-MM-dd')) AS Value
        ,` + NameSQL("cp.Name_LOC", lang) + ` AS PropertyName
        ,u.Name AS UnitName
    FROM [dbo].[MDAssetHeaderPropertyValues] v
    JOIN [dbo].[ClassificationProperties] cp ON v.ClassificationPropertyId = cp.Id
    LEFT JOIN [dbo].[Units] u ON cp.UnitId = u.Id
    WHERE v.AssetHeaderId IN ` + inList(ids)
}

// MachineGroupsStatement lists every classification below the machine root.
func MachineGroupsStatement(lang locales.Language) string {
	return fmt.Sprintf(`WITH TreeCTE AS (
        SELECT Id, ParentClassificationId, UniqueKey, Name_LOC
        FROM [dbo].[Classifications]
        WHERE Id = %[1]d
        UNION ALL
        SELECT c.Id, c.ParentClassificationId, c.UniqueKey, c.Name_LOC
        FROM [dbo].[Classifications] c
        JOIN TreeCTE p ON c.ParentClassificationId = p.Id
    )
    SELECT DISTINCT t.Id, t.ParentClassificationId AS ParentId, t.UniqueKey, %[2]s AS Name
    FROM TreeCTE t
    WHERE t.Id <> %[1]d
    ORDER BY t.UniqueKey`, machineRootClassID, NameSQL("t.Name_LOC", lang))
}

// PriceFilter narrows the material price grid. Dates are yyyy-mm-dd and are
// ignored when AllPeriods is set.
type PriceFilter struct {
	Text       string
	Region     string
	ClassKey   string
	StartDate  string
	EndDate    string
	AllPeriods bool
	IncludeRef bool
}

func (f PriceFilter) where() string {
	var b strings.Builder
	b.WriteString("WHERE d.Obsolete IS NULL AND r.Obsolete IS NULL")
	if !f.IncludeRef {
		b.WriteString(" AND d.ExternallyManaged = 0")
	}
	if f.Region != "" {
		b.WriteString(" AND reg.UniqueKey = " + nstr(f.Region))
	}
	if f.ClassKey != "" {
		b.WriteString(" AND cls.UniqueKey = " + nstr(f.ClassKey))
	}
	if !f.AllPeriods {
		if f.StartDate != "" {
			b.WriteString(" AND d.DateValidFrom >= " + nstr(f.StartDate))
		}
		if f.EndDate != "" {
			b.WriteString(" AND d.DateValidFrom <= " + nstr(f.EndDate+" 23:59:59"))
		}
	}
	if f.Text != "" {
		b.WriteString(" AND (h.UniqueKey LIKE " + like(f.Text) + " OR CAST(h.Name_LOC AS NVARCHAR(MAX)) LIKE " + like(f.Text) + ")")
	}
	b.WriteString(`
    AND NOT EXISTS (SELECT 1 FROM [dbo].[Classifications] sc WHERE sc.Id = r.ClassId AND sc.UniqueKey LIKE '%Scrap%')`)
	return b.String()
}

const priceFrom = `FROM [dbo].[MDMaterialDetails] d
    JOIN [dbo].[MDMaterialHeaderRevisions] r ON d.MaterialHeaderRevisionId = r.Id
    JOIN [dbo].[MDMaterialHeaders] h ON r.MaterialHeaderId = h.Id
    LEFT JOIN [dbo].[BDRegions] reg ON d.RegionId = reg.Id
    LEFT JOIN [dbo].[Classifications] cls ON r.ClassId = cls.Id`

func PriceCountStatement(f PriceFilter) string {
	return "SELECT COUNT(*) AS total\n    " + priceFrom + "\n    " + f.where()
}

func PricePageStatement(f PriceFilter, lang locales.Language, offset, limit int) string {
	return fmt.Sprintf(`WITH PagedIDs AS (
        SELECT d.Id
        %s
        %s
        ORDER BY d.DateValidFrom DESC, d.Id DESC
        OFFSET %d ROWS FETCH NEXT %d ROWS ONLY
    )
    SELECT
         d.Id AS id
        ,h.UniqueKey AS uniqueKey
        ,r.Number AS revisionName
        ,%s AS name
        ,FORMAT(d.DateValidFrom, 'yyyy-MM-dd') AS validFrom
        ,ISNULL(reg.UniqueKey, '') AS region
        ,ISNULL(c.IsoCode, '') AS currency
        ,d.Price AS price
        ,ISNULL((
            SELECT TOP 1 s_d.Price
            FROM [dbo].[MDMaterialDetails] s_d
            JOIN [dbo].[MDMaterialHeaderRevisions] s_r ON s_d.MaterialHeaderRevisionId = s_r.Id
            JOIN [dbo].[Classifications] s_cls ON s_r.ClassId = s_cls.Id
            WHERE s_r.SubstanceId = r.SubstanceId
                AND (ISNULL(s_d.RegionId, 0) = ISNULL(d.RegionId, 0))
                AND s_d.DateValidFrom <= d.DateValidFrom
                AND s_cls.UniqueKey LIKE '%%Scrap%%'
                AND s_d.Obsolete IS NULL AND s_r.Obsolete IS NULL
            ORDER BY s_d.DateValidFrom DESC
        ), 0) AS scrapPrice
        ,ISNULL(u.Name, '') AS unit
    FROM PagedIDs p
    JOIN [dbo].[MDMaterialDetails] d ON p.Id = d.Id
    JOIN [dbo].[MDMaterialHeaderRevisions] r ON d.MaterialHeaderRevisionId = r.Id
    JOIN [dbo].[MDMaterialHeaders] h ON r.MaterialHeaderId = h.Id
    LEFT JOIN [dbo].[Currencies] c ON d.CurrencyId = c.Id
    LEFT JOIN [dbo].[Units] u ON d.UnitId = u.Id
    LEFT JOIN [dbo].[BDRegions] reg ON d.RegionId = reg.Id
    ORDER BY d.DateValidFrom DESC, d.Id DESC`, priceFrom, f.where(), offset, limit, NameSQL("h.Name_LOC", lang))
}

// PriceExportStatement skips the scrap price lookup; exports report 0.
func PriceExportStatement(f PriceFilter, lang locales.Language) string {
	return `SELECT
         FORMAT(d.DateValidFrom, 'yyyy-MM-dd') AS validFrom
        ,ISNULL(reg.UniqueKey, '') AS region
        ,h.UniqueKey AS uniqueKey
        ,r.Number AS revisionName
        ,` + NameSQL("h.Name_LOC", lang) + ` AS name
        ,c.IsoCode AS currency
        ,u.Name AS unit
        ,d.Price AS price
        ,0 AS scrapPrice
    ` + priceFrom + `
    LEFT JOIN [dbo].[Currencies] c ON d.CurrencyId = c.Id
    LEFT JOIN [dbo].[Units] u ON d.UnitId = u.Id
    ` + f.where() + `
    ORDER BY d.DateValidFrom DESC, d.Id DESC`
}

func PriceRegionOptionsStatement(lang locales.Language) string {
	return `SELECT DISTINCT reg.UniqueKey, ` + NameSQL("reg.Name_LOC", lang) + ` AS Name
    FROM [dbo].[MDMaterialDetails] d
    JOIN [dbo].[BDRegions] reg ON d.RegionId = reg.Id
    WHERE d.Obsolete IS NULL ORDER BY reg.UniqueKey`
}

func PriceClassOptionsStatement(lang locales.Language) string {
	return `SELECT c.UniqueKey, ` + NameSQL("c.Name_LOC", lang) + ` AS Name
    FROM [dbo].[Classifications] c
    WHERE c.UniqueKey NOT LIKE '%Scrap%'
    AND EXISTS (
        SELECT 1 FROM [dbo].[MDMaterialHeaderRevisions] r
        JOIN [dbo].[MDMaterialDetails] d ON r.Id = d.MaterialHeaderRevisionId
        WHERE r.ClassId = c.Id AND r.Obsolete IS NULL AND d.Obsolete IS NULL
    ) ORDER BY c.UniqueKey`
}

func RegionsStatement(includeRef bool) string {
	where := ""
	if !includeRef {
		where = "WHERE ExternallyManaged = 0"
	}
	return `SELECT Id AS id, UniqueKey AS uniqueKey,
        [dbo].[GetSingleTranslation](Name_LOC, N'ko-KR', N'') AS nameKo,
        [dbo].[GetSingleTranslation](Name_LOC, N'en-US', N'') AS nameEn
    FROM [dbo].[BDRegions]
    ` + where + `
    ORDER BY UniqueKey`
}

func PlantsStatement(includeRef bool) string {
	where := ""
	if !includeRef {
		where = "WHERE P.ExternallyManaged = 0"
	}
	return `SELECT P.Id AS id, P.UniqueKey AS uniqueKey,
        [dbo].[GetSingleTranslation](P.Name_LOC, N'ko-KR', N'') AS nameKo,
        [dbo].[GetSingleTranslation](P.Name_LOC, N'en-US', N'') AS nameEn,
        R.UniqueKey AS region
    FROM [dbo].[BDPlants] AS P
    LEFT JOIN [dbo].[BDRegions] AS R ON P.RegionId = R.Id
    ` + where + `
    ORDER BY P.UniqueKey`
}

func RegionKeysStatement() string {
	return "SELECT UniqueKey FROM [dbo].[BDRegions]"
}
