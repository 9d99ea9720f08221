package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GeneratePDF renders data.Table as a landscape A4 document with one grid
// column per table column.
func GeneratePDF(data ExportData) ([]byte, error) {
	grid := max(len(data.Table.Columns), 1)

	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithMaxGridSize(grid).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, data, grid)
	if len(data.Table.Columns) > 0 {
		addTableHeader(m, data.Table.Columns)
		for i := range data.Table.Rows {
			addTableRow(m, data.Table.Values(i), i)
		}
	}
	addFooter(m, data, grid)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addHeader adds the title and the generation date.
func addHeader(m core.Maroto, data ExportData, grid int) {
	m.AddRows(
		row.New(12).Add(
			col.New(grid).Add(
				text.New(data.Title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(grid).Add(
				text.New(fmt.Sprintf("Rows: %d", len(data.Table.Rows)), props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)

	m.AddRows(row.New(4))
}

func addTableHeader(m core.Maroto, columns []string) {
	headerBg := &props.Color{Red: 15, Green: 118, Blue: 110}
	headerText := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := props.Cell{BackgroundColor: headerBg}

	cols := make([]core.Col, len(columns))
	for i, c := range columns {
		cols[i] = col.New(1).Add(text.New(c, headerText)).WithStyle(&headerCell)
	}
	m.AddRows(row.New(8).Add(cols...))
}

// addTableRow adds one body row; odd rows get a light stripe.
func addTableRow(m core.Maroto, values []string, index int) {
	cellText := props.Text{Size: 6, Align: align.Left}
	var stripe *props.Cell
	if index%2 == 1 {
		stripe = &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
	}

	cols := make([]core.Col, len(values))
	for i, v := range values {
		c := col.New(1).Add(text.New(v, cellText))
		if stripe != nil {
			c = c.WithStyle(stripe)
		}
		cols[i] = c
	}
	m.AddRows(row.New(6).Add(cols...))
}

func addFooter(m core.Maroto, data ExportData, grid int) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(grid).Add(
				text.New(
					fmt.Sprintf("Generated on %s", data.GeneratedAt.Format("2006-01-02 15:04")),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}
