package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"costconsole/locales"
	"costconsole/services"
	"costconsole/templates"
)

// loadPaged loads the requested page and applies a typed page number from
// page_input. An invalid entry keeps the current page and reverts the box.
func loadPaged[T any](q url.Values, load func(page int) (services.GridPage[T], error)) (services.GridPage[T], error) {
	grid, err := load(services.ParsePage(q.Get("page")))
	if err != nil {
		return grid, err
	}
	input, ok := q["page_input"]
	if !ok || len(input) == 0 {
		return grid, nil
	}
	current := grid.Pager.CurrentPage()
	grid.Pager.SetInput(input[0])
	if grid.Pager.ConfirmInput() && grid.Pager.CurrentPage() != current {
		return load(grid.Pager.CurrentPage())
	}
	return grid, nil
}

// gridError answers a failed grid load. A superseded load leaves the page
// untouched; only the newest request for a grid renders.
func gridError(e *core.RequestEvent, t locales.Translator, err error) error {
	switch {
	case errors.Is(err, services.ErrSuperseded):
		e.Response.Header().Set("HX-Reswap", "none")
		return e.NoContent(http.StatusNoContent)
	case errors.Is(err, services.ErrInvalidDateRange), isDateError(err):
		return ErrorToast(e, http.StatusBadRequest, t.T("Msg.DateRange"))
	default:
		return ErrorToast(e, http.StatusInternalServerError, t.T("Msg.Unexpected"))
	}
}

func isDateError(err error) bool {
	var pe *time.ParseError
	return errors.As(err, &pe)
}

// filterQuery is the request query without the pager and format parameters.
func filterQuery(q url.Values) string {
	out := url.Values{}
	for k, v := range q {
		switch k {
		case "page", "page_input", "format":
			continue
		}
		out[k] = v
	}
	return out.Encode()
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}

func pdfHref(path, query string) string {
	if query == "" {
		return path + "?format=pdf"
	}
	return path + "?" + query + "&format=pdf"
}

func pagerData(path, id, query string, p *services.Paginator) templates.PagerData {
	first, last := p.Range()
	return templates.PagerData{
		Path:       path,
		Query:      query,
		Target:     id + "-grid",
		Filters:    id + "-filters",
		Current:    p.CurrentPage(),
		Total:      p.TotalPages(),
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
		First:      first,
		Last:       last,
		TotalItems: p.TotalItems,
		Input:      p.Input(),
	}
}

// pivotGrid flattens base rows with their pivoted attributes for display.
// Standard attribute columns are marked for highlighting.
func pivotGrid(pivot services.Pivot, base []services.BaseRow, fixed []string) ([]templates.GridCell, [][]templates.GridCell) {
	table := pivot.Flatten(base, services.FlattenOptions{
		FixedColumns: fixed,
		Placeholder:  services.ScreenPlaceholder,
		Headers:      services.HeaderScreen,
	})

	standard := make(map[string]bool)
	for _, c := range pivot.Columns {
		if c.IsStandard() {
			standard[c.DisplayName] = true
		}
	}

	cols := make([]templates.GridCell, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = templates.GridCell{Value: c, Standard: standard[c]}
	}
	rows := make([][]templates.GridCell, len(table.Rows))
	for i := range table.Rows {
		values := table.Values(i)
		row := make([]templates.GridCell, len(values))
		for j, v := range values {
			row[j] = templates.GridCell{Value: v, Standard: standard[table.Columns[j]]}
		}
		rows[i] = row
	}
	return cols, rows
}

func plainGrid(columns []string, values [][]string) ([]templates.GridCell, [][]templates.GridCell) {
	cols := make([]templates.GridCell, len(columns))
	for i, c := range columns {
		cols[i] = templates.GridCell{Value: c}
	}
	rows := make([][]templates.GridCell, len(values))
	for i, vs := range values {
		row := make([]templates.GridCell, len(vs))
		for j, v := range vs {
			row[j] = templates.GridCell{Value: v}
		}
		rows[i] = row
	}
	return cols, rows
}

func translated(t locales.Translator, ids ...string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = t.T(id)
	}
	return out
}

// selectOptions prepends the "All" entry to a dropdown.
func selectOptions(t locales.Translator, opts []services.Option) []templates.SelectOption {
	out := []templates.SelectOption{{Value: "", Label: t.T("Common.All")}}
	for _, o := range opts {
		out = append(out, templates.SelectOption{Value: o.Key, Label: o.Name})
	}
	return out
}

// gridKeyPrefix is shared by the sequence keys of all grids of a session.
func gridKeyPrefix(sessionID string) string {
	return sessionID + ":"
}

func gridKey(sess *Session, grid string) string {
	return gridKeyPrefix(sess.ID) + grid
}

func (env *Env) debounceMs() int64 {
	if env.Config == nil {
		return 300
	}
	return env.Config.DebounceMillis()
}

// ── Materials ────────────────────────────────────────────────

func materialFilter(q url.Values) services.MaterialFilter {
	return services.MaterialFilter{
		Text:         strings.TrimSpace(q.Get("q")),
		ClassKey:     q.Get("class"),
		MaterialType: q.Get("type"),
		IncludeRef:   q.Get("ref") == "true",
	}
}

func HandleMaterialList(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		sess := env.Sessions.Get(e)
		ctx := e.Request.Context()
		q := e.Request.URL.Query()
		f := materialFilter(q)

		grid, err := loadPaged(q, func(page int) (services.GridPage[services.Material], error) {
			return env.Data.MaterialPage(ctx, gridKey(sess, "materials"), f, t.Lang(), page)
		})
		if err != nil {
			env.logger("material_list").WithError(err).Debug("grid load not rendered")
			return gridError(e, t, err)
		}

		fixed := translated(t, "Col.No", "Col.Key", "Col.StandardName", "Col.StandardType", "Col.Density")
		base := make([]services.BaseRow, len(grid.Rows))
		offset := grid.Pager.Offset()
		for i, m := range grid.Rows {
			base[i] = services.BaseRow{EntityID: m.SubstanceID, Fields: map[string]string{
				fixed[0]: strconv.Itoa(offset + i + 1),
				fixed[1]: m.Key,
				fixed[2]: m.StandardName,
				fixed[3]: m.StandardType,
				fixed[4]: services.WithUnit(m.Density, m.DensityUnit),
			}}
		}
		cols, rows := pivotGrid(grid.Pivot, base, fixed)

		query := filterQuery(q)
		data := templates.GridData{
			T:          t,
			ID:         "materials",
			Action:     "/materials",
			Columns:    cols,
			Rows:       rows,
			Pager:      pagerData("/materials", "materials", query, grid.Pager),
			ExportHref: withQuery("/materials/export", query),
			PDFHref:    pdfHref("/materials/export", query),
			DebounceMs: env.debounceMs(),
		}
		if !isHTMX(e) {
			classes, types := env.Data.MaterialOptions(ctx, t.Lang())
			data.Filters = []templates.FilterField{
				{Kind: templates.FieldText, Name: "q", Label: t.T("Common.SearchHint"), Value: f.Text},
				{Kind: templates.FieldSelect, Name: "class", Label: t.T("Col.MaterialClass"), Value: f.ClassKey, Options: selectOptions(t, classes)},
				{Kind: templates.FieldSelect, Name: "type", Label: t.T("Col.StandardType"), Value: f.MaterialType, Options: selectOptions(t, types)},
				{Kind: templates.FieldCheck, Name: "ref", Label: t.T("Common.IncludeReference"), Checked: f.IncludeRef},
			}
		}
		return renderScreen(e, t, "Material.Title", templates.GridScreen(data), templates.GridBody(data))
	}
}

func HandleMaterialExport(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		q := e.Request.URL.Query()
		f := materialFilter(q)
		return env.serveExport(e, t, exportJob{
			Title:  "Material_Properties",
			Back:   withQuery("/materials", filterQuery(q)),
			Format: exportFormat(e),
			Build: func(ctx context.Context) (services.FlatTable, error) {
				return env.Data.MaterialExport(ctx, f, t.Lang())
			},
		})
	}
}

// ── Machines ─────────────────────────────────────────────────

func machineFilter(q url.Values) services.MachineFilter {
	return services.MachineFilter{
		Text:       strings.TrimSpace(q.Get("q")),
		GroupKey:   q.Get("group"),
		IncludeRef: q.Get("ref") == "true",
	}
}

func HandleMachineList(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		sess := env.Sessions.Get(e)
		ctx := e.Request.Context()
		q := e.Request.URL.Query()
		f := machineFilter(q)

		grid, err := loadPaged(q, func(page int) (services.GridPage[services.Machine], error) {
			return env.Data.MachinePage(ctx, gridKey(sess, "machines"), f, t.Lang(), page)
		})
		if err != nil {
			env.logger("machine_list").WithError(err).Debug("grid load not rendered")
			return gridError(e, t, err)
		}

		fixed := translated(t, "Col.No", "Col.Key", "Col.Name", "Col.Plant", "Col.Invest",
			"Col.Currency", "Col.Depreciation", "Col.PowerOnRate", "Col.SpaceNet")
		base := make([]services.BaseRow, len(grid.Rows))
		offset := grid.Pager.Offset()
		for i, m := range grid.Rows {
			base[i] = services.BaseRow{EntityID: m.AssetID, Fields: map[string]string{
				fixed[0]: strconv.Itoa(offset + i + 1),
				fixed[1]: m.Key,
				fixed[2]: m.Name,
				fixed[3]: m.Plant,
				fixed[4]: m.Invest,
				fixed[5]: m.Currency,
				fixed[6]: m.Depreciation,
				fixed[7]: services.FormatRatePercent(m.PowerOnRate),
				fixed[8]: m.SpaceNet,
			}}
		}
		cols, rows := pivotGrid(grid.Pivot, base, fixed)

		query := filterQuery(q)
		data := templates.GridData{
			T:          t,
			ID:         "machines",
			Action:     "/machines",
			Columns:    cols,
			Rows:       rows,
			Pager:      pagerData("/machines", "machines", query, grid.Pager),
			ExportHref: withQuery("/machines/export", query),
			PDFHref:    pdfHref("/machines/export", query),
			DebounceMs: env.debounceMs(),
		}
		if !isHTMX(e) {
			groups := env.Data.MachineGroups(ctx, t.Lang())
			opts := make([]services.Option, 0, len(groups))
			for _, g := range groups {
				opts = append(opts, services.Option{Key: g.Key, Name: g.Name})
			}
			data.Filters = []templates.FilterField{
				{Kind: templates.FieldText, Name: "q", Label: t.T("Common.SearchHint"), Value: f.Text},
				{Kind: templates.FieldSelect, Name: "group", Label: t.T("Col.MachineGroup"), Value: f.GroupKey, Options: selectOptions(t, opts)},
				{Kind: templates.FieldCheck, Name: "ref", Label: t.T("Common.IncludeReference"), Checked: f.IncludeRef},
			}
		}
		return renderScreen(e, t, "Machine.Title", templates.GridScreen(data), templates.GridBody(data))
	}
}

func HandleMachineExport(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		q := e.Request.URL.Query()
		f := machineFilter(q)
		return env.serveExport(e, t, exportJob{
			Title:  "Machines",
			Back:   withQuery("/machines", filterQuery(q)),
			Format: exportFormat(e),
			Build: func(ctx context.Context) (services.FlatTable, error) {
				return env.Data.MachineExport(ctx, f, t.Lang())
			},
		})
	}
}

// ── Prices ───────────────────────────────────────────────────

func priceFilter(q url.Values) services.PriceFilter {
	return services.PriceFilter{
		Text:       strings.TrimSpace(q.Get("q")),
		Region:     q.Get("region"),
		ClassKey:   q.Get("class"),
		StartDate:  q.Get("start"),
		EndDate:    q.Get("end"),
		AllPeriods: q.Get("all") == "true",
		IncludeRef: q.Get("ref") == "true",
	}
}

func HandlePriceList(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		sess := env.Sessions.Get(e)
		ctx := e.Request.Context()
		q := e.Request.URL.Query()
		f := priceFilter(q)

		grid, err := loadPaged(q, func(page int) (services.GridPage[services.Price], error) {
			return env.Data.PricePage(ctx, gridKey(sess, "prices"), f, t.Lang(), page)
		})
		if err != nil {
			env.logger("price_list").WithError(err).Debug("grid load not rendered")
			return gridError(e, t, err)
		}

		columns := translated(t, "Col.No", "Col.ValidFrom", "Col.Region", "Col.Key", "Col.Name",
			"Col.Revision", "Col.Currency", "Col.Unit", "Col.Price", "Col.ScrapPrice")
		values := make([][]string, len(grid.Rows))
		offset := grid.Pager.Offset()
		for i, p := range grid.Rows {
			values[i] = []string{
				strconv.Itoa(offset + i + 1),
				p.ValidFrom,
				p.Region,
				p.Key,
				p.Name,
				p.Revision,
				p.Currency,
				p.Unit,
				services.FormatAmount(t.Lang(), p.Price),
				services.FormatAmount(t.Lang(), p.ScrapPrice),
			}
		}
		cols, rows := plainGrid(columns, values)

		query := filterQuery(q)
		data := templates.GridData{
			T:          t,
			ID:         "prices",
			Action:     "/prices",
			Columns:    cols,
			Rows:       rows,
			Pager:      pagerData("/prices", "prices", query, grid.Pager),
			ExportHref: withQuery("/prices/export", query),
			PDFHref:    pdfHref("/prices/export", query),
			DebounceMs: env.debounceMs(),
		}
		if !isHTMX(e) {
			regions, classes := env.Data.PriceOptions(ctx, t.Lang())
			data.Filters = []templates.FilterField{
				{Kind: templates.FieldText, Name: "q", Label: t.T("Common.SearchHint"), Value: f.Text},
				{Kind: templates.FieldSelect, Name: "region", Label: t.T("Col.Region"), Value: f.Region, Options: selectOptions(t, regions)},
				{Kind: templates.FieldSelect, Name: "class", Label: t.T("Col.Class"), Value: f.ClassKey, Options: selectOptions(t, classes)},
				{Kind: templates.FieldDate, Name: "start", Label: t.T("Price.From"), Value: f.StartDate},
				{Kind: templates.FieldDate, Name: "end", Label: t.T("Price.To"), Value: f.EndDate},
				{Kind: templates.FieldCheck, Name: "all", Label: t.T("Price.AllPeriods"), Checked: f.AllPeriods},
				{Kind: templates.FieldCheck, Name: "ref", Label: t.T("Common.IncludeReference"), Checked: f.IncludeRef},
			}
		}
		return renderScreen(e, t, "Price.Title", templates.GridScreen(data), templates.GridBody(data))
	}
}

func HandlePriceExport(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		q := e.Request.URL.Query()
		f := priceFilter(q)
		return env.serveExport(e, t, exportJob{
			Title:  "Material_Prices",
			Back:   withQuery("/prices", filterQuery(q)),
			Format: exportFormat(e),
			Build: func(ctx context.Context) (services.FlatTable, error) {
				return env.Data.PriceExport(ctx, f, t.Lang())
			},
		})
	}
}
