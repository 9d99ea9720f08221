package handlers

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"costconsole/collections"
	"costconsole/locales"
	"costconsole/services"
	"costconsole/templates"
)

func plantData(env *Env, t locales.Translator, kind services.MasterDataKind) templates.PlantData {
	return templates.PlantData{T: t, Kind: kind, DebounceMs: env.debounceMs()}
}

// HandlePlantList renders the region or plant tab. HTMX requests get only
// the filtered list.
func HandlePlantList(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		q := e.Request.URL.Query()
		kind := services.ParseMasterDataKind(q.Get("tab"))

		data := plantData(env, t, kind)
		data.Search = strings.TrimSpace(q.Get("q"))
		data.IncludeRef = q.Get("ref") == "true"
		data.Rows = services.FilterMasterData(
			env.Data.MasterDataList(e.Request.Context(), kind, data.IncludeRef),
			data.Search,
		)
		if p := env.Sessions.Get(e).Preview(); p != nil && p.Kind == kind {
			data.Preview = p
		}
		return renderScreen(e, t, "Plant.Title", templates.PlantScreen(data), templates.PlantList(data))
	}
}

func HandlePlantExport(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		kind := services.ParseMasterDataKind(e.Request.URL.Query().Get("tab"))
		return env.serveExport(e, t, exportJob{
			Title:  string(kind) + "_List",
			Back:   "/plants?tab=" + strings.ToLower(string(kind)),
			Format: FormatExcel,
			Build: func(ctx context.Context) (services.FlatTable, error) {
				rows := env.Data.MasterDataList(ctx, kind, false)
				if len(rows) == 0 {
					return services.FlatTable{}, services.ErrNoData
				}
				return services.MasterDataExport(kind, rows), nil
			},
		})
	}
}

// HandlePlantTemplate downloads an empty import workbook. The plant template
// offers the current region keys as a dropdown.
func HandlePlantTemplate(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		log := env.logger("plant_template")
		kind := services.ParseMasterDataKind(e.Request.URL.Query().Get("tab"))

		var regionKeys []string
		if kind == services.KindPlant {
			keys, err := env.Data.ValidRegionKeys(e.Request.Context())
			if err != nil {
				log.WithError(err).Warn("loading region keys failed, template without dropdown")
			}
			regionKeys = slices.Sorted(maps.Keys(keys))
		}

		body, err := services.GenerateMasterDataTemplate(kind, regionKeys)
		if err != nil {
			log.WithError(err).Error("failed to generate template")
			return failBack(e, http.StatusInternalServerError, "/plants?tab="+strings.ToLower(string(kind)), t.T("Msg.ExportFailed"))
		}
		return sendFile(e, contentTypeExcel, string(kind)+"_Template.xlsx", body)
	}
}

// HandlePlantImport parses an uploaded workbook into the session's import
// preview. Nothing is sent to the cost system until the commit.
func HandlePlantImport(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		log := env.logger("plant_import")

		maxSize := int64(10 << 20)
		if env.Config != nil && env.Config.MaxUploadSize > 0 {
			maxSize = env.Config.MaxUploadSize
		}
		e.Request.Body = http.MaxBytesReader(e.Response, e.Request.Body, maxSize)
		if err := e.Request.ParseMultipartForm(maxSize); err != nil {
			log.WithError(err).Warn("could not parse upload")
			return ErrorToast(e, http.StatusBadRequest, t.T("Msg.FileRequired"))
		}
		kind := services.ParseMasterDataKind(e.Request.FormValue("tab"))

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, t.T("Msg.FileRequired"))
		}
		defer file.Close()

		var validRegions map[string]bool
		if kind == services.KindPlant {
			validRegions, err = env.Data.ValidRegionKeys(e.Request.Context())
			if err != nil {
				log.WithError(err).Error("loading region keys failed")
				return ErrorToast(e, http.StatusBadGateway, t.T("Msg.ImportFailed"))
			}
		}

		preview, err := services.ParseImportFile(kind, header.Filename, file, validRegions)
		if errors.Is(err, services.ErrEmptyImport) {
			return ErrorToast(e, http.StatusBadRequest, t.T("Msg.NoPreview"))
		}
		if err != nil {
			log.WithError(err).WithField("file", header.Filename).Warn("could not parse import file")
			return ErrorToast(e, http.StatusBadRequest, t.T("Msg.ImportFailed"))
		}

		env.Sessions.Get(e).SetPreview(preview)
		log.WithField("rows", len(preview.Rows)).WithField("kind", kind).Info("import previewed")

		data := plantData(env, t, kind)
		data.Preview = preview
		return renderPartial(e, templates.ImportPreview(data))
	}
}

// HandlePlantImportSheet switches the preview to another sheet of the
// uploaded workbook.
func HandlePlantImportSheet(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		sess := env.Sessions.Get(e)
		preview := sess.Preview()
		if preview == nil {
			return ErrorToast(e, http.StatusBadRequest, t.T("Msg.NoPreview"))
		}

		if err := preview.SelectSheet(e.Request.FormValue("sheet")); err != nil {
			if errors.Is(err, services.ErrEmptyImport) {
				Notify(e, Outcome{Kind: OutcomeWarning, Message: t.T("Msg.NoPreview")})
			} else {
				return ErrorToast(e, http.StatusBadRequest, t.T("Msg.ImportFailed"))
			}
		}

		data := plantData(env, t, preview.Kind)
		data.Preview = preview
		return renderPartial(e, templates.ImportPreview(data))
	}
}

// HandlePlantImportCommit sends the preview to the import endpoint. Plant
// rows with unknown regions are only sent with confirm=true.
func HandlePlantImportCommit(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		log := env.logger("plant_import")
		sess := env.Sessions.Get(e)
		preview := sess.Preview()
		confirmed := e.Request.FormValue("confirm") == "true"

		n, err := services.CommitImport(e.Request.Context(), env.Importer, env.lookupGUID, preview, confirmed)
		switch {
		case errors.Is(err, services.ErrEmptyImport):
			return ErrorToast(e, http.StatusBadRequest, t.T("Msg.NoPreview"))
		case errors.Is(err, services.ErrConfirmationRequired):
			Notify(e, Outcome{
				Kind:    OutcomeWarning,
				Message: t.Tf("Msg.InvalidRegion", map[string]any{"Count": preview.InvalidRegionCount()}),
			})
			data := plantData(env, t, preview.Kind)
			data.Preview = preview
			return renderPartial(e, templates.ImportPreview(data))
		case errors.Is(err, collections.ErrConfigNotFound):
			return ErrorToast(e, http.StatusUnprocessableEntity, t.Tf("Msg.ConfigMissing", map[string]any{
				"Class": services.ImportConfigClass,
				"Name":  string(preview.Kind),
			}))
		case err != nil:
			log.WithError(err).WithField("kind", preview.Kind).Error("import failed")
			return ErrorToast(e, http.StatusBadGateway, t.T("Msg.ImportFailed"))
		}

		sess.SetPreview(nil)
		log.WithField("rows", n).WithField("kind", preview.Kind).Info("import committed")
		e.Response.Header().Set("HX-Trigger", `{"`+templates.PlantsChangedEvent+`":true}`)
		Notify(e, Outcome{Kind: OutcomeSuccess, Message: t.Tf("Msg.ImportDone", map[string]any{"Count": n})})
		return e.HTML(http.StatusOK, "")
	}
}
