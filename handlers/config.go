package handlers

import (
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"

	"costconsole/collections"
	"costconsole/locales"
	"costconsole/templates"
)

var errInvalidGUID = errors.New("invalid guid")

// configInput is a submitted config entry.
type configInput struct {
	Class string `json:"class"`
	Name  string `json:"name"`
	GUID  string `json:"guid"`
}

func configInputFrom(e *core.RequestEvent) configInput {
	return configInput{
		Class: strings.TrimSpace(e.Request.FormValue("class")),
		Name:  strings.TrimSpace(e.Request.FormValue("name")),
		GUID:  strings.TrimSpace(e.Request.FormValue("guid")),
	}
}

func isGUID(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return errInvalidGUID
	}
	return nil
}

func (c configInput) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Class, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.GUID, validation.Required, validation.By(isGUID)),
	)
}

// fieldErrors translates ozzo-validation errors into form messages.
func fieldErrors(t locales.Translator, err error, required string) map[string]string {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return map[string]string{"": t.T("Msg.Unexpected")}
	}
	out := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		if errors.Is(ferr, errInvalidGUID) {
			out[field] = t.T("Msg.InvalidGUID")
			continue
		}
		out[field] = t.T(required)
	}
	return out
}

func configEntries(env *Env, search string) []templates.ConfigEntry {
	filter, params := "1=1", map[string]any{}
	if search != "" {
		filter = "class ~ {:q} || name ~ {:q} || guid ~ {:q}"
		params["q"] = search
	}
	records, err := env.App.FindRecordsByFilter(collections.ConfigsCollection, filter, "class,name", 0, 0, params)
	if err != nil {
		env.logger("config_list").WithError(err).Warn("could not query config entries")
		return nil
	}
	out := make([]templates.ConfigEntry, 0, len(records))
	for _, r := range records {
		out = append(out, templates.ConfigEntry{
			ID:    r.Id,
			Class: r.GetString("class"),
			Name:  r.GetString("name"),
			GUID:  r.GetString("guid"),
		})
	}
	return out
}

func HandleConfigList(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		search := strings.TrimSpace(e.Request.URL.Query().Get("q"))
		data := templates.ConfigData{T: t, Entries: configEntries(env, search), Search: search}
		return renderScreen(e, t, "Config.Title", templates.ConfigScreen(data), templates.ConfigList(data))
	}
}

func HandleConfigEdit(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		record, err := env.App.FindRecordById(collections.ConfigsCollection, e.Request.PathValue("id"))
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, t.T("Common.NoData"))
		}
		return renderPartial(e, templates.ConfigFormView(t, templates.ConfigForm{
			ID:    record.Id,
			Class: record.GetString("class"),
			Name:  record.GetString("name"),
			GUID:  record.GetString("guid"),
		}))
	}
}

// HandleConfigSave creates an entry, or updates the one named by {id}.
// Invalid input re-renders the form with field errors.
func HandleConfigSave(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		log := env.logger("config_save")
		id := e.Request.PathValue("id")
		in := configInputFrom(e)

		if err := in.Validate(); err != nil {
			Notify(e, Outcome{Kind: OutcomeError, Message: t.T("Msg.RequiredFields")})
			e.Response.Header().Set("HX-Retarget", "#config-form")
			e.Response.Header().Set("HX-Reswap", "innerHTML")
			return renderPartial(e, templates.ConfigFormView(t, templates.ConfigForm{
				ID:     id,
				Class:  in.Class,
				Name:   in.Name,
				GUID:   in.GUID,
				Errors: fieldErrors(t, err, "Msg.RequiredFields"),
			}))
		}
		guid, _ := uuid.Parse(in.GUID)

		var record *core.Record
		if id == "" {
			col, err := env.App.FindCollectionByNameOrId(collections.ConfigsCollection)
			if err != nil {
				log.WithError(err).Error("config collection missing")
				return ErrorToast(e, http.StatusInternalServerError, t.T("Msg.SaveFailed"))
			}
			record = core.NewRecord(col)
		} else {
			var err error
			record, err = env.App.FindRecordById(collections.ConfigsCollection, id)
			if err != nil {
				return ErrorToast(e, http.StatusNotFound, t.T("Common.NoData"))
			}
		}
		record.Set("class", in.Class)
		record.Set("name", in.Name)
		record.Set("guid", guid.String())

		if err := env.App.Save(record); err != nil {
			log.WithError(err).WithField("class", in.Class).WithField("name", in.Name).Error("could not save config entry")
			return ErrorToast(e, http.StatusConflict, t.T("Msg.SaveFailed"))
		}

		Notify(e, Outcome{Kind: OutcomeSuccess, Message: t.T("Msg.Saved")})
		return renderPartial(e, templates.ConfigSaved(templates.ConfigData{T: t, Entries: configEntries(env, "")}))
	}
}

func HandleConfigDelete(env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		t := env.Translator(e)
		record, err := env.App.FindRecordById(collections.ConfigsCollection, e.Request.PathValue("id"))
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, t.T("Common.NoData"))
		}
		if err := env.App.Delete(record); err != nil {
			env.logger("config_delete").WithError(err).WithField("id", record.Id).Error("could not delete config entry")
			return ErrorToast(e, http.StatusInternalServerError, t.T("Msg.DeleteFailed"))
		}
		Notify(e, Outcome{Kind: OutcomeSuccess, Message: t.T("Msg.Deleted")})
		return renderPartial(e, templates.ConfigList(templates.ConfigData{T: t, Entries: configEntries(env, "")}))
	}
}
