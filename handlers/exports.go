package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"costconsole/locales"
	"costconsole/services"
)

const (
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"

	contentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF   = "application/pdf"
)

// exportJob describes one download: the sheet title, the list page to send
// the browser back to on failure and the table builder.
type exportJob struct {
	Title  string
	Back   string
	Format string
	Build  func(ctx context.Context) (services.FlatTable, error)
}

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// serveExport builds the table and streams it as xlsx or pdf. Empty results
// and invalid filters become a toast on the list page.
func (env *Env) serveExport(e *core.RequestEvent, t locales.Translator, job exportJob) error {
	log := env.logger("export").WithField("title", job.Title)

	table, err := job.Build(e.Request.Context())
	switch {
	case errors.Is(err, services.ErrNoData):
		return failBack(e, http.StatusNotFound, job.Back, t.T("Msg.NoData"))
	case errors.Is(err, services.ErrInvalidDateRange):
		return failBack(e, http.StatusBadRequest, job.Back, t.T("Msg.DateRange"))
	case err != nil:
		log.WithError(err).Error("building export failed")
		return failBack(e, http.StatusInternalServerError, job.Back, t.T("Msg.ExportFailed"))
	}

	data := services.ExportData{
		Title:       job.Title,
		GeneratedAt: time.Now(),
		Table:       table,
	}
	return env.writeExport(e, t, job, data)
}

func (env *Env) writeExport(e *core.RequestEvent, t locales.Translator, job exportJob, data services.ExportData) error {
	log := env.logger("export").WithField("title", job.Title)

	var (
		body        []byte
		err         error
		contentType = contentTypeExcel
		ext         = FormatExcel
	)
	if job.Format == FormatPDF {
		body, err = services.GeneratePDF(data)
		contentType, ext = contentTypePDF, FormatPDF
	} else {
		body, err = services.GenerateExcel(data)
	}
	if err != nil {
		log.WithError(err).WithField("format", ext).Error("failed to generate export")
		return failBack(e, http.StatusInternalServerError, job.Back, t.T("Msg.ExportFailed"))
	}

	filename := sanitizeFilename(data.FileStem()) + "." + ext
	log.WithField("rows", len(data.Table.Rows)).Info("export generated")
	return sendFile(e, contentType, filename, body)
}

func sendFile(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(body)
	return err
}

// exportFormat reads ?format=, defaulting to xlsx.
func exportFormat(e *core.RequestEvent) string {
	if strings.EqualFold(e.Request.URL.Query().Get("format"), FormatPDF) {
		return FormatPDF
	}
	return FormatExcel
}
