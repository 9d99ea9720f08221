package services

import "time"

// ExportData is one sheet or document to export: a flat table plus the
// metadata shown around it.
type ExportData struct {
	Title       string
	GeneratedAt time.Time
	Table       FlatTable
}

// FileStem returns "<Title>_<yyyy-mm-dd>" for download file names.
func (d ExportData) FileStem() string {
	title := d.Title
	if title == "" {
		title = "Export"
	}
	at := d.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	return title + "_" + at.Format(time.DateOnly)
}
