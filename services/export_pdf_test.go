package services

import (
	"testing"
	"time"
)

func samplePriceTable() FlatTable {
	return FlatTable{
		Columns: []string{"No", "Key", "Name", "Price"},
		Rows: []FlatRow{
			{"No": "1", "Key": "M-100", "Name": "Steel", "Price": "12.5"},
			{"No": "2", "Key": "M-200", "Name": "Copper", "Price": "-3"},
		},
	}
}

func TestGeneratePDF_Table(t *testing.T) {
	data := ExportData{
		Title:       "Prices",
		GeneratedAt: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
		Table:       samplePriceTable(),
	}

	result, err := GeneratePDF(data)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
	// PDF files start with %PDF
	if len(result) > 4 && string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGeneratePDF_EmptyTable(t *testing.T) {
	data := ExportData{Title: "Empty", GeneratedAt: time.Now()}

	result, err := GeneratePDF(data)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
}

func TestGeneratePDF_WideTable(t *testing.T) {
	table := FlatTable{}
	row := FlatRow{}
	for i := range 24 {
		name := "Col" + string(rune('A'+i))
		table.Columns = append(table.Columns, name)
		row[name] = "v"
	}
	table.Rows = []FlatRow{row, row, row}

	result, err := GeneratePDF(ExportData{Title: "Wide", GeneratedAt: time.Now(), Table: table})
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GeneratePDF() returned empty bytes")
	}
}

func TestExportData_FileStem(t *testing.T) {
	tests := []struct {
		name string
		data ExportData
		want string
	}{
		{"titled", ExportData{Title: "Materials", GeneratedAt: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)}, "Materials_2025-03-09"},
		{"untitled", ExportData{GeneratedAt: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)}, "Export_2025-03-09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.data.FileStem(); got != tt.want {
				t.Errorf("FileStem() = %q, want %q", got, tt.want)
			}
		})
	}
}
