package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rogersnm/taskmanager/internal/model"
	"github.com/rogersnm/taskmanager/internal/store"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

var Formats = []string{FormatJSON, FormatCSV, FormatPDF}

// Exporter writes the filtered task list in a document format.
type Exporter struct{ st store.Store }

func NewExporter(st store.Store) *Exporter { return &Exporter{st: st} }

func (e *Exporter) Export(ctx context.Context, format string, filter store.Filter) ([]byte, error) {
	tasks, err := e.st.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return Encode(tasks, format)
}

// Encode renders tasks as json, csv or pdf.
func Encode(tasks []model.Task, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		if tasks == nil {
			tasks = []model.Task{}
		}
		return json.MarshalIndent(tasks, "", "  ")
	case FormatCSV:
		return encodeCSV(tasks)
	case FormatPDF:
		return encodePDF(tasks)
	default:
		return nil, fmt.Errorf("unknown format %q: must be one of %s", format, strings.Join(Formats, ", "))
	}
}

func encodeCSV(tasks []model.Task) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "title", "description", "status", "createdAt", "updatedAt"})
	for _, t := range tasks {
		_ = w.Write([]string{
			t.ID,
			t.Title,
			t.Description,
			string(t.Status),
			t.CreatedAt.UTC().Format(time.RFC3339),
			t.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func encodePDF(tasks []model.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	if len(tasks) == 0 {
		pdf.Cell(40, 6, "No tasks found.")
	}
	for _, t := range tasks {
		pdf.SetFont("Arial", "B", 10)
		line := fmt.Sprintf("[%s] %s", t.Status, t.Title)
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
		pdf.SetFont("Arial", "", 9)
		meta := fmt.Sprintf("%s  created %s  updated %s", t.ID,
			t.CreatedAt.UTC().Format("2006-01-02 15:04"), t.UpdatedAt.UTC().Format("2006-01-02 15:04"))
		pdf.MultiCell(0, 5, meta, "0", "L", false)
		if t.Description != "" {
			pdf.MultiCell(0, 5, tr(t.Description), "0", "L", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
