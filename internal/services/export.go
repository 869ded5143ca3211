package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"backoffice/internal/domain/models"
	"backoffice/internal/listview"
	"backoffice/internal/utils"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/phpdave11/gofpdf"
)

type versionCell func(v models.CourseVersion, course string) string

// versionColumns is the export layout; insertion order is column order.
func versionColumns() *orderedmap.OrderedMap[string, versionCell] {
	cols := orderedmap.NewOrderedMap[string, versionCell]()
	cols.Set("ID", func(v models.CourseVersion, _ string) string { return strconv.FormatInt(v.ID, 10) })
	cols.Set("Nombre", func(v models.CourseVersion, _ string) string { return v.Name })
	cols.Set("Curso", func(_ models.CourseVersion, course string) string { return course })
	cols.Set("Versión", func(v models.CourseVersion, _ string) string { return v.Version })
	cols.Set("Precio", func(v models.CourseVersion, _ string) string { return utils.FormatMoney(v.Price) })
	cols.Set("Módulos", func(v models.CourseVersion, _ string) string { return strconv.Itoa(v.ModulesCount) })
	cols.Set("Grupos", func(v models.CourseVersion, _ string) string { return strconv.Itoa(v.GroupsCount) })
	cols.Set("Estudiantes", func(v models.CourseVersion, _ string) string { return strconv.Itoa(v.StudentsCount) })
	cols.Set("Estado", func(v models.CourseVersion, _ string) string { return v.Status.Label() })
	return cols
}

// versionPDFWidths are millimetres on landscape A4, same order as versionColumns.
var versionPDFWidths = []float64{12, 45, 70, 22, 25, 20, 18, 25, 25}

// VersionTable renders versions as a header row plus one row per version.
func VersionTable(versions []models.CourseVersion, courses []models.Course) [][]string {
	names := make(map[int64]string, len(courses))
	for _, c := range courses {
		names[c.ID] = c.Name
	}

	cols := versionColumns()
	header := make([]string, 0, cols.Len())
	cells := make([]versionCell, 0, cols.Len())
	for el := cols.Front(); el != nil; el = el.Next() {
		header = append(header, el.Key)
		cells = append(cells, el.Value)
	}

	out := make([][]string, 0, len(versions)+1)
	out = append(out, header)
	for _, v := range versions {
		course := courseName(names, v.CourseID)
		row := make([]string, len(cells))
		for i, cell := range cells {
			row[i] = cell(v, course)
		}
		out = append(out, row)
	}
	return out
}

// ExportCSV writes the filtered, sorted versions as CSV.
func (s VersionService) ExportCSV(ctx context.Context, params listview.Params) ([]byte, string, error) {
	versions, courses, err := s.Filtered(ctx, params)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(VersionTable(versions, courses)); err != nil {
		return nil, "", fmt.Errorf("write csv: %w", err)
	}

	utils.LogEvent(s.RequestID, "versions", "export_csv", fmt.Sprintf("rows=%d", len(versions)))
	return buf.Bytes(), exportFilename("versiones", "csv"), nil
}

// ExportPDF writes the filtered, sorted versions as a landscape PDF table.
func (s VersionService) ExportPDF(ctx context.Context, params listview.Params) ([]byte, string, error) {
	versions, courses, err := s.Filtered(ctx, params)
	if err != nil {
		return nil, "", err
	}

	table := VersionTable(versions, courses)
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Versiones de Cursos", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr("Versiones de Cursos"))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Generado: %s  -  %d versiones", time.Now().Format("2006-01-02 15:04"), len(versions))))
	pdf.Ln(10)

	for i, row := range table {
		if i == 0 {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.SetFillColor(230, 230, 230)
		} else {
			pdf.SetFont("Helvetica", "", 9)
		}
		for j, cell := range row {
			align := "L"
			if j == 0 || j >= 4 && j <= 7 {
				align = "R"
			}
			pdf.CellFormat(versionPDFWidths[j], 7, tr(truncate(cell, 44)), "1", 0, align, i == 0, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render pdf: %w", err)
	}
	utils.LogEvent(s.RequestID, "versions", "export_pdf", fmt.Sprintf("rows=%d", len(versions)))
	return buf.Bytes(), exportFilename("versiones", "pdf"), nil
}

func exportFilename(prefix, ext string) string {
	return fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), ext)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max-1])) + "…"
}
