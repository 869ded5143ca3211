package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
	"backoffice/internal/listview"
	"backoffice/internal/utils"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/phpdave11/gofpdf"
	"golang.org/x/sync/errgroup"
)

// FinanceSource is the read side of the ledger and enrollment tables.
type FinanceSource interface {
	ListCourseRevenue(ctx context.Context) ([]models.CourseRevenue, error)
	ListCoursePerformance(ctx context.Context, start, end time.Time) ([]models.CoursePerformance, error)
	ListMonthly(ctx context.Context, start, end time.Time) ([]models.MonthlyFinance, error)
	PeriodTotals(ctx context.Context, start, end time.Time) (models.PeriodTotals, error)
}

const (
	TimeRangeWeek    = "week"
	TimeRangeMonth   = "month"
	TimeRangeQuarter = "quarter"
	TimeRangeYear    = "year"
	TimeRangeCustom  = "custom"

	ReportGeneral  = "general"
	ReportRevenue  = "revenue"
	ReportExpenses = "expenses"
	ReportCourses  = "courses"
	ReportStudents = "students"
)

// categoryLabels maps category keys to display names, in display order.
var categoryLabels = func() *orderedmap.OrderedMap[string, string] {
	m := orderedmap.NewOrderedMap[string, string]()
	m.Set("programming", "Programación")
	m.Set("design", "Diseño")
	m.Set("business", "Negocios")
	m.Set("marketing", "Marketing")
	return m
}()

const otherCategory = "Otros"

// CategoryLabel returns the Spanish display name of a category key.
func CategoryLabel(key string) string {
	if label, ok := categoryLabels.Get(key); ok {
		return label
	}
	if strings.TrimSpace(key) == "" {
		return otherCategory
	}
	return key
}

type ReportsService struct {
	Finance   FinanceSource
	Now       func() time.Time
	RequestID string
}

func (s ReportsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Window is a half-open reporting interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Previous is the window of equal length immediately before w.
func (w Window) Previous() Window {
	return Window{Start: w.Start.Add(-w.End.Sub(w.Start)), End: w.Start}
}

// NormalizeFilters fills defaults and rejects unknown values.
func NormalizeFilters(f models.ReportFilters) (models.ReportFilters, error) {
	f.TimeRange = strings.ToLower(strings.TrimSpace(f.TimeRange))
	f.ReportType = strings.ToLower(strings.TrimSpace(f.ReportType))
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	if f.TimeRange == "" {
		f.TimeRange = TimeRangeMonth
	}
	if f.ReportType == "" {
		f.ReportType = ReportGeneral
	}
	if f.Category == "" {
		f.Category = listview.FilterAll
	}

	switch f.TimeRange {
	case TimeRangeWeek, TimeRangeMonth, TimeRangeQuarter, TimeRangeYear, TimeRangeCustom:
	default:
		return f, domain.ValidationError{Field: "time_range", Msg: fmt.Sprintf("unknown time range %q", f.TimeRange)}
	}
	switch f.ReportType {
	case ReportGeneral, ReportRevenue, ReportExpenses, ReportCourses, ReportStudents:
	default:
		return f, domain.ValidationError{Field: "report_type", Msg: fmt.Sprintf("unknown report type %q", f.ReportType)}
	}
	if _, ok := categoryLabels.Get(f.Category); !ok && f.Category != listview.FilterAll {
		return f, domain.ValidationError{Field: "category", Msg: fmt.Sprintf("unknown category %q", f.Category)}
	}
	return f, nil
}

// ReportWindow resolves the time range relative to now. Preset ranges end
// at the start of tomorrow; custom dates are inclusive on both ends.
func ReportWindow(f models.ReportFilters, now time.Time) (Window, error) {
	end := utils.StartOfDay(now).AddDate(0, 0, 1)

	switch f.TimeRange {
	case TimeRangeWeek:
		return Window{Start: end.AddDate(0, 0, -7), End: end}, nil
	case TimeRangeMonth, "":
		return Window{Start: end.AddDate(0, -1, 0), End: end}, nil
	case TimeRangeQuarter:
		return Window{Start: end.AddDate(0, -3, 0), End: end}, nil
	case TimeRangeYear:
		return Window{Start: end.AddDate(-1, 0, 0), End: end}, nil
	case TimeRangeCustom:
		start, err := utils.ParseDate(f.StartDate, now.Location())
		if err != nil {
			return Window{}, domain.ValidationError{Field: "start_date", Msg: "start_date must be YYYY-MM-DD", Err: err}
		}
		last, err := utils.ParseDate(f.EndDate, now.Location())
		if err != nil {
			return Window{}, domain.ValidationError{Field: "end_date", Msg: "end_date must be YYYY-MM-DD", Err: err}
		}
		if last.Before(start) {
			return Window{}, domain.ValidationError{Field: "end_date", Msg: "end_date is before start_date"}
		}
		return Window{Start: start, End: last.AddDate(0, 0, 1)}, nil
	}
	return Window{}, domain.ValidationError{Field: "time_range", Msg: fmt.Sprintf("unknown time range %q", f.TimeRange)}
}

// MonthlyWindow covers the last 6 calendar months of w (12 for a yearly report).
func MonthlyWindow(w Window, timeRange string) Window {
	months := 6
	if timeRange == TimeRangeYear {
		months = 12
	}
	first := utils.StartOfMonth(w.End.Add(-time.Nanosecond))
	return Window{Start: first.AddDate(0, -(months - 1), 0), End: first.AddDate(0, 1, 0)}
}

// reportSections says which parts of the report a report type carries.
type reportSections struct {
	metrics, performance, monthly, distribution, summary bool
}

func sectionsFor(reportType string) reportSections {
	switch reportType {
	case ReportRevenue, ReportExpenses:
		return reportSections{monthly: true, summary: true}
	case ReportCourses:
		return reportSections{performance: true, distribution: true}
	case ReportStudents:
		return reportSections{metrics: true, performance: true}
	default:
		return reportSections{metrics: true, performance: true, monthly: true, distribution: true, summary: true}
	}
}

// Overview builds the financial report for the given filters.
func (s ReportsService) Overview(ctx context.Context, f models.ReportFilters) (models.FinanceReport, error) {
	f, err := NormalizeFilters(f)
	if err != nil {
		return models.FinanceReport{}, err
	}
	now := s.now()
	win, err := ReportWindow(f, now)
	if err != nil {
		return models.FinanceReport{}, err
	}
	monthWin := MonthlyWindow(win, f.TimeRange)

	var (
		cur, prev   models.PeriodTotals
		performance []models.CoursePerformance
		monthly     []models.MonthlyFinance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cur, err = s.Finance.PeriodTotals(gctx, win.Start, win.End)
		return err
	})
	g.Go(func() error {
		p := win.Previous()
		var err error
		prev, err = s.Finance.PeriodTotals(gctx, p.Start, p.End)
		return err
	})
	g.Go(func() error {
		var err error
		performance, err = s.Finance.ListCoursePerformance(gctx, win.Start, win.End)
		return err
	})
	g.Go(func() error {
		var err error
		monthly, err = s.Finance.ListMonthly(gctx, monthWin.Start, monthWin.End)
		return err
	})
	if err := g.Wait(); err != nil {
		utils.LogError(s.RequestID, "reports", "overview", err)
		return models.FinanceReport{}, err
	}

	sec := sectionsFor(f.ReportType)
	report := models.FinanceReport{
		Filters: f,
		Period: models.Period{
			Start: utils.FormatDate(win.Start),
			End:   utils.FormatDate(win.End.AddDate(0, 0, -1)),
		},
		Metrics:      []models.Metric{},
		Performance:  []models.CoursePerformance{},
		Monthly:      []models.MonthlyFinance{},
		Distribution: []models.DistributionSlice{},
		GeneratedAt:  utils.FormatDateTime(now),
	}
	if sec.metrics {
		report.Metrics = BuildMetrics(cur, prev)
	}
	if sec.performance {
		report.Performance = FilterByCategory(performance, f.Category)
	}
	if sec.monthly {
		report.Monthly = FillMonths(monthly, monthWin)
	}
	if sec.distribution {
		report.Distribution = Distribution(performance)
	}
	if sec.summary {
		report.Summary = Summarize(cur.Revenue, cur.Expenses)
	}

	utils.LogEvent(s.RequestID, "reports", "overview",
		fmt.Sprintf("range=%s type=%s category=%s period=%s..%s", f.TimeRange, f.ReportType, f.Category, report.Period.Start, report.Period.End))
	return report, nil
}

// PercentChange is the relative change from prev to cur, in percent.
func PercentChange(cur, prev float64) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return utils.Round1((cur - prev) / prev * 100)
}

// ConversionRate is enrollments per lead, in percent.
func ConversionRate(t models.PeriodTotals) float64 {
	if t.Leads == 0 {
		return 0
	}
	return utils.Round1(float64(t.Enrollments) / float64(t.Leads) * 100)
}

// BuildMetrics renders the four headline cards.
func BuildMetrics(cur, prev models.PeriodTotals) []models.Metric {
	metric := func(key, label string, value, before float64, format models.MetricFormat) models.Metric {
		change := PercentChange(value, before)
		display := utils.FormatCount(int64(value))
		switch format {
		case models.FormatCurrency:
			display = utils.FormatDollars(value)
		case models.FormatPercentage:
			display = fmt.Sprintf("%.1f%%", value)
		}
		return models.Metric{
			Key:        key,
			Label:      label,
			Value:      value,
			Display:    display,
			Change:     change,
			IsPositive: change >= 0,
			Format:     format,
		}
	}
	return []models.Metric{
		metric("revenue", "Ingresos Totales", cur.Revenue, prev.Revenue, models.FormatCurrency),
		metric("active_students", "Estudiantes Activos", float64(cur.ActiveStudents), float64(prev.ActiveStudents), models.FormatNumber),
		metric("courses_sold", "Cursos Vendidos", float64(cur.Enrollments), float64(prev.Enrollments), models.FormatNumber),
		metric("conversion_rate", "Tasa de Conversión", ConversionRate(cur), ConversionRate(prev), models.FormatPercentage),
	}
}

// FilterByCategory keeps rows of one category key; "all" keeps everything.
func FilterByCategory(rows []models.CoursePerformance, category string) []models.CoursePerformance {
	out := make([]models.CoursePerformance, 0, len(rows))
	for _, r := range rows {
		if category == "" || category == listview.FilterAll || r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// FillMonths returns one row per calendar month of w, zero when the ledger
// has no entries for it.
func FillMonths(rows []models.MonthlyFinance, w Window) []models.MonthlyFinance {
	months := orderedmap.NewOrderedMap[string, models.MonthlyFinance]()
	for m := w.Start; m.Before(w.End); m = m.AddDate(0, 1, 0) {
		key := utils.MonthKey(m)
		months.Set(key, models.MonthlyFinance{Month: key})
	}
	for _, r := range rows {
		if _, ok := months.Get(r.Month); ok {
			months.Set(r.Month, r)
		}
	}

	out := make([]models.MonthlyFinance, 0, months.Len())
	for el := months.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// Distribution splits revenue by category, known categories first.
func Distribution(rows []models.CoursePerformance) []models.DistributionSlice {
	sums := orderedmap.NewOrderedMap[string, float64]()
	for el := categoryLabels.Front(); el != nil; el = el.Next() {
		sums.Set(el.Value, 0)
	}
	var total float64
	for _, r := range rows {
		label := CategoryLabel(r.Category)
		v, _ := sums.Get(label)
		sums.Set(label, v+r.Revenue)
		total += r.Revenue
	}

	out := []models.DistributionSlice{}
	for el := sums.Front(); el != nil; el = el.Next() {
		if el.Value == 0 {
			continue
		}
		out = append(out, models.DistributionSlice{
			Name:    el.Key,
			Value:   el.Value,
			Percent: utils.Round1(el.Value / total * 100),
		})
	}
	return out
}

// Summarize computes net profit, margin and ROI; ratios over a zero base are 0.
func Summarize(revenue, expenses float64) models.ExecutiveSummary {
	sum := models.ExecutiveSummary{
		TotalRevenue:  revenue,
		TotalExpenses: expenses,
		NetProfit:     revenue - expenses,
	}
	if revenue != 0 {
		sum.ProfitMargin = utils.Round1(sum.NetProfit / revenue * 100)
	}
	if expenses != 0 {
		sum.ROI = utils.Round1(sum.NetProfit / expenses * 100)
	}
	return sum
}

// CourseRevenueTransformer drives the activos table.
func CourseRevenueTransformer() listview.Transformer[models.CourseRevenue] {
	return listview.Transformer[models.CourseRevenue]{
		Searchable: []string{"id", "curso"},
		Value: func(r models.CourseRevenue, field string) any {
			v, _ := r.Field(field)
			return v
		},
	}
}

// CourseRevenue lists income per course through the list pipeline.
func (s ReportsService) CourseRevenue(ctx context.Context, params listview.Params) ([]models.CourseRevenue, error) {
	rows, err := s.Finance.ListCourseRevenue(ctx)
	if err != nil {
		utils.LogError(s.RequestID, "reports", "course_revenue", err)
		return nil, err
	}
	return CourseRevenueTransformer().Apply(rows, params), nil
}

// ExportPDF renders the report for f, with the activos table appended.
func (s ReportsService) ExportPDF(ctx context.Context, f models.ReportFilters) ([]byte, string, error) {
	report, err := s.Overview(ctx, f)
	if err != nil {
		return nil, "", err
	}
	revenue, err := s.CourseRevenue(ctx, listview.Params{})
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Reporte Financiero", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr("Reporte Financiero"))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Período: %s al %s", report.Period.Start, report.Period.End)))
	pdf.Ln(5)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Generado: %s", report.GeneratedAt)))
	pdf.Ln(10)

	heading := func(title string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(9)
	}
	table := func(widths []float64, header []string, rows [][]string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range header {
			pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		for _, row := range rows {
			for i, cell := range row {
				align := "R"
				if i == 0 {
					align = "L"
				}
				pdf.CellFormat(widths[i], 6, tr(truncate(cell, 48)), "1", 0, align, false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	if len(report.Metrics) > 0 {
		heading("Indicadores")
		rows := make([][]string, 0, len(report.Metrics))
		for _, m := range report.Metrics {
			rows = append(rows, []string{m.Label, m.Display, fmt.Sprintf("%+.1f%%", m.Change)})
		}
		table([]float64{80, 55, 45}, []string{"Indicador", "Valor", "Cambio"}, rows)
	}

	if report.Filters.ReportType == ReportGeneral || report.Filters.ReportType == ReportRevenue || report.Filters.ReportType == ReportExpenses {
		heading("Resumen Ejecutivo")
		sum := report.Summary
		table([]float64{100, 80}, []string{"Concepto", "Monto"}, [][]string{
			{"Ingresos Totales", utils.FormatDollars(sum.TotalRevenue)},
			{"Gastos Totales", utils.FormatDollars(sum.TotalExpenses)},
			{"Utilidad Neta", utils.FormatDollars(sum.NetProfit)},
			{"Margen de Utilidad", fmt.Sprintf("%.1f%%", sum.ProfitMargin)},
			{"ROI", fmt.Sprintf("%.1f%%", sum.ROI)},
		})
	}

	if len(report.Performance) > 0 {
		heading("Detalle por Curso")
		rows := make([][]string, 0, len(report.Performance))
		for _, p := range report.Performance {
			rows = append(rows, []string{
				p.Name,
				utils.FormatDollars(p.Revenue),
				utils.FormatCount(int64(p.Enrollments)),
				fmt.Sprintf("%.1f%%", p.CompletionRate),
				fmt.Sprintf("%.1f", p.Rating),
			})
		}
		table([]float64{70, 35, 25, 30, 20}, []string{"Curso", "Ingresos", "Estudiantes", "Finalización", "Rating"}, rows)
	}

	if len(report.Monthly) > 0 {
		heading("Ingresos Mensuales")
		rows := make([][]string, 0, len(report.Monthly))
		for _, m := range report.Monthly {
			rows = append(rows, []string{m.Month, utils.FormatDollars(m.Revenue), utils.FormatDollars(m.Expenses)})
		}
		table([]float64{60, 60, 60}, []string{"Mes", "Ingresos", "Gastos"}, rows)
	}

	if len(report.Distribution) > 0 {
		heading("Distribución de Ingresos")
		rows := make([][]string, 0, len(report.Distribution))
		for _, d := range report.Distribution {
			rows = append(rows, []string{d.Name, utils.FormatDollars(d.Value), fmt.Sprintf("%.1f%%", d.Percent)})
		}
		table([]float64{80, 55, 45}, []string{"Categoría", "Ingresos", "Porcentaje"}, rows)
	}

	if len(revenue) > 0 {
		pdf.AddPage()
		heading("Ingresos por Curso")
		rows := make([][]string, 0, len(revenue))
		for _, r := range revenue {
			rows = append(rows, []string{
				r.Curso,
				utils.FormatSoles(r.PrecioCurso),
				utils.FormatCount(int64(r.TotalMatriculas)),
				utils.FormatSoles(r.IngresosVerificados),
				utils.FormatSoles(r.IngresosPendientes),
			})
		}
		table([]float64{60, 30, 25, 35, 35}, []string{"Curso", "Precio", "Matrículas", "Verificados", "Pendientes"}, rows)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render pdf: %w", err)
	}
	utils.LogEvent(s.RequestID, "reports", "export_pdf", fmt.Sprintf("type=%s", report.Filters.ReportType))
	return buf.Bytes(), exportFilename("reporte_financiero", "pdf"), nil
}
