package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
	"backoffice/internal/listview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinance struct {
	mu          sync.Mutex
	totals      map[string]models.PeriodTotals
	performance []models.CoursePerformance
	monthly     []models.MonthlyFinance
	revenue     []models.CourseRevenue
	windows     []Window
}

func (f *fakeFinance) ListCourseRevenue(ctx context.Context) ([]models.CourseRevenue, error) {
	return f.revenue, nil
}

func (f *fakeFinance) ListCoursePerformance(ctx context.Context, start, end time.Time) ([]models.CoursePerformance, error) {
	return f.performance, nil
}

func (f *fakeFinance) ListMonthly(ctx context.Context, start, end time.Time) ([]models.MonthlyFinance, error) {
	return f.monthly, nil
}

func (f *fakeFinance) PeriodTotals(ctx context.Context, start, end time.Time) (models.PeriodTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, Window{Start: start, End: end})
	return f.totals[start.Format("2006-01-02")], nil
}

var reportNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func newReportsService() (ReportsService, *fakeFinance) {
	fin := &fakeFinance{
		totals: map[string]models.PeriodTotals{
			"2025-05-16": {Revenue: 245800, Expenses: 145600, ActiveStudents: 1842, Enrollments: 456, Leads: 1916},
			"2025-04-15": {Revenue: 218490, Expenses: 140000, ActiveStudents: 1700, Enrollments: 471, Leads: 2100},
		},
		performance: []models.CoursePerformance{
			{Name: "Desarrollo Web Full Stack", Category: "programming", Revenue: 89500, Enrollments: 358},
			{Name: "Diseño UX/UI", Category: "design", Revenue: 67200, Enrollments: 269},
			{Name: "Marketing Digital", Category: "marketing", Revenue: 44100, Enrollments: 176},
			{Name: "Python para Data Science", Category: "programming", Revenue: 45000, Enrollments: 180},
		},
		monthly: []models.MonthlyFinance{
			{Month: "2025-02", Revenue: 52000, Expenses: 28000},
			{Month: "2025-06", Revenue: 61000, Expenses: 30000},
		},
		revenue: []models.CourseRevenue{
			{ID: "1", Curso: "Python Básico", PrecioCurso: 250, TotalMatriculas: 12},
			{ID: "2", Curso: "Álgebra", PrecioCurso: 180, TotalMatriculas: 30},
		},
	}
	return ReportsService{Finance: fin, Now: func() time.Time { return reportNow }}, fin
}

func TestReportWindow(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		require.NoError(t, err)
		return d
	}

	w, err := ReportWindow(models.ReportFilters{TimeRange: TimeRangeMonth}, reportNow)
	require.NoError(t, err)
	assert.Equal(t, day("2025-05-16"), w.Start)
	assert.Equal(t, day("2025-06-16"), w.End)
	assert.Equal(t, day("2025-04-15"), w.Previous().Start)

	w, err = ReportWindow(models.ReportFilters{TimeRange: TimeRangeWeek}, reportNow)
	require.NoError(t, err)
	assert.Equal(t, day("2025-06-09"), w.Start)

	w, err = ReportWindow(models.ReportFilters{TimeRange: TimeRangeYear}, reportNow)
	require.NoError(t, err)
	assert.Equal(t, day("2024-06-16"), w.Start)

	_, err = ReportWindow(models.ReportFilters{TimeRange: TimeRangeCustom, StartDate: "2025-03-10", EndDate: "2025-03-01"}, reportNow)
	assert.True(t, domain.IsValidation(err))

	_, err = ReportWindow(models.ReportFilters{TimeRange: TimeRangeCustom, StartDate: "ayer"}, reportNow)
	assert.True(t, domain.IsValidation(err))
}

func TestMonthlyWindowAndFill(t *testing.T) {
	w := MonthlyWindow(Window{Start: reportNow.AddDate(0, -1, 0), End: reportNow}, TimeRangeMonth)
	assert.Equal(t, "2025-01-01", w.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-07-01", w.End.Format("2006-01-02"))

	rows := FillMonths([]models.MonthlyFinance{{Month: "2025-03", Revenue: 10}, {Month: "2024-01", Revenue: 99}}, w)
	require.Len(t, rows, 6)
	assert.Equal(t, "2025-01", rows[0].Month)
	assert.Equal(t, 10.0, rows[2].Revenue)
	assert.Equal(t, "2025-06", rows[5].Month)

	assert.Len(t, FillMonths(nil, MonthlyWindow(Window{End: reportNow}, TimeRangeYear)), 12)
}

func TestNormalizeFilters(t *testing.T) {
	f, err := NormalizeFilters(models.ReportFilters{})
	require.NoError(t, err)
	assert.Equal(t, models.ReportFilters{TimeRange: "month", ReportType: "general", Category: "all"}, f)

	_, err = NormalizeFilters(models.ReportFilters{TimeRange: "decade"})
	assert.True(t, domain.IsValidation(err))
	_, err = NormalizeFilters(models.ReportFilters{ReportType: "taxes"})
	assert.True(t, domain.IsValidation(err))
	_, err = NormalizeFilters(models.ReportFilters{Category: "cooking"})
	assert.True(t, domain.IsValidation(err))
}

func TestSummarize_ZeroSafe(t *testing.T) {
	assert.Equal(t, models.ExecutiveSummary{TotalRevenue: 245800, TotalExpenses: 145600, NetProfit: 100200, ProfitMargin: 40.8, ROI: 68.8},
		Summarize(245800, 145600))
	assert.Equal(t, models.ExecutiveSummary{}, Summarize(0, 0))
	assert.Equal(t, models.ExecutiveSummary{TotalExpenses: 50, NetProfit: -50, ROI: -100}, Summarize(0, 50))
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 12.5, PercentChange(112.5, 100))
	assert.Equal(t, -3.2, PercentChange(96.8, 100))
	assert.Equal(t, 100.0, PercentChange(5, 0))
	assert.Equal(t, 0.0, PercentChange(0, 0))
}

func TestOverview_General(t *testing.T) {
	svc, fin := newReportsService()

	report, err := svc.Overview(context.Background(), models.ReportFilters{})
	require.NoError(t, err)
	assert.Equal(t, models.Period{Start: "2025-05-16", End: "2025-06-15"}, report.Period)
	assert.Len(t, fin.windows, 2)

	require.Len(t, report.Metrics, 4)
	assert.Equal(t, "Ingresos Totales", report.Metrics[0].Label)
	assert.Equal(t, "$245,800", report.Metrics[0].Display)
	assert.Equal(t, 12.5, report.Metrics[0].Change)
	assert.True(t, report.Metrics[0].IsPositive)
	assert.Equal(t, "Cursos Vendidos", report.Metrics[2].Label)
	assert.False(t, report.Metrics[2].IsPositive)
	assert.Equal(t, 23.8, report.Metrics[3].Value)
	assert.Equal(t, "23.8%", report.Metrics[3].Display)

	assert.Len(t, report.Performance, 4)
	require.Len(t, report.Monthly, 6)
	assert.Equal(t, 52000.0, report.Monthly[1].Revenue)

	require.Len(t, report.Distribution, 3)
	assert.Equal(t, "Programación", report.Distribution[0].Name)
	assert.Equal(t, 134500.0, report.Distribution[0].Value)
	assert.Equal(t, "Diseño", report.Distribution[1].Name)
	assert.Equal(t, "Marketing", report.Distribution[2].Name)

	assert.Equal(t, 100200.0, report.Summary.NetProfit)
}

func TestOverview_SectionsAndCategory(t *testing.T) {
	svc, _ := newReportsService()
	ctx := context.Background()

	report, err := svc.Overview(ctx, models.ReportFilters{ReportType: "courses", Category: "programming"})
	require.NoError(t, err)
	assert.Empty(t, report.Metrics)
	assert.Empty(t, report.Monthly)
	assert.Equal(t, models.ExecutiveSummary{}, report.Summary)
	require.Len(t, report.Performance, 2)
	for _, p := range report.Performance {
		assert.Equal(t, "programming", p.Category)
	}
	assert.Len(t, report.Distribution, 3)

	report, err = svc.Overview(ctx, models.ReportFilters{ReportType: "revenue"})
	require.NoError(t, err)
	assert.Empty(t, report.Performance)
	assert.Len(t, report.Monthly, 6)
	assert.Equal(t, 245800.0, report.Summary.TotalRevenue)
}

func TestCourseRevenue_UsesListPipeline(t *testing.T) {
	svc, _ := newReportsService()

	rows, err := svc.CourseRevenue(context.Background(), listview.Params{SortField: "curso", SortDirection: listview.Asc})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Álgebra", rows[0].Curso)

	rows, err = svc.CourseRevenue(context.Background(), listview.Params{Query: "PYTHON"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].ID)
}

func TestReportsExportPDF(t *testing.T) {
	svc, _ := newReportsService()

	data, name, err := svc.ExportPDF(context.Background(), models.ReportFilters{TimeRange: "quarter"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "reporte_financiero_"))
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}
