package models

// CourseRevenue is one row of the "activos" table: income per course.
type CourseRevenue struct {
	ID                     string  `json:"id" db:"id"`
	Curso                  string  `json:"curso" db:"curso"`
	PrecioCurso            float64 `json:"precio_curso" db:"precio_curso"`
	TotalMatriculas        int     `json:"total_matriculas" db:"total_matriculas"`
	IngresosVerificados    float64 `json:"ingresos_verificados" db:"ingresos_verificados"`
	IngresosPendientes     float64 `json:"ingresos_pendientes" db:"ingresos_pendientes"`
	EstudiantesActivos     int     `json:"estudiantes_activos" db:"estudiantes_activos"`
	EstudiantesCompletados int     `json:"estudiantes_completados" db:"estudiantes_completados"`
}

// Field exposes the row by JSON name.
func (r CourseRevenue) Field(name string) (any, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "curso":
		return r.Curso, true
	case "precio_curso":
		return r.PrecioCurso, true
	case "total_matriculas":
		return r.TotalMatriculas, true
	case "ingresos_verificados":
		return r.IngresosVerificados, true
	case "ingresos_pendientes":
		return r.IngresosPendientes, true
	case "estudiantes_activos":
		return r.EstudiantesActivos, true
	case "estudiantes_completados":
		return r.EstudiantesCompletados, true
	}
	return nil, false
}

// MetricFormat tells the client how to render Metric.Value.
type MetricFormat string

const (
	FormatNumber     MetricFormat = "number"
	FormatCurrency   MetricFormat = "currency"
	FormatPercentage MetricFormat = "percentage"
)

type Metric struct {
	Key        string       `json:"key"`
	Label      string       `json:"label"`
	Value      float64      `json:"value"`
	Display    string       `json:"display"`
	Change     float64      `json:"change"`
	IsPositive bool         `json:"is_positive"`
	Format     MetricFormat `json:"format"`
}

type CoursePerformance struct {
	Name           string  `json:"name" db:"name"`
	Category       string  `json:"category" db:"category"`
	Revenue        float64 `json:"revenue" db:"revenue"`
	Enrollments    int     `json:"enrollments" db:"enrollments"`
	CompletionRate float64 `json:"completion_rate" db:"completion_rate"`
	Rating         float64 `json:"rating" db:"rating"`
}

type MonthlyFinance struct {
	Month    string  `json:"month" db:"month"`
	Revenue  float64 `json:"revenue" db:"revenue"`
	Expenses float64 `json:"expenses" db:"expenses"`
}

type DistributionSlice struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

type ExecutiveSummary struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`
	ProfitMargin  float64 `json:"profit_margin"`
	ROI           float64 `json:"roi"`
}

// PeriodTotals aggregates the ledger over one reporting window.
type PeriodTotals struct {
	Revenue        float64 `db:"revenue"`
	Expenses       float64 `db:"expenses"`
	ActiveStudents int     `db:"active_students"`
	Enrollments    int     `db:"enrollments"`
	Leads          int     `db:"leads"`
}

type ReportFilters struct {
	TimeRange  string `json:"time_range" form:"time_range"`
	ReportType string `json:"report_type" form:"report_type"`
	Category   string `json:"category" form:"category"`
	StartDate  string `json:"start_date,omitempty" form:"start_date"`
	EndDate    string `json:"end_date,omitempty" form:"end_date"`
}

type FinanceReport struct {
	Filters      ReportFilters       `json:"filters"`
	Period       Period              `json:"period"`
	Metrics      []Metric            `json:"metrics"`
	Performance  []CoursePerformance `json:"performance"`
	Monthly      []MonthlyFinance    `json:"monthly"`
	Distribution []DistributionSlice `json:"distribution"`
	Summary      ExecutiveSummary    `json:"summary"`
	GeneratedAt  string              `json:"generated_at"`
}

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}
