package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"backoffice/internal/domain/models"
)

// FinanceRepository reads enrollments and the finance ledger.
// Windows are half-open: [start, end).
type FinanceRepository struct {
	DB *sql.DB
}

// ListCourseRevenue returns verified and pending income per course.
func (r FinanceRepository) ListCourseRevenue(ctx context.Context) ([]models.CourseRevenue, error) {
	db, err := sqlxDB(r.DB)
	if err != nil {
		return nil, err
	}
	out := []models.CourseRevenue{}
	err = db.SelectContext(ctx, &out, `
		SELECT
			CAST(c.id AS CHAR) AS id,
			c.name AS curso,
			COALESCE(MAX(v.price),0) AS precio_curso,
			COUNT(e.id) AS total_matriculas,
			COALESCE(SUM(CASE WHEN e.payment_status = 'verified' THEN e.amount ELSE 0 END),0) AS ingresos_verificados,
			COALESCE(SUM(CASE WHEN e.payment_status = 'pending' THEN e.amount ELSE 0 END),0) AS ingresos_pendientes,
			COALESCE(SUM(CASE WHEN e.status = 'active' THEN 1 ELSE 0 END),0) AS estudiantes_activos,
			COALESCE(SUM(CASE WHEN e.status = 'completed' THEN 1 ELSE 0 END),0) AS estudiantes_completados
		FROM courses c
		LEFT JOIN course_versions v ON v.course_id = c.id
		LEFT JOIN enrollments e ON e.course_version_id = v.id
		GROUP BY c.id, c.name
		ORDER BY c.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list course revenue: %w", err)
	}
	return out, nil
}

// ListCoursePerformance aggregates enrollments per course inside the window.
func (r FinanceRepository) ListCoursePerformance(ctx context.Context, start, end time.Time) ([]models.CoursePerformance, error) {
	db, err := sqlxDB(r.DB)
	if err != nil {
		return nil, err
	}
	out := []models.CoursePerformance{}
	err = db.SelectContext(ctx, &out, `
		SELECT
			c.name AS name,
			COALESCE(c.category,'') AS category,
			COALESCE(SUM(CASE WHEN e.payment_status = 'verified' THEN e.amount ELSE 0 END),0) AS revenue,
			COUNT(e.id) AS enrollments,
			COALESCE(ROUND(100 * SUM(CASE WHEN e.status = 'completed' THEN 1 ELSE 0 END) / NULLIF(COUNT(e.id),0), 1),0) AS completion_rate,
			COALESCE(ROUND(AVG(e.rating),1),0) AS rating
		FROM courses c
		JOIN course_versions v ON v.course_id = c.id
		LEFT JOIN enrollments e ON e.course_version_id = v.id AND e.enrolled_at >= ? AND e.enrolled_at < ?
		GROUP BY c.id, c.name, c.category
		ORDER BY revenue DESC, c.id ASC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list course performance: %w", err)
	}
	return out, nil
}

// ListMonthly returns revenue and expenses per calendar month (YYYY-MM).
func (r FinanceRepository) ListMonthly(ctx context.Context, start, end time.Time) ([]models.MonthlyFinance, error) {
	db, err := sqlxDB(r.DB)
	if err != nil {
		return nil, err
	}
	out := []models.MonthlyFinance{}
	err = db.SelectContext(ctx, &out, `
		SELECT
			DATE_FORMAT(entry_date, '%Y-%m') AS month,
			COALESCE(SUM(CASE WHEN kind = 'income' THEN amount ELSE 0 END),0) AS revenue,
			COALESCE(SUM(CASE WHEN kind = 'expense' THEN amount ELSE 0 END),0) AS expenses
		FROM finance_entries
		WHERE entry_date >= ? AND entry_date < ?
		GROUP BY DATE_FORMAT(entry_date, '%Y-%m')
		ORDER BY month ASC
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("list monthly finance: %w", err)
	}
	return out, nil
}

// PeriodTotals sums the ledger and enrollment funnel for one window.
func (r FinanceRepository) PeriodTotals(ctx context.Context, start, end time.Time) (models.PeriodTotals, error) {
	var out models.PeriodTotals
	db, err := sqlxDB(r.DB)
	if err != nil {
		return out, err
	}
	err = db.GetContext(ctx, &out, `
		SELECT
			(SELECT COALESCE(SUM(amount),0) FROM finance_entries WHERE kind = 'income' AND entry_date >= ? AND entry_date < ?) AS revenue,
			(SELECT COALESCE(SUM(amount),0) FROM finance_entries WHERE kind = 'expense' AND entry_date >= ? AND entry_date < ?) AS expenses,
			(SELECT COUNT(DISTINCT user_id) FROM enrollments WHERE status = 'active' AND enrolled_at < ?) AS active_students,
			(SELECT COUNT(*) FROM enrollments WHERE enrolled_at >= ? AND enrolled_at < ?) AS enrollments,
			(SELECT COUNT(*) FROM leads WHERE created_at >= ? AND created_at < ?) AS leads
	`, start, end, start, end, end, start, end, start, end)
	if err != nil {
		return out, fmt.Errorf("period totals: %w", err)
	}
	return out, nil
}
