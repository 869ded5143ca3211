package handlers

import (
	"net/http"
	"strings"

	"backoffice/internal/domain/models"
	"backoffice/internal/http/middleware"
	"backoffice/internal/listview"

	"github.com/gin-gonic/gin"
)

func reportFilters(c *gin.Context) (models.ReportFilters, bool) {
	var f models.ReportFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid filters", err)
		return f, false
	}
	return f, true
}

// GET /api/reports/finance?time_range=&report_type=&category=&start_date=&end_date=
func GetFinanceReport(c *gin.Context) {
	f, ok := reportFilters(c)
	if !ok {
		return
	}
	report, err := reportsService(middleware.GetRequestID(c)).Overview(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GET /api/reports/finance/pdf
func GetFinanceReportPDF(c *gin.Context) {
	f, ok := reportFilters(c)
	if !ok {
		return
	}
	data, name, err := reportsService(middleware.GetRequestID(c)).ExportPDF(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendFile(c, "application/pdf", name, data)
}

// GET /api/reports/course-revenue?q=&sort=&direction=
func GetCourseRevenue(c *gin.Context) {
	params := listview.Params{Query: c.Query("q")}
	if sort := strings.TrimSpace(c.Query("sort")); sort != "" {
		params.SortField = sort
		params.SortDirection = listview.ParseDirection(c.Query("direction"))
	}
	rows, err := reportsService(middleware.GetRequestID(c)).CourseRevenue(c.Request.Context(), params)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows, "total": len(rows)})
}
