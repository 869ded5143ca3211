package handlers

import (
	"net/http"
	"strings"

	"backoffice/internal/domain/models"
	"backoffice/internal/http/middleware"
	"backoffice/internal/listview"
	"backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

// versionStateFromQuery builds the view state of
// ?q=&status=&course_id=&sort=&direction=&page=&per_page=.
// The query arrives already debounced by the client and is matched as typed.
func versionStateFromQuery(c *gin.Context) listview.ViewState {
	s := services.NewVersionViewState()
	if q := c.Query("q"); q != "" {
		s = listview.Reduce(s, listview.SetQuery{Query: q})
		s = listview.Reduce(s, listview.ApplyDebouncedQuery{Query: q})
	}
	s = listview.Reduce(s, listview.SetFilter{Field: services.FilterStatus, Value: strings.TrimSpace(c.Query("status"))})
	s = listview.Reduce(s, listview.SetFilter{Field: services.FilterCourseID, Value: strings.TrimSpace(c.Query("course_id"))})
	if sort := strings.TrimSpace(c.Query("sort")); sort != "" {
		s.SortField = sort
		s.SortDirection = listview.ParseDirection(c.Query("direction"))
	}
	s = listview.Reduce(s, listview.SetPerPage{PerPage: queryInt(c, "per_page", listview.DefaultPerPage)})
	s = listview.Reduce(s, listview.SetPage{Page: queryInt(c, "page", 1)})
	return s
}

// GET /api/versions
func ListVersions(c *gin.Context) {
	page, err := versionService(middleware.GetRequestID(c)).List(c.Request.Context(), versionStateFromQuery(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/versions/:id
func GetVersion(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	v, err := versionService(middleware.GetRequestID(c)).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": v})
}

// POST /api/versions
func CreateVersion(c *gin.Context) {
	var in models.VersionInput
	if !BindJSONOrError(c, &in) {
		return
	}
	v, err := versionService(middleware.GetRequestID(c)).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "version created", "data": v})
}

// PUT /api/versions/:id
func UpdateVersion(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in models.VersionInput
	if !BindJSONOrError(c, &in) {
		return
	}
	v, err := versionService(middleware.GetRequestID(c)).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "version updated", "data": v})
}

type statusRequest struct {
	Status models.VersionStatus `json:"status" binding:"required"`
}

// PATCH /api/versions/:id/status
func ChangeVersionStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := versionService(middleware.GetRequestID(c)).ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated", "data": v})
}

// DELETE /api/versions/:id
func DeleteVersion(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := versionService(middleware.GetRequestID(c)).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "version deleted"})
}

// GET /api/versions/:id/duplicate returns a prefilled create form.
func DuplicateVersion(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	in, err := versionService(middleware.GetRequestID(c)).DuplicateDraft(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": in})
}

// GET /api/versions/export.csv
func ExportVersionsCSV(c *gin.Context) {
	params := versionStateFromQuery(c).Params()
	data, name, err := versionService(middleware.GetRequestID(c)).ExportCSV(c.Request.Context(), params)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendFile(c, "text/csv; charset=utf-8", name, data)
}

// GET /api/versions/export.pdf
func ExportVersionsPDF(c *gin.Context) {
	params := versionStateFromQuery(c).Params()
	data, name, err := versionService(middleware.GetRequestID(c)).ExportPDF(c.Request.Context(), params)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendFile(c, "application/pdf", name, data)
}

type viewStateRequest struct {
	State  *listview.ViewState `json:"state"`
	Action listview.Message    `json:"action"`
}

// POST /api/versions/view-state applies one action to the posted state and
// returns the next state with the page it renders.
func ReduceVersionViewState(c *gin.Context) {
	var req viewStateRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	state := services.NewVersionViewState()
	if req.State != nil {
		state = *req.State
		if state.Filters == nil {
			state.Filters = services.NewVersionViewState().Filters
		}
	}
	action, err := req.Action.Action()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid action", err)
		return
	}

	page, err := versionService(middleware.GetRequestID(c)).List(c.Request.Context(), listview.Reduce(state, action))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
