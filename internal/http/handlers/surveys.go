package handlers

import (
	"net/http"

	"backoffice/internal/domain/models"
	"backoffice/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/surveys lists the caller's groups with their surveys. The
// caller's token is forwarded to the academic and evaluation APIs.
func ListSurveys(c *gin.Context) {
	rc, _ := middleware.GetAuth(c)
	out, err := surveyService(middleware.GetRequestID(c)).
		LoadGroupsWithSurveys(c.Request.Context(), rc.Token, int64(rc.UserID))
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/surveys/:id/responses
func SubmitSurveyResponse(c *gin.Context) {
	surveyID, ok := paramID(c)
	if !ok {
		return
	}
	var resp models.SurveyResponse
	if !BindJSONOrError(c, &resp) {
		return
	}
	rc, _ := middleware.GetAuth(c)
	id, err := surveyService(middleware.GetRequestID(c)).
		Submit(c.Request.Context(), rc.Token, int64(rc.UserID), surveyID, resp)
	if err != nil {
		respondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "response recorded", "id": id})
}
