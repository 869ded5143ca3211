package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/courses
func ListCourses(c *gin.Context) {
	courses, err := current().Courses.ListCourses(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": courses})
}
