package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"backoffice/internal/domain"
	"backoffice/internal/http/middleware"
	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

const badCredentials = "wrong email/username or password"

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	reqID := middleware.GetRequestID(c)
	d := current()

	user, err := d.Users.GetByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if domain.IsNotFound(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": badCredentials})
			return
		}
		utils.LogError(reqID, "auth", "login", err)
		RespondDomainError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": badCredentials})
		return
	}
	if user.Status != "" && user.Status != "active" {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is " + user.Status})
		return
	}

	token, err := middleware.IssueToken(d.JWTSecret, user.ID, user.Role, d.JWTTTL)
	if err != nil {
		utils.LogError(reqID, "auth", "sign_token", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create token"})
		return
	}

	utils.LogEvent(reqID, "auth", "login", fmt.Sprintf("user_id=%d role=%s", user.ID, user.Role))
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}
