package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const authKey = "auth"

// Claims is the payload of the tokens issued on login.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the user.
func IssueToken(secret []byte, userID int64, role string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates a token issued by IssueToken.
func ParseToken(secret []byte, token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, err
	}
	if claims.UserID <= 0 {
		return Claims{}, errors.New("token has no user")
	}
	return claims, nil
}

// requestToken reads the bearer header, or ?token= for websocket clients
// that cannot set headers.
func requestToken(c *gin.Context) (string, bool) {
	if tok, ok := utils.BearerToken(c.GetHeader("Authorization")); ok {
		return tok, true
	}
	if tok := utils.StripTokenQuotes(strings.TrimSpace(c.Query("token"))); tok != "" {
		return tok, true
	}
	return "", false
}

// Auth rejects requests without a valid token and stores the caller's
// RequestContext for handlers.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := requestToken(c)
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := ParseToken(secret, tok)
		if err != nil {
			utils.LogEvent(GetRequestID(c), "auth", "reject", err.Error())
			abortAuth(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(authKey, domain.RequestContext{
			UserID: domain.ID(claims.UserID),
			Role:   claims.Role,
			Token:  tok,
		})
		c.Next()
	}
}

// RequireRoles allows only the given roles; Auth must run first.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		rc, ok := GetAuth(c)
		if !ok {
			abortAuth(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if !allowed[rc.Role] {
			abortAuth(c, http.StatusForbidden, fmt.Sprintf("role %q is not allowed here", rc.Role))
			return
		}
		c.Next()
	}
}

// GetAuth returns the authenticated caller, if any.
func GetAuth(c *gin.Context) (domain.RequestContext, bool) {
	if c == nil {
		return domain.RequestContext{}, false
	}
	v, ok := c.Get(authKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	rc, ok := v.(domain.RequestContext)
	return rc, ok
}

func abortAuth(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       http.StatusText(status),
		"request_id": GetRequestID(c),
	})
}
