package handlers

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	intconfig "backoffice/internal/config"
	intdb "backoffice/internal/db"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

var startedAt = time.Now()

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"message":        "backoffice running",
		"uptime_seconds": int64(time.Since(startedAt).Seconds()),
	})
}

// DBCheck pings the database and lists the expected tables that are missing.
func DBCheck(c *gin.Context) {
	if err := intconfig.PingDB(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database unavailable: " + err.Error()})
		return
	}
	missing := intdb.MissingTables(c.Request.Context(), intconfig.DB)
	status := http.StatusOK
	if len(missing) > 0 {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"message":        "database connection OK",
		"missing_tables": missing,
	})
}

// Routes lists registered routes sorted by path, optionally narrowed with
// ?prefix=/api/versions.
func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router not ready"})
		return
	}

	prefix := strings.TrimSpace(c.Query("prefix"))
	routes := r.Routes()
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		if prefix != "" && !strings.HasPrefix(rt.Path, prefix) {
			continue
		}
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out, "total": len(out)})
}
