package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/story-catalog-api/internal/models"
)

// Headers set by the upstream auth gateway
const (
	HeaderAccountID   = "X-Account-ID"
	HeaderAccountRole = "X-Account-Role"
	HeaderRequestID   = "X-Request-ID"

	RoleAdmin = "admin"
)

const (
	ctxAccountID = "account_id"
	ctxRole      = "account_role"
	ctxRequestID = "request_id"
)

// actorMiddleware copies the caller identity headers into the gin context
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxAccountID, strings.TrimSpace(c.GetHeader(HeaderAccountID)))
		c.Set(ctxRole, strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderAccountRole))))
		c.Next()
	}
}

// requestIDMiddleware reuses the caller's request id or mints one
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

func accountID(c *gin.Context) string {
	return c.GetString(ctxAccountID)
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == RoleAdmin
}

// requireAdmin aborts unless the caller carries the admin role
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if accountID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": models.NewUnauthorized("account id is required")})
			return
		}
		if !isAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": models.NewForbidden("admin role required")})
			return
		}
		c.Next()
	}
}

// pathID parses a positive integer path parameter
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		badRequest(c, name, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter, returning def when absent
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name, name+" must be an integer")
		return 0, false
	}
	return n, true
}

// queryIDs parses a comma separated id list such as "5,9,12"
func queryIDs(c *gin.Context, name string) ([]int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			badRequest(c, name, name+" must be a comma separated list of integers")
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
