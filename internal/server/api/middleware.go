package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/common"
	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/dmitrijs2005/useradmin/internal/server/auth"
	"github.com/dmitrijs2005/useradmin/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxRequestIDKey = "request_id"
	ctxClaimsKey    = "auth.claims"
)

// RequestID echoes the caller's X-Request-Id or assigns a fresh uuid.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(common.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Writer.Header().Set(common.RequestIDHeader, id)
		ctx.Set(ctxRequestIDKey, id)

		ctx.Next()
	}
}

func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path
		}
		method := ctx.Request.Method

		ctx.Next()

		reqID, _ := ctx.Get(ctxRequestIDKey)
		log.Info(ctx.Request.Context(), "http_request",
			"method", method,
			"route", route,
			"status", ctx.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", reqID,
		)
	}
}

// TokenAuthenticator verifies bearer tokens.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// claims for the handlers.
func RequireAuth(a TokenAuthenticator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader(common.AuthorizationHeader)
		raw := strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
		if !strings.HasPrefix(header, common.BearerPrefix) || raw == "" {
			abortWithMessage(ctx, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		claims, err := a.Authenticate(ctx.Request.Context(), raw)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, common.ErrTokenExpired) {
				msg = "Token expired"
			}
			abortWithMessage(ctx, http.StatusUnauthorized, msg)
			return
		}

		ctx.Set(ctxClaimsKey, claims)
		ctx.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := claimsFrom(ctx)
		if !ok || claims.RoleID != models.RoleAdmin {
			abortWithMessage(ctx, http.StatusForbidden, "Admin access required")
			return
		}
		ctx.Next()
	}
}

func claimsFrom(ctx *gin.Context) (*auth.Claims, bool) {
	v, ok := ctx.Get(ctxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
