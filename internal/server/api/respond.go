// Package api exposes the fake user administration API over gin.
package api

import (
	"github.com/dmitrijs2005/useradmin/internal/common"
	"github.com/gin-gonic/gin"
)

// FieldError is one entry of the {"errors": [...]} body.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func requestIDFrom(ctx *gin.Context) string {
	if v, ok := ctx.Get(ctxRequestIDKey); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ctx.GetHeader(common.RequestIDHeader)
}

// RespondError writes {"message": ..., "requestId": ...}.
func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message, "requestId": requestIDFrom(ctx)})
}

// RespondFieldErrors writes {"errors": [{"field", "message"}], "requestId": ...}.
func RespondFieldErrors(ctx *gin.Context, status int, errs []FieldError) {
	ctx.JSON(status, gin.H{"errors": errs, "requestId": requestIDFrom(ctx)})
}

func abortWithMessage(ctx *gin.Context, status int, message string) {
	RespondError(ctx, status, message)
	ctx.Abort()
}

func respondData(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, gin.H{"data": data})
}
