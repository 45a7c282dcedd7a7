package api

import (
	"net/http"

	"github.com/dmitrijs2005/useradmin/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires middleware and routes. Metrics are registered on reg and
// served from /metrics.
func NewRouter(users UserService, log logging.Logger, reg *prometheus.Registry) *gin.Engine {
	useJSONFieldNames()

	prom := NewProm(reg)
	h := NewHandler(users, prom, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(prom.GinHandleMiddleware())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	r.POST("/login", h.Login)

	authed := r.Group("/", RequireAuth(users))
	authed.POST("/logout", h.Logout)
	authed.GET("/users/retrieve", h.ListUsers)
	authed.GET("/users/:id", h.GetUser)

	admin := authed.Group("/", RequireAdmin())
	admin.POST("/users", h.CreateUser)
	admin.PATCH("/users/:id", h.UpdateUser)
	admin.DELETE("/users/:id/deactivate", h.DeactivateUser)
	admin.PATCH("/users/:id/reactivate", h.ReactivateUser)
	admin.POST("/users/:id/regenerate-password", h.RegeneratePassword)

	r.NoRoute(func(ctx *gin.Context) {
		RespondError(ctx, http.StatusNotFound, "Route not found")
	})

	return r
}
