package handlers

import (
	"net/http"
	"time"

	"campusreq_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CronHandler lets an external scheduler trigger the reconcile sweep.
type CronHandler struct {
	*BaseHandler
	reconcileService services.ReconcileService
	clock            func() time.Time
}

func NewCronHandler(base *BaseHandler, reconcileService services.ReconcileService) *CronHandler {
	return &CronHandler{
		BaseHandler:      base,
		reconcileService: reconcileService,
		clock:            time.Now,
	}
}

// RegisterRoutes expects a group already guarded by CronSecretMiddleware.
func (h *CronHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/reconcile", h.Reconcile)
	r.POST("/reconcile", h.Reconcile)
}

func (h *CronHandler) Reconcile(c *gin.Context) {
	result, err := h.reconcileService.Reconcile(c.Request.Context(), h.GetDB(c), h.clock())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	*BaseHandler
}

func NewHealthHandler(base *BaseHandler) *HealthHandler {
	return &HealthHandler{BaseHandler: base}
}

func (h *HealthHandler) Health(c *gin.Context) {
	status, code := "ok", http.StatusOK

	sqlDB, err := h.GetDB(c).DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{"status": status, "time": time.Now().UTC()})
}
