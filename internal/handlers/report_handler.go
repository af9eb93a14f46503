package handlers

import (
	"net/http"

	"campusreq_backend/internal/middleware"
	"campusreq_backend/internal/models"
	"campusreq_backend/internal/services"
	"campusreq_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the spreadsheet export and the bookings calendar feed.
type ReportHandler struct {
	*BaseHandler
	exportService   services.ExportService
	calendarService services.CalendarService
}

func NewReportHandler(base *BaseHandler, exportService services.ExportService, calendarService services.CalendarService) *ReportHandler {
	return &ReportHandler{
		BaseHandler:     base,
		exportService:   exportService,
		calendarService: calendarService,
	}
}

func (h *ReportHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/requests/export", middleware.RequireRoles(models.UserRoleStaff, models.UserRoleAdmin), h.ExportRequests)
	r.GET("/calendar.ics", h.Calendar)
}

func (h *ReportHandler) ExportRequests(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var query dto.ExportQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	buf, filename, err := h.exportService.ExportRequests(c.Request.Context(), h.GetDB(c), actor, query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ReportHandler) Calendar(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var query dto.CalendarQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	feed, err := h.calendarService.Bookings(c.Request.Context(), h.GetDB(c), actor, query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=\"bookings.ics\"")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}
