package handlers

import (
	"net/http"

	"campusreq_backend/internal/services"
	"campusreq_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	*BaseHandler
	requestService services.RequestService
}

func NewRequestHandler(base *BaseHandler, requestService services.RequestService) *RequestHandler {
	return &RequestHandler{
		BaseHandler:    base,
		requestService: requestService,
	}
}

// RegisterRoutes expects an authenticated group.
func (h *RequestHandler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/requests")
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListRequests)
		requests.GET("/:id", h.GetRequest)
		requests.GET("/:id/transitions", h.AllowedTransitions)
		requests.POST("/:id/transitions", h.TransitionRequest)
		requests.POST("/:id/cancel", h.CancelRequest)
	}
}

func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.CreateRequestRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	request, err := h.requestService.CreateRequest(c.Request.Context(), h.GetDB(c), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *RequestHandler) ListRequests(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var query dto.RequestListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	response, err := h.requestService.ListRequests(c.Request.Context(), h.GetDB(c), actor, query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *RequestHandler) GetRequest(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	request, err := h.requestService.GetRequest(c.Request.Context(), h.GetDB(c), actor, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) AllowedTransitions(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	response, err := h.requestService.AllowedTransitions(c.Request.Context(), h.GetDB(c), actor, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *RequestHandler) TransitionRequest(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	request, err := h.requestService.TransitionRequest(c.Request.Context(), h.GetDB(c), actor, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) CancelRequest(c *gin.Context) {
	actor, ok := h.GetActor(c)
	if !ok {
		return
	}

	request, err := h.requestService.CancelRequest(c.Request.Context(), h.GetDB(c), actor, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}
