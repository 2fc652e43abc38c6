package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/service"
	"github.com/noah-isme/sma-adp-api/pkg/response"
)

// ScheduleTemplateHandler exposes reusable coverage pattern endpoints.
type ScheduleTemplateHandler struct {
	service *service.ScheduleTemplateService
}

// NewScheduleTemplateHandler constructs a ScheduleTemplateHandler.
func NewScheduleTemplateHandler(svc *service.ScheduleTemplateService) *ScheduleTemplateHandler {
	return &ScheduleTemplateHandler{service: svc}
}

// List godoc
// @Summary List schedule templates
// @Tags Templates
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /templates [get]
func (h *ScheduleTemplateHandler) List(c *gin.Context) {
	var filter models.ScheduleTemplateFilter
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil {
		filter.PageSize = size
	}

	templates, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, pagination)
}

// Get godoc
// @Summary Get schedule template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /templates/{id} [get]
func (h *ScheduleTemplateHandler) Get(c *gin.Context) {
	template, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template, nil)
}

// Create godoc
// @Summary Create schedule template from pattern data
// @Tags Templates
// @Accept json
// @Produce json
// @Param payload body service.CreateScheduleTemplateRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Router /templates [post]
func (h *ScheduleTemplateHandler) Create(c *gin.Context) {
	var req service.CreateScheduleTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.CreatedByID = claims.UserID
	}

	template, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, template)
}

// CreateFromSchedule godoc
// @Summary Create schedule template from an existing schedule's assignments
// @Tags Templates
// @Accept json
// @Produce json
// @Param payload body service.CreateTemplateFromScheduleRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Router /templates/from-schedule [post]
func (h *ScheduleTemplateHandler) CreateFromSchedule(c *gin.Context) {
	var req service.CreateTemplateFromScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.CreatedByID = claims.UserID
	}

	template, err := h.service.CreateFromSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, template)
}

// Update godoc
// @Summary Update schedule template name/description
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param payload body service.UpdateScheduleTemplateRequest true "Template payload"
// @Success 200 {object} response.Envelope
// @Router /templates/{id} [put]
func (h *ScheduleTemplateHandler) Update(c *gin.Context) {
	var req service.UpdateScheduleTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}

	template, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template, nil)
}

// Delete godoc
// @Summary Delete schedule template
// @Tags Templates
// @Param id path string true "Template ID"
// @Success 204
// @Router /templates/{id} [delete]
func (h *ScheduleTemplateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
