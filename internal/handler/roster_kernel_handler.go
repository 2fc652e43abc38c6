package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/service"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
	"github.com/noah-isme/sma-adp-api/pkg/response"
)

// RosterKernelHandler exposes the constraint validator, auto-builder,
// fairness analyzer, and statistics reporter — the scheduling kernel's
// external interface per spec.md §6.
type RosterKernelHandler struct {
	validator  *service.ConstraintValidatorService
	builder    *service.AutoBuilderService
	fairness   *service.FairnessService
	statistics *service.StatisticsService
}

// NewRosterKernelHandler wires the four kernel services.
func NewRosterKernelHandler(
	validator *service.ConstraintValidatorService,
	builder *service.AutoBuilderService,
	fairness *service.FairnessService,
	statistics *service.StatisticsService,
) *RosterKernelHandler {
	return &RosterKernelHandler{validator: validator, builder: builder, fairness: fairness, statistics: statistics}
}

// ValidateSchedule godoc
// @Summary Validate a schedule against every constraint rule
// @Tags Kernel
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/validate [get]
func (h *RosterKernelHandler) ValidateSchedule(c *gin.Context) {
	result, err := h.validator.ValidateSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ValidateCandidate godoc
// @Summary Validate a not-yet-persisted assignment
// @Tags Kernel
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.ValidateCandidateRequest true "Candidate assignment"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/validate-candidate [post]
func (h *RosterKernelHandler) ValidateCandidate(c *gin.Context) {
	var req dto.ValidateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.validator.ValidateCandidate(c.Request.Context(), c.Param("id"), req.DoctorID, req.CenterID, req.ShiftID, req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Build godoc
// @Summary Auto-build a schedule's assignments
// @Tags Kernel
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.BuildScheduleRequest true "Build options"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/build [post]
func (h *RosterKernelHandler) Build(c *gin.Context) {
	var req dto.BuildScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.builder.BuildSchedule(c.Request.Context(), c.Param("id"), req.ClearExisting)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Fairness godoc
// @Summary Compute the fairness report for a schedule
// @Tags Kernel
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/fairness [get]
func (h *RosterKernelHandler) Fairness(c *gin.Context) {
	report, err := h.fairness.AnalyzeSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Statistics godoc
// @Summary Compute the statistics report for a schedule
// @Tags Kernel
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/statistics [get]
func (h *RosterKernelHandler) Statistics(c *gin.Context) {
	report, err := h.statistics.GetScheduleStatistics(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
