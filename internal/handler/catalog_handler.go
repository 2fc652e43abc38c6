package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-api/internal/dto"
	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/service"
	appErrors "github.com/noah-isme/sma-adp-api/pkg/errors"
	"github.com/noah-isme/sma-adp-api/pkg/response"
)

func bindInvalid(c *gin.Context, err error) {
	response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
}

// CenterHandler exposes clinical-center catalog endpoints.
type CenterHandler struct {
	service *service.CenterService
}

// NewCenterHandler constructs a CenterHandler.
func NewCenterHandler(svc *service.CenterService) *CenterHandler {
	return &CenterHandler{service: svc}
}

// List godoc
// @Summary List centers
// @Tags Centers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /centers [get]
func (h *CenterHandler) List(c *gin.Context) {
	var filter models.CenterFilter
	filter.Search = c.Query("search")
	if active := c.Query("active"); active != "" {
		if val, err := strconv.ParseBool(active); err == nil {
			filter.Active = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}

	centers, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, centers, pagination)
}

// Get godoc
// @Summary Get center
// @Tags Centers
// @Produce json
// @Param id path string true "Center ID"
// @Success 200 {object} response.Envelope
// @Router /centers/{id} [get]
func (h *CenterHandler) Get(c *gin.Context) {
	center, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, center, nil)
}

// Create godoc
// @Summary Create center
// @Tags Centers
// @Accept json
// @Produce json
// @Param payload body dto.CreateCenterRequest true "Center payload"
// @Success 201 {object} response.Envelope
// @Router /centers [post]
func (h *CenterHandler) Create(c *gin.Context) {
	var req dto.CreateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	center := &models.Center{Code: req.Code, Name: req.Name, AllowedShiftCodes: req.AllowedShiftCodes, Active: req.Active}
	created, err := h.service.Create(c.Request.Context(), center)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Update center
// @Tags Centers
// @Accept json
// @Produce json
// @Param id path string true "Center ID"
// @Param payload body dto.CreateCenterRequest true "Center payload"
// @Success 200 {object} response.Envelope
// @Router /centers/{id} [put]
func (h *CenterHandler) Update(c *gin.Context) {
	var req dto.CreateCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	center := &models.Center{ID: c.Param("id"), Code: req.Code, Name: req.Name, AllowedShiftCodes: req.AllowedShiftCodes, Active: req.Active}
	updated, err := h.service.Update(c.Request.Context(), center)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Delete godoc
// @Summary Delete center
// @Tags Centers
// @Produce json
// @Param id path string true "Center ID"
// @Success 204
// @Router /centers/{id} [delete]
func (h *CenterHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ShiftHandler exposes shift-definition catalog endpoints.
type ShiftHandler struct {
	service *service.ShiftService
}

// NewShiftHandler constructs a ShiftHandler.
func NewShiftHandler(svc *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{service: svc}
}

// List godoc
// @Summary List shifts
// @Tags Shifts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /shifts [get]
func (h *ShiftHandler) List(c *gin.Context) {
	var filter models.ShiftFilter
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}

	shifts, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shifts, pagination)
}

// Get godoc
// @Summary Get shift
// @Tags Shifts
// @Produce json
// @Param id path string true "Shift ID"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id} [get]
func (h *ShiftHandler) Get(c *gin.Context) {
	shift, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shift, nil)
}

// Create godoc
// @Summary Create shift
// @Tags Shifts
// @Accept json
// @Produce json
// @Param payload body dto.CreateShiftRequest true "Shift payload"
// @Success 201 {object} response.Envelope
// @Router /shifts [post]
func (h *ShiftHandler) Create(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	shift := &models.Shift{Code: req.Code, Hours: req.Hours, Start: req.Start, End: req.End, IsOvernight: req.IsOvernight, IsOptional: req.IsOptional}
	created, err := h.service.Create(c.Request.Context(), shift)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Update shift
// @Tags Shifts
// @Accept json
// @Produce json
// @Param id path string true "Shift ID"
// @Param payload body dto.CreateShiftRequest true "Shift payload"
// @Success 200 {object} response.Envelope
// @Router /shifts/{id} [put]
func (h *ShiftHandler) Update(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	shift := &models.Shift{ID: c.Param("id"), Code: req.Code, Hours: req.Hours, Start: req.Start, End: req.End, IsOvernight: req.IsOvernight, IsOptional: req.IsOptional}
	updated, err := h.service.Update(c.Request.Context(), shift)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Delete godoc
// @Summary Delete shift
// @Tags Shifts
// @Produce json
// @Param id path string true "Shift ID"
// @Success 204
// @Router /shifts/{id} [delete]
func (h *ShiftHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CoverageTemplateHandler exposes per-(center,shift) staffing-minimum endpoints.
type CoverageTemplateHandler struct {
	service *service.CoverageTemplateService
}

// NewCoverageTemplateHandler constructs a CoverageTemplateHandler.
func NewCoverageTemplateHandler(svc *service.CoverageTemplateService) *CoverageTemplateHandler {
	return &CoverageTemplateHandler{service: svc}
}

// List godoc
// @Summary List coverage templates
// @Tags CoverageTemplates
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /coverage-templates [get]
func (h *CoverageTemplateHandler) List(c *gin.Context) {
	var filter models.CoverageTemplateFilter
	filter.CenterID = c.Query("center_id")
	filter.ShiftID = c.Query("shift_id")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}

	templates, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, pagination)
}

// Create godoc
// @Summary Create coverage template
// @Tags CoverageTemplates
// @Accept json
// @Produce json
// @Param payload body dto.CreateCoverageTemplateRequest true "Coverage template payload"
// @Success 201 {object} response.Envelope
// @Router /coverage-templates [post]
func (h *CoverageTemplateHandler) Create(c *gin.Context) {
	var req dto.CreateCoverageTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	template := &models.CoverageTemplate{CenterID: req.CenterID, ShiftID: req.ShiftID, MinDoctors: req.MinDoctors, Mandatory: req.Mandatory}
	created, err := h.service.Create(c.Request.Context(), template)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Update coverage template
// @Tags CoverageTemplates
// @Accept json
// @Produce json
// @Param id path string true "Coverage Template ID"
// @Param payload body dto.CreateCoverageTemplateRequest true "Coverage template payload"
// @Success 200 {object} response.Envelope
// @Router /coverage-templates/{id} [put]
func (h *CoverageTemplateHandler) Update(c *gin.Context) {
	var req dto.CreateCoverageTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	template := &models.CoverageTemplate{ID: c.Param("id"), CenterID: req.CenterID, ShiftID: req.ShiftID, MinDoctors: req.MinDoctors, Mandatory: req.Mandatory}
	updated, err := h.service.Update(c.Request.Context(), template)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated, nil)
}

// Delete godoc
// @Summary Delete coverage template
// @Tags CoverageTemplates
// @Produce json
// @Param id path string true "Coverage Template ID"
// @Success 204
// @Router /coverage-templates/{id} [delete]
func (h *CoverageTemplateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DoctorHandler exposes physician catalog endpoints.
type DoctorHandler struct {
	service *service.DoctorService
}

// NewDoctorHandler constructs a DoctorHandler.
func NewDoctorHandler(svc *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{service: svc}
}

// List godoc
// @Summary List doctors
// @Tags Doctors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /doctors [get]
func (h *DoctorHandler) List(c *gin.Context) {
	var filter models.DoctorFilter
	filter.Search = c.Query("search")
	if active := c.Query("active"); active != "" {
		if val, err := strconv.ParseBool(active); err == nil {
			filter.Active = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}

	doctors, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doctors, pagination)
}

// Get godoc
// @Summary Get doctor
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id} [get]
func (h *DoctorHandler) Get(c *gin.Context) {
	doctor, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doctor, nil)
}

// Delete godoc
// @Summary Delete doctor
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 204
// @Router /doctors/{id} [delete]
func (h *DoctorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// LeaveHandler exposes doctor leave-request endpoints.
type LeaveHandler struct {
	service *service.LeaveService
}

// NewLeaveHandler constructs a LeaveHandler.
func NewLeaveHandler(svc *service.LeaveService) *LeaveHandler {
	return &LeaveHandler{service: svc}
}

// List godoc
// @Summary List leave requests
// @Tags Leaves
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leaves [get]
func (h *LeaveHandler) List(c *gin.Context) {
	var filter models.LeaveFilter
	filter.DoctorID = c.Query("doctor_id")
	if status := c.Query("status"); status != "" {
		s := models.LeaveStatus(status)
		filter.Status = &s
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}

	leaves, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leaves, pagination)
}

// Create godoc
// @Summary Create leave request
// @Tags Leaves
// @Accept json
// @Produce json
// @Param payload body dto.CreateLeaveRequest true "Leave payload"
// @Success 201 {object} response.Envelope
// @Router /leaves [post]
func (h *LeaveHandler) Create(c *gin.Context) {
	var req dto.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	leave := &models.Leave{DoctorID: req.DoctorID, StartDate: req.StartDate, EndDate: req.EndDate, Type: req.Type}
	created, err := h.service.Create(c.Request.Context(), leave)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// UpdateStatus godoc
// @Summary Approve, deny, or cancel a leave request
// @Tags Leaves
// @Accept json
// @Produce json
// @Param id path string true "Leave ID"
// @Param payload body dto.UpdateLeaveStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /leaves/{id}/status [post]
func (h *LeaveHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateLeaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	leave, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), models.LeaveStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leave, nil)
}

// Delete godoc
// @Summary Delete leave request
// @Tags Leaves
// @Produce json
// @Param id path string true "Leave ID"
// @Success 204
// @Router /leaves/{id} [delete]
func (h *LeaveHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignmentHandler exposes manual assignment-editing endpoints for a schedule.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler constructs an AssignmentHandler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// List godoc
// @Summary List a schedule's assignments
// @Tags Assignments
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	assignments, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Create godoc
// @Summary Manually create an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /schedules/{id}/assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), c.Param("id"), req.DoctorID, req.CenterID, req.ShiftID, req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Delete godoc
// @Summary Delete an assignment
// @Tags Assignments
// @Produce json
// @Param assignmentId path string true "Assignment ID"
// @Success 204
// @Router /assignments/{assignmentId} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("assignmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
