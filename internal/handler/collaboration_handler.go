package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/service"
	"github.com/noah-isme/sma-adp-api/pkg/response"
)

// AnnouncementHandler exposes roster-wide and per-center announcements.
type AnnouncementHandler struct {
	service *service.AnnouncementService
}

// NewAnnouncementHandler constructs an AnnouncementHandler.
func NewAnnouncementHandler(svc *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: svc}
}

// List godoc
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	req := service.AnnouncementListRequest{}
	if claims != nil {
		req.AudienceRoles = []models.UserRole{claims.Role}
	}
	if centerID := c.Query("center_id"); centerID != "" {
		req.CenterIDs = []string{centerID}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		req.PageSize = size
	}
	req.IncludePinned = true

	announcements, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcements, pagination)
}

// Create godoc
// @Summary Create announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body service.CreateAnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Router /announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req service.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	if claims := claimsFromContext(c); claims != nil {
		req.CreatedBy = claims.UserID
	}
	announcement, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement)
}

// Delete godoc
// @Summary Delete announcement
// @Tags Announcements
// @Produce json
// @Param id path string true "Announcement ID"
// @Success 204
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// NotificationHandler exposes the authenticated user's in-app notifications.
type NotificationHandler struct {
	service *service.NotificationService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List my notifications
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	filter := models.NotificationFilter{}
	if claims != nil {
		filter.UserID = claims.UserID
	}
	if unread := c.Query("unread_only"); unread != "" {
		if val, err := strconv.ParseBool(unread); err == nil {
			filter.UnreadOnly = val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}

	notifications, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notifications, pagination)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 204
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	var userID string
	if claims != nil {
		userID = claims.UserID
	}
	if err := h.service.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SwapHandler exposes doctor-initiated shift swap/giveaway requests.
type SwapHandler struct {
	service *service.SwapService
}

// NewSwapHandler constructs a SwapHandler.
func NewSwapHandler(svc *service.SwapService) *SwapHandler {
	return &SwapHandler{service: svc}
}

// List godoc
// @Summary List swap requests
// @Tags Swaps
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /swaps [get]
func (h *SwapHandler) List(c *gin.Context) {
	var filter models.SwapRequestFilter
	filter.RequesterID = c.Query("requester_id")
	filter.TargetID = c.Query("target_id")
	if status := c.Query("status"); status != "" {
		s := models.SwapRequestStatus(status)
		filter.Status = &s
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}

	swaps, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, swaps, pagination)
}

// Create godoc
// @Summary Create a swap or giveaway request
// @Tags Swaps
// @Accept json
// @Produce json
// @Param payload body service.CreateSwapRequestRequest true "Swap request payload"
// @Success 201 {object} response.Envelope
// @Router /swaps [post]
func (h *SwapHandler) Create(c *gin.Context) {
	var req service.CreateSwapRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindInvalid(c, err)
		return
	}
	claims := claimsFromContext(c)
	var requesterID string
	if claims != nil {
		requesterID = claims.UserID
	}
	swap, err := h.service.Create(c.Request.Context(), requesterID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, swap)
}

// Accept godoc
// @Summary Accept a swap request
// @Tags Swaps
// @Produce json
// @Param id path string true "Swap Request ID"
// @Success 200 {object} response.Envelope
// @Router /swaps/{id}/accept [post]
func (h *SwapHandler) Accept(c *gin.Context) {
	claims := claimsFromContext(c)
	var responderID string
	if claims != nil {
		responderID = claims.UserID
	}
	swap, err := h.service.Accept(c.Request.Context(), c.Param("id"), responderID, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, swap, nil)
}

// Reject godoc
// @Summary Reject a swap request
// @Tags Swaps
// @Produce json
// @Param id path string true "Swap Request ID"
// @Success 200 {object} response.Envelope
// @Router /swaps/{id}/reject [post]
func (h *SwapHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	var responderID string
	if claims != nil {
		responderID = claims.UserID
	}
	swap, err := h.service.Reject(c.Request.Context(), c.Param("id"), responderID, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, swap, nil)
}

// Cancel godoc
// @Summary Cancel a swap request
// @Tags Swaps
// @Produce json
// @Param id path string true "Swap Request ID"
// @Success 200 {object} response.Envelope
// @Router /swaps/{id}/cancel [post]
func (h *SwapHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	var requesterID string
	if claims != nil {
		requesterID = claims.UserID
	}
	swap, err := h.service.Cancel(c.Request.Context(), c.Param("id"), requesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, swap, nil)
}
