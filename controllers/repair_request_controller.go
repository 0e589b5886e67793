package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/middleware"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/services"
	"github.com/kendall-kelly/repair-shop-api/utils"
)

// SubmitRepairRequest represents the request body a client submits
type SubmitRepairRequest struct {
	DeviceType         string `json:"device_type" binding:"required"`
	DeviceBrand        string `json:"device_brand" binding:"required"`
	DeviceModel        string `json:"device_model" binding:"required"`
	ProblemDescription string `json:"problem_description" binding:"required"`
	ContactPhone       string `json:"contact_phone" binding:"required"`
	ContactEmail       string `json:"contact_email" binding:"omitempty,email"`
}

// UpdateRequestStatusRequest represents the triage decision on a request
type UpdateRequestStatusRequest struct {
	Status models.RequestStatus `json:"status" binding:"required"`
}

// ConvertRequestRequest selects the device and services for the order built from a request.
// Exactly one of DeviceID and NewDevice must be set.
type ConvertRequestRequest struct {
	DeviceID           *uint                    `json:"device_id" binding:"omitempty,gt=0"`
	NewDevice          *services.NewDeviceInput `json:"new_device"`
	ServiceIDs         []uint                   `json:"service_ids" binding:"omitempty,dive,gt=0"`
	ProblemDescription *string                  `json:"problem_description"`
}

// SubmitRequest handles POST /api/v1/repair-requests
func SubmitRequest(c *gin.Context) {
	client, err := middleware.CurrentClient(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Authentication required"))
		return
	}

	var req SubmitRepairRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := newRequestService().Submit(c.Request.Context(), client, services.SubmitRequestInput{
		DeviceType:         req.DeviceType,
		DeviceBrand:        req.DeviceBrand,
		DeviceModel:        req.DeviceModel,
		ProblemDescription: req.ProblemDescription,
		ContactPhone:       req.ContactPhone,
		ContactEmail:       normalizeEmail(req.ContactEmail),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondCreated(c, request)
}

// ListMyRequests handles GET /api/v1/repair-requests/my-requests
func ListMyRequests(c *gin.Context) {
	client, err := middleware.CurrentClient(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Authentication required"))
		return
	}

	requests, err := newRequestService().ListForClient(c.Request.Context(), client.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, requests)
}

// GetMyRequest handles GET /api/v1/repair-requests/my-requests/:id
func GetMyRequest(c *gin.Context) {
	client, err := middleware.CurrentClient(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Authentication required"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	request, err := newRequestService().GetForClient(c.Request.Context(), id, client.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, request)
}

// ListRequests handles GET /api/v1/repair-requests - staff triage queue, newest first
func ListRequests(c *gin.Context) {
	status := models.RequestStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		utils.RespondError(c, utils.NewFieldError("status", "must be one of: pending approved rejected"))
		return
	}
	page := utils.ParsePagination(c)

	requests, total, err := newRequestService().List(c.Request.Context(), status, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, pageData("requests", requests, page, total))
}

// GetRequest handles GET /api/v1/repair-requests/:id
func GetRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	request, err := newRequestService().Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, request)
}

// UpdateRequestStatus handles PUT /api/v1/repair-requests/:id/status
func UpdateRequestStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateRequestStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := newRequestService().UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, request)
}

// ConvertRequest handles POST /api/v1/repair-requests/:id/convert.
// The new order belongs to the request's client and the caller becomes its master.
func ConvertRequest(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Could not extract user information"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ConvertRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := newRequestService().Convert(c.Request.Context(), id, services.ConvertInput{
		DeviceID:           req.DeviceID,
		NewDevice:          req.NewDevice,
		ServiceIDs:         req.ServiceIDs,
		ProblemDescription: req.ProblemDescription,
		ActorID:            userID,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondCreated(c, order)
}
