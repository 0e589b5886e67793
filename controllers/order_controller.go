package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/middleware"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/services"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	ClientID           uint   `json:"client_id" binding:"required,gt=0"`
	DeviceID           uint   `json:"device_id" binding:"required,gt=0"`
	ProblemDescription string `json:"problem_description" binding:"required"`
	ServiceIDs         []uint `json:"service_ids" binding:"omitempty,dive,gt=0"`
}

// UpdateOrderRequest represents the request body for updating an order.
// Absent fields are left unchanged.
type UpdateOrderRequest struct {
	StatusID      *models.StatusID `json:"status_id"`
	Diagnosis     *string          `json:"diagnosis"`
	CostEstimate  *decimal.Decimal `json:"cost_estimate"`
	FinalCost     *decimal.Decimal `json:"final_cost"`
	WarrantyUntil *string          `json:"warranty_until"`
}

// UsePartRequest represents the request body for consuming a spare part on an order
type UsePartRequest struct {
	PartID   uint `json:"part_id" binding:"required,gt=0"`
	Quantity int  `json:"quantity" binding:"required,gt=0"`
}

// CreateOrder handles POST /api/v1/orders - the caller becomes the order's master
func CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Could not extract user information"))
		return
	}

	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := newOrderService().Create(c.Request.Context(), services.CreateOrderInput{
		ClientID:           req.ClientID,
		DeviceID:           req.DeviceID,
		ProblemDescription: req.ProblemDescription,
		ServiceIDs:         req.ServiceIDs,
		MasterID:           userID,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondCreated(c, order)
}

// ListOrders handles GET /api/v1/orders - newest first, filters status and client
func ListOrders(c *gin.Context) {
	status, ok := parseQueryID(c, "status")
	if !ok {
		return
	}
	clientID, ok := parseQueryID(c, "client")
	if !ok {
		return
	}
	page := utils.ParsePagination(c)

	orders, total, err := newOrderService().List(c.Request.Context(), services.OrderFilter{
		StatusID: models.StatusID(status),
		ClientID: clientID,
	}, page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, pageData("orders", orders, page, total))
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := newOrderService().Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, order)
}

// UpdateOrder handles PUT /api/v1/orders/:id
func UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Could not extract user information"))
		return
	}

	var req UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	in := services.UpdateOrderInput{
		StatusID:     req.StatusID,
		Diagnosis:    req.Diagnosis,
		CostEstimate: req.CostEstimate,
		FinalCost:    req.FinalCost,
	}
	if req.WarrantyUntil != nil {
		warranty, _, err := utils.ParseDate(*req.WarrantyUntil)
		if err != nil {
			utils.RespondError(c, utils.NewFieldError("warranty_until", "must be a date (YYYY-MM-DD) or RFC3339 timestamp"))
			return
		}
		warranty = warranty.UTC()
		in.WarrantyUntil = &warranty
	}

	order, err := newOrderService().Update(c.Request.Context(), id, userID, in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, order)
}

// GetOrderHistory handles GET /api/v1/orders/:id/history
func GetOrderHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	history, err := newOrderService().History(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, history)
}

// UseOrderPart handles POST /api/v1/orders/:id/parts
func UseOrderPart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Could not extract user information"))
		return
	}

	var req UsePartRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := newOrderService().UsePart(c.Request.Context(), id, userID, req.PartID, req.Quantity)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, order)
}

// GetOrderReceipt handles GET /api/v1/orders/:id/receipt and returns the intake receipt as a PDF
func GetOrderReceipt(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := newOrderService().Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	pdf, err := services.NewReceiptService(currentConfig().PublicURL).Render(order)
	if err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to render receipt", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"receipt-%d.pdf\"", order.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GetMyOrders handles GET /api/v1/client/orders - the client's own orders, newest first
func GetMyOrders(c *gin.Context) {
	client, err := middleware.CurrentClient(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Authentication required"))
		return
	}

	orders, err := newOrderService().ListForClient(c.Request.Context(), client.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, gin.H{
		"orders":     orders,
		"totalCount": len(orders),
	})
}

// GetMyOrder handles GET /api/v1/client/orders/:id. Orders of other clients are reported as not found.
func GetMyOrder(c *gin.Context) {
	client, err := middleware.CurrentClient(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Authentication required"))
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := newOrderService().GetForClient(c.Request.Context(), id, client.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, order)
}

