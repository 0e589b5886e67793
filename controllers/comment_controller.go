package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/middleware"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddCommentRequest represents the request body for posting an order comment
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// staffOrderID reads the order id and checks that the order exists
func staffOrderID(c *gin.Context) (uint, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return 0, false
	}
	var order models.RepairOrder
	if err := config.GetDB().WithContext(c.Request.Context()).Select("id").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NewNotFoundError("Order"))
			return 0, false
		}
		utils.RespondError(c, utils.NewInternalError("Failed to load order", err))
		return 0, false
	}
	return id, true
}

// clientOrderID reads the order id and checks that the order belongs to the authenticated client
func clientOrderID(c *gin.Context) (*models.Client, uint, bool) {
	client, err := middleware.CurrentClient(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Authentication required"))
		return nil, 0, false
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil, 0, false
	}
	var order models.RepairOrder
	err = config.GetDB().WithContext(c.Request.Context()).
		Select("id").
		Where("client_id = ?", client.ID).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NewNotFoundError("Order"))
			return nil, 0, false
		}
		utils.RespondError(c, utils.NewInternalError("Failed to load order", err))
		return nil, 0, false
	}
	return client, id, true
}

func respondComments(c *gin.Context, orderID uint) {
	var comments []models.OrderComment
	err := config.GetDB().WithContext(c.Request.Context()).
		Preload("Staff", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Preload("Client").
		Where("order_id = ?", orderID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to load comments", err))
		return
	}
	utils.RespondOK(c, comments)
}

func createComment(c *gin.Context, comment *models.OrderComment) {
	var req AddCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment.Text = req.Text

	db := config.GetDB().WithContext(c.Request.Context())
	if err := db.Create(comment).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to create comment", err))
		return
	}
	if err := db.Preload("Staff").Preload("Client").First(comment, comment.ID).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to load comment details", err))
		return
	}

	zap.L().Debug("order comment added",
		zap.Uint("order_id", comment.OrderID),
		zap.String("sender", comment.SenderName()),
	)
	utils.RespondCreated(c, comment)
}

// ListOrderComments handles GET /api/v1/orders/:id/comments - oldest first
func ListOrderComments(c *gin.Context) {
	orderID, ok := staffOrderID(c)
	if !ok {
		return
	}
	respondComments(c, orderID)
}

// AddOrderComment handles POST /api/v1/orders/:id/comments
func AddOrderComment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Could not extract user information"))
		return
	}
	orderID, ok := staffOrderID(c)
	if !ok {
		return
	}
	createComment(c, &models.OrderComment{OrderID: orderID, StaffID: &userID})
}

// ListMyOrderComments handles GET /api/v1/client/orders/:id/comments
func ListMyOrderComments(c *gin.Context) {
	_, orderID, ok := clientOrderID(c)
	if !ok {
		return
	}
	respondComments(c, orderID)
}

// AddMyOrderComment handles POST /api/v1/client/orders/:id/comments
func AddMyOrderComment(c *gin.Context) {
	client, orderID, ok := clientOrderID(c)
	if !ok {
		return
	}
	clientID := client.ID
	createComment(c, &models.OrderComment{OrderID: orderID, ClientID: &clientID})
}
