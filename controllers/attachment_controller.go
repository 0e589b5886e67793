package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/middleware"
	"github.com/kendall-kelly/repair-shop-api/services"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"go.uber.org/zap"
)

func newAttachmentService() *services.AttachmentService {
	return services.NewAttachmentService(config.GetDB(), services.GetS3Service())
}

// UploadOrderAttachment handles POST /api/v1/orders/:id/attachments (multipart field "image")
func UploadOrderAttachment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Could not extract user information"))
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, utils.NewFieldError("image", "an image file is required"))
		return
	}

	attachment, err := newAttachmentService().Upload(c.Request.Context(), orderID, userID, fileHeader)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	zap.L().Info("order attachment uploaded",
		zap.Uint("order_id", orderID),
		zap.String("key", attachment.S3Key),
		zap.Int64("size", attachment.Size),
	)
	utils.RespondCreated(c, attachment)
}

// ListOrderAttachments handles GET /api/v1/orders/:id/attachments
func ListOrderAttachments(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	attachments, err := newAttachmentService().List(c.Request.Context(), orderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, attachments)
}

// DeleteOrderAttachment handles DELETE /api/v1/orders/:id/attachments/:attachmentId
func DeleteOrderAttachment(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := parseID(c, "attachmentId")
	if !ok {
		return
	}

	if err := newAttachmentService().Delete(c.Request.Context(), orderID, attachmentID); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.RespondOK(c, gin.H{"message": "Attachment deleted"})
}
