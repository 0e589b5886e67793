package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttachmentService stores order intake photos in object storage
type AttachmentService struct {
	db      *gorm.DB
	storage S3Interface
	now     func() time.Time
}

// NewAttachmentService creates an AttachmentService. storage may be nil when no bucket is configured.
func NewAttachmentService(db *gorm.DB, storage S3Interface) *AttachmentService {
	return &AttachmentService{db: db, storage: storage, now: time.Now}
}

func (s *AttachmentService) requireStorage() error {
	if s.storage == nil {
		return utils.NewUnavailableError("STORAGE_NOT_CONFIGURED", "File storage is not configured")
	}
	return nil
}

// Upload validates and stores an image for an order
func (s *AttachmentService) Upload(ctx context.Context, orderID, uploaderID uint, fileHeader *multipart.FileHeader) (*models.OrderAttachment, error) {
	if err := s.requireStorage(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := ensureExists(db, &models.RepairOrder{}, orderID, "Order"); err != nil {
		return nil, err
	}

	if err := utils.ValidateImageFile(fileHeader); err != nil {
		if uploadErr, ok := err.(*utils.FileUploadError); ok {
			return nil, utils.NewFieldError("image", uploadErr.Message)
		}
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, utils.NewInternalError("Failed to open uploaded file", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			zap.L().Warn("failed to close uploaded file", zap.Error(closeErr))
		}
	}()

	key := utils.AttachmentKey(orderID, fileHeader.Filename, s.now())
	contentType := utils.ContentTypeFor(fileHeader.Filename)
	if err := s.storage.UploadFile(ctx, key, contentType, file, fileHeader.Size); err != nil {
		return nil, utils.NewInternalError("Failed to upload image", err)
	}

	attachment := &models.OrderAttachment{
		OrderID:     orderID,
		UploadedBy:  uploaderID,
		S3Key:       key,
		FileName:    filepath.Base(fileHeader.Filename),
		ContentType: contentType,
		Size:        fileHeader.Size,
	}
	if err := db.Create(attachment).Error; err != nil {
		// The row was not saved, drop the uploaded object
		if delErr := s.storage.DeleteFile(ctx, key); delErr != nil {
			zap.L().Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, utils.NewInternalError("Failed to save attachment", err)
	}

	if err := s.attachURL(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

// List returns the attachments of an order with presigned URLs
func (s *AttachmentService) List(ctx context.Context, orderID uint) ([]models.OrderAttachment, error) {
	if err := s.requireStorage(); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := ensureExists(db, &models.RepairOrder{}, orderID, "Order"); err != nil {
		return nil, err
	}

	var attachments []models.OrderAttachment
	if err := db.Where("order_id = ?", orderID).Order("id ASC").Find(&attachments).Error; err != nil {
		return nil, utils.NewInternalError("Failed to load attachments", err)
	}
	for i := range attachments {
		if err := s.attachURL(ctx, &attachments[i]); err != nil {
			return nil, err
		}
	}
	return attachments, nil
}

// Delete removes an attachment from storage and the database
func (s *AttachmentService) Delete(ctx context.Context, orderID, attachmentID uint) error {
	if err := s.requireStorage(); err != nil {
		return err
	}
	db := s.db.WithContext(ctx)

	var attachment models.OrderAttachment
	if err := db.Where("order_id = ?", orderID).First(&attachment, attachmentID).Error; err != nil {
		return notFoundOr(err, "Attachment")
	}
	if err := s.storage.DeleteFile(ctx, attachment.S3Key); err != nil {
		return utils.NewInternalError("Failed to delete image", err)
	}
	if err := db.Delete(&attachment).Error; err != nil {
		return utils.NewInternalError("Failed to delete attachment", err)
	}
	return nil
}

func (s *AttachmentService) attachURL(ctx context.Context, a *models.OrderAttachment) error {
	url, err := s.storage.GetPresignedURL(ctx, a.S3Key)
	if err != nil {
		return utils.NewInternalError(fmt.Sprintf("Failed to sign attachment %d", a.ID), err)
	}
	a.URL = &url
	return nil
}
