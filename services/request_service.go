package services

import (
	"context"
	"fmt"

	"github.com/kendall-kelly/repair-shop-api/metrics"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RequestService handles customer repair requests from submission to conversion
type RequestService struct {
	db      *gorm.DB
	orders  *OrderService
	metrics *metrics.Metrics
}

// NewRequestService creates a RequestService that converts through orders
func NewRequestService(db *gorm.DB, orders *OrderService) *RequestService {
	return &RequestService{db: db, orders: orders, metrics: metrics.Default()}
}

// SubmitRequestInput holds a client's repair request
type SubmitRequestInput struct {
	DeviceType         string
	DeviceBrand        string
	DeviceModel        string
	ProblemDescription string
	ContactPhone       string
	ContactEmail       string
}

// ConvertInput selects the device and services for the order created from a request.
// Exactly one of DeviceID and NewDevice must be set.
type ConvertInput struct {
	DeviceID           *uint
	NewDevice          *NewDeviceInput
	ServiceIDs         []uint
	ProblemDescription *string
	ActorID            uint
}

// Submit stores a pending request for client. Contact email defaults to the account email.
func (s *RequestService) Submit(ctx context.Context, client *models.Client, in SubmitRequestInput) (*models.RepairRequest, error) {
	email := in.ContactEmail
	if email == "" && client.Email != nil {
		email = *client.Email
	}

	request := &models.RepairRequest{
		ClientID:           client.ID,
		DeviceType:         in.DeviceType,
		DeviceBrand:        in.DeviceBrand,
		DeviceModel:        in.DeviceModel,
		ProblemDescription: in.ProblemDescription,
		ContactPhone:       in.ContactPhone,
		ContactEmail:       email,
		Status:             models.RequestPending,
	}
	if err := s.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, utils.NewInternalError("Failed to create repair request", err)
	}
	return request, nil
}

// ListForClient returns the client's own requests, newest first
func (s *RequestService) ListForClient(ctx context.Context, clientID uint) ([]models.RepairRequest, error) {
	var requests []models.RepairRequest
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").Order("id DESC").
		Find(&requests).Error
	if err != nil {
		return nil, utils.NewInternalError("Failed to load repair requests", err)
	}
	return requests, nil
}

// GetForClient returns a request only if it belongs to clientID
func (s *RequestService) GetForClient(ctx context.Context, id, clientID uint) (*models.RepairRequest, error) {
	var request models.RepairRequest
	if err := s.db.WithContext(ctx).Where("client_id = ?", clientID).First(&request, id).Error; err != nil {
		return nil, notFoundOr(err, "Repair request")
	}
	return &request, nil
}

// List returns one page of requests for staff, newest first
func (s *RequestService) List(ctx context.Context, status models.RequestStatus, page utils.Pagination) ([]models.RepairRequest, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.RepairRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.NewInternalError("Failed to count repair requests", err)
	}

	var requests []models.RepairRequest
	err := query.Preload("Client").
		Order("created_at DESC").Order("id DESC").
		Limit(page.Limit).Offset(page.Offset()).
		Find(&requests).Error
	if err != nil {
		return nil, 0, utils.NewInternalError("Failed to load repair requests", err)
	}
	return requests, total, nil
}

// Get returns a request with its client
func (s *RequestService) Get(ctx context.Context, id uint) (*models.RepairRequest, error) {
	var request models.RepairRequest
	if err := s.db.WithContext(ctx).Preload("Client").First(&request, id).Error; err != nil {
		return nil, notFoundOr(err, "Repair request")
	}
	return &request, nil
}

// UpdateStatus approves or rejects a pending request.
// Setting the current status again succeeds without changes.
func (s *RequestService) UpdateStatus(ctx context.Context, id uint, status models.RequestStatus) (*models.RepairRequest, error) {
	if status != models.RequestApproved && status != models.RequestRejected {
		return nil, utils.NewFieldError("status", "must be one of: approved rejected")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.RepairRequest
		if err := tx.First(&request, id).Error; err != nil {
			return notFoundOr(err, "Repair request")
		}
		if request.Status == status {
			return nil
		}
		if request.OrderID != nil {
			return utils.NewConflictError("REQUEST_ALREADY_CONVERTED", "Repair request has already been converted to an order")
		}
		if request.Status != models.RequestPending {
			return utils.NewConflictError("REQUEST_ALREADY_DECIDED",
				fmt.Sprintf("Repair request has already been %s", request.Status)).
				WithData(map[string]interface{}{"Status": string(request.Status)})
		}

		res := tx.Model(&models.RepairRequest{}).
			Where("id = ? AND status = ?", id, models.RequestPending).
			Update("status", status)
		if res.Error != nil {
			return utils.NewInternalError("Failed to update repair request", res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.NewConflictError("REQUEST_ALREADY_DECIDED", "Repair request has already been decided").
				WithData(map[string]interface{}{"Status": "decided"})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("repair request status changed", zap.Uint("request_id", id), zap.String("status", string(status)))
	return s.Get(ctx, id)
}

// Convert turns an approved request into an order in one transaction.
// The order belongs to the request's client and records the request id.
func (s *RequestService) Convert(ctx context.Context, id uint, in ConvertInput) (*models.RepairOrder, error) {
	if (in.DeviceID == nil) == (in.NewDevice == nil) {
		return nil, utils.NewValidationError("Invalid request data",
			utils.FieldError{Field: "device_id", Message: "exactly one of device_id or new_device is required"})
	}

	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.RepairRequest
		if err := tx.First(&request, id).Error; err != nil {
			return notFoundOr(err, "Repair request")
		}
		if request.OrderID != nil {
			return utils.NewConflictError("REQUEST_ALREADY_CONVERTED", "Repair request has already been converted to an order")
		}
		if request.Status != models.RequestApproved {
			return utils.NewConflictError("REQUEST_NOT_APPROVED", "Only approved repair requests can be converted")
		}

		var deviceID uint
		var registered *models.Device
		if in.DeviceID != nil {
			if err := ensureExists(tx, &models.Device{}, *in.DeviceID, "Device"); err != nil {
				return err
			}
			deviceID = *in.DeviceID
		} else {
			device, err := CreateDevice(tx, *in.NewDevice, "new_device.")
			if err != nil {
				return err
			}
			deviceID = device.ID
			registered = device
		}

		description := request.ProblemDescription
		if in.ProblemDescription != nil && *in.ProblemDescription != "" {
			description = *in.ProblemDescription
		}

		actorID := in.ActorID
		requestID := request.ID
		order := &models.RepairOrder{
			ClientID:           request.ClientID,
			DeviceID:           deviceID,
			ProblemDescription: description,
			MasterID:           &actorID,
			RequestID:          &requestID,
		}
		if err := s.orders.insertOrder(tx, order, in.ServiceIDs); err != nil {
			return err
		}
		orderID = order.ID

		res := tx.Model(&models.RepairRequest{}).
			Where("id = ? AND order_id IS NULL", request.ID).
			Update("order_id", order.ID)
		if res.Error != nil {
			return utils.NewInternalError("Failed to link repair request", res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.NewConflictError("REQUEST_ALREADY_CONVERTED", "Repair request has already been converted to an order")
		}

		if registered != nil {
			err := recordHistory(tx, order.ID, &actorID, models.HistoryDeviceRegistered, nil, nil, datatypes.JSONMap{
				"device_id": registered.ID,
				"type_id":   registered.TypeID,
				"brand_id":  registered.BrandID,
				"model":     registered.Model,
			})
			if err != nil {
				return err
			}
		}
		return recordHistory(tx, order.ID, &actorID, models.HistoryConverted, nil, statusPtr(models.StatusAccepted), datatypes.JSONMap{
			"request_id":  request.ID,
			"service_ids": in.ServiceIDs,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCreated("request")
	s.metrics.RequestConverted()
	zap.L().Info("repair request converted", zap.Uint("request_id", id), zap.Uint("order_id", orderID))
	return s.orders.Get(ctx, orderID)
}
