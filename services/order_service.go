package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/repair-shop-api/metrics"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderService implements the repair order lifecycle
type OrderService struct {
	db      *gorm.DB
	policy  models.TransitionPolicy
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewOrderService creates an OrderService; a nil policy means the open policy
func NewOrderService(db *gorm.DB, policy models.TransitionPolicy) *OrderService {
	if policy == nil {
		policy = models.OpenPolicy{}
	}
	return &OrderService{
		db:      db,
		policy:  policy,
		metrics: metrics.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrderInput holds the fields of a new order
type CreateOrderInput struct {
	ClientID           uint
	DeviceID           uint
	ProblemDescription string
	ServiceIDs         []uint
	MasterID           uint // staff member creating the order
}

// UpdateOrderInput is a partial update; nil fields are left unchanged
type UpdateOrderInput struct {
	StatusID      *models.StatusID
	Diagnosis     *string
	CostEstimate  *decimal.Decimal
	FinalCost     *decimal.Decimal
	WarrantyUntil *time.Time
}

// OrderFilter narrows order listings
type OrderFilter struct {
	StatusID models.StatusID
	ClientID uint
}

// preloadOrder joins everything an order response carries
func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Client").
		Preload("Device.Type").
		Preload("Device.Brand").
		Preload("Status").
		Preload("Master", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Preload("Services", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_services.id") }).
		Preload("Services.Service").
		Preload("Parts", func(tx *gorm.DB) *gorm.DB { return tx.Order("used_parts.id") }).
		Preload("Parts.Part")
}

// Create inserts the order and one price snapshot per service id in a single transaction
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.RepairOrder, error) {
	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.Client{}, in.ClientID, "Client"); err != nil {
			return err
		}
		if err := ensureExists(tx, &models.Device{}, in.DeviceID, "Device"); err != nil {
			return err
		}

		masterID := in.MasterID
		order := &models.RepairOrder{
			ClientID:           in.ClientID,
			DeviceID:           in.DeviceID,
			ProblemDescription: in.ProblemDescription,
			MasterID:           &masterID,
		}
		if err := s.insertOrder(tx, order, in.ServiceIDs); err != nil {
			return err
		}
		orderID = order.ID

		return recordHistory(tx, order.ID, &masterID, models.HistoryCreated, nil, statusPtr(models.StatusAccepted),
			datatypes.JSONMap{"service_ids": in.ServiceIDs})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrderCreated("staff")
	zap.L().Info("order created", zap.Uint("order_id", orderID), zap.Uint("master_id", in.MasterID))
	return s.Get(ctx, orderID)
}

// insertOrder writes a new Accepted order and its service snapshots using tx
func (s *OrderService) insertOrder(tx *gorm.DB, order *models.RepairOrder, serviceIDs []uint) error {
	catalog, err := loadServices(tx, serviceIDs)
	if err != nil {
		return err
	}

	order.StatusID = models.StatusAccepted
	if order.DateCreated.IsZero() {
		order.DateCreated = s.now()
	}
	if err := tx.Create(order).Error; err != nil {
		return utils.NewInternalError("Failed to create order", err)
	}

	for _, id := range serviceIDs {
		line := models.OrderService{
			OrderID:   order.ID,
			ServiceID: id,
			Quantity:  1,
			Price:     catalog[id].Price,
		}
		if err := tx.Create(&line).Error; err != nil {
			return utils.NewInternalError("Failed to attach service", err)
		}
	}
	return nil
}

// loadServices fetches the referenced services, failing with NotFound on the first missing id
func loadServices(tx *gorm.DB, ids []uint) (map[uint]models.Service, error) {
	result := make(map[uint]models.Service, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.Service
	if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, utils.NewInternalError("Failed to load services", err)
	}
	for _, row := range rows {
		result[row.ID] = row
	}
	for _, id := range ids {
		if _, ok := result[id]; !ok {
			return nil, utils.NewNotFoundError(fmt.Sprintf("Service %d", id))
		}
	}
	return result, nil
}

// Update applies a partial update. Entering Ready or Issued stamps date_completed once.
func (s *OrderService) Update(ctx context.Context, id uint, actorID uint, in UpdateOrderInput) (*models.RepairOrder, error) {
	if in.CostEstimate != nil && in.CostEstimate.IsNegative() {
		return nil, utils.NewFieldError("cost_estimate", "must be greater than or equal to 0")
	}
	if in.FinalCost != nil && in.FinalCost.IsNegative() {
		return nil, utils.NewFieldError("final_cost", "must be greater than or equal to 0")
	}
	if in.StatusID != nil && !in.StatusID.Valid() {
		return nil, utils.NewFieldError("status_id", "must be a known order status (1-7)")
	}

	var transition *[2]models.StatusID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.RepairOrder
		if err := tx.First(&order, id).Error; err != nil {
			return notFoundOr(err, "Order")
		}

		updates := map[string]interface{}{}
		changes := datatypes.JSONMap{}

		if in.StatusID != nil {
			from, to := order.StatusID, *in.StatusID
			if !s.policy.Allows(from, to) {
				return utils.NewConflictError("INVALID_TRANSITION",
					fmt.Sprintf("Order cannot move from %s to %s", from.Name(), to.Name())).
					WithData(map[string]interface{}{"From": from.Name(), "To": to.Name()})
			}
			if from != to {
				updates["status_id"] = to
				changes["status_id"] = map[string]interface{}{"from": from, "to": to}
				transition = &[2]models.StatusID{from, to}
			}
			if to.IsCompleted() && order.DateCompleted == nil {
				now := s.now()
				updates["date_completed"] = now
				changes["date_completed"] = now.Format(time.RFC3339)
			}
		}
		if in.Diagnosis != nil {
			updates["diagnosis"] = *in.Diagnosis
			changes["diagnosis"] = *in.Diagnosis
		}
		if in.CostEstimate != nil {
			updates["cost_estimate"] = decimal.NewNullDecimal(*in.CostEstimate)
			changes["cost_estimate"] = in.CostEstimate.StringFixed(2)
		}
		if in.FinalCost != nil {
			updates["final_cost"] = decimal.NewNullDecimal(*in.FinalCost)
			changes["final_cost"] = in.FinalCost.StringFixed(2)
		}
		if in.WarrantyUntil != nil {
			updates["warranty_until"] = *in.WarrantyUntil
			changes["warranty_until"] = in.WarrantyUntil.Format(time.RFC3339)
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return utils.NewInternalError("Failed to update order", err)
		}

		action := models.HistoryUpdated
		var oldStatus, newStatus *models.StatusID
		if transition != nil {
			action = models.HistoryStatusChanged
			oldStatus, newStatus = statusPtr(transition[0]), statusPtr(transition[1])
		}
		return recordHistory(tx, order.ID, &actorID, action, oldStatus, newStatus, changes)
	})
	if err != nil {
		return nil, err
	}

	if transition != nil {
		s.metrics.OrderTransition(transition[0].Name(), transition[1].Name())
		zap.L().Info("order status changed",
			zap.Uint("order_id", id),
			zap.String("from", transition[0].Name()),
			zap.String("to", transition[1].Name()),
			zap.String("policy", s.policy.Name()),
		)
	}
	return s.Get(ctx, id)
}

// Get returns a fully joined order
func (s *OrderService) Get(ctx context.Context, id uint) (*models.RepairOrder, error) {
	var order models.RepairOrder
	if err := preloadOrder(s.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		return nil, notFoundOr(err, "Order")
	}
	return &order, nil
}

// GetForClient returns an order only if it belongs to clientID
func (s *OrderService) GetForClient(ctx context.Context, id, clientID uint) (*models.RepairOrder, error) {
	var order models.RepairOrder
	err := preloadOrder(s.db.WithContext(ctx)).
		Where("client_id = ?", clientID).
		First(&order, id).Error
	if err != nil {
		return nil, notFoundOr(err, "Order")
	}
	return &order, nil
}

// List returns one page of orders, newest first
func (s *OrderService) List(ctx context.Context, filter OrderFilter, page utils.Pagination) ([]models.RepairOrder, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.RepairOrder{})
	if filter.StatusID != 0 {
		query = query.Where("status_id = ?", filter.StatusID)
	}
	if filter.ClientID != 0 {
		query = query.Where("client_id = ?", filter.ClientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, utils.NewInternalError("Failed to count orders", err)
	}

	var orders []models.RepairOrder
	err := preloadOrder(query).
		Order("date_created DESC").Order("id DESC").
		Limit(page.Limit).Offset(page.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, utils.NewInternalError("Failed to load orders", err)
	}
	return orders, total, nil
}

// ListForClient returns every order of a client, newest first
func (s *OrderService) ListForClient(ctx context.Context, clientID uint) ([]models.RepairOrder, error) {
	var orders []models.RepairOrder
	err := preloadOrder(s.db.WithContext(ctx)).
		Where("client_id = ?", clientID).
		Order("date_created DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, utils.NewInternalError("Failed to load orders", err)
	}
	return orders, nil
}

// History returns the audit trail of an order, oldest first
func (s *OrderService) History(ctx context.Context, id uint) ([]models.OrderHistory, error) {
	db := s.db.WithContext(ctx)
	if err := ensureExists(db, &models.RepairOrder{}, id, "Order"); err != nil {
		return nil, err
	}

	var entries []models.OrderHistory
	err := db.Preload("Actor", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Where("order_id = ?", id).
		Order("created_at ASC").Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, utils.NewInternalError("Failed to load order history", err)
	}
	return entries, nil
}

// UsePart consumes stock for an order and records the part with a price snapshot
func (s *OrderService) UsePart(ctx context.Context, orderID, actorID, partID uint, quantity int) (*models.RepairOrder, error) {
	if quantity <= 0 {
		return nil, utils.NewFieldError("quantity", "must be greater than 0")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureExists(tx, &models.RepairOrder{}, orderID, "Order"); err != nil {
			return err
		}

		var part models.SparePart
		if err := tx.First(&part, partID).Error; err != nil {
			return notFoundOr(err, "Spare part")
		}

		// Conditional decrement keeps stock non-negative without row locks
		res := tx.Model(&models.SparePart{}).
			Where("id = ? AND quantity >= ?", partID, quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
		if res.Error != nil {
			return utils.NewInternalError("Failed to update stock", res.Error)
		}
		if res.RowsAffected == 0 {
			return utils.NewConflictError("INSUFFICIENT_STOCK", "Not enough parts in stock")
		}

		used := models.UsedPart{
			OrderID:  orderID,
			PartID:   partID,
			Quantity: quantity,
			Price:    part.Price,
		}
		if err := tx.Create(&used).Error; err != nil {
			return utils.NewInternalError("Failed to record used part", err)
		}

		return recordHistory(tx, orderID, &actorID, models.HistoryPartUsed, nil, nil, datatypes.JSONMap{
			"part_id":  partID,
			"quantity": quantity,
			"price":    part.Price.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

func recordHistory(tx *gorm.DB, orderID uint, actorID *uint, action string, oldStatus, newStatus *models.StatusID, changes datatypes.JSONMap) error {
	entry := models.OrderHistory{
		OrderID:   orderID,
		ActorID:   actorID,
		Action:    action,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Changes:   changes,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return utils.NewInternalError("Failed to record order history", err)
	}
	return nil
}

func statusPtr(s models.StatusID) *models.StatusID {
	return &s
}

// ensureExists fails with NotFound when no row of model has the given id
func ensureExists(db *gorm.DB, model interface{}, id uint, entity string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return utils.NewInternalError("Failed to look up "+entity, err)
	}
	if count == 0 {
		return utils.NewNotFoundError(entity)
	}
	return nil
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound error and anything else to Internal
func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFoundError(entity)
	}
	return utils.NewInternalError("Failed to load "+entity, err)
}
