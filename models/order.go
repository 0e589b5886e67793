package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RepairOrder is the billable unit of work tracked through the status lifecycle
type RepairOrder struct {
	ID                 uint                `gorm:"primaryKey" json:"id"`
	ClientID           uint                `gorm:"not null;index" json:"client_id"`
	Client             *Client             `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	DeviceID           uint                `gorm:"not null;index" json:"device_id"`
	Device             *Device             `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	StatusID           StatusID            `gorm:"not null;default:1;index" json:"status_id"`
	Status             *OrderStatus        `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	MasterID           *uint               `gorm:"index" json:"master_id"` // staff member who accepted the order
	Master             *User               `gorm:"foreignKey:MasterID" json:"master,omitempty"`
	RequestID          *uint               `gorm:"index" json:"request_id"` // set when converted from a repair request
	ProblemDescription string              `gorm:"type:text;not null" json:"problem_description"`
	Diagnosis          string              `gorm:"type:text" json:"diagnosis"`
	CostEstimate       decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"cost_estimate"`
	FinalCost          decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"final_cost"`
	DateCreated        time.Time           `gorm:"not null;index" json:"date_created"`
	DateCompleted      *time.Time          `json:"date_completed"` // first entry into Ready or Issued, write-once
	WarrantyUntil      *time.Time          `json:"warranty_until"`
	Services           []OrderService      `gorm:"foreignKey:OrderID" json:"services"`
	Parts              []UsedPart          `gorm:"foreignKey:OrderID" json:"parts"`
}

// TableName specifies the table name for the RepairOrder model
func (RepairOrder) TableName() string {
	return "repair_orders"
}

// ServicesTotal sums quantity × snapshot price over the attached services
func (o *RepairOrder) ServicesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range o.Services {
		total = total.Add(s.LineTotal())
	}
	return total
}

// OrderService attaches a service to an order. Price is the service price at
// attach time and is never updated afterwards.
type OrderService struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ServiceID uint            `gorm:"not null;index" json:"service_id"`
	Service   *Service        `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// TableName specifies the table name for the OrderService model
func (OrderService) TableName() string {
	return "order_services"
}

// LineTotal returns quantity × snapshot price, treating a zero quantity as one
func (s OrderService) LineTotal() decimal.Decimal {
	qty := s.Quantity
	if qty <= 0 {
		qty = 1
	}
	return s.Price.Mul(decimal.NewFromInt(int64(qty)))
}

// UsedPart records spare parts consumed by an order, with a price snapshot
type UsedPart struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	OrderID  uint            `gorm:"not null;index" json:"order_id"`
	PartID   uint            `gorm:"not null;index" json:"part_id"`
	Part     *SparePart      `gorm:"foreignKey:PartID" json:"part,omitempty"`
	Quantity int             `gorm:"not null;default:1" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// TableName specifies the table name for the UsedPart model
func (UsedPart) TableName() string {
	return "used_parts"
}

// History actions recorded for an order
const (
	HistoryCreated          = "created"
	HistoryConverted        = "converted_from_request"
	HistoryStatusChanged    = "status_changed"
	HistoryUpdated          = "updated"
	HistoryPartUsed         = "part_used"
	HistoryDeviceRegistered = "device_registered"
)

// OrderHistory is an audit log entry for changes to an order
type OrderHistory struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	OrderID   uint              `gorm:"not null;index" json:"order_id"`
	ActorID   *uint             `gorm:"index" json:"actor_id"` // staff member, nil for system actions
	Actor     *User             `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Action    string            `gorm:"type:varchar(50);not null" json:"action"`
	OldStatus *StatusID         `json:"old_status,omitempty"`
	NewStatus *StatusID         `json:"new_status,omitempty"`
	Changes   datatypes.JSONMap `json:"changes,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// TableName specifies the table name for the OrderHistory model
func (OrderHistory) TableName() string {
	return "order_histories"
}
