package models

import "fmt"

// StatusID identifies an order status from the fixed lookup table
type StatusID uint

const (
	StatusAccepted    StatusID = 1
	StatusDiagnosis   StatusID = 2
	StatusNegotiation StatusID = 3
	StatusInRepair    StatusID = 4
	StatusReady       StatusID = 5
	StatusIssued      StatusID = 6
	StatusCancelled   StatusID = 7
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []StatusID{
	StatusAccepted,
	StatusDiagnosis,
	StatusNegotiation,
	StatusInRepair,
	StatusReady,
	StatusIssued,
	StatusCancelled,
}

// Valid reports whether s is one of the seven known statuses
func (s StatusID) Valid() bool {
	return s >= StatusAccepted && s <= StatusCancelled
}

// IsCompleted reports whether the status counts as completed work (Ready or Issued)
func (s StatusID) IsCompleted() bool {
	return s == StatusReady || s == StatusIssued
}

// Name returns the display name stored in the order_statuses table
func (s StatusID) Name() string {
	switch s {
	case StatusAccepted:
		return "Accepted"
	case StatusDiagnosis:
		return "Diagnosis"
	case StatusNegotiation:
		return "Negotiation"
	case StatusInRepair:
		return "In Repair"
	case StatusReady:
		return "Ready"
	case StatusIssued:
		return "Issued"
	case StatusCancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("Status %d", uint(s))
}

// Description returns the seeded description of the status
func (s StatusID) Description() string {
	switch s {
	case StatusAccepted:
		return "Device received from the client"
	case StatusDiagnosis:
		return "Device is being diagnosed"
	case StatusNegotiation:
		return "Waiting for the client to approve the estimate"
	case StatusInRepair:
		return "Repair in progress"
	case StatusReady:
		return "Repair finished, ready for pickup"
	case StatusIssued:
		return "Device returned to the client"
	case StatusCancelled:
		return "Order cancelled"
	}
	return ""
}

// OrderStatus is the lookup row for a StatusID
type OrderStatus struct {
	ID          StatusID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string   `gorm:"not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
}

// TableName specifies the table name for the OrderStatus model
func (OrderStatus) TableName() string {
	return "order_statuses"
}

// DefaultOrderStatuses returns the rows seeded into order_statuses
func DefaultOrderStatuses() []OrderStatus {
	rows := make([]OrderStatus, 0, len(AllStatuses))
	for _, s := range AllStatuses {
		rows = append(rows, OrderStatus{ID: s, Name: s.Name(), Description: s.Description()})
	}
	return rows
}
