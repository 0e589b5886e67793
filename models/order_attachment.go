package models

import "time"

// OrderAttachment is an intake photo stored in object storage
type OrderAttachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	UploadedBy  uint      `gorm:"not null;index" json:"uploaded_by"`
	S3Key       string    `gorm:"not null" json:"s3_key"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         *string   `gorm:"-" json:"url,omitempty"` // computed, presigned URL
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for the OrderAttachment model
func (OrderAttachment) TableName() string {
	return "order_attachments"
}

// AllModels lists every persisted model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Client{},
		&DeviceType{},
		&Brand{},
		&Device{},
		&OrderStatus{},
		&Service{},
		&SparePart{},
		&RepairOrder{},
		&OrderService{},
		&UsedPart{},
		&RepairRequest{},
		&OrderHistory{},
		&OrderComment{},
		&OrderAttachment{},
	}
}
