package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every fixture account
const DefaultPassword = "secret123"

var passwordHash string

func hashedPassword(t *testing.T) string {
	t.Helper()
	if passwordHash == "" {
		hash, err := utils.HashPassword(DefaultPassword)
		require.NoError(t, err)
		passwordHash = hash
	}
	return passwordHash
}

// CreateUser inserts a staff user with DefaultPassword
func CreateUser(t *testing.T, db *gorm.DB, role models.Role, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: hashedPassword(t),
		Role:         role,
		Name:         fmt.Sprintf("%s %s", role, email),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateClient inserts a verified client with DefaultPassword
func CreateClient(t *testing.T, db *gorm.DB, name, phone, email string) *models.Client {
	t.Helper()
	client := &models.Client{
		Name:         name,
		Phone:        phone,
		PasswordHash: hashedPassword(t),
		IsVerified:   true,
	}
	if email != "" {
		client.Email = &email
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateDevice inserts a device together with its type and brand
func CreateDevice(t *testing.T, db *gorm.DB, typeName, brandName, model string) *models.Device {
	t.Helper()
	deviceType := models.DeviceType{Name: typeName}
	require.NoError(t, db.Where(models.DeviceType{Name: typeName}).FirstOrCreate(&deviceType).Error)
	brand := models.Brand{Name: brandName}
	require.NoError(t, db.Where(models.Brand{Name: brandName}).FirstOrCreate(&brand).Error)

	device := &models.Device{TypeID: deviceType.ID, BrandID: brand.ID, Model: model}
	require.NoError(t, db.Create(device).Error)
	device.Type = &deviceType
	device.Brand = &brand
	return device
}

// CreateService inserts a catalog service
func CreateService(t *testing.T, db *gorm.DB, name string, price int64) *models.Service {
	t.Helper()
	service := &models.Service{Name: name, Price: decimal.NewFromInt(price), DurationDays: 1}
	require.NoError(t, db.Create(service).Error)
	return service
}

// CreateOrder inserts an order directly, bypassing the lifecycle rules
func CreateOrder(t *testing.T, db *gorm.DB, client *models.Client, device *models.Device, status models.StatusID, created time.Time) *models.RepairOrder {
	t.Helper()
	order := &models.RepairOrder{
		ClientID:           client.ID,
		DeviceID:           device.ID,
		StatusID:           status,
		ProblemDescription: "Does not turn on",
		DateCreated:        created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}
