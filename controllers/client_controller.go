package controllers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"gorm.io/gorm"
)

// CreateClientRequest represents the request body for a staff-created client
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
}

// UpdateClientRequest represents the request body for updating a client; nil fields are unchanged
type UpdateClientRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1"`
	Phone   *string `json:"phone" binding:"omitempty,min=1"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
}

// createdClient echoes the one-time activation token next to the new client
type createdClient struct {
	*models.Client
	VerificationToken string `json:"verification_token"`
}

// checkClientUnique fails with a conflict when phone or email belongs to another client
func checkClientUnique(db *gorm.DB, phone string, email *string, excludeID uint) error {
	var count int64
	if err := db.Model(&models.Client{}).Where("phone = ? AND id <> ?", phone, excludeID).Count(&count).Error; err != nil {
		return utils.NewInternalError("Failed to check phone", err)
	}
	if count > 0 {
		return utils.NewConflictError("DUPLICATE_PHONE", "A client with this phone number already exists")
	}

	if email == nil || *email == "" {
		return nil
	}
	if err := db.Model(&models.Client{}).Where("email = ? AND id <> ?", *email, excludeID).Count(&count).Error; err != nil {
		return utils.NewInternalError("Failed to check email", err)
	}
	if count > 0 {
		return utils.NewConflictError("DUPLICATE_EMAIL", "An account with this email already exists")
	}
	return nil
}

// clientWriteError maps a failed client insert or update, catching uniqueness races
func clientWriteError(err error) error {
	if isUniqueViolation(err) {
		if strings.Contains(strings.ToLower(err.Error()), "email") {
			return utils.NewConflictError("DUPLICATE_EMAIL", "An account with this email already exists")
		}
		return utils.NewConflictError("DUPLICATE_PHONE", "A client with this phone number already exists")
	}
	return utils.NewInternalError("Failed to save client", err)
}

func loadClient(c *gin.Context, id uint) (*models.Client, bool) {
	var client models.Client
	if err := config.GetDB().WithContext(c.Request.Context()).First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NewNotFoundError("Client"))
			return nil, false
		}
		utils.RespondError(c, utils.NewInternalError("Failed to load client", err))
		return nil, false
	}
	return &client, true
}

// ListClients handles GET /api/v1/clients - paginated, optional name search
func ListClients(c *gin.Context) {
	page := utils.ParsePagination(c)
	query := config.GetDB().WithContext(c.Request.Context()).Model(&models.Client{})
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to count clients", err))
		return
	}

	var clients []models.Client
	if err := query.Order("name ASC").Order("id ASC").Limit(page.Limit).Offset(page.Offset()).Find(&clients).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to load clients", err))
		return
	}

	utils.RespondOK(c, pageData("clients", clients, page, total))
}

// GetClient handles GET /api/v1/clients/:id
func GetClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	client, ok := loadClient(c, id)
	if !ok {
		return
	}
	utils.RespondOK(c, client)
}

// GetClientOrders handles GET /api/v1/clients/:id/orders - every order of one client
func GetClientOrders(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := loadClient(c, id); !ok {
		return
	}

	orders, err := newOrderService().ListForClient(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, gin.H{"orders": orders, "totalCount": len(orders)})
}

// CreateClient handles POST /api/v1/clients - registers a walk-in client.
// The client activates the account later with the returned verification token.
func CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var email *string
	if req.Email != "" {
		normalized := normalizeEmail(req.Email)
		email = &normalized
	}
	if err := checkClientUnique(db, req.Phone, email, 0); err != nil {
		utils.RespondError(c, err)
		return
	}

	token := uuid.NewString()
	client := models.Client{
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             email,
		Address:           req.Address,
		VerificationToken: &token,
	}
	if err := db.Create(&client).Error; err != nil {
		utils.RespondError(c, clientWriteError(err))
		return
	}

	utils.RespondCreated(c, createdClient{Client: &client, VerificationToken: token})
}

// UpdateClient handles PUT /api/v1/clients/:id
func UpdateClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	client, ok := loadClient(c, id)
	if !ok {
		return
	}

	phone := client.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	email := client.Email
	if req.Email != nil {
		normalized := normalizeEmail(*req.Email)
		email = &normalized
	}

	db := config.GetDB().WithContext(c.Request.Context())
	if err := checkClientUnique(db, phone, email, client.ID); err != nil {
		utils.RespondError(c, err)
		return
	}

	updates := map[string]interface{}{"phone": phone, "email": email}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if err := db.Model(client).Updates(updates).Error; err != nil {
		utils.RespondError(c, clientWriteError(err))
		return
	}

	client, ok = loadClient(c, id)
	if !ok {
		return
	}
	utils.RespondOK(c, client)
}
