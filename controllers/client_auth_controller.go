package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/middleware"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterClientRequest represents the request body for client self-registration
type RegisterClientRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Address  string `json:"address"`
}

// ActivateClientRequest represents the request body for activating a staff-created client
type ActivateClientRequest struct {
	VerificationToken string `json:"verification_token" binding:"required"`
	Password          string `json:"password" binding:"required,min=6"`
}

func respondClientToken(c *gin.Context, status int, client *models.Client) {
	token, err := newTokenService().IssueClientToken(client)
	if err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to issue token", err))
		return
	}
	c.JSON(status, gin.H{
		"success": true,
		"data": gin.H{
			"token":      token.Token,
			"expires_at": token.ExpiresAt,
			"client":     client,
		},
	})
}

// RegisterClient handles POST /api/v1/client-auth/register - creates a client account
func RegisterClient(c *gin.Context) {
	var req RegisterClientRequest
	if !bindJSON(c, &req) {
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	email := normalizeEmail(req.Email)
	if err := checkClientUnique(db, req.Phone, &email, 0); err != nil {
		utils.RespondError(c, err)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to hash password", err))
		return
	}

	client := models.Client{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        &email,
		PasswordHash: hash,
		Address:      req.Address,
		IsVerified:   true,
	}
	if err := db.Create(&client).Error; err != nil {
		utils.RespondError(c, clientWriteError(err))
		return
	}

	zap.L().Info("client registered", zap.Uint("client_id", client.ID))
	respondClientToken(c, http.StatusCreated, &client)
}

// ClientLogin handles POST /api/v1/client-auth/login
func ClientLogin(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var client models.Client
	if err := db.Where("email = ?", normalizeEmail(req.Email)).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, invalidCredentials())
			return
		}
		utils.RespondError(c, utils.NewInternalError("Failed to load client", err))
		return
	}

	if !client.HasPassword() {
		notActivated := utils.NewAuthenticationError("Account is not activated")
		notActivated.Code = "ACCOUNT_NOT_ACTIVATED"
		utils.RespondError(c, notActivated)
		return
	}
	if !utils.CheckPassword(client.PasswordHash, req.Password) {
		utils.RespondError(c, invalidCredentials())
		return
	}

	respondClientToken(c, http.StatusOK, &client)
}

// GetClientProfile handles GET /api/v1/client-auth/profile
func GetClientProfile(c *gin.Context) {
	client, err := middleware.CurrentClient(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Could not extract client information"))
		return
	}
	utils.RespondOK(c, client)
}

// ActivateClient handles POST /api/v1/client-auth/activate - sets the password of a staff-created client
func ActivateClient(c *gin.Context) {
	var req ActivateClientRequest
	if !bindJSON(c, &req) {
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var client models.Client
	if err := db.Where("verification_token = ?", req.VerificationToken).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NewFieldError("verification_token", "is invalid or already used"))
			return
		}
		utils.RespondError(c, utils.NewInternalError("Failed to load client", err))
		return
	}
	if client.HasPassword() {
		utils.RespondError(c, utils.NewConflictError("ALREADY_ACTIVATED", "Account is already activated"))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to hash password", err))
		return
	}

	err = db.Model(&client).Updates(map[string]interface{}{
		"password_hash":      hash,
		"is_verified":        true,
		"verification_token": nil,
	}).Error
	if err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to activate client", err))
		return
	}
	client.PasswordHash = hash
	client.IsVerified = true
	client.VerificationToken = nil

	zap.L().Info("client activated", zap.Uint("client_id", client.ID))
	respondClientToken(c, http.StatusOK, &client)
}
