package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/middleware"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LoginRequest represents the request body for staff and client login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func invalidCredentials() *utils.AppError {
	err := utils.NewAuthenticationError("Invalid email or password")
	err.Code = "INVALID_CREDENTIALS"
	return err
}

// Login handles POST /api/v1/auth/login - exchanges staff credentials for a token
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var user models.User
	if err := db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, invalidCredentials())
			return
		}
		utils.RespondError(c, utils.NewInternalError("Failed to load user", err))
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		zap.L().Info("staff login failed", zap.Uint("user_id", user.ID))
		utils.RespondError(c, invalidCredentials())
		return
	}

	token, err := newTokenService().IssueStaffToken(&user)
	if err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to issue token", err))
		return
	}

	utils.RespondOK(c, gin.H{
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
		"user":       user,
	})
}

// GetProfile handles GET /api/v1/auth/profile - returns the authenticated staff user
func GetProfile(c *gin.Context) {
	user, err := middleware.CurrentStaff(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Could not extract user information"))
		return
	}
	utils.RespondOK(c, user)
}
