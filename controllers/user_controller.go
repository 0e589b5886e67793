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

// CreateUserRequest represents the request body for creating a staff user
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin manager master"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

// UpdateUserRequest represents the request body for updating a staff user.
// The password is only changed when provided.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin manager master"`
	Name     *string `json:"name" binding:"omitempty,min=1"`
	Phone    *string `json:"phone"`
}

func duplicateUserEmail() *utils.AppError {
	return utils.NewConflictError("DUPLICATE_EMAIL", "A user with this email already exists")
}

// checkUserEmail fails when another user, deleted or not, already holds the email
func checkUserEmail(db *gorm.DB, email string, excludeID uint) error {
	var count int64
	err := db.Unscoped().Model(&models.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	if err != nil {
		return utils.NewInternalError("Failed to check email", err)
	}
	if count > 0 {
		return duplicateUserEmail()
	}
	return nil
}

func loadUser(c *gin.Context, id uint) (*models.User, bool) {
	var user models.User
	if err := config.GetDB().WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NewNotFoundError("User"))
			return nil, false
		}
		utils.RespondError(c, utils.NewInternalError("Failed to load user", err))
		return nil, false
	}
	return &user, true
}

// ListUsers handles GET /api/v1/users - lists every staff user
func ListUsers(c *gin.Context) {
	var users []models.User
	if err := config.GetDB().WithContext(c.Request.Context()).Order("id ASC").Find(&users).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to load users", err))
		return
	}
	utils.RespondOK(c, users)
}

// GetUser handles GET /api/v1/users/:id
func GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, ok := loadUser(c, id)
	if !ok {
		return
	}
	utils.RespondOK(c, user)
}

// CreateUser handles POST /api/v1/users - creates a staff account (admins only)
func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	email := normalizeEmail(req.Email)
	if err := checkUserEmail(db, email, 0); err != nil {
		utils.RespondError(c, err)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to hash password", err))
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.Role(req.Role),
		Name:         req.Name,
		Phone:        req.Phone,
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			utils.RespondError(c, duplicateUserEmail())
			return
		}
		utils.RespondError(c, utils.NewInternalError("Failed to create user", err))
		return
	}

	zap.L().Info("user created", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	utils.RespondCreated(c, user)
}

// UpdateUser handles PUT /api/v1/users/:id
func UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, ok := loadUser(c, id)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	// Update fields if provided
	updates := make(map[string]interface{})
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := checkUserEmail(db, email, user.ID); err != nil {
			utils.RespondError(c, err)
			return
		}
		updates["email"] = email
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			utils.RespondError(c, utils.NewInternalError("Failed to hash password", err))
			return
		}
		updates["password_hash"] = hash
	}
	if req.Role != nil {
		updates["role"] = models.Role(*req.Role)
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				utils.RespondError(c, duplicateUserEmail())
				return
			}
			utils.RespondError(c, utils.NewInternalError("Failed to update user", err))
			return
		}
	}

	user, ok = loadUser(c, id)
	if !ok {
		return
	}
	utils.RespondOK(c, user)
}

// DeleteUser handles DELETE /api/v1/users/:id. Admins cannot delete themselves.
func DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	currentID, err := middleware.GetUserID(c)
	if err != nil {
		utils.RespondError(c, utils.NewAuthenticationError("Could not extract user information"))
		return
	}
	if currentID == id {
		utils.RespondError(c, utils.NewConflictError("CANNOT_DELETE_SELF", "You cannot delete your own account"))
		return
	}

	user, ok := loadUser(c, id)
	if !ok {
		return
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Delete(user).Error; err != nil {
		utils.RespondError(c, utils.NewInternalError("Failed to delete user", err))
		return
	}

	zap.L().Info("user deleted", zap.Uint("user_id", id), zap.Uint("deleted_by", currentID))
	utils.RespondOK(c, gin.H{"message": "User deleted"})
}
