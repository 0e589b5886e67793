package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/services"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Gin context keys set by the auth middleware
const (
	ContextUserID = "user_id"
	ContextClaims = "validated_claims"
	ContextStaff  = "staff_user"
	ContextClient = "client"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Role string `json:"role"`
}

// Validate does nothing, role checks happen after the account is reloaded.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

func newValidator(cfg *config.Config, audience string) (*validator.Validator, error) {
	secret := []byte(cfg.JWTSecret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return secret, nil
	}

	return validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// validateToken runs the jwt middleware against the request and returns the validated claims
func validateToken(c *gin.Context, v *validator.Validator) (*validator.ValidatedClaims, error) {
	var (
		claims   *validator.ValidatedClaims
		checkErr error
	)

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		checkErr = err
	}
	mw := jwtmiddleware.New(
		v.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithValidateOnOptions(true),
	)

	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		claims, _ = r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
	}
	mw.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)

	if checkErr != nil {
		return nil, checkErr
	}
	if claims == nil {
		return nil, jwtmiddleware.ErrJWTMissing
	}
	return claims, nil
}

func tokenError(err error) *utils.AppError {
	if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
		return utils.NewAuthenticationError("Authentication required")
	}
	appErr := utils.NewAuthenticationError("Invalid or expired token")
	appErr.Code = "INVALID_TOKEN"
	return appErr
}

// subjectID parses the numeric account id from the sub claim
func subjectID(claims *validator.ValidatedClaims) (uint, error) {
	id, err := strconv.ParseUint(claims.RegisteredClaims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "Token subject is not an account id"}
	}
	return uint(id), nil
}

// RequireStaff validates a staff token and loads the staff user.
// Tokens of deleted users are rejected.
func RequireStaff(cfg *config.Config) gin.HandlerFunc {
	jwtValidator, err := newValidator(cfg, services.StaffAudience)
	if err != nil {
		zap.L().Fatal("failed to set up the staff jwt validator", zap.Error(err))
	}

	return func(c *gin.Context) {
		claims, err := validateToken(c, jwtValidator)
		if err != nil {
			zap.L().Debug("staff token rejected", zap.Error(err))
			utils.RespondError(c, tokenError(err))
			return
		}
		id, err := subjectID(claims)
		if err != nil {
			utils.RespondError(c, tokenError(err))
			return
		}

		var user models.User
		if err := config.GetDB().WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondError(c, utils.NewAuthenticationError("User no longer exists"))
				return
			}
			utils.RespondError(c, utils.NewInternalError("Failed to load user", err))
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextClaims, claims)
		c.Set(ContextStaff, &user)
		c.Next()
	}
}

// RequireClient validates a client token and loads the client
func RequireClient(cfg *config.Config) gin.HandlerFunc {
	jwtValidator, err := newValidator(cfg, services.ClientAudience)
	if err != nil {
		zap.L().Fatal("failed to set up the client jwt validator", zap.Error(err))
	}

	return func(c *gin.Context) {
		claims, err := validateToken(c, jwtValidator)
		if err != nil {
			zap.L().Debug("client token rejected", zap.Error(err))
			utils.RespondError(c, tokenError(err))
			return
		}
		id, err := subjectID(claims)
		if err != nil {
			utils.RespondError(c, tokenError(err))
			return
		}

		var client models.Client
		if err := config.GetDB().WithContext(c.Request.Context()).First(&client, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondError(c, utils.NewAuthenticationError("Client no longer exists"))
				return
			}
			utils.RespondError(c, utils.NewInternalError("Failed to load client", err))
			return
		}

		c.Set(ContextUserID, client.ID)
		c.Set(ContextClaims, claims)
		c.Set(ContextClient, &client)
		c.Next()
	}
}

// GetUserID extracts the authenticated account id from the Gin context
func GetUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return 0, &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	id, ok := userID.(uint)
	if !ok {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not numeric"}
	}

	return id, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ContextClaims)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// CurrentStaff returns the staff user loaded by RequireStaff
func CurrentStaff(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(ContextStaff)
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "Staff user not found in context"}
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "Staff user is not in the expected format"}
	}
	return user, nil
}

// CurrentClient returns the client loaded by RequireClient
func CurrentClient(c *gin.Context) (*models.Client, error) {
	value, exists := c.Get(ContextClient)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLIENT", Message: "Client not found in context"}
	}
	client, ok := value.(*models.Client)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLIENT", Message: "Client is not in the expected format"}
	}
	return client, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
