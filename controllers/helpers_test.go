package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/config"
	"github.com/kendall-kelly/repair-shop-api/middleware"
	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/testutil"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.RegisterValidatorTagNames()
	router := gin.New()
	return router
}

// setupTestEnv installs a fresh database and the test configuration
func setupTestEnv(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.NewTestDB(t)
	config.SetConfig(testutil.TestConfig())
	t.Cleanup(func() { config.SetConfig(nil) })
	return db
}

// mockStaffAuth sets up the context exactly as middleware.RequireStaff does
func mockStaffAuth(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, user.ID)
		c.Set(middleware.ContextClaims, &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{Role: string(user.Role)},
		})
		c.Set(middleware.ContextStaff, user)
		c.Next()
	}
}

// mockClientAuth sets up the context exactly as middleware.RequireClient does
func mockClientAuth(client *models.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, client.ID)
		c.Set(middleware.ContextClaims, &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{},
		})
		c.Set(middleware.ContextClient, client)
		c.Next()
	}
}

// performJSON sends body as JSON and decodes the envelope
func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = &bytes.Buffer{}
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Header().Get("Content-Type") != "application/pdf" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	}
	return w, response
}

// assertErrorCode checks the error envelope
func assertErrorCode(t *testing.T, response map[string]interface{}, code string) map[string]interface{} {
	t.Helper()
	assert.False(t, response["success"].(bool))
	errorData, ok := response["error"].(map[string]interface{})
	require.True(t, ok, "response has no error object")
	assert.Equal(t, code, errorData["code"])
	return errorData
}

// dataMap returns the data object of a success envelope
func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	assert.True(t, response["success"].(bool))
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object")
	return data
}

// fieldNames lists the fields of a validation error
func fieldNames(errorData map[string]interface{}) []string {
	var names []string
	fields, _ := errorData["fields"].([]interface{})
	for _, f := range fields {
		if m, ok := f.(map[string]interface{}); ok {
			names = append(names, m["field"].(string))
		}
	}
	return names
}
