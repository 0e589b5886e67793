package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/repair-shop-api/locales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performError(t *testing.T, err error, lang string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/orders/9", nil)
	if lang != "" {
		c.Set(locales.ContextKey, lang)
	}

	RespondError(c, err)
	assert.True(t, c.IsAborted())

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w, response
}

func TestRespondErrorNotFound(t *testing.T) {
	w, response := performError(t, NewNotFoundError("Order"), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, response["success"])
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "NOT_FOUND", errorData["code"])
	assert.Equal(t, "Order not found", errorData["message"])
}

func TestRespondErrorLocalized(t *testing.T) {
	_, response := performError(t, NewConflictError("SERVICE_IN_USE", "Service is in use"), "ru")

	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "Услуга используется в заказах и не может быть удалена", errorData["message"])
}

func TestRespondErrorValidationFields(t *testing.T) {
	w, response := performError(t, NewFieldError("type_id", "device type does not exist"), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errorData := response["error"].(map[string]interface{})
	fields := errorData["fields"].([]interface{})
	require.Len(t, fields, 1)
	assert.Equal(t, "type_id", fields[0].(map[string]interface{})["field"])
}

func TestRespondErrorInternalDetails(t *testing.T) {
	defer func() { ExposeErrorDetails = false }()

	cause := errors.New("pq: relation does not exist")

	ExposeErrorDetails = false
	w, response := performError(t, cause, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, response["error"].(map[string]interface{}), "details")

	ExposeErrorDetails = true
	_, response = performError(t, cause, "")
	assert.Equal(t, "pq: relation does not exist", response["error"].(map[string]interface{})["details"])
}

func TestRespondOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondCreated(c, gin.H{"id": 1})
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, float64(1), response["data"].(map[string]interface{})["id"])
}
