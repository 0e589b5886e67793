package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/kendall-kelly/repair-shop-api/models"
	"github.com/kendall-kelly/repair-shop-api/testutil"
	"github.com/kendall-kelly/repair-shop-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	db := setupTestEnv(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@shop.test")

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, data map[string]interface{})
	}{
		{
			name: "Successfully create master",
			requestBody: map[string]interface{}{
				"email":    "New.Master@Shop.test",
				"password": "secret1",
				"role":     "master",
				"name":     "New Master",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, "new.master@shop.test", data["email"])
				assert.Equal(t, "master", data["role"])
				assert.NotContains(t, data, "password_hash")
			},
		},
		{
			name: "Fail with duplicate email",
			requestBody: map[string]interface{}{
				"email":    "admin@shop.test",
				"password": "secret1",
				"role":     "manager",
				"name":     "Copy",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "DUPLICATE_EMAIL",
		},
		{
			name: "Fail with unknown role",
			requestBody: map[string]interface{}{
				"email":    "someone@shop.test",
				"password": "secret1",
				"role":     "customer",
				"name":     "Someone",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with short password",
			requestBody: map[string]interface{}{
				"email":    "short@shop.test",
				"password": "123",
				"role":     "master",
				"name":     "Short",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/users", mockStaffAuth(admin), CreateUser)

			w, response := performJSON(t, router, http.MethodPost, "/users", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assertErrorCode(t, response, tt.expectedError)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, dataMap(t, response))
			}
		})
	}
}

func TestListAndGetUsers(t *testing.T) {
	db := setupTestEnv(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@shop.test")
	master := testutil.CreateUser(t, db, models.RoleMaster, "master@shop.test")

	router := setupTestRouter()
	router.GET("/users", mockStaffAuth(admin), ListUsers)
	router.GET("/users/:id", mockStaffAuth(admin), GetUser)

	w, response := performJSON(t, router, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := response["data"].([]interface{})
	require.Len(t, users, 2)
	assert.Equal(t, float64(admin.ID), users[0].(map[string]interface{})["id"])

	w, response = performJSON(t, router, http.MethodGet, fmt.Sprintf("/users/%d", master.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "master@shop.test", dataMap(t, response)["email"])

	w, response = performJSON(t, router, http.MethodGet, "/users/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assertErrorCode(t, response, "NOT_FOUND")
}

func TestUpdateUser_PasswordOptional(t *testing.T) {
	db := setupTestEnv(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@shop.test")
	master := testutil.CreateUser(t, db, models.RoleMaster, "master@shop.test")

	router := setupTestRouter()
	router.PUT("/users/:id", mockStaffAuth(admin), UpdateUser)
	path := fmt.Sprintf("/users/%d", master.ID)

	w, response := performJSON(t, router, http.MethodPut, path, map[string]interface{}{"role": "manager", "name": "Promoted"})
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, response)
	assert.Equal(t, "manager", data["role"])
	assert.Equal(t, "Promoted", data["name"])

	var stored models.User
	require.NoError(t, db.First(&stored, master.ID).Error)
	assert.True(t, utils.CheckPassword(stored.PasswordHash, testutil.DefaultPassword))

	w, _ = performJSON(t, router, http.MethodPut, path, map[string]interface{}{"password": "changed1"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&stored, master.ID).Error)
	assert.True(t, utils.CheckPassword(stored.PasswordHash, "changed1"))

	w, response = performJSON(t, router, http.MethodPut, path, map[string]interface{}{"email": "admin@shop.test"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, response, "DUPLICATE_EMAIL")
}

func TestDeleteUser(t *testing.T) {
	db := setupTestEnv(t)
	admin := testutil.CreateUser(t, db, models.RoleAdmin, "admin@shop.test")
	master := testutil.CreateUser(t, db, models.RoleMaster, "master@shop.test")

	router := setupTestRouter()
	router.DELETE("/users/:id", mockStaffAuth(admin), DeleteUser)

	w, response := performJSON(t, router, http.MethodDelete, fmt.Sprintf("/users/%d", admin.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertErrorCode(t, response, "CANNOT_DELETE_SELF")

	var count int64
	db.Model(&models.User{}).Where("id = ?", admin.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	w, response = performJSON(t, router, http.MethodDelete, fmt.Sprintf("/users/%d", master.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User deleted", dataMap(t, response)["message"])

	db.Model(&models.User{}).Where("id = ?", master.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Unscoped().Model(&models.User{}).Where("id = ?", master.ID).Count(&count)
	assert.Equal(t, int64(1), count, "users are soft deleted")

	w, _ = performJSON(t, router, http.MethodDelete, fmt.Sprintf("/users/%d", master.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
