package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/freshkitchen/mealdesk/backend/config"
	"github.com/freshkitchen/mealdesk/backend/internal/api"
	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/service"
	"github.com/freshkitchen/mealdesk/backend/internal/testhelpers"
)

type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "handler-test-secret",
		JWTExpiryHours: 1,
		WeeklyMinDays:  5,
		WeeklyMaxDays:  7,
		MonthlyMinDays: 20,
		MonthlyMaxDays: 30,
		DefaultSlots:   []string{"08:00", "13:00", "19:00"},
	}
}

func setupAPI(t *testing.T, archive service.Archiver) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLite(t)
	router := gin.New()
	auth := api.RegisterRoutes(router, api.Dependencies{Config: testConfig(), DB: db, Archive: archive})
	return &testAPI{t: t, db: db, router: router, auth: auth}
}

// tokenFor creates a staff member with role and returns a bearer token.
func (a *testAPI) tokenFor(role string) string {
	a.t.Helper()
	user := testhelpers.CreateUser(a.t, a.db, role+"@kitchen.test", "password123", role)
	token, err := a.auth.GenerateToken(user)
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	a := setupAPI(t, nil)
	w := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestLoginEndpoint(t *testing.T) {
	a := setupAPI(t, nil)
	testhelpers.CreateUser(t, a.db, "manager@kitchen.test", "password123", models.RoleManager)

	w := a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "manager@kitchen.test", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])

	w = a.do(http.MethodGet, "/api/v1/auth/me", body["token"].(string), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "manager@kitchen.test", decode(t, w)["email"])

	w = a.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "manager@kitchen.test", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid email or password", decode(t, w)["error"])
}

func TestRoleGates(t *testing.T) {
	a := setupAPI(t, nil)
	chef := a.tokenFor(models.RoleChef)
	manager := a.tokenFor(models.RoleManager)
	admin := a.tokenFor(models.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/customers", "", nil, http.StatusUnauthorized},
		{"chef reads dishes", http.MethodGet, "/api/v1/dishes", chef, nil, http.StatusOK},
		{"chef cannot add dishes", http.MethodPost, "/api/v1/dishes", chef, gin.H{"name": "Soup", "category": "lunch"}, http.StatusForbidden},
		{"chef cannot see payments", http.MethodGet, "/api/v1/payments", chef, nil, http.StatusForbidden},
		{"chef sees the kitchen plan", http.MethodGet, "/api/v1/kitchen/plan?from=2025-01-06", chef, nil, http.StatusOK},
		{"manager adds dishes", http.MethodPost, "/api/v1/dishes", manager, gin.H{"name": "Soup", "category": "lunch"}, http.StatusCreated},
		{"manager cannot add staff", http.MethodPost, "/api/v1/auth/users", manager, gin.H{"name": "New", "email": "new@kitchen.test", "password": "password123", "role": "chef"}, http.StatusForbidden},
		{"admin adds staff", http.MethodPost, "/api/v1/auth/users", admin, gin.H{"name": "New", "email": "new@kitchen.test", "password": "password123", "role": "chef"}, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestErrorMapping(t *testing.T) {
	a := setupAPI(t, nil)
	token := a.tokenFor(models.RoleManager)
	testhelpers.CreateDish(t, a.db, "Chicken Bowl", "lunch")

	w := a.do(http.MethodGet, "/api/v1/customers/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", decode(t, w)["field"])

	w = a.do(http.MethodGet, "/api/v1/customers/8f14e45f-ceea-467f-a0d4-3b2f1c1a3c11", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/api/v1/dishes", token, gin.H{"name": "Chicken Bowl", "category": "lunch"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodPost, "/api/v1/dishes", token, gin.H{"name": "Tea", "category": "drinks"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "category", decode(t, w)["field"])

	w = a.do(http.MethodPost, "/api/v1/dishes", token, gin.H{"category": "lunch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "invalid request body")
}

func TestCustomerListIsPaginated(t *testing.T) {
	a := setupAPI(t, nil)
	token := a.tokenFor(models.RoleManager)
	for i := 0; i < 3; i++ {
		testhelpers.CreateCustomer(t, a.db, fmt.Sprintf("Customer %d", i), "Marina")
	}

	w := a.do(http.MethodGet, "/api/v1/customers?page=2&pageSize=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 3, body["totalRows"])
	assert.EqualValues(t, 2, body["totalPages"])
	assert.EqualValues(t, 2, body["currentPage"])
	assert.Len(t, body["data"], 1)
}

func TestMealPlanDeliveryFlow(t *testing.T) {
	a := setupAPI(t, nil)
	manager := a.tokenFor(models.RoleManager)
	chef := a.tokenFor(models.RoleChef)
	customer := testhelpers.CreateCustomer(t, a.db, "Amal Haddad", "Marina")
	dish := testhelpers.CreateDish(t, a.db, "Chicken Bowl", "lunch")

	w := a.do(http.MethodPost, "/api/v1/meal-plans", manager, gin.H{
		"customer_id":   customer.ID,
		"days":          7,
		"meals_per_day": 2,
		"start_date":    "2025-01-06",
		"items": []gin.H{
			{"date": "2025-01-06", "time_slot": "13:00", "dish_id": dish.ID},
			{"date": "2025-01-07", "time_slot": "13:00"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	plan := decode(t, w)
	planID := plan["id"].(string)
	assert.EqualValues(t, 14, plan["total_meals"])
	assert.Equal(t, "weekly", plan["plan_type"])

	w = a.do(http.MethodGet, "/api/v1/meal-plans/"+planID+"/items", chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["data"].([]interface{})
	require.Len(t, items, 1)
	itemID := items[0].(map[string]interface{})["id"].(string)

	w = a.do(http.MethodPost, "/api/v1/meal-plans/"+planID+"/items/"+itemID+"/delivered", chef, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 13, decode(t, w)["remaining_meals"])

	w = a.do(http.MethodDelete, "/api/v1/meal-plans/"+planID+"/items/"+itemID+"/delivered", chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 14, decode(t, w)["remaining_meals"])

	w = a.do(http.MethodGet, "/api/v1/meal-plans/"+planID+"/preview?weeks=1", chef, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["rows"], 14)

	w = a.do(http.MethodPost, "/api/v1/meal-plans/"+planID+"/skip-day", manager, gin.H{"date": "2025-01-20"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/v1/meal-plans/"+planID+"/weeks", manager, gin.H{"visible_weeks": []int{1}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "weeks", decode(t, w)["kind"])

	w = a.do(http.MethodPost, "/api/v1/meal-plans/"+planID+"/recalculate", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 14, decode(t, w)["remaining_meals"])
}

func TestKitchenExport(t *testing.T) {
	archive := new(testhelpers.MockArchiver)
	a := setupAPI(t, archive)
	chef := a.tokenFor(models.RoleChef)

	w := a.do(http.MethodGet, "/api/v1/kitchen/export/chef?from=2025-01-06", chef, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, service.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "chef_sheet_20250106.xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Kitchen")

	archive.On("Upload", mock.Anything, mock.AnythingOfType("string"), mock.Anything, service.XLSXContentType).Return(nil)
	archive.On("GeneratePresignedURL", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return("https://archive.test/rider.xlsx", nil)
	w = a.do(http.MethodGet, "/api/v1/kitchen/export/rider?from=2025-01-06&archive=true", chef, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "https://archive.test/rider.xlsx", decode(t, w)["url"])
	archive.AssertExpectations(t)

	w = a.do(http.MethodGet, "/api/v1/kitchen/export/driver", chef, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKitchenExportArchiveDisabled(t *testing.T) {
	a := setupAPI(t, nil)
	chef := a.tokenFor(models.RoleChef)

	w := a.do(http.MethodGet, "/api/v1/kitchen/export/chef?archive=true", chef, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestImportDishesUpload(t *testing.T) {
	a := setupAPI(t, nil)
	token := a.tokenFor(models.RoleManager)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Name", "Category", "Price"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Lentil Soup", "lunch", 18}))
	sheet, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "dishes.xlsx")
	require.NoError(t, err)
	_, err = part.Write(sheet.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/dishes", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode(t, w)["created"])

	w = a.do(http.MethodPost, "/api/v1/import/customers", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
