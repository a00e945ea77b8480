package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/freshkitchen/mealdesk/backend/config"
	"github.com/freshkitchen/mealdesk/backend/internal/api"
	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/router"
	"github.com/freshkitchen/mealdesk/backend/internal/testhelpers"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "integration-secret",
		JWTExpiryHours: 1,
		CORSOrigins:    []string{"http://localhost:5173"},
		WeeklyMinDays:  5,
		WeeklyMaxDays:  7,
		MonthlyMinDays: 20,
		MonthlyMaxDays: 30,
		DefaultSlots:   []string{"08:00", "13:00", "19:00"},
	}
}

type client struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (c *client) call(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:5173")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

// runKitchenDay walks one working day through the API: catalog setup, a
// weekly plan, the kitchen view and the deliveries.
func runKitchenDay(t *testing.T, db *gorm.DB, rdb *redis.Client) {
	gin.SetMode(gin.TestMode)
	testhelpers.CreateUser(t, db, "ops@kitchen.test", "password123", models.RoleManager)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := router.SetupRouter(api.Dependencies{Config: testConfig(), DB: db, Redis: rdb}, logger)
	c := &client{t: t, engine: engine}

	var login struct {
		Token string `json:"token"`
	}
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "ops@kitchen.test", "password": "password123"}, &login))
	c.token = login.Token

	var customer models.Customer
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/v1/customers", gin.H{
		"name": "Amal Haddad", "phone": "+971501234567", "address": "Marina Walk 4", "delivery_area": "Marina",
	}, &customer))
	var bowl models.Dish
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/v1/dishes", gin.H{
		"name": "Chicken Bowl", "category": "lunch", "ingredients": []string{"chicken", "rice"}, "price": 42,
	}, &bowl))

	var plan models.MealPlan
	require.Equal(t, http.StatusCreated, c.call(http.MethodPost, "/api/v1/meal-plans", gin.H{
		"customer_id":   customer.ID,
		"days":          7,
		"meals_per_day": 1,
		"start_date":    "2025-01-06",
		"time_slots":    []string{"13:00"},
		"items": []gin.H{
			{"date": "2025-01-06", "time_slot": "13:00", "dish_id": bowl.ID},
			{"date": "2025-01-07", "time_slot": "13:00", "dish_id": bowl.ID},
		},
	}, &plan))
	assert.Equal(t, 7, plan.TotalMeals)
	assert.Equal(t, 7, plan.RemainingMeals)

	var kitchen struct {
		Rows []struct {
			ItemID       string `json:"item_id"`
			CustomerName string `json:"customer_name"`
			DishName     string `json:"dish_name"`
		} `json:"rows"`
		Summary []struct {
			DishName string `json:"dish_name"`
			Portions int    `json:"portions"`
		} `json:"summary"`
	}
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/v1/kitchen/plan?from=2025-01-06&to=2025-01-07", nil, &kitchen))
	require.Len(t, kitchen.Rows, 2)
	assert.Equal(t, "Amal Haddad", kitchen.Rows[0].CustomerName)
	require.Len(t, kitchen.Summary, 1)
	assert.Equal(t, 2, kitchen.Summary[0].Portions)

	type portions struct {
		Data []struct {
			Portions int `json:"portions"`
		} `json:"data"`
	}
	const pendingSummary = "/api/v1/kitchen/summary?from=2025-01-06&to=2025-01-07&status=pending"
	var before portions
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, pendingSummary, nil, &before))
	require.Len(t, before.Data, 1)
	assert.Equal(t, 2, before.Data[0].Portions)

	var delivered struct {
		RemainingMeals int `json:"remaining_meals"`
	}
	path := fmt.Sprintf("/api/v1/meal-plans/%s/items/%s/delivered", plan.ID, kitchen.Rows[0].ItemID)
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, path, nil, &delivered))
	assert.Equal(t, 6, delivered.RemainingMeals)

	// the delivery drops the cached pending summary
	var after portions
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, pendingSummary, nil, &after))
	require.Len(t, after.Data, 1)
	assert.Equal(t, 1, after.Data[0].Portions)

	var pending struct {
		Rows []json.RawMessage `json:"rows"`
	}
	require.Equal(t, http.StatusOK, c.call(http.MethodGet,
		"/api/v1/kitchen/plan?from=2025-01-06&to=2025-01-07&status=pending", nil, &pending))
	assert.Len(t, pending.Rows, 1)

	var summary struct {
		Data []json.RawMessage `json:"data"`
	}
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/v1/kitchen/summary?from=2025-01-06", nil, &summary))
	assert.Len(t, summary.Data, 1)

	var got models.MealPlan
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/v1/meal-plans/"+plan.ID.String(), nil, &got))
	assert.Equal(t, 6, got.RemainingMeals)

	assert.Equal(t, http.StatusNotFound, c.call(http.MethodGet, "/api/v1/recipes", nil, nil))
}

func TestKitchenDaySQLite(t *testing.T) {
	runKitchenDay(t, testhelpers.SetupSQLite(t), nil)
}

func TestKitchenDayPostgresRedis(t *testing.T) {
	pg := testhelpers.SetupPostgres(t)
	runKitchenDay(t, pg.DB, setupRedis(t))
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(ctx)
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}
