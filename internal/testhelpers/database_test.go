package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshkitchen/mealdesk/backend/internal/models"
)

func TestSetupSQLiteIsolated(t *testing.T) {
	first := SetupSQLite(t)
	second := SetupSQLite(t)

	CreateCustomer(t, first, "Amal", "Marina")

	var count int64
	require.NoError(t, first.Model(&models.Customer{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, second.Model(&models.Customer{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestSetupPostgresAppliesMigrations(t *testing.T) {
	db := SetupPostgres(t)

	dish := CreateDish(t, db.DB, "Chicken Bowl", "lunch")
	var loaded models.Dish
	require.NoError(t, db.First(&loaded, "id = ?", dish.ID).Error)
	assert.Equal(t, models.JSONBStringArray{"chicken", "rice"}, loaded.Ingredients)

	var versions []string
	require.NoError(t, db.Raw("SELECT version FROM schema_migrations ORDER BY version").Scan(&versions).Error)
	assert.Equal(t, []string{"0001_init", "0002_kitchen_indexes"}, versions)
}
