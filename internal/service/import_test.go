package service_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/service"
	"github.com/freshkitchen/mealdesk/backend/internal/testhelpers"
)

// workbook renders rows into an in-memory xlsx on its first sheet.
func workbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestImportDishes(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	imports := service.NewImportService(db)
	testhelpers.CreateDish(t, db, "Chicken Bowl", "lunch")

	result, err := imports.ImportDishes(ctx, workbook(t, [][]interface{}{
		{"Name", "Category", "Ingredients", "Allergens", "Calories", "Price", "Active"},
		{"Falafel Wrap", "Lunch Dinner", "chickpeas; tahini, bread", "sesame", 610, 24.5, "yes"},
		{"chicken bowl", "dinner", "chicken", "", 480, 30, "no"},
		{},
		{"Bad Numbers", "lunch", "", "", "lots", 10, ""},
		{"Brunch Plate", "brunch", "", "", 300, 10, ""},
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 5, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "calories")
	assert.Equal(t, 6, result.Errors[1].Row)

	var wrap models.Dish
	require.NoError(t, db.First(&wrap, "name = ?", "Falafel Wrap").Error)
	assert.Equal(t, "lunch_dinner", wrap.Category)
	assert.Equal(t, models.JSONBStringArray{"chickpeas", "tahini", "bread"}, wrap.Ingredients)
	assert.InDelta(t, 24.5, wrap.Price, 0.001)
	assert.True(t, wrap.IsActive)

	var bowl models.Dish
	require.NoError(t, db.First(&bowl, "LOWER(name) = ?", "chicken bowl").Error)
	assert.Equal(t, "dinner", bowl.Category)
	assert.False(t, bowl.IsActive)
}

func TestImportCustomers(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	imports := service.NewImportService(db)
	existing := testhelpers.CreateCustomer(t, db, "Old Name", "Marina")

	result, err := imports.ImportCustomers(ctx, workbook(t, [][]interface{}{
		{"name", "email", "phone", "address", "delivery_area"},
		{"Huda", "HUDA@example.com", "", "Tower 2", "JLT"},
		{"New Name", "", existing.Phone, "Villa 9", "Marina"},
		{"Nobody", "", "", "", ""},
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Row)

	var updated models.Customer
	require.NoError(t, db.First(&updated, "id = ?", existing.ID).Error)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "Villa 9", updated.Address)

	var huda models.Customer
	require.NoError(t, db.First(&huda, "email = ?", "huda@example.com").Error)
	assert.Equal(t, "JLT", huda.DeliveryArea)
	assert.Equal(t, models.StatusActive, huda.Status)
}

func TestImportRejectsBadFiles(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	imports := service.NewImportService(db)

	_, err := imports.ImportDishes(ctx, strings.NewReader("name,category\nSoup,lunch\n"))
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = imports.ImportDishes(ctx, workbook(t, [][]interface{}{{"Title", "Category"}, {"Soup", "lunch"}}))
	var fe *service.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Message, "name")
}
