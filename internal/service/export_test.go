package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/service"
	"github.com/freshkitchen/mealdesk/backend/internal/testhelpers"
)

func exportRows(t *testing.T) []service.KitchenRow {
	t.Helper()
	d, err := mealplanDate("2025-01-06")
	require.NoError(t, err)
	return []service.KitchenRow{
		{
			Date:         d,
			TimeSlot:     "13:00",
			DeliveryTime: "12:30",
			CustomerName: "Amal",
			Phone:        "+971500000000",
			Address:      "Villa 4",
			DeliveryArea: "Marina",
			DishName:     "Chicken Bowl",
			Ingredients:  models.JSONBStringArray{"chicken", "rice"},
			Allergens:    models.JSONBStringArray{"sesame"},
			Calories:     520,
			Note:         models.DeliveryNote{Instructions: "no onions", DeliveryLocation: "Office tower B"},
		},
	}
}

func TestChefSheet(t *testing.T) {
	exports := service.NewExportService(nil)

	f, err := exports.Sheet(service.AudienceChef, exportRows(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Kitchen"}, f.GetSheetList())

	rows, err := f.GetRows("Kitchen")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Fats", rows[0][len(rows[0])-1])
	assert.Equal(t, []string{"2025-01-06", "1:00 PM", "12:30 PM", "Amal", "Chicken Bowl", "no onions", "chicken, rice", "sesame", "520"}, rows[1][:9])
}

func TestRiderSheetPrefersNoteLocation(t *testing.T) {
	exports := service.NewExportService(nil)

	f, err := exports.Sheet(service.AudienceRider, exportRows(t))
	require.NoError(t, err)
	rows, err := f.GetRows("Deliveries")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Phone", rows[0][4])
	assert.Equal(t, "Office tower B", rows[1][5])
	assert.Equal(t, "Marina", rows[1][6])
}

func TestSheetRejectsUnknownAudience(t *testing.T) {
	_, err := service.NewExportService(nil).Sheet("driver", nil)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestFileName(t *testing.T) {
	from, _ := mealplanDate("2025-01-06")
	to, _ := mealplanDate("2025-01-12")
	assert.Equal(t, "chef_sheet_20250106.xlsx", service.FileName(service.AudienceChef, from, from))
	assert.Equal(t, "rider_sheet_20250106_20250112.xlsx", service.FileName(service.AudienceRider, from, to))
}

func TestArchive(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	_, err := service.NewExportService(nil).Archive(ctx, "chef.xlsx", f)
	assert.ErrorIs(t, err, service.ErrArchiveDisabled)

	archive := new(testhelpers.MockArchiver)
	isKey := mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "exports/") && strings.HasSuffix(key, "/chef.xlsx")
	})
	archive.On("Upload", mock.Anything, isKey, mock.Anything, service.XLSXContentType).Return(nil)
	archive.On("GeneratePresignedURL", mock.Anything, isKey, 24*time.Hour).Return("https://bucket.example/chef.xlsx?sig=1", nil)

	url, err := service.NewExportService(archive).Archive(ctx, "chef.xlsx", f)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.example/chef.xlsx?sig=1", url)
	archive.AssertExpectations(t)
}

func TestArchiveUploadFailure(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { f.Close() })

	archive := new(testhelpers.MockArchiver)
	archive.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("access denied"))

	_, err := service.NewExportService(archive).Archive(ctx, "rider.xlsx", f)
	assert.EqualError(t, err, "access denied")
	archive.AssertNotCalled(t, "GeneratePresignedURL", mock.Anything, mock.Anything, mock.Anything)
}
