package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
	"github.com/xuri/excelize/v2"
)

const (
	AudienceChef  = "chef"
	AudienceRider = "rider"

	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	archiveURLTTL = 24 * time.Hour
)

var (
	chefHeaders = []string{"Date", "Time Slot", "Delivery Time", "Customer", "Dish", "Instructions",
		"Ingredients", "Allergens", "Calories", "Protein", "Carbs", "Fats"}
	riderHeaders = []string{"Date", "Time Slot", "Delivery Time", "Customer", "Phone", "Address",
		"Delivery Area", "Dish", "Instructions"}
)

// Archiver keeps a copy of generated sheets and hands out download links.
type Archiver interface {
	Upload(ctx context.Context, objectKey string, body io.Reader, contentType string) error
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// ErrArchiveDisabled is returned by Archive when no object store is configured.
var ErrArchiveDisabled = errors.New("export archiving is not configured")

type ExportService struct {
	archive Archiver
}

// NewExportService builds the service; archive may be nil.
func NewExportService(archive Archiver) *ExportService {
	return &ExportService{archive: archive}
}

// Sheet renders rows for the audience.
func (s *ExportService) Sheet(audience string, rows []KitchenRow) (*excelize.File, error) {
	switch audience {
	case AudienceChef:
		return s.ChefSheet(rows)
	case AudienceRider:
		return s.RiderSheet(rows)
	default:
		return nil, invalid("audience", "must be chef or rider")
	}
}

// ChefSheet lists what to cook, with the full dish details.
func (s *ExportService) ChefSheet(rows []KitchenRow) (*excelize.File, error) {
	return buildSheet("Kitchen", chefHeaders, rows, func(r KitchenRow) []interface{} {
		return []interface{}{
			r.Date.Format(mealplan.DateLayout),
			mealplan.DisplayTime(r.TimeSlot),
			mealplan.DisplayTime(r.DeliveryTime),
			r.CustomerName,
			r.DishName,
			r.Note.Instructions,
			strings.Join(r.Ingredients, ", "),
			strings.Join(r.Allergens, ", "),
			r.Calories,
			r.Protein,
			r.Carbs,
			r.Fats,
		}
	})
}

// RiderSheet lists where to deliver.
func (s *ExportService) RiderSheet(rows []KitchenRow) (*excelize.File, error) {
	return buildSheet("Deliveries", riderHeaders, rows, func(r KitchenRow) []interface{} {
		address := r.Address
		if r.Note.DeliveryLocation != "" {
			address = r.Note.DeliveryLocation
		}
		return []interface{}{
			r.Date.Format(mealplan.DateLayout),
			mealplan.DisplayTime(r.TimeSlot),
			mealplan.DisplayTime(r.DeliveryTime),
			r.CustomerName,
			r.Phone,
			address,
			r.DeliveryArea,
			r.DishName,
			r.Note.Instructions,
		}
	})
}

// FileName names an export of the given audience and date range.
func FileName(audience string, from, to time.Time) string {
	if from.Equal(to) {
		return fmt.Sprintf("%s_sheet_%s.xlsx", audience, from.Format("20060102"))
	}
	return fmt.Sprintf("%s_sheet_%s_%s.xlsx", audience, from.Format("20060102"), to.Format("20060102"))
}

// Archive uploads the workbook and returns a time-limited download URL.
func (s *ExportService) Archive(ctx context.Context, name string, f *excelize.File) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", fmt.Errorf("failed to render workbook: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s", time.Now().UTC().Format("2006/01/02"), name)
	if err := s.archive.Upload(ctx, key, bytes.NewReader(buf.Bytes()), XLSXContentType); err != nil {
		return "", err
	}
	url, err := s.archive.GeneratePresignedURL(ctx, key, archiveURLTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign archive URL: %w", err)
	}
	return url, nil
}

func buildSheet(sheetName string, headers []string, rows []KitchenRow, values func(KitchenRow) []interface{}) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	if index, err := f.GetSheetIndex(sheetName); err == nil {
		f.SetActiveSheet(index)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, bold)
	}

	for i, r := range rows {
		for j, v := range values(r) {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
