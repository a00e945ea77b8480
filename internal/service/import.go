package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// RowError reports a spreadsheet row that was not imported. Row is the
// 1-based sheet row number.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Errors  []RowError `json:"errors"`
}

type ImportService struct {
	db *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

// ImportDishes upserts dishes by name from the first sheet of an xlsx file.
func (s *ImportService) ImportDishes(ctx context.Context, r io.Reader) (*ImportResult, error) {
	sheet, err := readSheet(r, "name")
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []RowError{}}
	for _, row := range sheet.rows {
		dish := &models.Dish{
			Name:        row.get("name"),
			Description: row.get("description"),
			Category:    strings.ToLower(strings.ReplaceAll(row.get("category"), " ", "_")),
			Ingredients: splitList(row.get("ingredients")),
			Allergens:   splitList(row.get("allergens")),
			IsActive:    true,
		}
		var numErr error
		dish.Calories, numErr = row.float("calories", numErr)
		dish.Protein, numErr = row.float("protein", numErr)
		dish.Carbs, numErr = row.float("carbs", numErr)
		dish.Fats, numErr = row.float("fats", numErr)
		dish.Price, numErr = row.float("price", numErr)
		if numErr != nil {
			result.Errors = append(result.Errors, RowError{Row: row.num, Message: numErr.Error()})
			continue
		}
		if v := strings.ToLower(row.get("active")); v == "no" || v == "false" || v == "0" || v == "inactive" {
			dish.IsActive = false
		}
		if err := validateDish(dish); err != nil {
			result.Errors = append(result.Errors, RowError{Row: row.num, Message: err.Error()})
			continue
		}

		var existing models.Dish
		err := s.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(dish.Name)).First(&existing).Error
		switch {
		case err == nil:
			dish.ID = existing.ID
			dish.CreatedAt = existing.CreatedAt
			if err := s.db.WithContext(ctx).Save(dish).Error; err != nil {
				return nil, storeErr("update", "dish", err)
			}
			result.Updated++
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := s.db.WithContext(ctx).Create(dish).Error; err != nil {
				return nil, storeErr("create", "dish", err)
			}
			result.Created++
		default:
			return nil, storeErr("load", "dish", err)
		}
	}

	slog.Info("dishes imported", "created", result.Created, "updated", result.Updated, "rejected", len(result.Errors))
	return result, nil
}

// ImportCustomers upserts customers by email, or by phone when the row has
// no email.
func (s *ImportService) ImportCustomers(ctx context.Context, r io.Reader) (*ImportResult, error) {
	sheet, err := readSheet(r, "name")
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []RowError{}}
	for _, row := range sheet.rows {
		customer := &models.Customer{
			Name:         row.get("name"),
			Email:        strings.ToLower(row.get("email")),
			Phone:        row.get("phone"),
			Address:      row.get("address"),
			DeliveryArea: row.get("delivery area"),
			Status:       strings.ToLower(row.get("status")),
			Notes:        row.get("notes"),
		}
		if customer.Status == "" {
			customer.Status = models.StatusActive
		}
		if err := validateCustomer(customer); err != nil {
			result.Errors = append(result.Errors, RowError{Row: row.num, Message: err.Error()})
			continue
		}
		if customer.Email == "" && customer.Phone == "" {
			result.Errors = append(result.Errors, RowError{Row: row.num, Message: "email or phone is required"})
			continue
		}

		query := s.db.WithContext(ctx)
		if customer.Email != "" {
			query = query.Where("email = ?", customer.Email)
		} else {
			query = query.Where("phone = ?", customer.Phone)
		}
		var existing models.Customer
		err := query.First(&existing).Error
		switch {
		case err == nil:
			customer.ID = existing.ID
			customer.CreatedAt = existing.CreatedAt
			if err := s.db.WithContext(ctx).Save(customer).Error; err != nil {
				return nil, storeErr("update", "customer", err)
			}
			result.Updated++
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
				return nil, storeErr("create", "customer", err)
			}
			result.Created++
		default:
			return nil, storeErr("load", "customer", err)
		}
	}

	slog.Info("customers imported", "created", result.Created, "updated", result.Updated, "rejected", len(result.Errors))
	return result, nil
}

type sheetRow struct {
	num    int
	values map[string]string
}

func (r sheetRow) get(col string) string {
	return strings.TrimSpace(r.values[col])
}

// float parses a numeric column; blank is 0. The first error is kept.
func (r sheetRow) float(col string, prev error) (float64, error) {
	v := r.get(col)
	if v == "" {
		return 0, prev
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		if prev != nil {
			return 0, prev
		}
		return 0, fmt.Errorf("%s: %q is not a number", col, v)
	}
	return f, prev
}

type parsedSheet struct {
	rows []sheetRow
}

// readSheet reads the first sheet. The first row is the header; header names
// are matched case-insensitively.
func readSheet(r io.Reader, required ...string) (*parsedSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, invalid("file", "is not a readable xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, invalid("file", "has no sheets")
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, invalid("file", "could not read sheet %q", sheets[0])
	}
	if len(raw) == 0 {
		return nil, invalid("file", "is empty")
	}

	header := make([]string, len(raw[0]))
	present := make(map[string]bool)
	for i, h := range raw[0] {
		header[i] = strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(h, "_", " ")), " "))
		present[header[i]] = true
	}
	for _, col := range required {
		if !present[col] {
			return nil, invalid("file", "missing %q column", col)
		}
	}

	out := &parsedSheet{}
	for i, cells := range raw[1:] {
		values := make(map[string]string, len(header))
		blank := true
		for j, v := range cells {
			if j < len(header) && header[j] != "" {
				values[header[j]] = v
				if strings.TrimSpace(v) != "" {
					blank = false
				}
			}
		}
		if blank {
			continue
		}
		out.rows = append(out.rows, sheetRow{num: i + 2, values: values})
	}
	return out, nil
}

func splitList(v string) models.JSONBStringArray {
	return cleanList(strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' }))
}
