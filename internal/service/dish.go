package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DishFilter struct {
	Category string
	Active   *bool
	Search   string
}

type DishService struct {
	db *gorm.DB
}

func NewDishService(db *gorm.DB) *DishService {
	return &DishService{db: db}
}

func (s *DishService) Create(ctx context.Context, req *types.DishRequest) (*models.Dish, error) {
	dish := &models.Dish{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Ingredients: cleanList(req.Ingredients),
		Allergens:   cleanList(req.Allergens),
		Calories:    req.Calories,
		Protein:     req.Protein,
		Carbs:       req.Carbs,
		Fats:        req.Fats,
		Price:       req.Price,
		IsActive:    true,
	}
	if req.IsActive != nil {
		dish.IsActive = *req.IsActive
	}
	if err := validateDish(dish); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(dish).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("dish %q: %w", dish.Name, ErrConflict)
		}
		return nil, storeErr("create", "dish", err)
	}
	return dish, nil
}

func (s *DishService) Get(ctx context.Context, id uuid.UUID) (*models.Dish, error) {
	var dish models.Dish
	if err := s.db.WithContext(ctx).First(&dish, "id = ?", id).Error; err != nil {
		return nil, storeErr("load", "dish", err)
	}
	return &dish, nil
}

// Update edits the catalog entry only. Items that already copied the dish
// keep their values.
func (s *DishService) Update(ctx context.Context, id uuid.UUID, req *types.UpdateDishRequest) (*models.Dish, error) {
	dish, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		dish.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		dish.Description = *req.Description
	}
	if req.Category != nil {
		dish.Category = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if req.Ingredients != nil {
		dish.Ingredients = cleanList(req.Ingredients)
	}
	if req.Allergens != nil {
		dish.Allergens = cleanList(req.Allergens)
	}
	if req.Calories != nil {
		dish.Calories = *req.Calories
	}
	if req.Protein != nil {
		dish.Protein = *req.Protein
	}
	if req.Carbs != nil {
		dish.Carbs = *req.Carbs
	}
	if req.Fats != nil {
		dish.Fats = *req.Fats
	}
	if req.Price != nil {
		dish.Price = *req.Price
	}
	if req.IsActive != nil {
		dish.IsActive = *req.IsActive
	}
	if err := validateDish(dish); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(dish).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("dish %q: %w", dish.Name, ErrConflict)
		}
		return nil, storeErr("update", "dish", err)
	}
	return dish, nil
}

func (s *DishService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Dish{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("delete", "dish", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("dish")
	}
	return nil
}

func (s *DishService) List(ctx context.Context, f DishFilter, page types.Page) ([]models.Dish, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Dish{})
	if f.Category != "" {
		query = query.Where("category = ?", strings.ToLower(f.Category))
	}
	if f.Active != nil {
		query = query.Where("is_active = ?", *f.Active)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storeErr("count", "dishes", err)
	}

	var dishes []models.Dish
	if err := query.Scopes(paginate(page)).Order("category, name").Find(&dishes).Error; err != nil {
		return nil, 0, storeErr("list", "dishes", err)
	}
	return dishes, total, nil
}

func validateDish(d *models.Dish) error {
	if d.Name == "" {
		return invalid("name", "is required")
	}
	if !models.ValidDishCategory(d.Category) {
		return invalid("category", "must be one of %s", strings.Join(models.DishCategories, ", "))
	}
	nums := []struct {
		field string
		v     float64
	}{{"calories", d.Calories}, {"protein", d.Protein}, {"carbs", d.Carbs}, {"fats", d.Fats}, {"price", d.Price}}
	for _, n := range nums {
		if n.v < 0 {
			return invalid(n.field, "must not be negative")
		}
	}
	return nil
}

// cleanList trims entries and drops empty ones.
func cleanList(in []string) models.JSONBStringArray {
	out := make(models.JSONBStringArray, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
