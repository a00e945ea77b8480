package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlanTemplateService struct {
	db    *gorm.DB
	rules mealplan.TypeRules
}

func NewPlanTemplateService(db *gorm.DB, rules mealplan.TypeRules) *PlanTemplateService {
	return &PlanTemplateService{db: db, rules: rules}
}

func (s *PlanTemplateService) Create(ctx context.Context, req *types.PlanTemplateRequest) (*models.PlanTemplate, error) {
	tpl := &models.PlanTemplate{
		Name:        strings.TrimSpace(req.Name),
		PlanType:    req.PlanType,
		Days:        req.Days,
		MealsPerDay: req.MealsPerDay,
		Price:       req.Price,
		Description: req.Description,
	}
	if tpl.PlanType == "" {
		tpl.PlanType = mealplan.InferPlanType(tpl.Days, s.rules)
	}
	if err := validateTemplate(tpl); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(tpl).Error; err != nil {
		return nil, storeErr("create", "plan template", err)
	}
	return tpl, nil
}

func (s *PlanTemplateService) Get(ctx context.Context, id uuid.UUID) (*models.PlanTemplate, error) {
	var tpl models.PlanTemplate
	if err := s.db.WithContext(ctx).First(&tpl, "id = ?", id).Error; err != nil {
		return nil, storeErr("load", "plan template", err)
	}
	return &tpl, nil
}

func (s *PlanTemplateService) List(ctx context.Context, page types.Page) ([]models.PlanTemplate, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.PlanTemplate{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storeErr("count", "plan templates", err)
	}
	var tpls []models.PlanTemplate
	if err := query.Scopes(paginate(page)).Order("days, meals_per_day, name").Find(&tpls).Error; err != nil {
		return nil, 0, storeErr("list", "plan templates", err)
	}
	return tpls, total, nil
}

// Update edits a template that no meal plan uses yet.
func (s *PlanTemplateService) Update(ctx context.Context, id uuid.UUID, req *types.UpdatePlanTemplateRequest) (*models.PlanTemplate, error) {
	tpl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnreferenced(ctx, id); err != nil {
		return nil, err
	}

	if req.Name != nil {
		tpl.Name = strings.TrimSpace(*req.Name)
	}
	if req.Days != nil {
		tpl.Days = *req.Days
	}
	if req.MealsPerDay != nil {
		tpl.MealsPerDay = *req.MealsPerDay
	}
	if req.PlanType != nil {
		tpl.PlanType = *req.PlanType
	} else if req.Days != nil {
		tpl.PlanType = mealplan.InferPlanType(tpl.Days, s.rules)
	}
	if req.Price != nil {
		tpl.Price = *req.Price
	}
	if req.Description != nil {
		tpl.Description = *req.Description
	}
	if err := validateTemplate(tpl); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(tpl).Error; err != nil {
		return nil, storeErr("update", "plan template", err)
	}
	return tpl, nil
}

func (s *PlanTemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.ensureUnreferenced(ctx, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.PlanTemplate{}, "id = ?", id).Error; err != nil {
		return storeErr("delete", "plan template", err)
	}
	return nil
}

func (s *PlanTemplateService) ensureUnreferenced(ctx context.Context, id uuid.UUID) error {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&models.MealPlan{}).Where("plan_template_id = ?", id).Count(&count).Error
	if err != nil {
		return storeErr("check", "plan template usage", err)
	}
	if count > 0 {
		return fmt.Errorf("plan template is used by %d meal plans: %w", count, ErrConflict)
	}
	return nil
}

func validateTemplate(t *models.PlanTemplate) error {
	if t.Name == "" {
		return invalid("name", "is required")
	}
	if t.Days < 1 {
		return invalid("days", "must be at least 1")
	}
	if t.MealsPerDay < 1 || t.MealsPerDay > mealplan.MaxMealsPerDay {
		return invalid("meals_per_day", "must be between 1 and %d", mealplan.MaxMealsPerDay)
	}
	if !mealplan.ValidPlanType(t.PlanType) {
		return invalid("plan_type", "must be weekly, monthly or custom")
	}
	if t.Price < 0 {
		return invalid("price", "must not be negative")
	}
	return nil
}
