package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MealPlanItemService struct {
	db  *gorm.DB
	now       func() time.Time
	summaries SummaryInvalidator
}

func NewMealPlanItemService(db *gorm.DB) *MealPlanItemService {
	return &MealPlanItemService{db: db, now: time.Now}
}

// UseSummaryCache drops cached kitchen summaries whenever an item changes.
func (s *MealPlanItemService) UseSummaryCache(c SummaryInvalidator) *MealPlanItemService {
	s.summaries = c
	return s
}

func (s *MealPlanItemService) List(ctx context.Context, planID uuid.UUID) ([]models.MealPlanItem, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.MealPlan{}).Where("id = ?", planID).Count(&count).Error; err != nil {
		return nil, storeErr("load", "meal plan", err)
	}
	if count == 0 {
		return nil, notFound("meal plan")
	}

	var items []models.MealPlanItem
	if err := s.db.WithContext(ctx).Where("meal_plan_id = ?", planID).Order("date, time_slot").Find(&items).Error; err != nil {
		return nil, storeErr("list", "meal plan items", err)
	}
	return items, nil
}

func (s *MealPlanItemService) Get(ctx context.Context, planID, itemID uuid.UUID) (*models.MealPlanItem, error) {
	var item models.MealPlanItem
	if err := s.db.WithContext(ctx).First(&item, "id = ? AND meal_plan_id = ?", itemID, planID).Error; err != nil {
		return nil, storeErr("load", "meal plan item", err)
	}
	return &item, nil
}

// Create assigns a dish to one (date, slot) cell of the plan.
func (s *MealPlanItemService) Create(ctx context.Context, planID uuid.UUID, in *types.MealPlanItemInput) (*models.MealPlanItem, error) {
	items, err := s.BulkCreate(ctx, planID, []types.MealPlanItemInput{*in})
	if err != nil {
		var fe *FieldError
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, err
	}
	return &items[0], nil
}

// BulkCreate inserts a batch of cells in one transaction. The batch is
// rejected as a whole when any cell is invalid, already taken, or when the
// plan would hold more items than its contracted meals.
func (s *MealPlanItemService) BulkCreate(ctx context.Context, planID uuid.UUID, inputs []types.MealPlanItemInput) ([]models.MealPlanItem, error) {
	if len(inputs) == 0 {
		return nil, invalid("items", "must not be empty")
	}

	var created []models.MealPlanItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := lockPlan(tx, planID)
		if err != nil {
			return err
		}

		var existing []models.MealPlanItem
		if err := tx.Select("id, date, time_slot").Where("meal_plan_id = ?", plan.ID).Find(&existing).Error; err != nil {
			return storeErr("load", "meal plan items", err)
		}
		if len(existing)+len(inputs) > plan.TotalMeals {
			return &CapacityError{Kind: "meals", Limit: plan.TotalMeals}
		}

		taken := make(map[string]bool, len(existing)+len(inputs))
		for _, it := range existing {
			taken[mealplan.Key(it.Date, it.TimeSlot)] = true
		}

		rows := make([]mealplan.Row, 0, len(inputs))
		notes := make(map[string]models.DeliveryNote, len(inputs))
		for i := range inputs {
			row, err := inputRow(plan, &inputs[i])
			if err != nil {
				return fmt.Errorf("items[%d]: %w", i, err)
			}
			if !row.HasDish() {
				return fmt.Errorf("items[%d]: %w", i, invalid("dish_id", "a dish is required"))
			}
			if taken[row.Key()] {
				return fmt.Errorf("a meal is already scheduled for %s at %s: %w",
					row.Date.Format(mealplan.DateLayout), row.TimeSlot, ErrConflict)
			}
			taken[row.Key()] = true
			rows = append(rows, row)
			notes[row.Key()] = inputs[i].Note
		}

		items, err := buildItems(tx, plan, rows, notes)
		if err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("duplicate meal for the same date and time slot: %w", ErrConflict)
			}
			return storeErr("create", "meal plan items", err)
		}
		if _, err := recalculate(tx, plan); err != nil {
			return err
		}
		created = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.summaries)
	return created, nil
}

// Update edits one item. Assigning a catalog dish copies its current fields.
func (s *MealPlanItemService) Update(ctx context.Context, planID, itemID uuid.UUID, req *types.UpdateMealPlanItemRequest) (*models.MealPlanItem, error) {
	var item models.MealPlanItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := lockPlan(tx, planID)
		if err != nil {
			return err
		}
		if err := tx.First(&item, "id = ? AND meal_plan_id = ?", itemID, plan.ID).Error; err != nil {
			return storeErr("load", "meal plan item", err)
		}

		switch {
		case req.DishID != nil:
			var dish models.Dish
			if err := tx.First(&dish, "id = ?", *req.DishID).Error; err != nil {
				return storeErr("load", "dish", err)
			}
			item.ApplyDish(&dish)
		case req.DishName != nil:
			name := strings.TrimSpace(*req.DishName)
			if name == "" {
				return invalid("dish_name", "a dish is required")
			}
			item.DishID = nil
			item.DishName = name
			item.DishDescription = ""
			item.DishCategory = ""
			item.Ingredients = models.JSONBStringArray{}
			item.Allergens = models.JSONBStringArray{}
			item.Calories, item.Protein, item.Carbs, item.Fats, item.Price = 0, 0, 0, 0, 0
		}
		if req.DeliveryTime != nil {
			dt, err := mealplan.NormalizeTime(*req.DeliveryTime)
			if err != nil {
				return invalid("delivery_time", "%q is not a time of day", *req.DeliveryTime)
			}
			item.DeliveryTime = dt
		}
		if req.Note != nil {
			item.Note = *req.Note
		}
		if req.IsSkipped != nil {
			item.IsSkipped = *req.IsSkipped
		}

		if err := tx.Save(&item).Error; err != nil {
			return storeErr("update", "meal plan item", err)
		}
		_, err = recalculate(tx, plan)
		return err
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.summaries)
	return &item, nil
}

func (s *MealPlanItemService) Delete(ctx context.Context, planID, itemID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := lockPlan(tx, planID)
		if err != nil {
			return err
		}
		res := tx.Delete(&models.MealPlanItem{}, "id = ? AND meal_plan_id = ?", itemID, plan.ID)
		if res.Error != nil {
			return storeErr("delete", "meal plan item", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound("meal plan item")
		}
		_, err = recalculate(tx, plan)
		return err
	})
	if err != nil {
		return err
	}
	invalidate(ctx, s.summaries)
	return nil
}

// SetDelivered marks an item delivered or not and returns the plan's fresh
// remaining meals. A missing plan or item fails before anything is written.
func (s *MealPlanItemService) SetDelivered(ctx context.Context, planID, itemID uuid.UUID, delivered bool) (*models.MealPlanItem, int, error) {
	var (
		item      models.MealPlanItem
		remaining int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := lockPlan(tx, planID)
		if err != nil {
			return err
		}
		if err := tx.First(&item, "id = ? AND meal_plan_id = ?", itemID, plan.ID).Error; err != nil {
			return storeErr("load", "meal plan item", err)
		}

		item.IsDelivered = delivered
		if delivered {
			at := s.now().UTC()
			item.DeliveredAt = &at
		} else {
			item.DeliveredAt = nil
		}
		err = tx.Model(&item).Select("is_delivered", "delivered_at").Updates(map[string]interface{}{
			"is_delivered": item.IsDelivered,
			"delivered_at": item.DeliveredAt,
		}).Error
		if err != nil {
			return storeErr("update", "meal plan item", err)
		}

		remaining, err = recalculate(tx, plan)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	invalidate(ctx, s.summaries)
	slog.Debug("delivery toggled", "plan_id", planID, "item_id", itemID, "delivered", delivered, "remaining", remaining)
	return &item, remaining, nil
}
