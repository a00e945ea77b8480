package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultDeliveryType = "delivery"

type MealPlanFilter struct {
	CustomerID *uuid.UUID
	Status     string
	PlanType   string
}

// PlanDraft is the generator's view of a plan for the planner UI: persisted
// items merged with empty cells for the visible weeks.
type PlanDraft struct {
	PlanID       uuid.UUID      `json:"plan_id"`
	VisibleWeeks []int          `json:"visible_weeks"`
	TotalWeeks   int            `json:"total_weeks"`
	TotalMeals   int            `json:"total_meals"`
	Rows         []mealplan.Row `json:"rows"`
}

// WeekDraft holds the cells of a newly added week.
type WeekDraft struct {
	Week      int            `json:"week"`
	Rows      []mealplan.Row `json:"rows"`
	DraftRows int            `json:"draft_rows"`
}

type MealPlanService struct {
	db           *gorm.DB
	rules        mealplan.TypeRules
	defaultSlots []string
	summaries    SummaryInvalidator
}

func NewMealPlanService(db *gorm.DB, rules mealplan.TypeRules, defaultSlots []string) *MealPlanService {
	return &MealPlanService{
		db:           db,
		rules:        rules,
		defaultSlots: defaultSlots,
	}
}

// UseSummaryCache drops cached kitchen summaries whenever a plan changes.
func (s *MealPlanService) UseSummaryCache(c SummaryInvalidator) *MealPlanService {
	s.summaries = c
	return s
}

// Create stores a new plan together with the submitted cells that carry a
// dish. Empty cells are dropped.
func (s *MealPlanService) Create(ctx context.Context, req *types.CreateMealPlanRequest) (*models.MealPlan, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}

	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, "id = ?", req.CustomerID).Error; err != nil {
		return nil, storeErr("load", "customer", err)
	}

	plan := &models.MealPlan{
		CustomerID:      customer.ID,
		PlanTemplateID:  req.PlanTemplateID,
		PlanType:        req.PlanType,
		Days:            req.Days,
		MealsPerDay:     req.MealsPerDay,
		StartDate:       start,
		Status:          models.StatusActive,
		DeliveryType:    strings.TrimSpace(req.DeliveryType),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		Discount:        req.Discount,
		Notes:           req.Notes,
		WeekSkips:       models.JSONBIntArray{},
		SkippedDates:    models.JSONBStringArray{},
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}

	if req.PlanTemplateID != nil {
		var tpl models.PlanTemplate
		if err := s.db.WithContext(ctx).First(&tpl, "id = ?", *req.PlanTemplateID).Error; err != nil {
			return nil, storeErr("load", "plan template", err)
		}
		if plan.Days == 0 {
			plan.Days = tpl.Days
		}
		if plan.MealsPerDay == 0 {
			plan.MealsPerDay = tpl.MealsPerDay
		}
		if plan.PlanType == "" && plan.Days == tpl.Days {
			plan.PlanType = tpl.PlanType
		}
		if req.Price == nil {
			plan.Price = tpl.Price
		}
	}
	if plan.PlanType == "" {
		plan.PlanType = mealplan.InferPlanType(plan.Days, s.rules)
	}
	if !mealplan.ValidPlanType(plan.PlanType) {
		return nil, invalid("plan_type", "must be weekly, monthly or custom")
	}
	if plan.DeliveryType == "" {
		plan.DeliveryType = defaultDeliveryType
	}
	if plan.DeliveryAddress == "" {
		plan.DeliveryAddress = customer.Address
	}

	slots := req.TimeSlots
	if len(slots) == 0 {
		slots = s.defaultSlots
	}
	params := mealplan.Params{
		Start:           start,
		Days:            plan.Days,
		MealsPerDay:     plan.MealsPerDay,
		Slots:           slots,
		DeliveryType:    plan.DeliveryType,
		DeliveryAddress: plan.DeliveryAddress,
		MealsOverride:   req.TotalMeals,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	active, err := params.ActiveSlots()
	if err != nil {
		return nil, err
	}

	plan.TimeSlots = models.JSONBStringArray(active)
	plan.EndDate = mealplan.EndDate(start, plan.Days)
	plan.TotalMeals = params.TotalMeals()
	plan.RemainingMeals = plan.TotalMeals
	if err := applyPricing(plan); err != nil {
		return nil, err
	}

	submitted := make([]mealplan.Row, 0, len(req.Items))
	notes := make(map[string]models.DeliveryNote)
	for i, in := range req.Items {
		row, err := inputRow(plan, &in)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		submitted = append(submitted, row)
		notes[row.Key()] = in.Note
	}
	draft, err := mealplan.Generate(params, mealplan.Weeks(submitted), submitted)
	if err != nil {
		return nil, err
	}
	rows := mealplan.Committable(draft)
	if len(rows) > plan.TotalMeals {
		return nil, &CapacityError{Kind: "meals", Limit: plan.TotalMeals}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := buildItems(tx, plan, rows, notes)
		if err != nil {
			return err
		}
		if err := tx.Create(plan).Error; err != nil {
			return storeErr("create", "meal plan", err)
		}
		for i := range items {
			items[i].MealPlanID = plan.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("duplicate meal for the same date and time slot: %w", ErrConflict)
				}
				return storeErr("create", "meal plan items", err)
			}
		}
		plan.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.summaries)
	plan.Customer = &customer
	slog.Info("meal plan created", "plan_id", plan.ID, "customer_id", customer.ID, "items", len(plan.Items), "total_meals", plan.TotalMeals)
	return plan, nil
}

// Get loads a plan with its customer and items, correcting the stored
// remaining-meals counter when it has drifted.
func (s *MealPlanService) Get(ctx context.Context, id uuid.UUID) (*models.MealPlan, error) {
	var plan models.MealPlan
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("date, time_slot") }).
		First(&plan, "id = ?", id).Error
	if err != nil {
		return nil, storeErr("load", "meal plan", err)
	}

	states := make([]mealplan.ItemState, len(plan.Items))
	for i, it := range plan.Items {
		states[i] = itemState(it)
	}
	if err := s.heal(ctx, &plan, mealplan.Remaining(plan.TotalMeals, states)); err != nil {
		return nil, err
	}
	return &plan, nil
}

// List returns one page of plans and self-heals each plan's counter.
func (s *MealPlanService) List(ctx context.Context, f MealPlanFilter, page types.Page) ([]models.MealPlan, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.MealPlan{})
	if f.CustomerID != nil {
		query = query.Where("customer_id = ?", *f.CustomerID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.PlanType != "" {
		query = query.Where("plan_type = ?", f.PlanType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storeErr("count", "meal plans", err)
	}

	var plans []models.MealPlan
	if err := query.Preload("Customer").Scopes(paginate(page)).Order("start_date DESC, created_at DESC").Find(&plans).Error; err != nil {
		return nil, 0, storeErr("list", "meal plans", err)
	}
	if len(plans) == 0 {
		return plans, total, nil
	}

	ids := make([]uuid.UUID, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	var counts []struct {
		MealPlanID uuid.UUID
		Delivered  int
	}
	err := s.db.WithContext(ctx).Model(&models.MealPlanItem{}).
		Select("meal_plan_id, COUNT(*) AS delivered").
		Where("meal_plan_id IN ? AND is_delivered = ? AND is_skipped = ?", ids, true, false).
		Group("meal_plan_id").
		Scan(&counts).Error
	if err != nil {
		return nil, 0, storeErr("count", "delivered meals", err)
	}
	delivered := make(map[uuid.UUID]int, len(counts))
	for _, c := range counts {
		delivered[c.MealPlanID] = c.Delivered
	}

	for i := range plans {
		if err := s.heal(ctx, &plans[i], mealplan.RemainingAfter(plans[i].TotalMeals, delivered[plans[i].ID])); err != nil {
			return nil, 0, err
		}
	}
	return plans, total, nil
}

// heal repairs a drifted counter. The read that spotted the drift is only a
// hint; the value written is recomputed under the plan lock.
func (s *MealPlanService) heal(ctx context.Context, plan *models.MealPlan, computed int) error {
	if plan.RemainingMeals == computed {
		return nil
	}
	var remaining int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := lockPlan(tx, plan.ID)
		if err != nil {
			return err
		}
		stored := locked.RemainingMeals
		if remaining, err = recalculate(tx, locked); err != nil {
			return err
		}
		if stored != remaining {
			slog.Info("correcting remaining meals", "plan_id", plan.ID, "stored", stored, "computed", remaining)
		}
		return nil
	})
	if err != nil {
		return err
	}
	plan.RemainingMeals = remaining
	return nil
}

// Update edits plan settings and recomputes the derived totals.
func (s *MealPlanService) Update(ctx context.Context, id uuid.UUID, req *types.UpdateMealPlanRequest) (*models.MealPlan, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := lockPlan(tx, id)
		if err != nil {
			return err
		}

		if req.Status != nil {
			if !models.ValidStatus(*req.Status) {
				return invalid("status", "must be active, paused or cancelled")
			}
			plan.Status = *req.Status
		}
		if req.DeliveryType != nil {
			plan.DeliveryType = strings.TrimSpace(*req.DeliveryType)
		}
		if req.DeliveryAddress != nil {
			plan.DeliveryAddress = strings.TrimSpace(*req.DeliveryAddress)
		}
		if req.Notes != nil {
			plan.Notes = *req.Notes
		}
		if req.Price != nil {
			plan.Price = *req.Price
		}
		if req.Discount != nil {
			plan.Discount = *req.Discount
		}

		resized := req.Days != nil || req.MealsPerDay != nil || req.TotalMeals != nil || req.TimeSlots != nil
		if resized {
			if req.Days != nil {
				plan.Days = *req.Days
			}
			if req.MealsPerDay != nil {
				plan.MealsPerDay = *req.MealsPerDay
			}
			slots := []string(plan.TimeSlots)
			if req.TimeSlots != nil {
				slots = req.TimeSlots
			}
			override := req.TotalMeals
			if override == nil && req.Days == nil && req.MealsPerDay == nil {
				override = &plan.TotalMeals
			}
			params := mealplan.Params{
				Start:         plan.StartDate,
				Days:          plan.Days,
				MealsPerDay:   plan.MealsPerDay,
				Slots:         slots,
				MealsOverride: override,
			}
			if err := params.Validate(); err != nil {
				return err
			}
			active, err := params.ActiveSlots()
			if err != nil {
				return err
			}

			var itemCount int64
			if err := tx.Model(&models.MealPlanItem{}).Where("meal_plan_id = ?", plan.ID).Count(&itemCount).Error; err != nil {
				return storeErr("count", "meal plan items", err)
			}
			if int(itemCount) > params.TotalMeals() {
				return &CapacityError{Kind: "meals", Limit: params.TotalMeals()}
			}

			end := mealplan.EndDate(plan.StartDate, plan.Days)
			if err := checkStranded(tx, plan.ID, end, active); err != nil {
				return err
			}

			plan.TimeSlots = models.JSONBStringArray(active)
			plan.TotalMeals = params.TotalMeals()
			plan.EndDate = end
			if req.Days != nil && req.MealsPerDay == nil && req.TotalMeals == nil {
				plan.PlanType = mealplan.InferPlanType(plan.Days, s.rules)
			}
		}
		if err := applyPricing(plan); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(plan).Error; err != nil {
			return storeErr("update", "meal plan", err)
		}
		_, err = recalculate(tx, plan)
		return err
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.summaries)
	return s.Get(ctx, id)
}

// checkStranded rejects a resize that would leave items after the new end
// date or at a slot the plan no longer serves.
func checkStranded(tx *gorm.DB, planID uuid.UUID, end time.Time, slots []string) error {
	var late int64
	err := tx.Model(&models.MealPlanItem{}).
		Where("meal_plan_id = ? AND date >= ?", planID, end).
		Count(&late).Error
	if err != nil {
		return storeErr("count", "meal plan items", err)
	}
	if late > 0 {
		return invalid("days", "%d scheduled meals fall on or after %s", late, end.Format(mealplan.DateLayout))
	}

	var offSlot int64
	err = tx.Model(&models.MealPlanItem{}).
		Where("meal_plan_id = ? AND time_slot NOT IN ?", planID, slots).
		Count(&offSlot).Error
	if err != nil {
		return storeErr("count", "meal plan items", err)
	}
	if offSlot > 0 {
		return invalid("time_slots", "%d scheduled meals use a slot outside %s", offSlot, strings.Join(slots, ", "))
	}
	return nil
}

func (s *MealPlanService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.MealPlan{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("delete", "meal plan", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("meal plan")
	}
	invalidate(ctx, s.summaries)
	return nil
}

// Preview returns the draft of the plan for the visible weeks. Nothing is
// written.
func (s *MealPlanService) Preview(ctx context.Context, id uuid.UUID, visibleWeeks []int) (*PlanDraft, error) {
	plan, existing, err := s.loadRows(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(visibleWeeks) == 0 {
		visibleWeeks = []int{1}
	}
	rows, err := mealplan.Generate(planParams(plan), visibleWeeks, existing)
	if err != nil {
		return nil, err
	}
	return &PlanDraft{
		PlanID:       plan.ID,
		VisibleWeeks: visibleWeeks,
		TotalWeeks:   mealplan.TotalWeeks(plan.Days),
		TotalMeals:   plan.TotalMeals,
		Rows:         rows,
	}, nil
}

// AddWeek extends the draft by the week after the visible ones. Nothing is
// written; the caller commits cells through the item endpoints.
func (s *MealPlanService) AddWeek(ctx context.Context, id uuid.UUID, visibleWeeks []int) (*WeekDraft, error) {
	plan, existing, err := s.loadRows(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(visibleWeeks) == 0 {
		visibleWeeks = []int{1}
	}
	params := planParams(plan)
	draft, err := mealplan.Generate(params, visibleWeeks, existing)
	if err != nil {
		return nil, err
	}
	rows, week, err := mealplan.AddWeek(params, draft, visibleWeeks)
	if err != nil {
		return nil, err
	}
	return &WeekDraft{
		Week:      week,
		Rows:      mealplan.WeekRows(rows, week),
		DraftRows: len(rows),
	}, nil
}

// SkipDay flags every item on date as skipped (or not). Items are never
// removed.
func (s *MealPlanService) SkipDay(ctx context.Context, id uuid.UUID, day string, skipped bool) (*models.MealPlan, error) {
	date, err := parseDate("date", day)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := lockPlan(tx, id)
		if err != nil {
			return err
		}
		if date.Before(plan.StartDate) || !date.Before(plan.EndDate) {
			return invalid("date", "is outside the plan's dates")
		}

		err = tx.Model(&models.MealPlanItem{}).
			Where("meal_plan_id = ? AND date = ?", plan.ID, date).
			Update("is_skipped", skipped).Error
		if err != nil {
			return storeErr("update", "meal plan items", err)
		}

		plan.SkippedDates = toggleString(plan.SkippedDates, date.Format(mealplan.DateLayout), skipped)
		if err := tx.Model(plan).UpdateColumn("skipped_dates", plan.SkippedDates).Error; err != nil {
			return storeErr("update", "meal plan", err)
		}
		_, err = recalculate(tx, plan)
		return err
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.summaries)
	return s.Get(ctx, id)
}

// SkipWeek flags every item of a plan week. Only monthly plans skip by week.
func (s *MealPlanService) SkipWeek(ctx context.Context, id uuid.UUID, week int, skipped bool) (*models.MealPlan, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := lockPlan(tx, id)
		if err != nil {
			return err
		}
		if plan.PlanType != mealplan.TypeMonthly {
			return invalid("plan_type", "week skips are only available on monthly plans")
		}
		if week < 1 || week > mealplan.TotalWeeks(plan.Days) {
			return invalid("week", "must be between 1 and %d", mealplan.TotalWeeks(plan.Days))
		}

		from, to := weekRange(plan, week)
		err = tx.Model(&models.MealPlanItem{}).
			Where("meal_plan_id = ? AND date >= ? AND date < ?", plan.ID, from, to).
			Update("is_skipped", skipped).Error
		if err != nil {
			return storeErr("update", "meal plan items", err)
		}

		plan.WeekSkips = toggleInt(plan.WeekSkips, week, skipped)
		if err := tx.Model(plan).UpdateColumn("week_skips", plan.WeekSkips).Error; err != nil {
			return storeErr("update", "meal plan", err)
		}
		_, err = recalculate(tx, plan)
		return err
	})
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.summaries)
	return s.Get(ctx, id)
}

// RecalculateRemaining recomputes and stores the plan's remaining meals.
func (s *MealPlanService) RecalculateRemaining(ctx context.Context, id uuid.UUID) (int, error) {
	var remaining int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		plan, err := lockPlan(tx, id)
		if err != nil {
			return err
		}
		remaining, err = recalculate(tx, plan)
		return err
	})
	return remaining, err
}

func (s *MealPlanService) loadRows(ctx context.Context, id uuid.UUID) (*models.MealPlan, []mealplan.Row, error) {
	var plan models.MealPlan
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("date, time_slot") }).
		First(&plan, "id = ?", id).Error
	if err != nil {
		return nil, nil, storeErr("load", "meal plan", err)
	}
	rows := make([]mealplan.Row, len(plan.Items))
	for i := range plan.Items {
		rows[i] = itemRow(&plan, &plan.Items[i])
	}
	return &plan, rows, nil
}

// lockPlan loads the plan inside tx, holding a row lock where the dialect
// supports one.
func lockPlan(tx *gorm.DB, id uuid.UUID) (*models.MealPlan, error) {
	query := tx
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var plan models.MealPlan
	if err := query.First(&plan, "id = ?", id).Error; err != nil {
		return nil, storeErr("load", "meal plan", err)
	}
	return &plan, nil
}

// recalculate derives the remaining meals from the plan's items and stores
// the result. It must run inside the transaction that changed the items.
func recalculate(tx *gorm.DB, plan *models.MealPlan) (int, error) {
	var states []mealplan.ItemState
	err := tx.Model(&models.MealPlanItem{}).
		Select("date, is_delivered, is_skipped").
		Where("meal_plan_id = ?", plan.ID).
		Scan(&states).Error
	if err != nil {
		return 0, storeErr("load", "meal plan items", err)
	}

	remaining := mealplan.Remaining(plan.TotalMeals, states)
	if remaining != plan.RemainingMeals {
		if err := tx.Model(&models.MealPlan{}).Where("id = ?", plan.ID).UpdateColumn("remaining_meals", remaining).Error; err != nil {
			return 0, storeErr("update", "remaining meals", err)
		}
		plan.RemainingMeals = remaining
	}
	return remaining, nil
}

func planParams(plan *models.MealPlan) mealplan.Params {
	total := plan.TotalMeals
	return mealplan.Params{
		Start:           plan.StartDate,
		Days:            plan.Days,
		MealsPerDay:     plan.MealsPerDay,
		Slots:           plan.TimeSlots,
		DeliveryType:    plan.DeliveryType,
		DeliveryAddress: plan.DeliveryAddress,
		MealsOverride:   &total,
	}
}

func itemRow(plan *models.MealPlan, it *models.MealPlanItem) mealplan.Row {
	id := it.ID
	address := plan.DeliveryAddress
	if it.Note.DeliveryLocation != "" {
		address = it.Note.DeliveryLocation
	}
	deliveryType := plan.DeliveryType
	if it.Note.DeliveryType != "" {
		deliveryType = it.Note.DeliveryType
	}
	return mealplan.Row{
		ItemID:          &id,
		Date:            mealplan.Day(it.Date),
		TimeSlot:        it.TimeSlot,
		DeliveryTime:    it.DeliveryTime,
		Week:            mealplan.WeekNumber(plan.StartDate, it.Date),
		DeliveryType:    deliveryType,
		DeliveryAddress: address,
		DishID:          it.DishID,
		DishName:        it.DishName,
		IsSkipped:       it.IsSkipped,
	}
}

func itemState(it models.MealPlanItem) mealplan.ItemState {
	return mealplan.ItemState{Date: it.Date, IsDelivered: it.IsDelivered, IsSkipped: it.IsSkipped}
}

// inputRow validates a submitted cell against the plan's dates and slots.
func inputRow(plan *models.MealPlan, in *types.MealPlanItemInput) (mealplan.Row, error) {
	date, err := parseDate("date", in.Date)
	if err != nil {
		return mealplan.Row{}, err
	}
	if date.Before(plan.StartDate) || !date.Before(plan.EndDate) {
		return mealplan.Row{}, invalid("date", "%s is outside the plan's dates", in.Date)
	}
	slot, err := mealplan.NormalizeTime(in.TimeSlot)
	if err != nil {
		return mealplan.Row{}, err
	}
	if !plan.TimeSlots.Contains(slot) {
		return mealplan.Row{}, invalid("time_slot", "%s is not one of the plan's slots", slot)
	}
	deliveryTime := slot
	if strings.TrimSpace(in.DeliveryTime) != "" {
		if deliveryTime, err = mealplan.NormalizeTime(in.DeliveryTime); err != nil {
			return mealplan.Row{}, invalid("delivery_time", "%q is not a time of day", in.DeliveryTime)
		}
	}
	return mealplan.Row{
		Date:         date,
		TimeSlot:     slot,
		DeliveryTime: deliveryTime,
		Week:         mealplan.WeekNumber(plan.StartDate, date),
		DishID:       in.DishID,
		DishName:     strings.TrimSpace(in.DishName),
		IsSkipped:    in.IsSkipped || plan.SkippedDates.Contains(date.Format(mealplan.DateLayout)) || plan.WeekSkips.Contains(mealplan.WeekNumber(plan.StartDate, date)),
	}, nil
}

// buildItems turns committable rows into items, copying dish fields from the
// catalog.
func buildItems(tx *gorm.DB, plan *models.MealPlan, rows []mealplan.Row, notes map[string]models.DeliveryNote) ([]models.MealPlanItem, error) {
	dishes, err := loadDishes(tx, rows)
	if err != nil {
		return nil, err
	}
	items := make([]models.MealPlanItem, 0, len(rows))
	for _, r := range rows {
		item := models.MealPlanItem{
			MealPlanID:   plan.ID,
			Date:         r.Date,
			TimeSlot:     r.TimeSlot,
			DeliveryTime: r.DeliveryTime,
			IsSkipped:    r.IsSkipped,
			Note:         notes[r.Key()],
			Ingredients:  models.JSONBStringArray{},
			Allergens:    models.JSONBStringArray{},
		}
		if r.DishID != nil {
			item.ApplyDish(dishes[*r.DishID])
		} else {
			item.DishName = r.DishName
		}
		items = append(items, item)
	}
	return items, nil
}

func loadDishes(tx *gorm.DB, rows []mealplan.Row) (map[uuid.UUID]*models.Dish, error) {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, r := range rows {
		if r.DishID != nil && !seen[*r.DishID] {
			seen[*r.DishID] = true
			ids = append(ids, *r.DishID)
		}
	}
	out := make(map[uuid.UUID]*models.Dish, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var dishes []models.Dish
	if err := tx.Where("id IN ?", ids).Find(&dishes).Error; err != nil {
		return nil, storeErr("load", "dishes", err)
	}
	for i := range dishes {
		out[dishes[i].ID] = &dishes[i]
	}
	for _, id := range ids {
		if out[id] == nil {
			return nil, fmt.Errorf("dish %s %w", id, ErrNotFound)
		}
	}
	return out, nil
}

func applyPricing(plan *models.MealPlan) error {
	if plan.Price < 0 {
		return invalid("price", "must not be negative")
	}
	if plan.Discount < 0 || plan.Discount > plan.Price {
		return invalid("discount", "must be between 0 and the price")
	}
	plan.TotalAmount = plan.Price - plan.Discount
	return nil
}

// weekRange is the [from, to) date range of a plan week.
func weekRange(plan *models.MealPlan, week int) (time.Time, time.Time) {
	from := mealplan.Day(plan.StartDate).AddDate(0, 0, (week-1)*7)
	to := from.AddDate(0, 0, 7)
	if end := mealplan.Day(plan.EndDate); to.After(end) {
		to = end
	}
	return from, to
}

func toggleString(list models.JSONBStringArray, v string, on bool) models.JSONBStringArray {
	out := models.JSONBStringArray{}
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	if on {
		out = append(out, v)
	}
	return out
}

func toggleInt(list models.JSONBIntArray, v int, on bool) models.JSONBIntArray {
	out := models.JSONBIntArray{}
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	if on {
		out = append(out, v)
	}
	return out
}
