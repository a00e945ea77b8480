package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	KitchenStatusDelivered = "delivered"
	KitchenStatusPending   = "pending"
	KitchenStatusSkipped   = "skipped"

	kitchenCachePrefix = "kitchen:summary"
	kitchenCacheTTL    = 60 * time.Second
)

// KitchenFilter selects the items the kitchen has to cook or deliver.
// Dates are inclusive; times compare against the item's time slot.
type KitchenFilter struct {
	From           time.Time
	To             time.Time
	TimeFrom       string
	TimeTo         string
	Status         string
	DeliveryArea   string
	IncludeSkipped bool
}

// KitchenRow is one scheduled meal with the customer details needed to cook
// and deliver it.
type KitchenRow struct {
	ItemID       uuid.UUID               `json:"item_id"`
	MealPlanID   uuid.UUID               `json:"meal_plan_id"`
	Date         time.Time               `json:"date"`
	TimeSlot     string                  `json:"time_slot"`
	DeliveryTime string                  `json:"delivery_time"`
	CustomerID   uuid.UUID               `json:"customer_id"`
	CustomerName string                  `json:"customer_name"`
	Phone        string                  `json:"phone"`
	Address      string                  `json:"address"`
	DeliveryArea string                  `json:"delivery_area"`
	DishID       *uuid.UUID              `json:"dish_id,omitempty"`
	DishName     string                  `json:"dish_name"`
	DishCategory string                  `json:"dish_category"`
	Ingredients  models.JSONBStringArray `json:"ingredients"`
	Allergens    models.JSONBStringArray `json:"allergens"`
	Calories     float64                 `json:"calories"`
	Protein      float64                 `json:"protein"`
	Carbs        float64                 `json:"carbs"`
	Fats         float64                 `json:"fats"`
	Note         models.DeliveryNote     `json:"note"`
	IsDelivered  bool                    `json:"is_delivered"`
	IsSkipped    bool                    `json:"is_skipped"`
}

// DishSummary aggregates the filtered rows per dish.
type DishSummary struct {
	DishID        *uuid.UUID `json:"dish_id,omitempty"`
	DishName      string     `json:"dish_name"`
	DishCategory  string     `json:"dish_category"`
	Portions      int        `json:"portions"`
	Customers     int        `json:"customers"`
	DeliveryAreas []string   `json:"delivery_areas"`
}

type KitchenPlan struct {
	Rows    []KitchenRow  `json:"rows"`
	Summary []DishSummary `json:"summary"`
}

// SummaryInvalidator drops cached kitchen summaries after items change.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context)
}

type KitchenService struct {
	db    *gorm.DB
	cache redis.Cmdable
}

// NewKitchenService builds the service. rdb may be nil, in which case
// summaries are never cached.
func NewKitchenService(db *gorm.DB, rdb *redis.Client) *KitchenService {
	s := &KitchenService{db: db}
	if rdb != nil {
		s.cache = rdb
	}
	return s
}

// Normalize fills defaults and checks the filter.
func (f *KitchenFilter) Normalize(today time.Time) error {
	if f.From.IsZero() {
		f.From = today
	}
	if f.To.IsZero() {
		f.To = f.From
	}
	f.From, f.To = mealplan.Day(f.From), mealplan.Day(f.To)
	if f.To.Before(f.From) {
		return invalid("to", "must not be before from")
	}
	for _, t := range []*string{&f.TimeFrom, &f.TimeTo} {
		if *t == "" {
			continue
		}
		norm, err := mealplan.NormalizeTime(*t)
		if err != nil {
			return err
		}
		*t = norm
	}
	switch f.Status {
	case "", KitchenStatusDelivered, KitchenStatusPending:
	case KitchenStatusSkipped:
		f.IncludeSkipped = true
	default:
		return invalid("status", "must be delivered, pending or skipped")
	}
	return nil
}

// Plan returns the matching rows and their per-dish aggregation.
func (s *KitchenService) Plan(ctx context.Context, f KitchenFilter) (*KitchenPlan, error) {
	if err := f.Normalize(mealplan.Day(time.Now())); err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, f)
	if err != nil {
		return nil, err
	}
	plan := &KitchenPlan{Rows: rows, Summary: Summarize(rows)}
	s.store(ctx, f, plan.Summary)
	return plan, nil
}

// Summary returns only the per-dish aggregation, served from Redis when a
// fresh copy is cached.
func (s *KitchenService) Summary(ctx context.Context, f KitchenFilter) ([]DishSummary, error) {
	if err := f.Normalize(mealplan.Day(time.Now())); err != nil {
		return nil, err
	}
	if cached, ok := s.load(ctx, f); ok {
		return cached, nil
	}
	rows, err := s.rows(ctx, f)
	if err != nil {
		return nil, err
	}
	summary := Summarize(rows)
	s.store(ctx, f, summary)
	return summary, nil
}

func (s *KitchenService) rows(ctx context.Context, f KitchenFilter) ([]KitchenRow, error) {
	query := s.db.WithContext(ctx).
		Table("meal_plan_items AS i").
		Select(`i.id AS item_id, i.meal_plan_id, i.date, i.time_slot, i.delivery_time,
			c.id AS customer_id, c.name AS customer_name, c.phone, c.delivery_area,
			COALESCE(NULLIF(p.delivery_address, ''), c.address) AS address,
			i.dish_id, i.dish_name, i.dish_category, i.ingredients, i.allergens,
			i.calories, i.protein, i.carbs, i.fats, i.note, i.is_delivered, i.is_skipped`).
		Joins("JOIN meal_plans AS p ON p.id = i.meal_plan_id AND p.deleted_at IS NULL").
		Joins("JOIN customers AS c ON c.id = p.customer_id AND c.deleted_at IS NULL").
		Where("p.status = ?", models.StatusActive).
		Where("i.date >= ? AND i.date <= ?", f.From, f.To)

	if f.TimeFrom != "" {
		query = query.Where("i.time_slot >= ?", f.TimeFrom)
	}
	if f.TimeTo != "" {
		query = query.Where("i.time_slot <= ?", f.TimeTo)
	}
	if f.DeliveryArea != "" {
		query = query.Where("c.delivery_area = ?", f.DeliveryArea)
	}
	switch f.Status {
	case KitchenStatusDelivered:
		query = query.Where("i.is_delivered = ?", true)
	case KitchenStatusPending:
		query = query.Where("i.is_delivered = ?", false)
	case KitchenStatusSkipped:
		query = query.Where("i.is_skipped = ?", true)
	}
	if !f.IncludeSkipped {
		query = query.Where("i.is_skipped = ?", false)
	}

	var rows []KitchenRow
	if err := query.Order("i.date, i.time_slot, c.name").Scan(&rows).Error; err != nil {
		return nil, storeErr("query", "kitchen plan", err)
	}
	for i := range rows {
		rows[i].Date = mealplan.Day(rows[i].Date)
	}
	return rows, nil
}

// Summarize groups rows by dish. Skipped rows are not counted.
func Summarize(rows []KitchenRow) []DishSummary {
	type acc struct {
		summary   DishSummary
		customers map[uuid.UUID]bool
		areas     map[string]bool
	}
	groups := make(map[string]*acc)
	var order []string

	for _, r := range rows {
		if r.IsSkipped {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(r.DishName))
		if r.DishID != nil {
			key = r.DishID.String()
		}
		g, ok := groups[key]
		if !ok {
			g = &acc{
				summary:   DishSummary{DishID: r.DishID, DishName: r.DishName, DishCategory: r.DishCategory},
				customers: make(map[uuid.UUID]bool),
				areas:     make(map[string]bool),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.summary.Portions++
		g.customers[r.CustomerID] = true
		if r.DeliveryArea != "" {
			g.areas[r.DeliveryArea] = true
		}
	}

	out := make([]DishSummary, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.summary.Customers = len(g.customers)
		g.summary.DeliveryAreas = make([]string, 0, len(g.areas))
		for a := range g.areas {
			g.summary.DeliveryAreas = append(g.summary.DeliveryAreas, a)
		}
		sort.Strings(g.summary.DeliveryAreas)
		out = append(out, g.summary)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Portions != out[j].Portions {
			return out[i].Portions > out[j].Portions
		}
		return out[i].DishName < out[j].DishName
	})
	return out
}

func (f KitchenFilter) cacheKey() string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s:%t", kitchenCachePrefix,
		f.From.Format(mealplan.DateLayout), f.To.Format(mealplan.DateLayout),
		f.TimeFrom, f.TimeTo, f.Status, f.DeliveryArea, f.IncludeSkipped)
}

func (s *KitchenService) load(ctx context.Context, f KitchenFilter) ([]DishSummary, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, f.cacheKey()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("kitchen summary cache read failed", "error", err)
		}
		return nil, false
	}
	var summary []DishSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		slog.Warn("kitchen summary cache entry is corrupt", "error", err)
		return nil, false
	}
	return summary, true
}

func (s *KitchenService) store(ctx context.Context, f KitchenFilter, summary []DishSummary) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, f.cacheKey(), data, kitchenCacheTTL).Err(); err != nil {
		slog.Warn("kitchen summary cache write failed", "error", err)
	}
}

// Invalidate removes every cached summary. Failures are logged; the entries
// expire on their own.
func (s *KitchenService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	var keys []string
	iter := s.cache.Scan(ctx, 0, kitchenCachePrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("kitchen summary cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("kitchen summary cache invalidation failed", "error", err)
	}
}

func invalidate(ctx context.Context, c SummaryInvalidator) {
	if c != nil {
		c.Invalidate(ctx)
	}
}
