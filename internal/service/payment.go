package service

import (
	"context"
	"strings"
	"time"

	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentFilter struct {
	CustomerID *uuid.UUID
	MealPlanID *uuid.UUID
	Status     string
	From       *time.Time
	To         *time.Time
}

type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

func (s *PaymentService) Create(ctx context.Context, req *types.PaymentRequest) (*models.Payment, error) {
	payment := &models.Payment{
		Amount:         req.Amount,
		Method:         strings.TrimSpace(req.Method),
		Status:         req.Status,
		Reference:      strings.TrimSpace(req.Reference),
		Notes:          req.Notes,
		CustomerID:     req.CustomerID,
		MealPlanID:     req.MealPlanID,
		PlanTemplateID: req.PlanTemplateID,
		PaidAt:         time.Now().UTC(),
	}
	if payment.Status == "" {
		payment.Status = models.PaymentPending
	}
	if req.PaidAt != "" {
		paidAt, err := parseDate("paid_at", req.PaidAt)
		if err != nil {
			return nil, err
		}
		payment.PaidAt = paidAt
	}
	if err := validatePayment(payment); err != nil {
		return nil, err
	}
	if err := s.checkLinks(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, storeErr("create", "payment", err)
	}
	return payment, nil
}

func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).Preload("Customer").First(&payment, "id = ?", id).Error; err != nil {
		return nil, storeErr("load", "payment", err)
	}
	return &payment, nil
}

func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, req *types.UpdatePaymentRequest) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, storeErr("load", "payment", err)
	}

	if req.Amount != nil {
		payment.Amount = *req.Amount
	}
	if req.Method != nil {
		payment.Method = strings.TrimSpace(*req.Method)
	}
	if req.Status != nil {
		payment.Status = *req.Status
	}
	if req.PaidAt != nil {
		paidAt, err := parseDate("paid_at", *req.PaidAt)
		if err != nil {
			return nil, err
		}
		payment.PaidAt = paidAt
	}
	if req.Reference != nil {
		payment.Reference = strings.TrimSpace(*req.Reference)
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}
	if err := validatePayment(&payment); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(&payment).Error; err != nil {
		return nil, storeErr("update", "payment", err)
	}
	return &payment, nil
}

func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Payment{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("delete", "payment", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("payment")
	}
	return nil
}

func (s *PaymentService) List(ctx context.Context, f PaymentFilter, page types.Page) ([]models.Payment, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Payment{})
	if f.CustomerID != nil {
		query = query.Where("customer_id = ?", *f.CustomerID)
	}
	if f.MealPlanID != nil {
		query = query.Where("meal_plan_id = ?", *f.MealPlanID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.From != nil {
		query = query.Where("paid_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("paid_at < ?", f.To.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storeErr("count", "payments", err)
	}
	var payments []models.Payment
	if err := query.Preload("Customer").Scopes(paginate(page)).Order("paid_at DESC").Find(&payments).Error; err != nil {
		return nil, 0, storeErr("list", "payments", err)
	}
	return payments, total, nil
}

// checkLinks makes sure every referenced customer, plan and template exists.
func (s *PaymentService) checkLinks(ctx context.Context, p *models.Payment) error {
	links := []struct {
		id    *uuid.UUID
		model interface{}
		what  string
	}{
		{p.CustomerID, &models.Customer{}, "customer"},
		{p.MealPlanID, &models.MealPlan{}, "meal plan"},
		{p.PlanTemplateID, &models.PlanTemplate{}, "plan template"},
	}
	for _, l := range links {
		if l.id == nil {
			continue
		}
		var count int64
		if err := s.db.WithContext(ctx).Model(l.model).Where("id = ?", *l.id).Count(&count).Error; err != nil {
			return storeErr("check", l.what, err)
		}
		if count == 0 {
			return notFound(l.what)
		}
	}
	return nil
}

func validatePayment(p *models.Payment) error {
	if p.Amount <= 0 {
		return invalid("amount", "must be greater than 0")
	}
	if p.Method == "" {
		return invalid("method", "is required")
	}
	if !models.ValidPaymentStatus(p.Status) {
		return invalid("status", "must be pending, completed or failed")
	}
	return nil
}
