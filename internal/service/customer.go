package service

import (
	"context"
	"strings"

	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	Search       string
	Status       string
	DeliveryArea string
}

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

func (s *CustomerService) Create(ctx context.Context, req *types.CustomerRequest) (*models.Customer, error) {
	customer := &models.Customer{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      req.Address,
		DeliveryArea: strings.TrimSpace(req.DeliveryArea),
		Status:       req.Status,
		Notes:        req.Notes,
	}
	if customer.Status == "" {
		customer.Status = models.StatusActive
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, storeErr("create", "customer", err)
	}
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, storeErr("load", "customer", err)
	}
	return &customer, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *types.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		customer.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		customer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.DeliveryArea != nil {
		customer.DeliveryArea = strings.TrimSpace(*req.DeliveryArea)
	}
	if req.Status != nil {
		customer.Status = *req.Status
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	if err := validateCustomer(customer); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, storeErr("update", "customer", err)
	}
	return customer, nil
}

// Delete soft-deletes the customer. Their plans and payments are kept.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("delete", "customer", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("customer")
	}
	return nil
}

func (s *CustomerService) List(ctx context.Context, f CustomerFilter, page types.Page) ([]models.Customer, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Customer{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.DeliveryArea != "" {
		query = query.Where("delivery_area = ?", f.DeliveryArea)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storeErr("count", "customers", err)
	}

	var customers []models.Customer
	if err := query.Scopes(paginate(page)).Order("name").Find(&customers).Error; err != nil {
		return nil, 0, storeErr("list", "customers", err)
	}
	return customers, total, nil
}

func validateCustomer(c *models.Customer) error {
	if c.Name == "" {
		return invalid("name", "is required")
	}
	if !models.ValidStatus(c.Status) {
		return invalid("status", "must be active, paused or cancelled")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return invalid("email", "is not a valid address")
	}
	return nil
}

// paginate applies offset and limit for the page.
func paginate(p types.Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Size)
	}
}
