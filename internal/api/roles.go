package api

import (
	"github.com/freshkitchen/mealdesk/backend/internal/middleware"
	"github.com/freshkitchen/mealdesk/backend/internal/models"
)

var (
	// editors may change the catalog, plans and payments.
	editors = middleware.RequireRoles(models.RoleAdmin, models.RoleManager)
	// kitchenStaff additionally lets chefs through.
	kitchenStaff = middleware.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleChef)
)
