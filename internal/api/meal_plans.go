package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freshkitchen/mealdesk/backend/internal/service"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
)

// MealPlanHandler serves meal plans, their items and the planner helpers
// (preview, extra weeks, skips, delivery toggles).
type MealPlanHandler struct {
	plans *service.MealPlanService
	items *service.MealPlanItemService
}

func NewMealPlanHandler(plans *service.MealPlanService, items *service.MealPlanItemService) *MealPlanHandler {
	return &MealPlanHandler{plans: plans, items: items}
}

func (h *MealPlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	plans := router.Group("/meal-plans")
	{
		plans.GET("", h.List)
		plans.GET("/:id", h.Get)
		plans.GET("/:id/preview", h.Preview)
		plans.POST("", editors, h.Create)
		plans.PUT("/:id", editors, h.Update)
		plans.DELETE("/:id", editors, h.Delete)
		plans.POST("/:id/weeks", editors, h.AddWeek)
		plans.POST("/:id/skip-day", editors, h.SkipDay)
		plans.POST("/:id/skip-week", editors, h.SkipWeek)
		plans.POST("/:id/recalculate", editors, h.Recalculate)

		plans.GET("/:id/items", h.ListItems)
		plans.GET("/:id/items/:itemId", h.GetItem)
		plans.POST("/:id/items", editors, h.CreateItem)
		plans.POST("/:id/items/bulk", editors, h.BulkCreateItems)
		plans.PUT("/:id/items/:itemId", editors, h.UpdateItem)
		plans.DELETE("/:id/items/:itemId", editors, h.DeleteItem)
		plans.POST("/:id/items/:itemId/delivered", kitchenStaff, h.MarkDelivered)
		plans.DELETE("/:id/items/:itemId/delivered", kitchenStaff, h.UnmarkDelivered)
	}
}

func (h *MealPlanHandler) List(c *gin.Context) {
	customerID, err := uuidQuery(c, "customer_id")
	if err != nil {
		respondError(c, err)
		return
	}
	filter := service.MealPlanFilter{
		CustomerID: customerID,
		Status:     c.Query("status"),
		PlanType:   c.Query("plan_type"),
	}
	page := pageFromQuery(c)
	plans, total, err := h.plans.List(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewPaginatedResponse(plans, total, page))
}

func (h *MealPlanHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	plan, err := h.plans.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanHandler) Create(c *gin.Context) {
	var req types.CreateMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.plans.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *MealPlanHandler) Update(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req types.UpdateMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.plans.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.plans.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Preview returns persisted items merged with empty cells for ?weeks=1,2.
func (h *MealPlanHandler) Preview(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	weeks, err := weeksQuery(c, "weeks")
	if err != nil {
		respondError(c, err)
		return
	}
	draft, err := h.plans.Preview(c.Request.Context(), id, weeks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *MealPlanHandler) AddWeek(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req types.AddWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	draft, err := h.plans.AddWeek(c.Request.Context(), id, req.VisibleWeeks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *MealPlanHandler) SkipDay(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req types.SkipDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.plans.SkipDay(c.Request.Context(), id, req.Date, skipFlag(req.Skipped))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanHandler) SkipWeek(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req types.SkipWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.plans.SkipWeek(c.Request.Context(), id, req.Week, skipFlag(req.Skipped))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *MealPlanHandler) Recalculate(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	remaining, err := h.plans.RecalculateRemaining(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining_meals": remaining})
}

func (h *MealPlanHandler) ListItems(c *gin.Context) {
	planID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.items.List(c.Request.Context(), planID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *MealPlanHandler) GetItem(c *gin.Context) {
	planID, itemID, ok := itemParams(c)
	if !ok {
		return
	}
	item, err := h.items.Get(c.Request.Context(), planID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *MealPlanHandler) CreateItem(c *gin.Context) {
	planID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req types.MealPlanItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.items.Create(c.Request.Context(), planID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// BulkCreateItems stores all submitted cells or none of them.
func (h *MealPlanHandler) BulkCreateItems(c *gin.Context) {
	planID, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req struct {
		Items []types.MealPlanItemInput `json:"items" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	items, err := h.items.BulkCreate(c.Request.Context(), planID, req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": items})
}

func (h *MealPlanHandler) UpdateItem(c *gin.Context) {
	planID, itemID, ok := itemParams(c)
	if !ok {
		return
	}
	var req types.UpdateMealPlanItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.items.Update(c.Request.Context(), planID, itemID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *MealPlanHandler) DeleteItem(c *gin.Context) {
	planID, itemID, ok := itemParams(c)
	if !ok {
		return
	}
	if err := h.items.Delete(c.Request.Context(), planID, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MealPlanHandler) MarkDelivered(c *gin.Context) {
	h.setDelivered(c, true)
}

func (h *MealPlanHandler) UnmarkDelivered(c *gin.Context) {
	h.setDelivered(c, false)
}

func (h *MealPlanHandler) setDelivered(c *gin.Context, delivered bool) {
	planID, itemID, ok := itemParams(c)
	if !ok {
		return
	}
	item, remaining, err := h.items.SetDelivered(c.Request.Context(), planID, itemID, delivered)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item, "remaining_meals": remaining})
}

func itemParams(c *gin.Context) (planID, itemID uuid.UUID, ok bool) {
	p, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return planID, itemID, false
	}
	i, err := uuidParam(c, "itemId")
	if err != nil {
		respondError(c, err)
		return planID, itemID, false
	}
	return p, i, true
}

// skipFlag treats a missing "skipped" field as a request to skip.
func skipFlag(v *bool) bool {
	return v == nil || *v
}
