package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshkitchen/mealdesk/backend/internal/service"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
)

type DishHandler struct {
	dishes *service.DishService
}

func NewDishHandler(dishes *service.DishService) *DishHandler {
	return &DishHandler{dishes: dishes}
}

func (h *DishHandler) RegisterRoutes(router *gin.RouterGroup) {
	dishes := router.Group("/dishes")
	{
		dishes.GET("", h.List)
		dishes.GET("/:id", h.Get)
		dishes.POST("", editors, h.Create)
		dishes.PUT("/:id", editors, h.Update)
		dishes.DELETE("/:id", editors, h.Delete)
	}
}

func (h *DishHandler) List(c *gin.Context) {
	active, err := boolQuery(c, "active")
	if err != nil {
		respondError(c, err)
		return
	}
	page := pageFromQuery(c)
	filter := service.DishFilter{
		Category: c.Query("category"),
		Active:   active,
		Search:   c.Query("search"),
	}
	dishes, total, err := h.dishes.List(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewPaginatedResponse(dishes, total, page))
}

func (h *DishHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	dish, err := h.dishes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (h *DishHandler) Create(c *gin.Context) {
	var req types.DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	dish, err := h.dishes.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dish)
}

func (h *DishHandler) Update(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req types.UpdateDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	dish, err := h.dishes.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (h *DishHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.dishes.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
