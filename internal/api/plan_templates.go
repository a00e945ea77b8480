package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshkitchen/mealdesk/backend/internal/service"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
)

type PlanTemplateHandler struct {
	templates *service.PlanTemplateService
}

func NewPlanTemplateHandler(templates *service.PlanTemplateService) *PlanTemplateHandler {
	return &PlanTemplateHandler{templates: templates}
}

func (h *PlanTemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/plan-templates")
	{
		templates.GET("", h.List)
		templates.GET("/:id", h.Get)
		templates.POST("", editors, h.Create)
		templates.PUT("/:id", editors, h.Update)
		templates.DELETE("/:id", editors, h.Delete)
	}
}

func (h *PlanTemplateHandler) List(c *gin.Context) {
	page := pageFromQuery(c)
	tpls, total, err := h.templates.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewPaginatedResponse(tpls, total, page))
}

func (h *PlanTemplateHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	tpl, err := h.templates.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *PlanTemplateHandler) Create(c *gin.Context) {
	var req types.PlanTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tpl, err := h.templates.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *PlanTemplateHandler) Update(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req types.UpdatePlanTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tpl, err := h.templates.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *PlanTemplateHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.templates.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
