package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freshkitchen/mealdesk/backend/internal/mealplan"
	"github.com/freshkitchen/mealdesk/backend/internal/service"
)

// KitchenHandler serves the cooking and delivery views and their xlsx
// exports.
type KitchenHandler struct {
	kitchen *service.KitchenService
	exports *service.ExportService
}

func NewKitchenHandler(kitchen *service.KitchenService, exports *service.ExportService) *KitchenHandler {
	return &KitchenHandler{kitchen: kitchen, exports: exports}
}

func (h *KitchenHandler) RegisterRoutes(router *gin.RouterGroup) {
	kitchen := router.Group("/kitchen", kitchenStaff)
	{
		kitchen.GET("/plan", h.Plan)
		kitchen.GET("/summary", h.Summary)
		kitchen.GET("/export/:audience", h.Export)
	}
}

func (h *KitchenHandler) Plan(c *gin.Context) {
	filter, err := kitchenFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	plan, err := h.kitchen.Plan(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *KitchenHandler) Summary(c *gin.Context) {
	filter, err := kitchenFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.kitchen.Summary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// Export streams the chef or rider sheet. With ?archive=true the sheet is
// stored in the archive bucket and a download link is returned instead.
func (h *KitchenHandler) Export(c *gin.Context) {
	audience := c.Param("audience")
	filter, err := kitchenFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := filter.Normalize(mealplan.Day(time.Now())); err != nil {
		respondError(c, err)
		return
	}
	plan, err := h.kitchen.Plan(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	f, err := h.exports.Sheet(audience, plan.Rows)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	name := service.FileName(audience, filter.From, filter.To)
	if archive, _ := strconv.ParseBool(c.Query("archive")); archive {
		url, err := h.exports.Archive(c.Request.Context(), name, f)
		if err != nil {
			if errors.Is(err, service.ErrArchiveDisabled) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": url, "file_name": name})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", service.XLSXContentType)
	c.Status(http.StatusOK)
	if _, err := f.WriteTo(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func kitchenFilter(c *gin.Context) (service.KitchenFilter, error) {
	var f service.KitchenFilter
	var err error
	if f.From, err = dateQuery(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = dateQuery(c, "to"); err != nil {
		return f, err
	}
	includeSkipped, err := boolQuery(c, "include_skipped")
	if err != nil {
		return f, err
	}
	if includeSkipped != nil {
		f.IncludeSkipped = *includeSkipped
	}
	f.TimeFrom = c.Query("time_from")
	f.TimeTo = c.Query("time_to")
	f.Status = c.Query("status")
	f.DeliveryArea = c.Query("area")
	return f, nil
}
