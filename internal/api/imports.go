package api

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshkitchen/mealdesk/backend/internal/service"
)

const maxImportSize = 10 << 20

type ImportHandler struct {
	imports *service.ImportService
}

func NewImportHandler(imports *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

func (h *ImportHandler) RegisterRoutes(router *gin.RouterGroup) {
	imports := router.Group("/import", editors)
	{
		imports.POST("/dishes", h.Dishes)
		imports.POST("/customers", h.Customers)
	}
}

func (h *ImportHandler) Dishes(c *gin.Context) {
	h.run(c, h.imports.ImportDishes)
}

func (h *ImportHandler) Customers(c *gin.Context) {
	h.run(c, h.imports.ImportCustomers)
}

func (h *ImportHandler) run(c *gin.Context, fn func(ctx context.Context, r io.Reader) (*service.ImportResult, error)) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an xlsx upload in the \"file\" field is required"})
		return
	}
	if header.Size > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file is larger than 10MB"})
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	result, err := fn(c.Request.Context(), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
