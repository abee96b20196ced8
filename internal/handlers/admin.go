// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/greenhydro/subsidy-backend/internal/services"
	"github.com/greenhydro/subsidy-backend/internal/utils"
)

type AdminHandler struct {
	documentService *services.DocumentService
}

func NewAdminHandler(documentService *services.DocumentService) *AdminHandler {
	return &AdminHandler{
		documentService: documentService,
	}
}

// GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.documentService.Stats()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}
