// internal/handlers/producer.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenhydro/subsidy-backend/internal/services"
	"github.com/greenhydro/subsidy-backend/internal/utils"
)

type ProducerHandler struct {
	producerService *services.ProducerService
}

func NewProducerHandler(producerService *services.ProducerService) *ProducerHandler {
	return &ProducerHandler{
		producerService: producerService,
	}
}

// POST /producers
func (h *ProducerHandler) Register(c *gin.Context) {
	var req services.RegisterProducerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	producer, err := h.producerService.Register(&req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"id":       producer.ID,
		"producer": producer,
	})
}

// GET /producers/:id
func (h *ProducerHandler) GetProducer(c *gin.Context) {
	producerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid producer ID", nil)
		return
	}

	producer, err := h.producerService.Get(producerID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, producer)
}

// GET /producers
func (h *ProducerHandler) ListProducers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.producerService.List(params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, result)
}
