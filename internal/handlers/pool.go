// internal/handlers/pool.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenhydro/subsidy-backend/internal/services"
	"github.com/greenhydro/subsidy-backend/internal/utils"
)

type PoolHandler struct {
	ledgerService *services.LedgerService
}

type createPoolBody struct {
	Name string `json:"name" binding:"required"`
}

type depositBody struct {
	Amount int64 `json:"amount" binding:"required"`
}

func NewPoolHandler(ledgerService *services.LedgerService) *PoolHandler {
	return &PoolHandler{
		ledgerService: ledgerService,
	}
}

// POST /pools
func (h *PoolHandler) CreatePool(c *gin.Context) {
	var body createPoolBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	pool, err := h.ledgerService.CreatePool(body.Name)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, pool)
}

// POST /pools/:id/deposit
func (h *PoolHandler) Deposit(c *gin.Context) {
	poolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pool ID", nil)
		return
	}

	var body depositBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	balance, err := h.ledgerService.Deposit(poolID, body.Amount)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, balance)
}

// GET /pools/:id/balance
func (h *PoolHandler) Balance(c *gin.Context) {
	poolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pool ID", nil)
		return
	}

	balance, err := h.ledgerService.Balance(poolID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, balance)
}

// GET /pools/:id/records
func (h *PoolHandler) ListRecords(c *gin.Context) {
	poolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pool ID", nil)
		return
	}

	records, err := h.ledgerService.ListRecords(poolID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"records": records})
}
