// internal/handlers/certifier.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenhydro/subsidy-backend/internal/services"
	"github.com/greenhydro/subsidy-backend/internal/utils"
)

type CertifierHandler struct {
	certifierService *services.CertifierService
}

type addCertifierBody struct {
	Wallet            string  `json:"wallet" binding:"required"`
	ActingCertifierID *string `json:"actingCertifierId"`
}

type revokeCertifierBody struct {
	ActingCertifierID string `json:"actingCertifierId" binding:"required"`
}

func NewCertifierHandler(certifierService *services.CertifierService) *CertifierHandler {
	return &CertifierHandler{
		certifierService: certifierService,
	}
}

// POST /certifiers
func (h *CertifierHandler) AddCertifier(c *gin.Context) {
	var body addCertifierBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	req := &services.AddCertifierRequest{WalletAddress: body.Wallet}
	if body.ActingCertifierID != nil {
		actingID, err := uuid.Parse(*body.ActingCertifierID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid acting certifier ID", nil)
			return
		}
		req.ActingCertifierID = &actingID
	}

	result, err := h.certifierService.AddCertifier(req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"id":        result.Certifier.ID,
		"certifier": result.Certifier,
		// Shown once; store it somewhere safe.
		"secret": result.Secret,
	})
}

// DELETE /certifiers/:id
func (h *CertifierHandler) RevokeCertifier(c *gin.Context) {
	certifierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid certifier ID", nil)
		return
	}

	var body revokeCertifierBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	actingID, err := uuid.Parse(body.ActingCertifierID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid acting certifier ID", nil)
		return
	}

	certifier, err := h.certifierService.RevokeCertifier(certifierID, actingID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, certifier)
}

// GET /certifiers
func (h *CertifierHandler) ListCertifiers(c *gin.Context) {
	certifiers, err := h.certifierService.ListCertifiers()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"certifiers": certifiers})
}
