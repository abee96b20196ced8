// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/greenhydro/subsidy-backend/internal/config"
	"github.com/greenhydro/subsidy-backend/internal/services"
	"github.com/greenhydro/subsidy-backend/internal/utils"
)

type AuthHandler struct {
	certifierService *services.CertifierService
	config           *config.Config
}

type tokenBody struct {
	Wallet string `json:"wallet" binding:"required"`
	Secret string `json:"secret" binding:"required"`
}

func NewAuthHandler(certifierService *services.CertifierService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		certifierService: certifierService,
		config:           cfg,
	}
}

// POST /auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var body tokenBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	certifier, err := h.certifierService.AuthenticateByWallet(body.Wallet, body.Secret)
	if err != nil {
		utils.UnauthorizedResponse(c, "Invalid wallet or secret")
		return
	}

	token, err := utils.GenerateJWT(certifier.ID, certifier.WalletAddress, h.config.JWT.TokenTTL)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to issue token")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"token":        token,
		"certifier_id": certifier.ID,
		"expires_in":   h.config.JWT.TokenTTL * 3600,
	})
}
