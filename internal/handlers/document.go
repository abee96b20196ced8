// internal/handlers/document.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/greenhydro/subsidy-backend/internal/models"
	"github.com/greenhydro/subsidy-backend/internal/services"
	"github.com/greenhydro/subsidy-backend/internal/utils"
)

type DocumentHandler struct {
	documentService *services.DocumentService
	approvalService *services.ApprovalService
	storageService  *services.StorageService
}

type submitDocumentBody struct {
	ProducerID   string   `json:"producerId" binding:"required"`
	DocumentType string   `json:"documentType" binding:"required"`
	Description  string   `json:"description"`
	RiskScore    *float64 `json:"riskScore"`
}

type updateStatusBody struct {
	Status             string   `json:"status" binding:"required"`
	CertifierID        string   `json:"certifierId" binding:"required"`
	RiskScore          *float64 `json:"riskScore"`
	ReviewedDetailFlag bool     `json:"reviewedDetailFlag"`
	Amount             *int64   `json:"amount"`
	PoolID             *string  `json:"poolId"`
	ExpectedVersion    *int     `json:"expectedVersion"`
}

type setRiskBody struct {
	RiskScore float64 `json:"riskScore" binding:"required"`
}

func NewDocumentHandler(documentService *services.DocumentService, approvalService *services.ApprovalService, storageService *services.StorageService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		approvalService: approvalService,
		storageService:  storageService,
	}
}

// POST /documents
func (h *DocumentHandler) SubmitDocument(c *gin.Context) {
	var body submitDocumentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	producerID, err := uuid.Parse(body.ProducerID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid producer ID", nil)
		return
	}

	document, err := h.documentService.Submit(&services.SubmitDocumentRequest{
		ProducerID:   producerID,
		DocumentType: body.DocumentType,
		Description:  body.Description,
		RiskScore:    body.RiskScore,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"id":       document.ID,
		"document": document,
	})
}

// GET /documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	filter := services.DocumentFilter{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if statusParam := c.Query("status"); statusParam != "" {
		status := models.DocumentStatus(statusParam)
		switch status {
		case models.DocumentStatusPending, models.DocumentStatusApproved, models.DocumentStatusRejected:
			filter.Status = &status
		default:
			utils.BadRequestResponse(c, "Invalid status filter", nil)
			return
		}
	}

	if producerParam := c.Query("producer_id"); producerParam != "" {
		producerID, err := uuid.Parse(producerParam)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid producer ID filter", nil)
			return
		}
		filter.ProducerID = &producerID
	}

	result, err := h.documentService.List(filter)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, result)
}

// GET /documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	document, err := h.documentService.Get(documentID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, document)
}

// PUT /documents/:id/status
func (h *DocumentHandler) UpdateStatus(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	var body updateStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	certifierID, err := uuid.Parse(body.CertifierID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid certifier ID", nil)
		return
	}

	req := &services.DecisionRequest{
		DocumentID:      documentID,
		CertifierID:     certifierID,
		RiskScore:       body.RiskScore,
		ReviewedDetail:  body.ReviewedDetailFlag,
		Amount:          body.Amount,
		ExpectedVersion: body.ExpectedVersion,
	}

	if body.PoolID != nil {
		poolID, err := uuid.Parse(*body.PoolID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid pool ID", nil)
			return
		}
		req.PoolID = &poolID
	}

	var result *services.DecisionResult
	switch models.DocumentStatus(body.Status) {
	case models.DocumentStatusApproved:
		result, err = h.approvalService.Approve(c.Request.Context(), req)
	case models.DocumentStatusRejected:
		result, err = h.approvalService.Reject(c.Request.Context(), req)
	default:
		utils.BadRequestResponse(c, "Status must be approved or rejected", nil)
		return
	}
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /documents/:id/risk
func (h *DocumentHandler) SetRiskScore(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	var body setRiskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	document, err := h.documentService.SetRiskScore(documentID, body.RiskScore)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, document)
}

// POST /documents/:id/upload
func (h *DocumentHandler) UploadFile(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "File is required", nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(file, header, services.UploadOptions{
		Folder:       "documents",
		MaxSize:      25 * 1024 * 1024, // 25 MB
		AllowedTypes: []string{".pdf", ".png", ".jpg", ".jpeg", ".csv", ".xlsx"},
	})
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	document, err := h.documentService.SetStorageKey(documentID, result.Key)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"document": document,
		"upload":   result,
	})
}

// GET /documents/:id/download
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid document ID", nil)
		return
	}

	document, err := h.documentService.Get(documentID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	if document.StorageKey == "" {
		utils.NotFoundResponse(c, "Document file")
		return
	}

	url, err := h.storageService.GeneratePresignedURL(document.StorageKey, 15*time.Minute)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"url": url})
}
