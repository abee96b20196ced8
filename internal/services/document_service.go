// internal/services/document_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenhydro/subsidy-backend/internal/apperrors"
	"github.com/greenhydro/subsidy-backend/internal/models"
	"github.com/greenhydro/subsidy-backend/internal/utils"
)

// DocumentService owns document lifecycle state. Documents enter as pending
// and leave through ApprovalService only; nothing is ever deleted.
type DocumentService struct {
	db     *gorm.DB
	router *RiskRouter
}

type SubmitDocumentRequest struct {
	ProducerID   uuid.UUID `json:"producer_id" validate:"required"`
	DocumentType string    `json:"document_type" validate:"required,max=100"`
	Description  string    `json:"description,omitempty"`
	RiskScore    *float64  `json:"risk_score,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type DocumentFilter struct {
	utils.PaginationParams
	Status     *models.DocumentStatus
	ProducerID *uuid.UUID
}

func NewDocumentService(db *gorm.DB, router *RiskRouter) *DocumentService {
	return &DocumentService{db: db, router: router}
}

func (s *DocumentService) Submit(req *SubmitDocumentRequest) (*models.Document, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidInput, "invalid document submission", err)
	}

	var producer models.Producer
	if err := s.db.First(&producer, "id = ?", req.ProducerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindInvalidInput, "producer %s is not registered", req.ProducerID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	document := &models.Document{
		ProducerID:   req.ProducerID,
		DocumentType: req.DocumentType,
		Description:  req.Description,
		RiskScore:    req.RiskScore,
		Status:       models.DocumentStatusPending,
		Version:      1,
		SubmittedAt:  time.Now(),
	}

	if err := s.db.Create(document).Error; err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	document.Producer = &producer
	return document, nil
}

func (s *DocumentService) Get(documentID uuid.UUID) (*models.Document, error) {
	var document models.Document
	err := s.db.Preload("Producer").Preload("Disbursements").
		First(&document, "id = ?", documentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "document %s not found", documentID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &document, nil
}

// List returns documents in triage order: unscored and high-risk before
// low-risk, oldest first within a tier, so certifiers see the riskiest and
// longest-waiting items at the top of the queue.
func (s *DocumentService) List(filter DocumentFilter) (utils.PaginationResult, error) {
	query := s.db.Model(&models.Document{}).Preload("Producer")

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ProducerID != nil {
		query = query.Where("producer_id = ?", *filter.ProducerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to count documents: %w", err)
	}

	var documents []models.Document
	err := utils.ApplyPagination(query, filter.PaginationParams).
		Order(s.triageOrder()).
		Order("submitted_at asc").
		Find(&documents).Error
	if err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to list documents: %w", err)
	}

	return utils.BuildPaginationResult(documents, total, filter.PaginationParams), nil
}

func (s *DocumentService) triageOrder() string {
	// Threshold comes from configuration, not request input.
	return fmt.Sprintf("CASE WHEN risk_score IS NULL OR risk_score >= %g THEN 0 ELSE 1 END", s.router.Threshold())
}

// SetRiskScore attaches or updates the externally computed score. Allowed
// only while the document is pending; terminal documents are immutable.
func (s *DocumentService) SetRiskScore(documentID uuid.UUID, riskScore float64) (*models.Document, error) {
	if riskScore < 0 || riskScore > 1 {
		return nil, apperrors.Newf(apperrors.KindInvalidInput, "risk score must be within [0,1], got %f", riskScore)
	}

	// The status guard lives in the WHERE clause so a decision landing
	// between a read and the write cannot be overwritten.
	result := s.db.Model(&models.Document{}).
		Where("id = ? AND status = ?", documentID, models.DocumentStatusPending).
		Update("risk_score", riskScore)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to set risk score: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		document, err := s.Get(documentID)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.Newf(apperrors.KindConflict, "document %s is already %s", documentID, document.Status).
			WithDetail("status", string(document.Status))
	}

	return s.Get(documentID)
}

// SetStorageKey records the blob-store path returned by the upload
// collaborator.
func (s *DocumentService) SetStorageKey(documentID uuid.UUID, storageKey string) (*models.Document, error) {
	document, err := s.Get(documentID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(document).Update("storage_key", storageKey).Error; err != nil {
		return nil, fmt.Errorf("failed to record storage key: %w", err)
	}

	document.StorageKey = storageKey
	return document, nil
}

type QueueStats struct {
	Pending  int64 `json:"pending"`
	LowRisk  int64 `json:"low_risk"`
	HighRisk int64 `json:"high_risk"`
	Unscored int64 `json:"unscored"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// Stats feeds the certifier dashboard counters.
func (s *DocumentService) Stats() (*QueueStats, error) {
	stats := &QueueStats{}
	threshold := s.router.Threshold()

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Pending, s.db.Model(&models.Document{}).Where("status = ?", models.DocumentStatusPending)},
		{&stats.LowRisk, s.db.Model(&models.Document{}).Where("status = ? AND risk_score < ?", models.DocumentStatusPending, threshold)},
		{&stats.HighRisk, s.db.Model(&models.Document{}).Where("status = ? AND risk_score >= ?", models.DocumentStatusPending, threshold)},
		{&stats.Unscored, s.db.Model(&models.Document{}).Where("status = ? AND risk_score IS NULL", models.DocumentStatusPending)},
		{&stats.Approved, s.db.Model(&models.Document{}).Where("status = ?", models.DocumentStatusApproved)},
		{&stats.Rejected, s.db.Model(&models.Document{}).Where("status = ?", models.DocumentStatusRejected)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count documents: %w", err)
		}
	}

	return stats, nil
}

// transition moves a pending document to a terminal status, guarded by the
// version the caller last read. The conditional update only matches a pending
// row at the expected version, so a concurrent winner leaves RowsAffected at
// zero and the loser gets Conflict. Runs on the handle it is given so
// ApprovalService can include it in its transaction.
func (s *DocumentService) transition(db *gorm.DB, documentID uuid.UUID, newStatus models.DocumentStatus, certifierID uuid.UUID, expectedVersion int) (*models.Document, error) {
	if newStatus != models.DocumentStatusApproved && newStatus != models.DocumentStatusRejected {
		return nil, apperrors.Newf(apperrors.KindInvalidInput, "cannot transition to %s", newStatus)
	}

	now := time.Now()
	result := db.Model(&models.Document{}).
		Where("id = ? AND status = ? AND version = ?", documentID, models.DocumentStatusPending, expectedVersion).
		Updates(map[string]interface{}{
			"status":      newStatus,
			"version":     expectedVersion + 1,
			"reviewed_by": certifierID,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to transition document: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var current models.Document
		if err := db.First(&current, "id = ?", documentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Newf(apperrors.KindNotFound, "document %s not found", documentID)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return nil, apperrors.Newf(apperrors.KindConflict, "document %s changed since it was read", documentID).
			WithDetail("expected_version", expectedVersion).
			WithDetail("actual_version", current.Version).
			WithDetail("status", string(current.Status))
	}

	var updated models.Document
	if err := db.First(&updated, "id = ?", documentID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &updated, nil
}
