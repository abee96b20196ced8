// internal/services/producer_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenhydro/subsidy-backend/internal/apperrors"
	"github.com/greenhydro/subsidy-backend/internal/models"
	"github.com/greenhydro/subsidy-backend/internal/utils"
)

type ProducerService struct {
	db *gorm.DB
}

type RegisterProducerRequest struct {
	Name          string  `json:"name" validate:"required,max=255"`
	WalletAddress string  `json:"wallet" validate:"required,wallet"`
	PlantCapacity float64 `json:"plantCapacity" validate:"required,gt=0"`
}

func NewProducerService(db *gorm.DB) *ProducerService {
	return &ProducerService{db: db}
}

// Register creates a producer. Re-registration with the same wallet replaces
// the registration data; producers are otherwise immutable.
func (s *ProducerService) Register(req *RegisterProducerRequest) (*models.Producer, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidInput, "invalid producer registration", err)
	}

	var existing models.Producer
	err := s.db.Where("wallet_address = ?", req.WalletAddress).First(&existing).Error
	if err == nil {
		existing.Name = req.Name
		existing.PlantCapacity = req.PlantCapacity
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update producer registration: %w", err)
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	producer := &models.Producer{
		Name:          req.Name,
		WalletAddress: req.WalletAddress,
		PlantCapacity: req.PlantCapacity,
	}
	if err := s.db.Create(producer).Error; err != nil {
		return nil, fmt.Errorf("failed to register producer: %w", err)
	}

	return producer, nil
}

func (s *ProducerService) Get(producerID uuid.UUID) (*models.Producer, error) {
	var producer models.Producer
	if err := s.db.First(&producer, "id = ?", producerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "producer %s not found", producerID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &producer, nil
}

func (s *ProducerService) List(params utils.PaginationParams) (utils.PaginationResult, error) {
	query := s.db.Model(&models.Producer{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to count producers: %w", err)
	}

	var producers []models.Producer
	if err := utils.ApplyPagination(query, params).Order("created_at asc").Find(&producers).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to list producers: %w", err)
	}

	return utils.BuildPaginationResult(producers, total, params), nil
}
