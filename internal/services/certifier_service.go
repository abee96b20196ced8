// internal/services/certifier_service.go
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

// CertifierService maintains the set of wallets allowed to approve documents
// and release funds.
type CertifierService struct {
	db *gorm.DB
}

type AddCertifierRequest struct {
	WalletAddress string `json:"wallet" validate:"required,wallet"`
	// ActingCertifierID may be empty only in bootstrap mode, when no active
	// certifier exists yet.
	ActingCertifierID *uuid.UUID `json:"acting_certifier_id,omitempty"`
}

type AddCertifierResult struct {
	Certifier *models.Certifier `json:"certifier"`
	// Secret is returned exactly once; only its hash is persisted.
	Secret string `json:"secret"`
}

func NewCertifierService(db *gorm.DB) *CertifierService {
	return &CertifierService{db: db}
}

func (s *CertifierService) AddCertifier(req *AddCertifierRequest) (*AddCertifierResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidInput, "invalid certifier request", err)
	}

	if err := s.authorizeActor(req.ActingCertifierID); err != nil {
		return nil, err
	}

	var existing models.Certifier
	if err := s.db.Where("wallet_address = ?", req.WalletAddress).First(&existing).Error; err == nil {
		return nil, apperrors.Newf(apperrors.KindConflict, "certifier with wallet %s already exists", req.WalletAddress).
			WithDetail("certifier_id", existing.ID.String())
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	secret, err := utils.GenerateCertifierSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate certifier secret: %w", err)
	}

	certifier := &models.Certifier{
		WalletAddress: req.WalletAddress,
		Active:        true,
		AddedBy:       req.ActingCertifierID,
	}
	if err := certifier.SetSecret(secret); err != nil {
		return nil, fmt.Errorf("failed to hash certifier secret: %w", err)
	}

	if err := s.db.Create(certifier).Error; err != nil {
		return nil, fmt.Errorf("failed to create certifier: %w", err)
	}

	return &AddCertifierResult{Certifier: certifier, Secret: secret}, nil
}

// RevokeCertifier deactivates a certifier. Revoking an already-inactive
// certifier is a no-op.
func (s *CertifierService) RevokeCertifier(certifierID uuid.UUID, actingCertifierID uuid.UUID) (*models.Certifier, error) {
	if err := s.authorizeActor(&actingCertifierID); err != nil {
		return nil, err
	}

	var certifier models.Certifier
	if err := s.db.First(&certifier, "id = ?", certifierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "certifier %s not found", certifierID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !certifier.Active {
		return &certifier, nil
	}

	now := time.Now()
	certifier.Active = false
	certifier.RevokedAt = &now
	if err := s.db.Save(&certifier).Error; err != nil {
		return nil, fmt.Errorf("failed to revoke certifier: %w", err)
	}

	return &certifier, nil
}

// IsAuthorized reports whether the id belongs to an active certifier.
func (s *CertifierService) IsAuthorized(certifierID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Certifier{}).
		Where("id = ? AND active = ?", certifierID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

// Authorize resolves the id to an active certifier or fails with Unauthorized.
func (s *CertifierService) Authorize(certifierID uuid.UUID) (*models.Certifier, error) {
	var certifier models.Certifier
	if err := s.db.First(&certifier, "id = ?", certifierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindUnauthorized, "certifier %s is not recognized", certifierID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !certifier.Active {
		return nil, apperrors.Newf(apperrors.KindUnauthorized, "certifier %s has been revoked", certifierID)
	}

	return &certifier, nil
}

// AuthenticateByWallet checks wallet + API secret for token issuance.
func (s *CertifierService) AuthenticateByWallet(walletAddress, secret string) (*models.Certifier, error) {
	var certifier models.Certifier
	if err := s.db.Where("wallet_address = ? AND active = ?", walletAddress, true).First(&certifier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindUnauthorized, "unknown or inactive certifier wallet")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if certifier.SecretHash == "" || certifier.CheckSecret(secret) != nil {
		return nil, apperrors.New(apperrors.KindUnauthorized, "invalid certifier secret")
	}

	return &certifier, nil
}

func (s *CertifierService) ListCertifiers() ([]models.Certifier, error) {
	var certifiers []models.Certifier
	if err := s.db.Order("created_at asc").Find(&certifiers).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return certifiers, nil
}

// authorizeActor enforces the add/revoke authorization rule. A nil actor is
// allowed only while no active certifier exists (bootstrap mode).
func (s *CertifierService) authorizeActor(actingCertifierID *uuid.UUID) error {
	if actingCertifierID == nil {
		var activeCount int64
		if err := s.db.Model(&models.Certifier{}).Where("active = ?", true).Count(&activeCount).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if activeCount > 0 {
			return apperrors.New(apperrors.KindUnauthorized, "an acting certifier is required once certifiers exist")
		}
		return nil
	}

	_, err := s.Authorize(*actingCertifierID)
	return err
}
