// internal/services/ledger_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenhydro/subsidy-backend/internal/apperrors"
	"github.com/greenhydro/subsidy-backend/internal/models"
)

// LedgerService tracks deposited and disbursed token amounts per pool.
// Conservation invariant: token_disbursed never exceeds token_deposited, and
// token_disbursed always equals the sum of committed record amounts.
type LedgerService struct {
	db *gorm.DB
}

type PoolBalance struct {
	PoolID    uuid.UUID `json:"pool_id"`
	Deposited int64     `json:"deposited"`
	Disbursed int64     `json:"disbursed"`
	Available int64     `json:"available"`
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

func (s *LedgerService) CreatePool(name string) (*models.SubsidyPool, error) {
	if name == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "pool name is required")
	}

	pool := &models.SubsidyPool{Name: name}
	if err := s.db.Create(pool).Error; err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return pool, nil
}

func (s *LedgerService) GetPool(poolID uuid.UUID) (*models.SubsidyPool, error) {
	var pool models.SubsidyPool
	if err := s.db.First(&pool, "id = ?", poolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "pool %s not found", poolID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &pool, nil
}

func (s *LedgerService) GetPoolByName(name string) (*models.SubsidyPool, error) {
	var pool models.SubsidyPool
	if err := s.db.First(&pool, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "pool %q not found", name)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &pool, nil
}

func (s *LedgerService) Deposit(poolID uuid.UUID, amount int64) (*PoolBalance, error) {
	if amount <= 0 {
		return nil, apperrors.Newf(apperrors.KindInvalidInput, "deposit amount must be positive, got %d", amount)
	}

	result := s.db.Model(&models.SubsidyPool{}).
		Where("id = ?", poolID).
		Update("token_deposited", gorm.Expr("token_deposited + ?", amount))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to deposit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.Newf(apperrors.KindNotFound, "pool %s not found", poolID)
	}

	return s.Balance(poolID)
}

func (s *LedgerService) Balance(poolID uuid.UUID) (*PoolBalance, error) {
	pool, err := s.GetPool(poolID)
	if err != nil {
		return nil, err
	}

	return &PoolBalance{
		PoolID:    pool.ID,
		Deposited: pool.TokenDeposited,
		Disbursed: pool.TokenDisbursed,
		Available: pool.Available(),
	}, nil
}

// CommittedRecord returns the committed disbursement for a document, or nil.
// This is the idempotency guard: retries after a timed-out transfer must find
// a prior commit before disbursing again.
func (s *LedgerService) CommittedRecord(db *gorm.DB, documentID uuid.UUID) (*models.DisbursementRecord, error) {
	var record models.DisbursementRecord
	err := db.Where("document_id = ? AND outcome = ?", documentID, models.DisbursementOutcomeCommitted).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &record, nil
}

// ReserveAndDisburse atomically takes amount from the pool and appends the
// committed record, on the caller's transaction handle. Serialization per
// pool is a compare-and-swap on the (deposited, disbursed) pair: the UPDATE
// only matches while enough balance remains, so two concurrent disbursements
// cannot both succeed against the same headroom. The transfer callback runs
// after the reservation and before the record append; if it fails, the
// caller's rollback releases the reservation.
func (s *LedgerService) ReserveAndDisburse(db *gorm.DB, poolID uuid.UUID, amount int64, documentID, certifierID uuid.UUID, transfer func() (string, error)) (*models.DisbursementRecord, error) {
	if amount <= 0 {
		return nil, apperrors.Newf(apperrors.KindInvalidInput, "disbursement amount must be positive, got %d", amount)
	}

	existing, err := s.CommittedRecord(db, documentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Newf(apperrors.KindDuplicateDisbursement, "document %s already has a committed disbursement", documentID).
			WithDetail("record_id", existing.ID.String())
	}

	result := db.Model(&models.SubsidyPool{}).
		Where("id = ? AND token_deposited - token_disbursed >= ?", poolID, amount).
		Update("token_disbursed", gorm.Expr("token_disbursed + ?", amount))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to reserve funds: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var pool models.SubsidyPool
		if err := db.First(&pool, "id = ?", poolID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Newf(apperrors.KindNotFound, "pool %s not found", poolID)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		return nil, apperrors.Newf(apperrors.KindInsufficientFunds, "pool %s has %d available, %d requested", poolID, pool.Available(), amount).
			WithDetail("available", pool.Available()).
			WithDetail("requested", amount)
	}

	txHash, err := transfer()
	if err != nil {
		return nil, err
	}

	record := &models.DisbursementRecord{
		DocumentID:  documentID,
		PoolID:      poolID,
		CertifierID: certifierID,
		Amount:      amount,
		Outcome:     models.DisbursementOutcomeCommitted,
		TxHash:      txHash,
		Timestamp:   time.Now(),
	}
	if err := db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to append disbursement record: %w", err)
	}

	return record, nil
}

// RecordFailure appends a failed entry for audit. Failed entries never touch
// pool balances.
func (s *LedgerService) RecordFailure(poolID uuid.UUID, amount int64, documentID, certifierID uuid.UUID, reason string) error {
	record := &models.DisbursementRecord{
		DocumentID:  documentID,
		PoolID:      poolID,
		CertifierID: certifierID,
		Amount:      amount,
		Outcome:     models.DisbursementOutcomeFailed,
		FailReason:  reason,
		Timestamp:   time.Now(),
	}
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to record disbursement failure: %w", err)
	}
	return nil
}

func (s *LedgerService) ListRecords(poolID uuid.UUID) ([]models.DisbursementRecord, error) {
	var records []models.DisbursementRecord
	if err := s.db.Where("pool_id = ?", poolID).Order("timestamp asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return records, nil
}
