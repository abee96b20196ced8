// internal/services/approval_service.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/greenhydro/subsidy-backend/internal/apperrors"
	"github.com/greenhydro/subsidy-backend/internal/config"
	"github.com/greenhydro/subsidy-backend/internal/metrics"
	"github.com/greenhydro/subsidy-backend/internal/models"
	"github.com/greenhydro/subsidy-backend/internal/socket"
)

// ApprovalService is the single authority for the pending -> approved/rejected
// state machine. Approval is all-or-nothing across the authorization check,
// the ledger disbursement, and the document transition: one database
// transaction wraps the mutations, and the bounded external transfer runs
// inside it so a rollback releases the reservation.
type ApprovalService struct {
	db            *gorm.DB
	certifiers    *CertifierService
	documents     *DocumentService
	ledger        *LedgerService
	router        *RiskRouter
	transferor    TokenTransferor
	notifications *NotificationService
	metrics       *metrics.Metrics
	hub           *socket.Hub
	config        *config.Config
}

type DecisionRequest struct {
	DocumentID  uuid.UUID
	CertifierID uuid.UUID
	// RiskScore, when present, is attached before classification (scores may
	// arrive later than the submission).
	RiskScore *float64
	// ReviewedDetail acknowledges that the certifier inspected the expanded
	// metadata; required for high-risk and unscored documents.
	ReviewedDetail bool
	// Amount in token base units; defaults to the configured subsidy amount.
	Amount *int64
	// PoolID defaults to the seeded default pool.
	PoolID *uuid.UUID
	// ExpectedVersion defaults to the version currently on record; callers
	// racing other certifiers should pass the version they last read.
	ExpectedVersion *int
}

type DecisionResult struct {
	Document     *models.Document           `json:"document"`
	Disbursement *models.DisbursementRecord `json:"disbursement,omitempty"`
	// Replayed is true when the call matched a previously committed
	// disbursement and no new transfer was made.
	Replayed bool `json:"replayed,omitempty"`
}

func NewApprovalService(
	db *gorm.DB,
	certifiers *CertifierService,
	documents *DocumentService,
	ledger *LedgerService,
	router *RiskRouter,
	transferor TokenTransferor,
	notifications *NotificationService,
	m *metrics.Metrics,
	hub *socket.Hub,
	cfg *config.Config,
) *ApprovalService {
	return &ApprovalService{
		db:            db,
		certifiers:    certifiers,
		documents:     documents,
		ledger:        ledger,
		router:        router,
		transferor:    transferor,
		notifications: notifications,
		metrics:       m,
		hub:           hub,
		config:        cfg,
	}
}

// Approve runs the full approval path: certifier authorization, detail-review
// enforcement, ledger disbursement, document transition. On any failure the
// document stays pending and no partial mutation is observable.
func (s *ApprovalService) Approve(ctx context.Context, req *DecisionRequest) (*DecisionResult, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveApprovalLatency(time.Since(started)) }()

	certifier, err := s.certifiers.Authorize(req.CertifierID)
	if err != nil {
		return nil, err
	}

	document, err := s.documents.Get(req.DocumentID)
	if err != nil {
		return nil, err
	}

	// Idempotency guard: a retry of the same approve call must return the
	// original result rather than transfer twice. A different certifier
	// hitting an already-decided document falls through to Conflict.
	if replay, err := s.replayCommitted(document, certifier.ID); err != nil || replay != nil {
		return replay, err
	}

	if document.IsTerminal() {
		return nil, apperrors.Newf(apperrors.KindConflict, "document %s is already %s", document.ID, document.Status).
			WithDetail("status", string(document.Status))
	}

	if req.RiskScore != nil {
		document, err = s.documents.SetRiskScore(document.ID, *req.RiskScore)
		if err != nil {
			return nil, err
		}
	}

	level := s.router.Classify(document.RiskScore)
	if s.router.RequiresDetailReview(level) && !req.ReviewedDetail {
		return nil, apperrors.Newf(apperrors.KindReviewRequired, "document %s is %s and requires a detail review before approval", document.ID, level).
			WithDetail("risk_level", string(level))
	}

	pool, err := s.resolvePool(req.PoolID)
	if err != nil {
		return nil, err
	}

	amount := s.config.Subsidy.DefaultAmount
	if req.Amount != nil {
		amount = *req.Amount
	}

	expectedVersion := document.Version
	if req.ExpectedVersion != nil {
		expectedVersion = *req.ExpectedVersion
	}

	producerWallet := ""
	if document.Producer != nil {
		producerWallet = document.Producer.WalletAddress
	}

	transferCtx, cancel := context.WithTimeout(ctx, time.Duration(s.config.Chain.TransferTimeout)*time.Second)
	defer cancel()

	var approved *models.Document
	var record *models.DisbursementRecord
	err = s.db.Transaction(func(tx *gorm.DB) error {
		approved, err = s.documents.transition(tx, document.ID, models.DocumentStatusApproved, certifier.ID, expectedVersion)
		if err != nil {
			return err
		}

		record, err = s.ledger.ReserveAndDisburse(tx, pool.ID, amount, document.ID, certifier.ID, func() (string, error) {
			return s.transferor.Transfer(transferCtx, s.config.Chain.PoolAddress, producerWallet, amount)
		})
		return err
	})
	if err != nil {
		s.handleApprovalFailure(err, document, certifier, pool, amount)
		return nil, err
	}

	s.metrics.RecordDecision(string(models.DocumentStatusApproved), string(level))
	s.metrics.RecordDisbursement(pool.Name, amount)
	s.publishDecision(approved, record)

	logrus.WithFields(logrus.Fields{
		"document_id":  document.ID,
		"certifier_id": certifier.ID,
		"pool":         pool.Name,
		"amount":       amount,
		"tx_hash":      record.TxHash,
	}).Info("Document approved and subsidy disbursed")

	return &DecisionResult{Document: approved, Disbursement: record}, nil
}

// Reject moves a pending document to rejected. No ledger interaction; the
// same authorization and version rules as approval apply.
func (s *ApprovalService) Reject(ctx context.Context, req *DecisionRequest) (*DecisionResult, error) {
	certifier, err := s.certifiers.Authorize(req.CertifierID)
	if err != nil {
		return nil, err
	}

	document, err := s.documents.Get(req.DocumentID)
	if err != nil {
		return nil, err
	}

	if document.IsTerminal() {
		return nil, apperrors.Newf(apperrors.KindConflict, "document %s is already %s", document.ID, document.Status).
			WithDetail("status", string(document.Status))
	}

	expectedVersion := document.Version
	if req.ExpectedVersion != nil {
		expectedVersion = *req.ExpectedVersion
	}

	var rejected *models.Document
	err = s.db.Transaction(func(tx *gorm.DB) error {
		rejected, err = s.documents.transition(tx, document.ID, models.DocumentStatusRejected, certifier.ID, expectedVersion)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordDecision(string(models.DocumentStatusRejected), string(s.router.Classify(document.RiskScore)))
	s.publishDecision(rejected, nil)

	logrus.WithFields(logrus.Fields{
		"document_id":  document.ID,
		"certifier_id": certifier.ID,
	}).Info("Document rejected")

	return &DecisionResult{Document: rejected}, nil
}

// replayCommitted returns the original result when the document already
// carries a committed disbursement made by the same certifier.
func (s *ApprovalService) replayCommitted(document *models.Document, certifierID uuid.UUID) (*DecisionResult, error) {
	record, err := s.ledger.CommittedRecord(s.db, document.ID)
	if err != nil {
		return nil, err
	}
	if record == nil || record.CertifierID != certifierID {
		return nil, nil
	}

	logrus.WithFields(logrus.Fields{
		"document_id": document.ID,
		"record_id":   record.ID,
	}).Info("Approval replayed against existing committed disbursement")

	return &DecisionResult{Document: document, Disbursement: record, Replayed: true}, nil
}

func (s *ApprovalService) resolvePool(poolID *uuid.UUID) (*models.SubsidyPool, error) {
	if poolID != nil {
		return s.ledger.GetPool(*poolID)
	}
	return s.ledger.GetPoolByName(s.config.Subsidy.DefaultPool)
}

func (s *ApprovalService) handleApprovalFailure(err error, document *models.Document, certifier *models.Certifier, pool *models.SubsidyPool, amount int64) {
	kind := apperrors.KindOf(err)
	s.metrics.RecordFailure(string(kind))

	switch kind {
	case apperrors.KindTransferTimeout, apperrors.KindInternal:
		// The reservation was rolled back; keep the failed attempt on record
		// for audit.
		if recErr := s.ledger.RecordFailure(pool.ID, amount, document.ID, certifier.ID, err.Error()); recErr != nil {
			logrus.WithError(recErr).Error("Failed to record disbursement failure")
		}
	case apperrors.KindInsufficientFunds:
		if notifyErr := s.notifications.NotifyInsufficientFunds(pool.Name, amount, pool.Available()); notifyErr != nil {
			logrus.WithError(notifyErr).Error("Failed to notify operator about pool shortfall")
		}
	}

	logrus.WithFields(logrus.Fields{
		"document_id":  document.ID,
		"certifier_id": certifier.ID,
		"kind":         string(kind),
	}).WithError(err).Warn("Approval did not complete; document remains pending")
}

func (s *ApprovalService) publishDecision(document *models.Document, record *models.DisbursementRecord) {
	s.hub.Broadcast(socket.DocumentEvent{
		Type:       "document.decided",
		DocumentID: document.ID.String(),
		Status:     string(document.Status),
		Payload:    document,
	})

	go func() {
		wallet := ""
		if document.ReviewedBy != nil {
			if certifier, err := s.certifiers.Authorize(*document.ReviewedBy); err == nil {
				wallet = certifier.WalletAddress
			}
		}
		if err := s.notifications.NotifyDecision(document, wallet, record); err != nil {
			logrus.WithError(err).Error("Failed to send decision notification")
		}
	}()
}
