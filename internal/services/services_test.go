// internal/services/services_test.go
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/greenhydro/subsidy-backend/internal/config"
	"github.com/greenhydro/subsidy-backend/internal/models"
	"github.com/greenhydro/subsidy-backend/internal/socket"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// In-memory sqlite gives every connection its own database, so the pool
	// must stay at a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Producer{},
		&models.Certifier{},
		&models.Document{},
		&models.SubsidyPool{},
		&models.DisbursementRecord{},
		&models.AuditLog{},
	))

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Chain: config.ChainConfig{
			Network:         "local",
			PoolAddress:     "0x00000000000000000000000000000000000000aa",
			TransferTimeout: 2,
		},
		Subsidy: config.SubsidyConfig{
			RiskThreshold: 0.5,
			DefaultAmount: 60,
			DefaultPool:   "main",
		},
	}
}

// fakeTransferor stands in for the token contract. It counts calls so tests
// can assert at-most-once transfer semantics, and fails with a preset error
// when one is armed.
type fakeTransferor struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeTransferor) Transfer(ctx context.Context, from, to string, amount int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("0xfaketx%032d", f.calls), nil
}

func (f *fakeTransferor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeTransferor) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// workflow wires the full service graph against a fresh in-memory database.
type workflow struct {
	db         *gorm.DB
	cfg        *config.Config
	transferor *fakeTransferor
	producers  *ProducerService
	certifiers *CertifierService
	documents  *DocumentService
	ledger     *LedgerService
	approvals  *ApprovalService
}

func newWorkflow(t *testing.T) *workflow {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	riskRouter := NewRiskRouter(cfg.Subsidy.RiskThreshold)
	transferor := &fakeTransferor{}

	producers := NewProducerService(db)
	certifiers := NewCertifierService(db)
	documents := NewDocumentService(db, riskRouter)
	ledger := NewLedgerService(db)
	approvals := NewApprovalService(
		db,
		certifiers,
		documents,
		ledger,
		riskRouter,
		transferor,
		NewNotificationService(cfg),
		nil, // metrics are optional
		socket.NewHub(),
		cfg,
	)

	return &workflow{
		db:         db,
		cfg:        cfg,
		transferor: transferor,
		producers:  producers,
		certifiers: certifiers,
		documents:  documents,
		ledger:     ledger,
		approvals:  approvals,
	}
}

func randomWallet() string {
	a := strings.ReplaceAll(uuid.New().String(), "-", "")
	b := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "0x" + a + b[:8]
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func (w *workflow) createProducer(t *testing.T) *models.Producer {
	t.Helper()
	producer, err := w.producers.Register(&RegisterProducerRequest{
		Name:          "Hydrogen Valley Plant",
		WalletAddress: randomWallet(),
		PlantCapacity: 12.5,
	})
	require.NoError(t, err)
	return producer
}

// bootstrapCertifier adds the first certifier without an acting certifier.
func (w *workflow) bootstrapCertifier(t *testing.T) *models.Certifier {
	t.Helper()
	result, err := w.certifiers.AddCertifier(&AddCertifierRequest{WalletAddress: randomWallet()})
	require.NoError(t, err)
	return result.Certifier
}

func (w *workflow) submitDocument(t *testing.T, producerID uuid.UUID, riskScore *float64) *models.Document {
	t.Helper()
	document, err := w.documents.Submit(&SubmitDocumentRequest{
		ProducerID:   producerID,
		DocumentType: "production_report",
		Description:  "Q2 production volumes",
		RiskScore:    riskScore,
	})
	require.NoError(t, err)
	return document
}

func (w *workflow) createPool(t *testing.T, name string, deposit int64) *models.SubsidyPool {
	t.Helper()
	pool, err := w.ledger.CreatePool(name)
	require.NoError(t, err)
	if deposit > 0 {
		_, err = w.ledger.Deposit(pool.ID, deposit)
		require.NoError(t, err)
	}
	return pool
}
