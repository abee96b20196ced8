// internal/models/subsidy_pool.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// SubsidyPool is a shared balance of subsidy tokens. Amounts are integer token
// base units (18-decimal wei style), never floats. Both counters are
// monotonically non-decreasing and TokenDisbursed <= TokenDeposited must hold
// at all times.
type SubsidyPool struct {
	BaseModel
	Name           string `json:"name" gorm:"size:100;uniqueIndex"`
	TokenDeposited int64  `json:"token_deposited" gorm:"not null;default:0"`
	TokenDisbursed int64  `json:"token_disbursed" gorm:"not null;default:0"`

	// Relationships
	Disbursements []DisbursementRecord `json:"disbursements,omitempty" gorm:"foreignKey:PoolID"`
}

func (p *SubsidyPool) Available() int64 {
	return p.TokenDeposited - p.TokenDisbursed
}

// DisbursementRecord is an append-only ledger entry. The committed amounts for
// a pool sum to its TokenDisbursed, and a document has at most one committed
// record.
type DisbursementRecord struct {
	BaseModel
	DocumentID  uuid.UUID           `json:"document_id" gorm:"type:uuid;not null;index"`
	PoolID      uuid.UUID           `json:"pool_id" gorm:"type:uuid;not null;index"`
	CertifierID uuid.UUID           `json:"certifier_id" gorm:"type:uuid;not null"`
	Amount      int64               `json:"amount" gorm:"not null"`
	Outcome     DisbursementOutcome `json:"outcome" gorm:"type:varchar(20);not null"`
	TxHash      string              `json:"tx_hash,omitempty" gorm:"size:128"`
	FailReason  string              `json:"fail_reason,omitempty" gorm:"size:255"`
	Timestamp   time.Time           `json:"timestamp" gorm:"not null"`
}
