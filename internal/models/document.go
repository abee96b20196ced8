// internal/models/document.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is a certification request submitted by a producer. Documents are
// never hard-deleted; terminal decisions stay on record for audit.
type Document struct {
	BaseModel
	ProducerID   uuid.UUID      `json:"producer_id" gorm:"type:uuid;not null;index"`
	DocumentType string         `json:"document_type" gorm:"size:100;not null"`
	Description  string         `json:"description" gorm:"type:text"`
	StorageKey   string         `json:"storage_key,omitempty" gorm:"size:512"`
	RiskScore    *float64       `json:"risk_score,omitempty"`
	Status       DocumentStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	// Version backs optimistic concurrency: every status transition increments
	// it, and transitions carry the version the caller last read.
	Version     int        `json:"version" gorm:"not null;default:1"`
	SubmittedAt time.Time  `json:"submitted_at" gorm:"not null"`
	ReviewedBy  *uuid.UUID `json:"reviewed_by,omitempty" gorm:"type:uuid"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	Metadata    JSONB      `json:"metadata,omitempty" gorm:"type:jsonb"`

	// Relationships
	Producer      *Producer            `json:"producer,omitempty" gorm:"foreignKey:ProducerID"`
	Disbursements []DisbursementRecord `json:"disbursements,omitempty" gorm:"foreignKey:DocumentID"`
}

func (d *Document) IsTerminal() bool {
	return d.Status == DocumentStatusApproved || d.Status == DocumentStatusRejected
}
