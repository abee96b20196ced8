// internal/models/certifier.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Certifier is an actor authorized to approve or reject documents and to
// trigger disbursements. Revocation is logical only; revoked rows stay in
// place so past decisions remain attributable.
type Certifier struct {
	BaseModel
	WalletAddress string     `json:"wallet_address" gorm:"uniqueIndex;size:64;not null"`
	Active        bool       `json:"active" gorm:"not null;default:true"`
	SecretHash    string     `json:"-" gorm:"size:255"`
	AddedBy       *uuid.UUID `json:"added_by,omitempty" gorm:"type:uuid"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
}

func (c *Certifier) SetSecret(secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.SecretHash = string(hash)
	return nil
}

func (c *Certifier) CheckSecret(secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret))
}
