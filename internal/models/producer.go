// internal/models/producer.go
package models

// Producer is a hydrogen plant operator registered to submit certification documents.
type Producer struct {
	BaseModel
	Name          string  `json:"name" gorm:"size:255;not null"`
	WalletAddress string  `json:"wallet_address" gorm:"uniqueIndex;size:64;not null"`
	PlantCapacity float64 `json:"plant_capacity" gorm:"not null"`

	// Relationships
	Documents []Document `json:"documents,omitempty" gorm:"foreignKey:ProducerID"`
}
