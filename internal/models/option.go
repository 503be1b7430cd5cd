package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MarketOption represents a single outcome of a multiple-choice market.
// For a given event the option prices sum to 100 after every mutating
// operation (bet placement, option addition).
type MarketOption struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	EventID     uint            `gorm:"not null;index" json:"event_id"`
	Title       string          `gorm:"size:500;not null" json:"title"`
	Price       decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"price"` // 0-100
	TotalVolume decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"total_volume"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for MarketOption model
func (MarketOption) TableName() string {
	return "market_options"
}

// BeforeCreate assigns the option ID
func (o *MarketOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
