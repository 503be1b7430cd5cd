package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricePoint is one sample of a binary market's price history (append-only)
type PricePoint struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	EventID   uint            `gorm:"not null;index" json:"event_id"`
	YesPrice  decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"yes_price"`
	NoPrice   decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"no_price"`
	Volume    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"volume"`
	Timestamp time.Time       `gorm:"index" json:"timestamp"`
}

// TableName specifies the table name for PricePoint model
func (PricePoint) TableName() string {
	return "price_points"
}

// OptionPricePoint is one sample of a single option's price history.
// Every price-affecting operation on a multiple-choice market writes one
// point per option at the same shared timestamp, so a timestamp always
// carries a complete cross-section of the market.
type OptionPricePoint struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	EventID   uint            `gorm:"not null;index" json:"event_id"`
	OptionID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"option_id"`
	Price     decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"price"`
	Volume    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"volume"`
	Timestamp time.Time       `gorm:"index" json:"timestamp"`
}

// TableName specifies the table name for OptionPricePoint model
func (OptionPricePoint) TableName() string {
	return "option_price_points"
}
