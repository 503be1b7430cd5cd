package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Market type constants
const (
	MarketTypeBinary   = "BINARY"
	MarketTypeMultiple = "MULTIPLE"
)

// Event status constants
const (
	EventStatusActive    = "active"
	EventStatusClosed    = "closed"
	EventStatusResolved  = "resolved"
	EventStatusCancelled = "cancelled"
)

// Event represents a prediction market
type Event struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Title           string          `gorm:"size:500;not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	Category        string          `gorm:"size:50;index" json:"category"`
	MarketType      string          `gorm:"size:20;not null;default:BINARY" json:"market_type"` // BINARY, MULTIPLE
	Status          string          `gorm:"size:50;default:active;index" json:"status"`         // active, closed, resolved, cancelled
	EndDate         *time.Time      `json:"end_date,omitempty"`                                 // nil = ongoing
	Resolved        bool            `gorm:"default:false" json:"resolved"`
	Outcome         *bool           `json:"outcome,omitempty"`                                  // BINARY only
	WinningOptionID *uuid.UUID      `gorm:"type:uuid" json:"winning_option_id,omitempty"`       // MULTIPLE only
	YesPrice        decimal.Decimal `gorm:"type:decimal(10,4);default:50" json:"yes_price"`     // BINARY only, 0-100
	TotalVolume     decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"total_volume"`
	CreatedBy       *uint           `gorm:"index" json:"created_by,omitempty"`
	Creator         *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Options         []MarketOption  `gorm:"foreignKey:EventID" json:"options,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

// TableName specifies the table name for Event model
func (Event) TableName() string {
	return "events"
}

// IsBinary reports whether the market uses the binary yes/no pricing model
func (e *Event) IsBinary() bool {
	return e.MarketType == MarketTypeBinary
}
