package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bet side constants
const (
	BetSideYes = "YES"
	BetSideNo  = "NO"
)

// Bet type constants (request-level; a placed bet encodes the type in the
// sign of Shares)
const (
	BetTypeBuy  = "BUY"
	BetTypeSell = "SELL"
)

// Bet status constants
const (
	BetStatusActive   = "ACTIVE"
	BetStatusWon      = "WON"
	BetStatusLost     = "LOST"
	BetStatusRefunded = "REFUNDED"
)

// Bet represents a single trade against a market pool.
//
// Amount is the stake for a BUY and the payout received for a SELL.
// Shares stores signed position value: positive for BUY, negative for SELL,
// so summing Shares over a user's active bets on one side yields their net
// position value without special-casing sells.
type Bet struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	EventID   uint            `gorm:"not null;index" json:"event_id"`
	OptionID  *uuid.UUID      `gorm:"type:uuid;index" json:"option_id,omitempty"` // nil = binary market bet
	Side      string          `gorm:"size:10;not null" json:"side"`               // YES, NO
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Price     decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"price"` // execution price, 0-100
	Shares    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"shares"`
	Status    string          `gorm:"size:20;default:ACTIVE;index" json:"status"` // ACTIVE, WON, LOST, REFUNDED
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name for Bet model
func (Bet) TableName() string {
	return "bets"
}

// BeforeCreate assigns the bet ID
func (b *Bet) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// AmountString decodes a monetary amount from either a JSON number or a
// numeric string, keeping the raw digits for exact decimal parsing.
type AmountString string

// UnmarshalJSON implements json.Unmarshaler
func (a *AmountString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountString(s)
		return nil
	}
	*a = AmountString(data)
	return nil
}

// PlaceBetRequest represents a trade submission
type PlaceBetRequest struct {
	EventID  uint         `json:"event_id" binding:"required"`
	Side     string       `json:"side" binding:"required,oneof=YES NO"`
	Amount   AmountString `json:"amount" binding:"required"`
	OptionID *string      `json:"option_id,omitempty"`
	Type     string       `json:"type" binding:"required,oneof=BUY SELL"`
}
