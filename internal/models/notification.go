package models

import (
	"time"
)

// Notification kinds. Each kind has its own payload struct; the payload is
// stored as JSON alongside the kind tag.
const (
	NotificationBetPlaced       = "bet_placed"
	NotificationMarketResolved  = "market_resolved"
	NotificationMarketCancelled = "market_cancelled"
)

// Notification is a persisted per-user notification. Dispatch is
// best-effort: a failed write is logged and never surfaced to the
// operation that triggered it.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Kind      string    `gorm:"size:50;not null" json:"kind"`
	Payload   string    `gorm:"type:text" json:"payload"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Notification model
func (Notification) TableName() string {
	return "notifications"
}

// BetPlacedPayload is the payload for bet_placed notifications
type BetPlacedPayload struct {
	EventID    uint   `json:"event_id"`
	EventTitle string `json:"event_title"`
	Side       string `json:"side"`
	Amount     string `json:"amount"`
	Price      string `json:"price"`
}

// MarketResolvedPayload is the payload for market_resolved notifications
type MarketResolvedPayload struct {
	EventID    uint   `json:"event_id"`
	EventTitle string `json:"event_title"`
	Won        bool   `json:"won"`
	Winnings   string `json:"winnings,omitempty"`
}

// MarketCancelledPayload is the payload for market_cancelled notifications
type MarketCancelledPayload struct {
	EventID    uint   `json:"event_id"`
	EventTitle string `json:"event_title"`
}
