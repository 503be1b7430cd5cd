package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a user in the system
type User struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Username       string          `gorm:"uniqueIndex;not null" json:"username"`
	Nickname       string          `gorm:"size:100" json:"nickname"`
	PasswordHash   string          `gorm:"not null" json:"-"`
	IsAdmin        bool            `gorm:"default:false" json:"is_admin"`
	VirtualBalance decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"virtual_balance"`
	TotalWinnings  decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"total_winnings"`
	TotalLosses    decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"total_losses"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
