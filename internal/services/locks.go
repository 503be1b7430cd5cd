package services

import "sync"

// MarketLock serializes trading and settlement. Bet placement, resolution
// and cancellation all read-then-write the same market rows, so they must
// contend on one lock: with separate locks a bet could validate against a
// snapshot taken before resolution froze the market and still commit,
// leaving an ACTIVE bet on a resolved market.
type MarketLock struct {
	mu sync.Mutex
}

// NewMarketLock creates the lock shared by the bet and resolution services
func NewMarketLock() *MarketLock {
	return &MarketLock{}
}

func (l *MarketLock) Lock()   { l.mu.Lock() }
func (l *MarketLock) Unlock() { l.mu.Unlock() }
