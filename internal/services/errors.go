package services

import "errors"

// Error taxonomy for the trading and settlement services. Handlers map these
// to HTTP status codes with errors.Is; anything not in this list is treated
// as a persistence failure and surfaced as a generic retryable error.
var (
	ErrMarketNotFound       = errors.New("market not found")
	ErrOptionNotFound       = errors.New("option not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrMarketNotActive      = errors.New("market is not active")
	ErrMarketResolved       = errors.New("market is already resolved")
	ErrMarketHasBets        = errors.New("market already has bets")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInsufficientPosition = errors.New("insufficient position")
)
