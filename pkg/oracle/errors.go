// Package oracle reads the ETH/USDC reference price from a price-feed
// account. The reader fails closed: a missing, malformed, halted or stale
// feed never yields a price.
package oracle

import "errors"

// Oracle errors
var (
	// ErrInvalidFeed indicates the feed account bytes are malformed.
	ErrInvalidFeed = errors.New("invalid price feed account")

	// ErrStaleFeed indicates the feed is not currently publishing a
	// trustworthy price (halted status or too many slots old).
	ErrStaleFeed = errors.New("stale price feed")

	// ErrInvalidPrice indicates the published price is unusable.
	ErrInvalidPrice = errors.New("invalid price")
)
