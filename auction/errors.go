package auction

import "errors"

// Error taxonomy. Every failing operation wraps exactly one of these
// sentinels so callers can classify with errors.Is. No operation leaves a
// partial effect behind on failure.
var (
	// ErrValidation is returned for malformed or out-of-range creation
	// parameters. The caller must correct the parameters and resubmit.
	ErrValidation = errors.New("invalid auction parameters")

	// ErrUnauthorized is returned when the asset is not approved for
	// custody transfer, or when a caller other than the seller attempts
	// a seller-only operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStaleBid is returned when a bid does not strictly exceed the
	// current highest bid, or when an opening bid is non-positive or
	// below the configured reserve. The caller must bid higher.
	ErrStaleBid = errors.New("stale bid")

	// ErrAuctionClosed is returned for bids submitted after the deadline
	// or after a manual end. The auction is final; no retry is possible.
	ErrAuctionClosed = errors.New("auction closed")

	// ErrPrematureEnd is returned when EndAuction is called while the
	// deadline has not been reached and the quick finish is not armed.
	ErrPrematureEnd = errors.New("auction cannot be ended yet")

	// ErrAlreadyEnded is returned when EndAuction or Settle is called
	// more than once, or when Settle is called before the auction ended.
	ErrAlreadyEnded = errors.New("auction already finalized")

	// ErrInsufficientFunds is returned when the escrow deposit fails
	// because the bidder lacks balance or authorization.
	ErrInsufficientFunds = errors.New("insufficient funds for escrow deposit")

	// ErrBidNotFound is returned when a bid index is out of range.
	ErrBidNotFound = errors.New("bid not found")

	// ErrAuctionNotFound is returned by the factory when no auction
	// exists under the requested identifier.
	ErrAuctionNotFound = errors.New("auction not found")
)
