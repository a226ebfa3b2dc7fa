package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtensionWindow is the minimum reaction period guaranteed after every
// accepted bid. The auction deadline is reset to now + ExtensionWindow on
// each acceptance, regardless of how much time has already elapsed.
const ExtensionWindow = 15 * time.Minute

// QuickFinishMultiple is the multiplier applied to the immediately
// preceding bid when checking whether a new bid arms the quick finish.
const QuickFinishMultiple = 5

// BidRecord represents one accepted bid as seen by the shared rules.
type BidRecord struct {
	Bidder string          `json:"bidder"`
	Amount decimal.Decimal `json:"amount"`
}

// Settlement describes how an ended auction distributes value.
// With at least one bid, the highest bidder receives the asset and the
// seller receives the escrowed proceeds. With no bids, the asset is
// returned to the seller and no value moves.
type Settlement struct {
	// HasWinner is false when the auction closed without a single bid.
	HasWinner bool

	// Winner is the identity receiving the asset (empty when no winner).
	Winner string

	// Proceeds is the escrowed amount owed to the seller (zero when no winner).
	Proceeds decimal.Decimal
}

// RejectReason explains why a candidate bid was not acceptable.
type RejectReason string

const (
	RejectNone            RejectReason = ""
	RejectNonPositive     RejectReason = "amount must be strictly positive"
	RejectBelowReserve    RejectReason = "opening bid below reserve"
	RejectNotAboveHighest RejectReason = "amount not above current highest bid"
)
