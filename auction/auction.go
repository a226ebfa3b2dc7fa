package auction

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DrakeEvans/auction-playground/core"
)

// Bid is one accepted bid. Bids are append-only and strictly increasing in
// amount; index 0 is the first accepted bid.
type Bid struct {
	Bidder   string          `json:"bidder"`
	Amount   decimal.Decimal `json:"amount"`
	PlacedAt time.Time       `json:"placed_at"`
}

// Auction is the state machine for one listed asset. All mutating
// operations are serialized on a per-instance lock and either complete in
// full or have no effect: validations run first, state updates are staged
// next, and external value transfers happen last, with the staged state
// restored if a transfer fails.
//
// The deadline is undefined until the first bid and is reset to
// now + core.ExtensionWindow on every accepted bid. Reaching the deadline
// closes the auction for bidding on the next interaction; no background
// timer is involved.
type Auction struct {
	mu sync.Mutex

	id            string
	seller        string
	paymentToken  string
	asset         string
	assetID       string
	startingPrice decimal.Decimal
	reserve       *decimal.Decimal
	createdAt     time.Time

	escrow   EscrowLedger
	registry AssetRegistry
	sink     EventSink

	deadline         time.Time // zero until the first bid
	bids             []Bid
	quickFinishArmed bool
	ended            bool
	settled          bool

	now func() time.Time
}

// Bid deposits amount into escrow and appends a new bid. The previous
// highest bidder, if any, is refunded atomically with the acceptance: at
// no observable point are two bidders escrowed for the highest slot.
// Every accepted bid resets the deadline to now + core.ExtensionWindow
// and, when the amount is at least core.QuickFinishMultiple times the
// immediately preceding bid, arms the quick finish.
func (a *Auction) Bid(bidder string, amount decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if a.settled || a.ended {
		return fmt.Errorf("auction %s is final: %w", a.id, ErrAuctionClosed)
	}
	if !a.deadline.IsZero() && !now.Before(a.deadline) {
		return fmt.Errorf("deadline %s has passed: %w", a.deadline.Format(time.RFC3339), ErrAuctionClosed)
	}

	var highest *decimal.Decimal
	var previous *Bid
	if len(a.bids) > 0 {
		previous = &a.bids[len(a.bids)-1]
		highest = &previous.Amount
	}
	if ok, reason := core.ValidateBid(highest, a.reserve, amount); !ok {
		return fmt.Errorf("%s: %w", reason, ErrStaleBid)
	}

	// Stage the state transition before any external transfer so that a
	// reentrant call observes the auction fully updated. The prior values
	// are kept for rollback while the instance lock is still held.
	prevDeadline := a.deadline
	prevArmed := a.quickFinishArmed

	a.bids = append(a.bids, Bid{Bidder: bidder, Amount: amount, PlacedAt: now})
	a.deadline = now.Add(core.ExtensionWindow)
	if previous != nil && core.QuickFinishTriggered(previous.Amount, amount) {
		a.quickFinishArmed = true
	}

	restore := func() {
		a.bids = a.bids[:len(a.bids)-1]
		a.deadline = prevDeadline
		a.quickFinishArmed = prevArmed
	}

	if err := a.escrow.TransferIn(bidder, amount); err != nil {
		restore()
		return fmt.Errorf("escrow deposit from %s: %w: %w", bidder, ErrInsufficientFunds, err)
	}
	if previous != nil {
		if err := a.escrow.TransferOut(previous.Bidder, previous.Amount); err != nil {
			// Hand the fresh deposit back before reverting; the previous
			// bidder's escrow is untouched so the old state is intact.
			if refundErr := a.escrow.TransferOut(bidder, amount); refundErr != nil {
				log.Printf("ERROR: Failed to return deposit to %s on auction %s: %v", bidder, a.id, refundErr)
			}
			restore()
			return fmt.Errorf("refund displaced bidder %s: %w", previous.Bidder, err)
		}
	}

	index := len(a.bids) - 1
	if a.quickFinishArmed && !prevArmed {
		log.Printf("INFO: Auction %s quick finish armed by bid %d (%s)", a.id, index, amount.String())
	}

	a.sink.Publish(Event{
		Type:      EventBidAccepted,
		AuctionID: a.id,
		Bidder:    bidder,
		Amount:    amount,
		BidIndex:  index,
		Timestamp: now,
	})
	return nil
}

// EndAuction finalizes the auction early. Only the seller may call it,
// and only while the bidding window is still open with the quick finish
// armed. Armed quick finish is a right, not an obligation: until the
// seller actually calls EndAuction, other bidders remain free to outbid.
// Once the deadline passes, the auction is already final on its own and
// the call fails with ErrAlreadyEnded, same as a second call would.
func (a *Auction) EndAuction(caller string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.seller {
		return fmt.Errorf("caller %s is not the seller: %w", caller, ErrUnauthorized)
	}
	if a.settled || a.ended {
		return fmt.Errorf("auction %s: %w", a.id, ErrAlreadyEnded)
	}

	now := a.now()
	if !a.deadline.IsZero() && !now.Before(a.deadline) {
		return fmt.Errorf("auction %s closed at its deadline: %w", a.id, ErrAlreadyEnded)
	}
	if !a.quickFinishArmed {
		return fmt.Errorf("deadline not reached and quick finish not armed: %w", ErrPrematureEnd)
	}

	a.ended = true
	log.Printf("INFO: Auction %s ended by seller (quick finish armed: %v)", a.id, a.quickFinishArmed)
	a.sink.Publish(Event{
		Type:      EventAuctionEnded,
		AuctionID: a.id,
		Seller:    a.seller,
		Timestamp: now,
	})
	return nil
}

// Settle distributes the final value exactly once. Anyone may call it once
// the auction has ended, whether by a seller end or by deadline expiry.
// With at least one bid, the asset moves to the highest bidder and the
// escrowed amount to the seller; with no bids, the asset returns to the
// seller and no value moves. A second call fails.
func (a *Auction) Settle(caller string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.settled {
		return fmt.Errorf("auction %s already settled: %w", a.id, ErrAlreadyEnded)
	}
	now := a.now()
	closed := a.ended || (!a.deadline.IsZero() && !now.Before(a.deadline))
	if !closed {
		return fmt.Errorf("auction %s has not ended: %w", a.id, ErrAlreadyEnded)
	}

	history := make([]core.BidRecord, len(a.bids))
	for i, b := range a.bids {
		history[i] = core.BidRecord{Bidder: b.Bidder, Amount: b.Amount}
	}
	settlement := core.ComputeSettlement(history)

	prevEnded := a.ended
	a.settled = true
	a.ended = true
	restore := func() {
		a.settled = false
		a.ended = prevEnded
	}

	if settlement.HasWinner {
		// Custody first: a failed payout afterwards can still hand the
		// asset back, while escrow paid to the seller cannot be pulled
		// back through the ledger interface.
		if err := a.registry.TransferCustody(a.id, settlement.Winner, a.assetID); err != nil {
			restore()
			return fmt.Errorf("asset transfer to winner %s: %w", settlement.Winner, err)
		}
		if err := a.escrow.TransferOut(a.seller, settlement.Proceeds); err != nil {
			if backErr := a.registry.TransferCustody(settlement.Winner, a.id, a.assetID); backErr != nil {
				log.Printf("ERROR: Failed to recover asset %s custody on auction %s: %v", a.assetID, a.id, backErr)
			}
			restore()
			return fmt.Errorf("proceeds transfer to seller %s: %w", a.seller, err)
		}
		log.Printf("INFO: Auction %s settled: asset %s to %s, proceeds %s to %s",
			a.id, a.assetID, settlement.Winner, settlement.Proceeds.String(), a.seller)
	} else {
		if err := a.registry.TransferCustody(a.id, a.seller, a.assetID); err != nil {
			restore()
			return fmt.Errorf("asset return to seller %s: %w", a.seller, err)
		}
		log.Printf("INFO: Auction %s settled with no bids: asset %s returned to %s", a.id, a.assetID, a.seller)
	}

	a.sink.Publish(Event{
		Type:      EventAuctionSettled,
		AuctionID: a.id,
		Seller:    a.seller,
		AssetID:   a.assetID,
		Winner:    settlement.Winner,
		Amount:    settlement.Proceeds,
		Timestamp: now,
	})
	return nil
}

// IsAuctionActive reports whether the auction still accepts bids: not
// settled, not manually ended, and the deadline (when set) not yet passed.
func (a *Auction) IsAuctionActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.settled || a.ended {
		return false
	}
	return a.deadline.IsZero() || a.now().Before(a.deadline)
}

// CreatedOn returns the creation timestamp, set exactly once at
// construction.
func (a *Auction) CreatedOn() time.Time {
	return a.createdAt
}

// Bids returns the i-th bid record, index 0 being the first accepted bid.
func (a *Auction) Bids(i int) (Bid, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.bids) {
		return Bid{}, fmt.Errorf("index %d out of range [0, %d): %w", i, len(a.bids), ErrBidNotFound)
	}
	return a.bids[i], nil
}

// BidHistory returns a copy of the full ordered bid history.
func (a *Auction) BidHistory() []Bid {
	a.mu.Lock()
	defer a.mu.Unlock()
	history := make([]Bid, len(a.bids))
	copy(history, a.bids)
	return history
}

// HighestBid returns the most recent bid, or false when no bid exists.
func (a *Auction) HighestBid() (Bid, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.bids) == 0 {
		return Bid{}, false
	}
	return a.bids[len(a.bids)-1], true
}

// Deadline returns the current deadline and whether one is set. The
// deadline is undefined until the first accepted bid.
func (a *Auction) Deadline() (time.Time, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deadline, !a.deadline.IsZero()
}

// QuickFinishArmed reports whether some accepted bid reached
// core.QuickFinishMultiple times its immediate predecessor. The latch is
// one-way: once armed it stays armed until settlement.
func (a *Auction) QuickFinishArmed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.quickFinishArmed
}

// Settled reports whether the final distribution has occurred.
func (a *Auction) Settled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settled
}

// ID returns the auction's instance identifier.
func (a *Auction) ID() string { return a.id }

// Seller returns the identity entitled to the proceeds.
func (a *Auction) Seller() string { return a.seller }

// PaymentToken returns the fungible ledger identifier used for bidding.
func (a *Auction) PaymentToken() string { return a.paymentToken }

// Asset returns the asset-registry identifier.
func (a *Auction) Asset() string { return a.asset }

// AssetID returns the unique item identifier under auction.
func (a *Auction) AssetID() string { return a.assetID }

// StartingPrice returns the informational listing floor. It is not
// enforced as a minimum; only the reserve is.
func (a *Auction) StartingPrice() decimal.Decimal { return a.startingPrice }

// Reserve returns the reserve amount and whether one is configured.
func (a *Auction) Reserve() (decimal.Decimal, bool) {
	if a.reserve == nil {
		return decimal.Decimal{}, false
	}
	return *a.reserve, true
}
