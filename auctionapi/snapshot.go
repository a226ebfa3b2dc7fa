package auctionapi

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/DrakeEvans/auction-playground/auction"
)

// SnapshotBid is one bid in a persisted snapshot. Amounts are carried as
// decimal strings so the encoding is exact and portable.
type SnapshotBid struct {
	Bidder   string    `cbor:"bidder"`
	Amount   string    `cbor:"amount"`
	PlacedAt time.Time `cbor:"placed_at"`
}

// Snapshot is the persisted state layout of one auction: everything
// immutable from creation plus the mutable deadline, flags, and the
// append-only bid list.
type Snapshot struct {
	ID               string        `cbor:"id"`
	Seller           string        `cbor:"seller"`
	PaymentToken     string        `cbor:"payment_token"`
	Asset            string        `cbor:"asset"`
	AssetID          string        `cbor:"asset_id"`
	StartingPrice    string        `cbor:"starting_price"`
	Reserve          string        `cbor:"reserve,omitempty"`
	CreatedAt        time.Time     `cbor:"created_at"`
	Deadline         *time.Time    `cbor:"deadline,omitempty"`
	Bids             []SnapshotBid `cbor:"bids"`
	Active           bool          `cbor:"active"`
	Settled          bool          `cbor:"settled"`
	QuickFinishArmed bool          `cbor:"quick_finish_armed"`
}

// encMode uses canonical CBOR with RFC 3339 times so equal snapshots
// encode to equal bytes.
var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot encoder options: %v", err))
	}
	return em
}

// NewSnapshot captures the current persisted state of an auction.
func NewSnapshot(a *auction.Auction) Snapshot {
	snapshot := Snapshot{
		ID:               a.ID(),
		Seller:           a.Seller(),
		PaymentToken:     a.PaymentToken(),
		Asset:            a.Asset(),
		AssetID:          a.AssetID(),
		StartingPrice:    a.StartingPrice().String(),
		CreatedAt:        a.CreatedOn(),
		Active:           a.IsAuctionActive(),
		Settled:          a.Settled(),
		QuickFinishArmed: a.QuickFinishArmed(),
	}
	if reserve, ok := a.Reserve(); ok {
		snapshot.Reserve = reserve.String()
	}
	if deadline, ok := a.Deadline(); ok {
		snapshot.Deadline = &deadline
	}
	history := a.BidHistory()
	snapshot.Bids = make([]SnapshotBid, len(history))
	for i, b := range history {
		snapshot.Bids[i] = SnapshotBid{
			Bidder:   b.Bidder,
			Amount:   b.Amount.String(),
			PlacedAt: b.PlacedAt,
		}
	}
	return snapshot
}

// Encode serializes the snapshot to canonical CBOR.
func (s Snapshot) Encode() ([]byte, error) {
	data, err := encMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot %s: %w", s.ID, err)
	}
	return data, nil
}

// DecodeSnapshot parses a CBOR-encoded snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
