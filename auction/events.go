package auction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types published over the notification surface.
const (
	EventAuctionCreated = "auction_created"
	EventBidAccepted    = "bid_accepted"
	EventAuctionEnded   = "auction_ended"
	EventAuctionSettled = "auction_settled"
)

// Event is a published auction notification record.
type Event struct {
	Type      string          `json:"type"`
	AuctionID string          `json:"auction_id"`
	Seller    string          `json:"seller,omitempty"`
	Asset     string          `json:"asset,omitempty"`
	AssetID   string          `json:"asset_id,omitempty"`
	Bidder    string          `json:"bidder,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	BidIndex  int             `json:"bid_index"`
	Winner    string          `json:"winner,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// EventSink receives published events. Publish must not block: sinks that
// fan out to slow consumers are expected to buffer or drop on their side.
type EventSink interface {
	Publish(event Event)
}

// NopSink discards all events. It is the default when no sink is wired.
type NopSink struct{}

func (NopSink) Publish(Event) {}
