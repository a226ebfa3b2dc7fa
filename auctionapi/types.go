// Package auctionapi defines the wire types exchanged over the auction
// server's HTTP and WebSocket surfaces, plus the snapshot codec for the
// per-auction persisted state layout.
package auctionapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/DrakeEvans/auction-playground/auction"
)

// CreateAuctionRequest asks the factory to list an asset. Reserve is
// optional; omitting it means the first bid may be any positive amount.
type CreateAuctionRequest struct {
	Seller        string           `json:"seller"`
	PaymentToken  string           `json:"payment_token"`
	StartingPrice decimal.Decimal  `json:"starting_price"`
	Asset         string           `json:"asset"`
	AssetID       string           `json:"asset_id"`
	Reserve       *decimal.Decimal `json:"reserve,omitempty"`
}

// BidRequest places a bid on an auction.
type BidRequest struct {
	Bidder string          `json:"bidder"`
	Amount decimal.Decimal `json:"amount"`
}

// CallerRequest identifies the caller of an end or settle operation.
type CallerRequest struct {
	Caller string `json:"caller"`
}

// BidView is the public record of one accepted bid.
type BidView struct {
	Index    int             `json:"index"`
	Bidder   string          `json:"bidder"`
	Amount   decimal.Decimal `json:"amount"`
	PlacedAt time.Time       `json:"placed_at"`
}

// AuctionView is the observable read surface of one auction instance.
type AuctionView struct {
	ID               string           `json:"id"`
	Seller           string           `json:"seller"`
	PaymentToken     string           `json:"payment_token"`
	Asset            string           `json:"asset"`
	AssetID          string           `json:"asset_id"`
	StartingPrice    decimal.Decimal  `json:"starting_price"`
	Reserve          *decimal.Decimal `json:"reserve,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	Deadline         *time.Time       `json:"deadline,omitempty"`
	Active           bool             `json:"active"`
	Settled          bool             `json:"settled"`
	QuickFinishArmed bool             `json:"quick_finish_armed"`
	HighestBid       *BidView         `json:"highest_bid,omitempty"`
	BidCount         int              `json:"bid_count"`
}

// ErrorResponse reports a failed operation.
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewBidView builds the public record for the bid at the given index.
func NewBidView(index int, b auction.Bid) BidView {
	return BidView{
		Index:    index,
		Bidder:   b.Bidder,
		Amount:   b.Amount,
		PlacedAt: b.PlacedAt,
	}
}

// NewAuctionView builds the read surface for one auction instance.
func NewAuctionView(a *auction.Auction) AuctionView {
	view := AuctionView{
		ID:               a.ID(),
		Seller:           a.Seller(),
		PaymentToken:     a.PaymentToken(),
		Asset:            a.Asset(),
		AssetID:          a.AssetID(),
		StartingPrice:    a.StartingPrice(),
		CreatedAt:        a.CreatedOn(),
		Active:           a.IsAuctionActive(),
		Settled:          a.Settled(),
		QuickFinishArmed: a.QuickFinishArmed(),
	}
	if reserve, ok := a.Reserve(); ok {
		view.Reserve = &reserve
	}
	if deadline, ok := a.Deadline(); ok {
		view.Deadline = &deadline
	}
	history := a.BidHistory()
	view.BidCount = len(history)
	if len(history) > 0 {
		highest := NewBidView(len(history)-1, history[len(history)-1])
		view.HighestBid = &highest
	}
	return view
}
