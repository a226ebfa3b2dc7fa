package auctionapi_test

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	"github.com/DrakeEvans/auction-playground/auction"
	"github.com/DrakeEvans/auction-playground/auctionapi"
	"github.com/DrakeEvans/auction-playground/ledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupAuction(t *testing.T) (*auction.Auction, *ledger.TokenLedger) {
	t.Helper()

	weth := ledger.NewTokenLedger("WETH")
	apes := ledger.NewAssetRegistry("APES")
	dir := ledger.NewDirectory()
	dir.AddToken(weth)
	dir.AddRegistry(apes)
	factory := auction.NewFactory(dir, dir, nil)

	assert.Nil(t, weth.Faucet("alice", dec("100")))
	assert.Nil(t, apes.Mint("seller", "21"))
	assert.Nil(t, apes.Approve("seller", factory.Identity(), "21"))

	a, err := factory.CreateAuctionWithReserve("seller", "WETH", dec("0.1"), "APES", "21", dec("0.1"))
	assert.Nil(t, err)
	return a, weth
}

func TestNewAuctionView(t *testing.T) {
	a, weth := setupAuction(t)

	view := auctionapi.NewAuctionView(a)
	check.Equal(t, a.ID(), view.ID)
	check.Equal(t, "seller", view.Seller)
	check.True(t, view.Active)
	check.False(t, view.Settled)
	check.Equal(t, 0, view.BidCount)
	check.Nil(t, view.Deadline)
	check.Nil(t, view.HighestBid)
	assert.NotNil(t, view.Reserve)
	check.True(t, view.Reserve.Equal(dec("0.1")))

	assert.Nil(t, weth.IncreaseAllowance("alice", a.ID(), dec("0.2")))
	assert.Nil(t, a.Bid("alice", dec("0.2")))

	view = auctionapi.NewAuctionView(a)
	check.Equal(t, 1, view.BidCount)
	assert.NotNil(t, view.Deadline)
	assert.NotNil(t, view.HighestBid)
	check.Equal(t, "alice", view.HighestBid.Bidder)
	check.Equal(t, 0, view.HighestBid.Index)
	check.True(t, view.HighestBid.Amount.Equal(dec("0.2")))
}

func TestSnapshot_RoundTrip(t *testing.T) {
	a, weth := setupAuction(t)

	assert.Nil(t, weth.IncreaseAllowance("alice", a.ID(), dec("1.2")))
	assert.Nil(t, a.Bid("alice", dec("0.2")))
	assert.Nil(t, a.Bid("alice", dec("1.0")))

	snapshot := auctionapi.NewSnapshot(a)
	data, err := snapshot.Encode()
	assert.Nil(t, err)

	decoded, err := auctionapi.DecodeSnapshot(data)
	assert.Nil(t, err)

	check.Equal(t, snapshot.ID, decoded.ID)
	check.Equal(t, snapshot.Seller, decoded.Seller)
	check.Equal(t, "0.1", decoded.Reserve)
	check.True(t, decoded.QuickFinishArmed)
	assert.Equal(t, 2, len(decoded.Bids))
	check.Equal(t, "0.2", decoded.Bids[0].Amount)
	check.Equal(t, "1.0", decoded.Bids[1].Amount)
	assert.NotNil(t, decoded.Deadline)
	check.True(t, snapshot.Deadline.Equal(*decoded.Deadline))
}

func TestSnapshot_EncodingIsDeterministic(t *testing.T) {
	a, _ := setupAuction(t)

	first, err := auctionapi.NewSnapshot(a).Encode()
	assert.Nil(t, err)
	second, err := auctionapi.NewSnapshot(a).Encode()
	assert.Nil(t, err)

	check.Equal(t, string(first), string(second))
}

func TestSnapshot_TimesSurviveEncoding(t *testing.T) {
	a, _ := setupAuction(t)

	snapshot := auctionapi.NewSnapshot(a)
	data, err := snapshot.Encode()
	assert.Nil(t, err)
	decoded, err := auctionapi.DecodeSnapshot(data)
	assert.Nil(t, err)

	// RFC 3339 nano encoding keeps wall-clock identity.
	check.True(t, snapshot.CreatedAt.Equal(decoded.CreatedAt))
	check.True(t, time.Since(decoded.CreatedAt) < time.Minute)
}
