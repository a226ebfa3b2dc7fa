package auction_test

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/DrakeEvans/auction-playground/auction"
	"github.com/DrakeEvans/auction-playground/ledger"
)

func TestCreateAuction_PullsCustodyAndPublishes(t *testing.T) {
	f := newFixture(t)

	a := f.createAuction(t)

	// Custody moved from the seller into the new instance.
	holder, err := f.apes.CurrentHolder(assetID)
	assert.Nil(t, err)
	check.Equal(t, a.ID(), holder)

	check.Equal(t, seller, a.Seller())
	check.Equal(t, tokenSymbol, a.PaymentToken())
	check.Equal(t, registryName, a.Asset())
	check.Equal(t, assetID, a.AssetID())
	check.True(t, a.StartingPrice().Equal(dec("0.1")))
	check.False(t, a.CreatedOn().IsZero())
	check.True(t, a.CreatedOn().Equal(f.clock.Now()))
	check.True(t, a.IsAuctionActive())

	_, hasReserve := a.Reserve()
	check.False(t, hasReserve)

	created := f.sink.byType(auction.EventAuctionCreated)
	assert.Equal(t, 1, len(created))
	check.Equal(t, a.ID(), created[0].AuctionID)
}

func TestCreateAuctionWithReserve_RecordsReserve(t *testing.T) {
	f := newFixture(t)

	a := f.createAuctionWithReserve(t, "0.1")

	reserve, hasReserve := a.Reserve()
	assert.True(t, hasReserve)
	check.True(t, reserve.Equal(dec("0.1")))
}

func TestCreateAuction_UnapprovedAssetFails(t *testing.T) {
	f := newFixture(t)

	// Asset 99 is minted but never approved for the factory.
	assert.Nil(t, f.apes.Mint(seller, "99"))

	_, err := f.factory.CreateAuction(seller, tokenSymbol, dec("0.1"), registryName, "99")
	check.True(t, errors.Is(err, auction.ErrUnauthorized))

	// All-or-nothing: custody unchanged, nothing registered.
	holder, herr := f.apes.CurrentHolder("99")
	assert.Nil(t, herr)
	check.Equal(t, seller, holder)
	check.Equal(t, 0, len(f.factory.List()))
}

func TestCreateAuction_UnknownAssetFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.factory.CreateAuction(seller, tokenSymbol, dec("0.1"), registryName, "404")
	check.True(t, errors.Is(err, auction.ErrUnauthorized))
	check.Equal(t, 0, len(f.factory.List()))
}

func TestCreateAuction_ValidatesParameters(t *testing.T) {
	f := newFixture(t)

	_, err := f.factory.CreateAuction("", tokenSymbol, dec("0.1"), registryName, assetID)
	check.True(t, errors.Is(err, auction.ErrValidation))

	_, err = f.factory.CreateAuction(seller, tokenSymbol, dec("-0.1"), registryName, assetID)
	check.True(t, errors.Is(err, auction.ErrValidation))

	_, err = f.factory.CreateAuctionWithReserve(seller, tokenSymbol, dec("0.1"), registryName, assetID, dec("-1"))
	check.True(t, errors.Is(err, auction.ErrValidation))

	_, err = f.factory.CreateAuction(seller, "DOGE", dec("0.1"), registryName, assetID)
	check.True(t, errors.Is(err, ledger.ErrUnknownCollaborator))

	// No custody change from any failed attempt.
	holder, herr := f.apes.CurrentHolder(assetID)
	assert.Nil(t, herr)
	check.Equal(t, seller, holder)
}

func TestFactory_GetAndList(t *testing.T) {
	f := newFixture(t)

	assert.Nil(t, f.apes.Mint(bob, "41"))
	assert.Nil(t, f.apes.Approve(bob, f.factory.Identity(), "41"))

	a1 := f.createAuction(t)
	a2, err := f.factory.CreateAuction(bob, tokenSymbol, dec("0.2"), registryName, "41")
	assert.Nil(t, err)

	got, err := f.factory.Get(a1.ID())
	assert.Nil(t, err)
	check.Equal(t, a1.ID(), got.ID())

	_, err = f.factory.Get("missing")
	check.True(t, errors.Is(err, auction.ErrAuctionNotFound))

	all := f.factory.List()
	assert.Equal(t, 2, len(all))
	ids := map[string]bool{all[0].ID(): true, all[1].ID(): true}
	check.True(t, ids[a1.ID()])
	check.True(t, ids[a2.ID()])
}
