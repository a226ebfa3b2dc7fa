package auction

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Params are the creation parameters for a new auction. Reserve is
// optional: nil means no reserve, so the first bid may be any positive
// amount.
type Params struct {
	Seller        string
	PaymentToken  string
	StartingPrice decimal.Decimal
	Asset         string
	AssetID       string
	Reserve       *decimal.Decimal
}

// Factory validates creation parameters, instantiates auctions bound to a
// specific asset/seller/payment-token combination, and takes custody of
// the asset on the seller's behalf. It owns the collection of all auctions
// it created; there is no ambient global registry.
type Factory struct {
	id     string
	tokens TokenDirectory
	assets AssetDirectory
	sink   EventSink
	now    func() time.Time

	mu       sync.RWMutex
	auctions map[string]*Auction
}

// NewFactory builds a factory over the given collaborator directories.
// A nil sink discards events.
func NewFactory(tokens TokenDirectory, assets AssetDirectory, sink EventSink) *Factory {
	if sink == nil {
		sink = NopSink{}
	}
	return &Factory{
		id:       uuid.NewString(),
		tokens:   tokens,
		assets:   assets,
		sink:     sink,
		now:      time.Now,
		auctions: make(map[string]*Auction),
	}
}

// CreateAuction creates an auction with no reserve.
func (f *Factory) CreateAuction(seller, paymentToken string, startingPrice decimal.Decimal, asset, assetID string) (*Auction, error) {
	return f.create(Params{
		Seller:        seller,
		PaymentToken:  paymentToken,
		StartingPrice: startingPrice,
		Asset:         asset,
		AssetID:       assetID,
	})
}

// CreateAuctionWithReserve creates an auction whose opening bid must meet
// or exceed the reserve.
func (f *Factory) CreateAuctionWithReserve(seller, paymentToken string, startingPrice decimal.Decimal, asset, assetID string, reserve decimal.Decimal) (*Auction, error) {
	return f.create(Params{
		Seller:        seller,
		PaymentToken:  paymentToken,
		StartingPrice: startingPrice,
		Asset:         asset,
		AssetID:       assetID,
		Reserve:       &reserve,
	})
}

// create validates parameters, pulls asset custody from the seller into
// the new instance, registers it, and publishes the creation record. Any
// precondition failure aborts with nothing created and no custody change.
func (f *Factory) create(p Params) (*Auction, error) {
	if p.Seller == "" {
		return nil, fmt.Errorf("seller is required: %w", ErrValidation)
	}
	if p.PaymentToken == "" {
		return nil, fmt.Errorf("payment token is required: %w", ErrValidation)
	}
	if p.Asset == "" || p.AssetID == "" {
		return nil, fmt.Errorf("asset and asset id are required: %w", ErrValidation)
	}
	if p.StartingPrice.IsNegative() {
		return nil, fmt.Errorf("starting price %s is negative: %w", p.StartingPrice.String(), ErrValidation)
	}
	if p.Reserve != nil && p.Reserve.IsNegative() {
		return nil, fmt.Errorf("reserve %s is negative: %w", p.Reserve.String(), ErrValidation)
	}

	registry, err := f.assets.Registry(p.Asset)
	if err != nil {
		return nil, fmt.Errorf("resolve asset registry %s: %w", p.Asset, err)
	}

	id := uuid.NewString()
	escrow, err := f.tokens.OpenEscrow(p.PaymentToken, id)
	if err != nil {
		return nil, fmt.Errorf("open escrow on %s: %w", p.PaymentToken, err)
	}

	// Sellers approve the factory's identity ahead of creation; custody
	// then moves straight from the seller into the new instance.
	if !registry.IsAuthorized(p.Seller, f.id, p.AssetID) {
		return nil, fmt.Errorf("asset %s not approved for custody transfer: %w", p.AssetID, ErrUnauthorized)
	}
	// Custody moves before the auction is published; a failed pull means
	// no auction is created at all.
	if err := registry.TransferCustody(p.Seller, id, p.AssetID); err != nil {
		return nil, fmt.Errorf("pull asset %s custody from %s: %w", p.AssetID, p.Seller, err)
	}

	now := f.now()
	var reserve *decimal.Decimal
	if p.Reserve != nil {
		r := *p.Reserve
		reserve = &r
	}
	a := &Auction{
		id:            id,
		seller:        p.Seller,
		paymentToken:  p.PaymentToken,
		asset:         p.Asset,
		assetID:       p.AssetID,
		startingPrice: p.StartingPrice,
		reserve:       reserve,
		createdAt:     now,
		escrow:        escrow,
		registry:      registry,
		sink:          f.sink,
		now:           f.now,
	}

	f.mu.Lock()
	f.auctions[id] = a
	f.mu.Unlock()

	log.Printf("INFO: Auction %s created: seller=%s asset=%s/%s token=%s", id, p.Seller, p.Asset, p.AssetID, p.PaymentToken)
	f.sink.Publish(Event{
		Type:      EventAuctionCreated,
		AuctionID: id,
		Seller:    p.Seller,
		Asset:     p.Asset,
		AssetID:   p.AssetID,
		Timestamp: now,
	})
	return a, nil
}

// Identity returns the factory's own identifier, the operator sellers
// approve on the asset registry before creating an auction.
func (f *Factory) Identity() string { return f.id }

// Get returns the auction with the given identifier.
func (f *Factory) Get(id string) (*Auction, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	a, ok := f.auctions[id]
	if !ok {
		return nil, fmt.Errorf("auction %s: %w", id, ErrAuctionNotFound)
	}
	return a, nil
}

// List returns every auction created by this factory, ordered by creation
// time with identifier as tiebreak.
func (f *Factory) List() []*Auction {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Auction, 0, len(f.auctions))
	for _, a := range f.auctions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].createdAt.Before(out[j].createdAt)
		}
		return out[i].id < out[j].id
	})
	return out
}

// SetClock replaces the time source for the factory and for auctions it
// creates afterwards. Intended for tests.
func (f *Factory) SetClock(now func() time.Time) {
	f.now = now
}
