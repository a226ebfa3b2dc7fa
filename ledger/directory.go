package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/DrakeEvans/auction-playground/auction"
)

// ErrUnknownCollaborator is returned when a token or registry identifier
// does not resolve.
var ErrUnknownCollaborator = errors.New("unknown collaborator")

// Directory resolves payment-token and asset-registry identifiers to the
// in-memory implementations registered on it. It satisfies both
// auction.TokenDirectory and auction.AssetDirectory.
type Directory struct {
	mu         sync.RWMutex
	tokens     map[string]*TokenLedger
	registries map[string]*AssetRegistry
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		tokens:     make(map[string]*TokenLedger),
		registries: make(map[string]*AssetRegistry),
	}
}

// AddToken registers a token ledger under its symbol.
func (d *Directory) AddToken(l *TokenLedger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens[l.Symbol()] = l
}

// AddRegistry registers an asset registry under its name.
func (d *Directory) AddRegistry(r *AssetRegistry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.registries[r.Name()] = r
}

// Token returns the ledger registered under symbol.
func (d *Directory) Token(symbol string) (*TokenLedger, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	l, ok := d.tokens[symbol]
	if !ok {
		return nil, fmt.Errorf("token %s: %w", symbol, ErrUnknownCollaborator)
	}
	return l, nil
}

// OpenEscrow binds an escrow account for holder on the named token ledger.
func (d *Directory) OpenEscrow(paymentToken, holder string) (auction.EscrowLedger, error) {
	l, err := d.Token(paymentToken)
	if err != nil {
		return nil, err
	}
	return l.EscrowAccount(holder), nil
}

// Registry returns the asset registry registered under the given name.
func (d *Directory) Registry(asset string) (auction.AssetRegistry, error) {
	r, err := d.AssetRegistry(asset)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// AssetRegistry returns the concrete registry for direct mint/approve use.
func (d *Directory) AssetRegistry(asset string) (*AssetRegistry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.registries[asset]
	if !ok {
		return nil, fmt.Errorf("registry %s: %w", asset, ErrUnknownCollaborator)
	}
	return r, nil
}
