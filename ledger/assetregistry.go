package ledger

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownAsset is returned for an asset id that was never minted.
	ErrUnknownAsset = errors.New("unknown asset")

	// ErrAssetExists is returned when minting an id that is already held.
	ErrAssetExists = errors.New("asset already minted")

	// ErrNotAuthorized is returned when a custody transfer is attempted
	// by an account that neither holds nor is approved for the asset.
	ErrNotAuthorized = errors.New("not authorized for custody transfer")
)

// AssetRegistry is an in-memory registry of unique assets. One holder per
// asset id; a holder may approve exactly one operator, and the approval
// clears on every custody transfer.
type AssetRegistry struct {
	name string

	mu        sync.RWMutex
	holders   map[string]string // assetID -> holder
	approvals map[string]string // assetID -> approved operator
}

// NewAssetRegistry creates an empty registry identified by name.
func NewAssetRegistry(name string) *AssetRegistry {
	return &AssetRegistry{
		name:      name,
		holders:   make(map[string]string),
		approvals: make(map[string]string),
	}
}

// Name returns the registry identifier.
func (r *AssetRegistry) Name() string { return r.name }

// Mint records owner as the initial holder of assetID.
func (r *AssetRegistry) Mint(owner, assetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.holders[assetID]; exists {
		return fmt.Errorf("asset %s: %w", assetID, ErrAssetExists)
	}
	r.holders[assetID] = owner
	return nil
}

// Approve authorizes operator to take custody of assetID from owner,
// replacing any previous approval.
func (r *AssetRegistry) Approve(owner, operator, assetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	holder, exists := r.holders[assetID]
	if !exists {
		return fmt.Errorf("asset %s: %w", assetID, ErrUnknownAsset)
	}
	if holder != owner {
		return fmt.Errorf("%s does not hold asset %s: %w", owner, assetID, ErrNotAuthorized)
	}
	r.approvals[assetID] = operator
	return nil
}

// CurrentHolder reports which identity currently holds the asset.
func (r *AssetRegistry) CurrentHolder(assetID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	holder, exists := r.holders[assetID]
	if !exists {
		return "", fmt.Errorf("asset %s: %w", assetID, ErrUnknownAsset)
	}
	return holder, nil
}

// IsAuthorized reports whether operator may move assetID out of owner's
// custody. The holder is always authorized over its own assets.
func (r *AssetRegistry) IsAuthorized(owner, operator, assetID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.holders[assetID] != owner {
		return false
	}
	return owner == operator || r.approvals[assetID] == operator
}

// TransferCustody moves the asset from one holder to another. It fails if
// from is not the current holder. Any standing approval is cleared by the
// transfer.
func (r *AssetRegistry) TransferCustody(from, to, assetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	holder, exists := r.holders[assetID]
	if !exists {
		return fmt.Errorf("asset %s: %w", assetID, ErrUnknownAsset)
	}
	if holder != from {
		return fmt.Errorf("%s does not hold asset %s: %w", from, assetID, ErrNotAuthorized)
	}
	r.holders[assetID] = to
	delete(r.approvals, assetID)
	return nil
}
