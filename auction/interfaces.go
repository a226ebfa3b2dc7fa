package auction

import "github.com/shopspring/decimal"

// EscrowLedger is the narrow view of a fungible payment-token ledger held
// by one auction instance. The instance is the sole authority over its
// escrowed balance: deposits come in through TransferIn and leave only
// through TransferOut, to a displaced bidder or to the seller.
type EscrowLedger interface {
	// TransferIn moves amount from the payer's ledger balance into the
	// auction's escrow. It fails if the payer's balance or prior
	// authorization is insufficient; nothing moves on failure.
	TransferIn(from string, amount decimal.Decimal) error

	// TransferOut moves amount out of the auction's escrow to the given
	// recipient's ledger balance.
	TransferOut(to string, amount decimal.Decimal) error
}

// AssetRegistry holds custody of unique assets and transfers them on
// instruction.
type AssetRegistry interface {
	// TransferCustody moves the asset from one holder to another. It
	// fails if from lacks ownership or transfer authorization.
	TransferCustody(from, to, assetID string) error

	// CurrentHolder reports which identity currently holds the asset.
	CurrentHolder(assetID string) (string, error)

	// IsAuthorized reports whether operator may transfer the asset on
	// the owner's behalf.
	IsAuthorized(owner, operator, assetID string) bool
}

// TokenDirectory resolves a payment-token identifier from creation
// parameters to an escrow ledger bound to the new auction instance.
type TokenDirectory interface {
	OpenEscrow(paymentToken, holder string) (EscrowLedger, error)
}

// AssetDirectory resolves an asset-registry identifier from creation
// parameters to a live registry handle.
type AssetDirectory interface {
	Registry(asset string) (AssetRegistry, error)
}
