package market

import "math/big"

// AssetRegistry is the external contract tracking ownership of non-fungible
// assets. The engine consumes it as the currently bound caller: Transfer
// succeeds only when the engine owns the asset or holds transfer approval.
type AssetRegistry interface {
	// OwnerOf returns the current holder of the asset.
	OwnerOf(assetID *big.Int) ([20]byte, error)
	// GetApproved returns the account approved to transfer the asset, the
	// zero address when none.
	GetApproved(assetID *big.Int) ([20]byte, error)
	// Transfer moves the asset from its current holder to the recipient.
	// Fails when from is not the holder or the engine lacks approval.
	Transfer(from, to [20]byte, assetID *big.Int) error
	// Symbol is the capability probe checked at allow-list registration.
	Symbol() (string, error)
}

// PaymentLedger is the external contract tracking fungible balances. The
// engine consumes it as the bound spender: TransferFrom draws on approvals
// granted to the engine, Transfer spends the engine's own balance.
type PaymentLedger interface {
	// TransferFrom moves amount between third-party accounts, consuming
	// the engine's spend approval. Fails on insufficient balance or
	// approval.
	TransferFrom(from, to [20]byte, amount *big.Int) error
	// Transfer moves amount out of the engine's own balance.
	Transfer(to [20]byte, amount *big.Int) error
	// TotalSupply is the capability probe checked at allow-list
	// registration.
	TotalSupply() (*big.Int, error)
}
