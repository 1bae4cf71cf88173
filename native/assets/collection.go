// Package assets provides an in-process reference implementation of the
// asset-registry collaborator consumed by the marketplace engine. It tracks
// per-asset ownership and single-account transfer approvals the way an
// ERC-721 contract does, and exposes caller-bound views so transfer authority
// is checked against the invoking account.
package assets

import (
	"errors"
	"math/big"
	"strings"
	"sync"
)

var (
	// ErrUnknownAsset is returned for asset ids that were never minted.
	ErrUnknownAsset = errors.New("assets: unknown asset id")
	// ErrNotHolder is returned when a transfer names a from account that
	// does not hold the asset.
	ErrNotHolder = errors.New("assets: from is not the current holder")
	// ErrNotAuthorized is returned when the bound caller is neither the
	// holder nor the approved account.
	ErrNotAuthorized = errors.New("assets: caller lacks transfer authority")
	// ErrAlreadyMinted is returned when minting an id that exists.
	ErrAlreadyMinted = errors.New("assets: asset id already minted")
)

// Collection is a registry of non-fungible assets under a single symbol.
type Collection struct {
	mu       sync.RWMutex
	symbol   string
	owners   map[string][20]byte
	approved map[string][20]byte
}

// NewCollection constructs an empty collection with the given symbol.
func NewCollection(symbol string) *Collection {
	return &Collection{
		symbol:   strings.TrimSpace(symbol),
		owners:   make(map[string][20]byte),
		approved: make(map[string][20]byte),
	}
}

func key(assetID *big.Int) string {
	if assetID == nil {
		return "0"
	}
	return assetID.String()
}

// Symbol answers the capability probe used at allow-list registration.
func (c *Collection) Symbol() (string, error) {
	if c == nil {
		return "", ErrUnknownAsset
	}
	return c.symbol, nil
}

// Mint creates a new asset owned by the supplied account.
func (c *Collection) Mint(owner [20]byte, assetID *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(assetID)
	if _, exists := c.owners[k]; exists {
		return ErrAlreadyMinted
	}
	c.owners[k] = owner
	return nil
}

// OwnerOf returns the current holder of the asset.
func (c *Collection) OwnerOf(assetID *big.Int) ([20]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	owner, ok := c.owners[key(assetID)]
	if !ok {
		return [20]byte{}, ErrUnknownAsset
	}
	return owner, nil
}

// GetApproved returns the account approved to transfer the asset, the zero
// address when none.
func (c *Collection) GetApproved(assetID *big.Int) ([20]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.owners[key(assetID)]; !ok {
		return [20]byte{}, ErrUnknownAsset
	}
	return c.approved[key(assetID)], nil
}

// Approve grants spender transfer authority over the asset. Only the current
// holder may approve.
func (c *Collection) Approve(caller, spender [20]byte, assetID *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(assetID)
	owner, ok := c.owners[k]
	if !ok {
		return ErrUnknownAsset
	}
	if owner != caller {
		return ErrNotAuthorized
	}
	c.approved[k] = spender
	return nil
}

// transfer moves the asset, enforcing that caller is the holder or approved.
// Approval is cleared on transfer.
func (c *Collection) transfer(caller, from, to [20]byte, assetID *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key(assetID)
	owner, ok := c.owners[k]
	if !ok {
		return ErrUnknownAsset
	}
	if owner != from {
		return ErrNotHolder
	}
	if caller != owner && caller != c.approved[k] {
		return ErrNotAuthorized
	}
	c.owners[k] = to
	delete(c.approved, k)
	return nil
}

// View is a caller-bound handle on a collection. It satisfies the asset
// registry interface the marketplace engine consumes: every Transfer is
// authorised against the bound account.
type View struct {
	collection *Collection
	caller     [20]byte
}

// Bind returns a view of the collection acting as the supplied account.
func (c *Collection) Bind(caller [20]byte) *View {
	return &View{collection: c, caller: caller}
}

// Symbol answers the capability probe.
func (v *View) Symbol() (string, error) { return v.collection.Symbol() }

// OwnerOf returns the current holder of the asset.
func (v *View) OwnerOf(assetID *big.Int) ([20]byte, error) {
	return v.collection.OwnerOf(assetID)
}

// GetApproved returns the approved account for the asset.
func (v *View) GetApproved(assetID *big.Int) ([20]byte, error) {
	return v.collection.GetApproved(assetID)
}

// Transfer moves the asset from its holder to the recipient on behalf of the
// bound caller.
func (v *View) Transfer(from, to [20]byte, assetID *big.Int) error {
	return v.collection.transfer(v.caller, from, to, assetID)
}
