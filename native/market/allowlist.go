package market

import "sync"

// ContractKind distinguishes the two allow-list tables.
type ContractKind uint8

const (
	ContractAsset ContractKind = iota
	ContractPayment
)

// String returns the canonical lowercase name of the contract kind.
func (k ContractKind) String() string {
	if k == ContractAsset {
		return "asset"
	}
	return "payment"
}

// AllowlistStore persists allow-list membership and the owner principal.
// Implementations may be nil-safe no-ops; the in-memory allow-list works
// without one.
type AllowlistStore interface {
	AllowlistPut(kind ContractKind, addr [20]byte) error
	AllowlistDelete(kind ContractKind, addr [20]byte) error
	OwnerPut(addr [20]byte) error
}

// Allowlist tracks which external asset and payment contracts are trusted for
// use in sales, gated by a single transferable owner principal. Safe for
// concurrent use: lookups from request handlers may race with admin
// mutations.
type Allowlist struct {
	mu       sync.RWMutex
	owner    [20]byte
	assets   map[[20]byte]AssetRegistry
	payments map[[20]byte]PaymentLedger
	store    AllowlistStore
}

// NewAllowlist constructs an allow-list owned by the supplied principal.
func NewAllowlist(owner [20]byte) *Allowlist {
	return &Allowlist{
		owner:    owner,
		assets:   make(map[[20]byte]AssetRegistry),
		payments: make(map[[20]byte]PaymentLedger),
	}
}

// SetStore configures an optional persistence backend. Mutations are written
// through after the in-memory update succeeds.
func (a *Allowlist) SetStore(store AllowlistStore) {
	a.mu.Lock()
	a.store = store
	a.mu.Unlock()
}

// Owner returns the current admin principal.
func (a *Allowlist) Owner() [20]byte {
	if a == nil {
		return [20]byte{}
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.owner
}

// TransferOwnership hands the admin role to a new principal. Only the current
// owner may invoke it.
func (a *Allowlist) TransferOwnership(caller, next [20]byte) error {
	if a == nil {
		return errAuthorization(ReasonNotAdmin)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireOwner(caller); err != nil {
		return err
	}
	a.owner = next
	if a.store != nil {
		if err := a.store.OwnerPut(next); err != nil {
			a.owner = caller
			return errExternal(err)
		}
	}
	return nil
}

// RegisterAsset adds an asset registry to the allow-list after probing its
// capability surface. A failed probe is a silent no-op: non-conforming
// addresses are skipped, not reported, so registration stays idempotent.
func (a *Allowlist) RegisterAsset(caller, addr [20]byte, registry AssetRegistry) error {
	if a == nil {
		return errAuthorization(ReasonNotAdmin)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireOwner(caller); err != nil {
		return err
	}
	if registry == nil {
		return nil
	}
	if _, err := registry.Symbol(); err != nil {
		return nil
	}
	a.assets[addr] = registry
	if a.store != nil {
		if err := a.store.AllowlistPut(ContractAsset, addr); err != nil {
			delete(a.assets, addr)
			return errExternal(err)
		}
	}
	return nil
}

// RegisterPayment adds a payment ledger to the allow-list after probing its
// supply query. Probe failures are silently skipped, as with RegisterAsset.
func (a *Allowlist) RegisterPayment(caller, addr [20]byte, ledger PaymentLedger) error {
	if a == nil {
		return errAuthorization(ReasonNotAdmin)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireOwner(caller); err != nil {
		return err
	}
	if ledger == nil {
		return nil
	}
	if _, err := ledger.TotalSupply(); err != nil {
		return nil
	}
	a.payments[addr] = ledger
	if a.store != nil {
		if err := a.store.AllowlistPut(ContractPayment, addr); err != nil {
			delete(a.payments, addr)
			return errExternal(err)
		}
	}
	return nil
}

// Revoke removes an address from the allow-list. Revocation is unconditional
// and idempotent: revoking an unknown address succeeds.
func (a *Allowlist) Revoke(caller, addr [20]byte, kind ContractKind) error {
	if a == nil {
		return errAuthorization(ReasonNotAdmin)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.requireOwner(caller); err != nil {
		return err
	}
	switch kind {
	case ContractAsset:
		delete(a.assets, addr)
	case ContractPayment:
		delete(a.payments, addr)
	}
	if a.store != nil {
		if err := a.store.AllowlistDelete(kind, addr); err != nil {
			return errExternal(err)
		}
	}
	return nil
}

// RestoreAsset rebinds a persisted allow-list entry without probing or
// writing back to the store. Used when reloading membership at startup.
func (a *Allowlist) RestoreAsset(addr [20]byte, registry AssetRegistry) {
	if a == nil || registry == nil {
		return
	}
	a.mu.Lock()
	a.assets[addr] = registry
	a.mu.Unlock()
}

// RestorePayment rebinds a persisted payment entry, mirroring RestoreAsset.
func (a *Allowlist) RestorePayment(addr [20]byte, ledger PaymentLedger) {
	if a == nil || ledger == nil {
		return
	}
	a.mu.Lock()
	a.payments[addr] = ledger
	a.mu.Unlock()
}

// IsTrustedAsset reports allow-list membership for an asset registry address.
func (a *Allowlist) IsTrustedAsset(addr [20]byte) bool {
	_, ok := a.TrustedAsset(addr)
	return ok
}

// IsTrustedPayment reports allow-list membership for a payment ledger
// address.
func (a *Allowlist) IsTrustedPayment(addr [20]byte) bool {
	_, ok := a.TrustedPayment(addr)
	return ok
}

// TrustedAsset resolves the registry bound to a trusted address.
func (a *Allowlist) TrustedAsset(addr [20]byte) (AssetRegistry, bool) {
	if a == nil {
		return nil, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	registry, ok := a.assets[addr]
	return registry, ok
}

// TrustedPayment resolves the ledger bound to a trusted address.
func (a *Allowlist) TrustedPayment(addr [20]byte) (PaymentLedger, bool) {
	if a == nil {
		return nil, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	ledger, ok := a.payments[addr]
	return ledger, ok
}

// requireOwner must be called with the mutex held.
func (a *Allowlist) requireOwner(caller [20]byte) error {
	if caller != a.owner {
		return errAuthorization(ReasonNotAdmin)
	}
	return nil
}
