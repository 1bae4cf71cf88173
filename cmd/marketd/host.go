package main

import (
	"encoding/hex"
	"strings"
	"sync"

	"nftmarket/native/assets"
	"nftmarket/native/market"
	"nftmarket/native/token"
)

// contractHost materializes the in-process reference contracts the daemon
// serves. Each allow-listed address maps to one collection or ledger
// instance, created on first use and bound to the engine's custody account.
type contractHost struct {
	mu          sync.Mutex
	custody     [20]byte
	collections map[[20]byte]*assets.Collection
	ledgers     map[[20]byte]*token.Ledger
}

func newContractHost(custody [20]byte) *contractHost {
	return &contractHost{
		custody:     custody,
		collections: make(map[[20]byte]*assets.Collection),
		ledgers:     make(map[[20]byte]*token.Ledger),
	}
}

func contractSymbol(addr [20]byte) string {
	return strings.ToUpper(hex.EncodeToString(addr[:4]))
}

// AssetRegistry returns the engine-facing view of the collection at addr.
func (h *contractHost) AssetRegistry(addr [20]byte) (market.AssetRegistry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	col, ok := h.collections[addr]
	if !ok {
		col = assets.NewCollection(contractSymbol(addr))
		h.collections[addr] = col
	}
	return col.Bind(h.custody), nil
}

// PaymentLedger returns the engine-facing view of the ledger at addr.
func (h *contractHost) PaymentLedger(addr [20]byte) (market.PaymentLedger, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ledger, ok := h.ledgers[addr]
	if !ok {
		ledger = token.NewLedger(contractSymbol(addr))
		h.ledgers[addr] = ledger
	}
	return ledger.Bind(h.custody), nil
}
