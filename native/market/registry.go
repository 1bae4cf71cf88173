package market

import (
	"fmt"
	"math/big"
)

// MemoryState is an in-process State backend: a dense append-only sale arena
// plus a native balance table. It stores sanitized clones so callers can
// never mutate a record without going back through SalePut.
type MemoryState struct {
	sales    []*SaleRecord
	balances map[[20]byte]*big.Int
}

// NewMemoryState constructs an empty in-memory backend.
func NewMemoryState() *MemoryState {
	return &MemoryState{balances: make(map[[20]byte]*big.Int)}
}

// SaleAppend assigns the next dense index and stores the record.
func (m *MemoryState) SaleAppend(rec *SaleRecord) (uint64, error) {
	if rec == nil {
		return 0, fmt.Errorf("nil sale record")
	}
	index := uint64(len(m.sales))
	rec.Index = index
	sanitized, err := SanitizeSale(rec)
	if err != nil {
		return 0, err
	}
	m.sales = append(m.sales, sanitized)
	return index, nil
}

// SaleGet returns a copy of the record at index.
func (m *MemoryState) SaleGet(index uint64) (*SaleRecord, bool) {
	if index >= uint64(len(m.sales)) {
		return nil, false
	}
	return m.sales[index].Clone(), true
}

// SalePut overwrites an existing record in place. The index must already be
// assigned; the arena never grows through SalePut.
func (m *MemoryState) SalePut(rec *SaleRecord) error {
	if rec == nil {
		return fmt.Errorf("nil sale record")
	}
	if rec.Index >= uint64(len(m.sales)) {
		return fmt.Errorf("unknown sale index %d", rec.Index)
	}
	sanitized, err := SanitizeSale(rec)
	if err != nil {
		return err
	}
	m.sales[rec.Index] = sanitized
	return nil
}

// SaleCount returns the number of records ever created.
func (m *MemoryState) SaleCount() uint64 {
	return uint64(len(m.sales))
}

// NativeBalance returns the native value held by an account.
func (m *MemoryState) NativeBalance(addr [20]byte) (*big.Int, error) {
	if bal, ok := m.balances[addr]; ok {
		return new(big.Int).Set(bal), nil
	}
	return big.NewInt(0), nil
}

// SetNativeBalance overwrites the native value held by an account.
func (m *MemoryState) SetNativeBalance(addr [20]byte, amount *big.Int) error {
	amt := cloneBigInt(amount)
	if amt.Sign() < 0 {
		return fmt.Errorf("negative native balance")
	}
	m.balances[addr] = amt
	return nil
}
