// Package token provides an in-process reference implementation of the
// payment-ledger collaborator consumed by the marketplace engine: fungible
// balances with spend approvals, exposed through caller-bound views so that
// TransferFrom draws on the approval granted to the invoking account.
package token

import (
	"errors"
	"math/big"
	"strings"
	"sync"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the
	// sender's balance.
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	// ErrInsufficientAllowance is returned when TransferFrom exceeds the
	// spender's remaining approval.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	// ErrNegativeAmount is returned for negative transfer amounts.
	ErrNegativeAmount = errors.New("token: negative amount")
)

type approvalKey struct {
	owner   [20]byte
	spender [20]byte
}

// Ledger tracks balances and approvals for one fungible token.
type Ledger struct {
	mu         sync.RWMutex
	symbol     string
	supply     *big.Int
	balances   map[[20]byte]*big.Int
	allowances map[approvalKey]*big.Int
}

// NewLedger constructs an empty ledger with the given symbol.
func NewLedger(symbol string) *Ledger {
	return &Ledger{
		symbol:     strings.TrimSpace(symbol),
		supply:     big.NewInt(0),
		balances:   make(map[[20]byte]*big.Int),
		allowances: make(map[approvalKey]*big.Int),
	}
}

// Symbol returns the ledger's token symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// TotalSupply answers the capability probe used at allow-list registration.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.supply), nil
}

// Mint credits new tokens to an account, growing the supply.
func (l *Ledger) Mint(to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, amount)
	l.supply = new(big.Int).Add(l.supply, amount)
	return nil
}

// BalanceOf returns the balance held by an account.
func (l *Ledger) BalanceOf(addr [20]byte) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if bal, ok := l.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// Approve grants spender authority to draw up to amount from the owner's
// balance. A new approval overwrites the previous one.
func (l *Ledger) Approve(owner, spender [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[approvalKey{owner: owner, spender: spender}] = new(big.Int).Set(amount)
	return nil
}

// Allowance returns the remaining approval from owner to spender.
func (l *Ledger) Allowance(owner, spender [20]byte) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if a, ok := l.allowances[approvalKey{owner: owner, spender: spender}]; ok {
		return new(big.Int).Set(a)
	}
	return big.NewInt(0)
}

func (l *Ledger) credit(to [20]byte, amount *big.Int) {
	bal, ok := l.balances[to]
	if !ok {
		bal = big.NewInt(0)
	}
	l.balances[to] = new(big.Int).Add(bal, amount)
}

func (l *Ledger) debit(from [20]byte, amount *big.Int) error {
	bal, ok := l.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.balances[from] = new(big.Int).Sub(bal, amount)
	return nil
}

func (l *Ledger) transfer(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.credit(to, amount)
	return nil
}

func (l *Ledger) transferFrom(spender, from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	k := approvalKey{owner: from, spender: spender}
	remaining, ok := l.allowances[k]
	if !ok || remaining.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	l.credit(to, amount)
	l.allowances[k] = new(big.Int).Sub(remaining, amount)
	return nil
}

// View is a spender-bound handle on a ledger. It satisfies the payment
// ledger interface the marketplace engine consumes.
type View struct {
	ledger  *Ledger
	spender [20]byte
}

// Bind returns a view of the ledger acting as the supplied spender.
func (l *Ledger) Bind(spender [20]byte) *View {
	return &View{ledger: l, spender: spender}
}

// TotalSupply answers the capability probe.
func (v *View) TotalSupply() (*big.Int, error) { return v.ledger.TotalSupply() }

// TransferFrom draws amount from the approval granted to the bound spender.
func (v *View) TransferFrom(from, to [20]byte, amount *big.Int) error {
	return v.ledger.transferFrom(v.spender, from, to, amount)
}

// Transfer moves amount out of the bound spender's own balance.
func (v *View) Transfer(to [20]byte, amount *big.Int) error {
	return v.ledger.transfer(v.spender, to, amount)
}
