package market

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"nftmarket/core/events"
	"nftmarket/core/types"
	nativecommon "nftmarket/native/common"
)

var (
	errNilState     = errors.New("market engine: state not configured")
	errNilAllowlist = errors.New("market engine: allow-list not configured")
)

const marketModuleName = "market"

// State is the persistence backend consumed by the engine. The sale arena is
// dense and append-only: indices are assigned in creation order starting at
// zero and are never reused. Native balances model the value ledger of the
// execution substrate.
type State interface {
	SaleAppend(*SaleRecord) (uint64, error)
	SaleGet(index uint64) (*SaleRecord, bool)
	SalePut(*SaleRecord) error
	SaleCount() uint64
	NativeBalance(addr [20]byte) (*big.Int, error)
	SetNativeBalance(addr [20]byte, amount *big.Int) error
}

type marketEvent struct {
	evt *types.Event
}

func (e marketEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e marketEvent) Event() *types.Event { return e.evt }

// Engine is the escrow and settlement state machine. It custodies assets
// between sale creation and settlement, validates bids and purchases against
// the price model, and moves funds between parties through the external
// payment ledgers or the native value ledger.
//
// Every mutating entry point runs inside a non-reentrant critical section and
// commits its record mutation before initiating external transfers, so a
// reentrant call triggered by a transfer observes the already-updated status
// and is rejected by the normal preconditions. A failed external transfer
// rolls the record and any internal balance moves back, leaving no partial
// state behind.
type Engine struct {
	state    State
	allow    *Allowlist
	emitter  events.Emitter
	nowFn    func() int64
	guard    nativecommon.CallGuard
	pauses   nativecommon.PauseView
	address  [20]byte
	assets   map[[20]byte]AssetRegistry
	payments map[[20]byte]PaymentLedger
}

// NewEngine creates a marketplace engine bound to the supplied allow-list,
// with a no-op emitter. Callers can override the emitter via SetEmitter.
func NewEngine(allow *Allowlist) *Engine {
	return &Engine{
		allow:    allow,
		emitter:  events.NoopEmitter{},
		nowFn:    func() int64 { return time.Now().Unix() },
		address:  EngineAddress(),
		assets:   make(map[[20]byte]AssetRegistry),
		payments: make(map[[20]byte]PaymentLedger),
	}
}

// EngineAddress derives the deterministic account under which the engine
// custodies assets and escrowed funds.
func EngineAddress() [20]byte {
	hash := ethcrypto.Keccak256([]byte("nftmarket/engine/v1"))
	var addr [20]byte
	copy(addr[:], hash[12:])
	return addr
}

// Address returns the engine's custody account. Sellers grant this account
// transfer approval before opening a sale.
func (e *Engine) Address() [20]byte { return e.address }

// Allowlist exposes the trusted-contract registry backing the engine.
func (e *Engine) Allowlist() *Allowlist { return e.allow }

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state State) { e.state = state }

// SetPauses configures the module pause view consulted by every mutating
// operation.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(marketEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.allow == nil {
		return errNilAllowlist
	}
	return nil
}

// assetRegistryFor resolves the registry custodying a record's asset. The
// binding captured at open time wins so that revoking a contract from the
// allow-list never strands an asset already in escrow.
func (e *Engine) assetRegistryFor(rec *SaleRecord) (AssetRegistry, error) {
	if registry, ok := e.assets[rec.Collection]; ok {
		return registry, nil
	}
	if registry, ok := e.allow.TrustedAsset(rec.Collection); ok {
		return registry, nil
	}
	return nil, errValidation(ReasonUntrustedAsset)
}

func (e *Engine) paymentLedgerFor(rec *SaleRecord) (PaymentLedger, error) {
	if ledger, ok := e.payments[rec.PaymentAsset]; ok {
		return ledger, nil
	}
	if ledger, ok := e.allow.TrustedPayment(rec.PaymentAsset); ok {
		return ledger, nil
	}
	return nil, errValidation(ReasonUntrustedPayment)
}

// nativeDue converts a price in units to native base units.
func nativeDue(price *big.Int) *big.Int {
	return new(big.Int).Mul(cloneBigInt(price), NativeUnitScale)
}

func (e *Engine) transferNative(from, to [20]byte, amount *big.Int) error {
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if amt.Sign() < 0 {
		return fmt.Errorf("market: negative transfer amount")
	}
	fromBal, err := e.state.NativeBalance(from)
	if err != nil {
		return err
	}
	if fromBal == nil || fromBal.Cmp(amt) < 0 {
		return fmt.Errorf("market: insufficient native balance")
	}
	toBal, err := e.state.NativeBalance(to)
	if err != nil {
		return err
	}
	if toBal == nil {
		toBal = big.NewInt(0)
	}
	if err := e.state.SetNativeBalance(from, new(big.Int).Sub(fromBal, amt)); err != nil {
		return err
	}
	if err := e.state.SetNativeBalance(to, new(big.Int).Add(toBal, amt)); err != nil {
		return err
	}
	return nil
}

// txn sequences the external transfers of one operation. Steps run in order;
// when a step fails the already-applied steps are compensated in reverse so
// the whole operation leaves no side effects.
type txn struct {
	undos []func()
}

func (t *txn) step(run func() error, undo func()) error {
	if err := run(); err != nil {
		t.rollback()
		return err
	}
	if undo != nil {
		t.undos = append(t.undos, undo)
	}
	return nil
}

func (t *txn) rollback() {
	for i := len(t.undos) - 1; i >= 0; i-- {
		t.undos[i]()
	}
	t.undos = nil
}

// --- sale creation -----------------------------------------------------

// OpenFixedPriceSale escrows the asset and records a sale settling at a
// constant price. Returns the created record with its assigned index.
func (e *Engine) OpenFixedPriceSale(seller, collection, payment [20]byte, assetID, price *big.Int) (*SaleRecord, error) {
	if cloneBigInt(price).Sign() <= 0 {
		return nil, errValidation(ReasonZeroPrice)
	}
	rec := &SaleRecord{
		Kind:  KindFixedPrice,
		Price: cloneBigInt(price),
	}
	return e.openSale(rec, seller, collection, payment, assetID)
}

// OpenAscendingAuction escrows the asset and records an ascending auction.
// The floor is the price the first bid must strictly exceed; the auction
// accepts bids until now+duration.
func (e *Engine) OpenAscendingAuction(seller, collection, payment [20]byte, assetID, floor *big.Int, duration int64) (*SaleRecord, error) {
	if cloneBigInt(floor).Sign() <= 0 {
		return nil, errValidation(ReasonZeroPrice)
	}
	if duration <= 0 {
		return nil, errValidation(ReasonZeroPeriod)
	}
	rec := &SaleRecord{
		Kind:     KindAscendingAuction,
		BidPrice: cloneBigInt(floor),
		EndTime:  e.now() + duration,
	}
	return e.openSale(rec, seller, collection, payment, assetID)
}

// OpenDutchAuction escrows the asset and records a Dutch auction whose price
// interpolates from startPrice to endPrice over period seconds. Both
// decreasing and increasing flavours are supported; a flat curve is rejected.
func (e *Engine) OpenDutchAuction(seller, collection, payment [20]byte, assetID, startPrice, endPrice *big.Int, period int64) (*SaleRecord, error) {
	if period <= 0 {
		return nil, errValidation(ReasonZeroPeriod)
	}
	start := cloneBigInt(startPrice)
	end := cloneBigInt(endPrice)
	if start.Sign() <= 0 || end.Sign() <= 0 {
		return nil, errValidation(ReasonZeroPrice)
	}
	if start.Cmp(end) == 0 {
		return nil, errValidation(ReasonFlatDutchPrice)
	}
	rec := &SaleRecord{
		Kind:       KindDutchAuction,
		StartPrice: start,
		EndPrice:   end,
		StartTime:  e.now(),
		Period:     period,
	}
	return e.openSale(rec, seller, collection, payment, assetID)
}

func (e *Engine) openSale(rec *SaleRecord, seller, collection, payment [20]byte, assetID *big.Int) (*SaleRecord, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.guard.Enter(); err != nil {
		return nil, errState(err.Error())
	}
	defer e.guard.Exit()
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return nil, err
	}
	registry, ok := e.allow.TrustedAsset(collection)
	if !ok {
		return nil, errValidation(ReasonUntrustedAsset)
	}
	var ledger PaymentLedger
	if payment != NativePayment {
		ledger, ok = e.allow.TrustedPayment(payment)
		if !ok {
			return nil, errValidation(ReasonUntrustedPayment)
		}
	}
	id := cloneBigInt(assetID)
	owner, err := registry.OwnerOf(id)
	if err != nil {
		return nil, errExternal(err)
	}
	if owner != seller {
		return nil, errAuthorization(ReasonNotAssetOwner)
	}
	approved, err := registry.GetApproved(id)
	if err != nil {
		return nil, errExternal(err)
	}
	if approved != e.address {
		return nil, errValidation(ReasonMissingApproval)
	}

	rec.Collection = collection
	rec.PaymentAsset = payment
	rec.AssetID = id
	rec.Seller = seller
	rec.Status = SaleOpen
	rec.CreatedAt = e.now()

	// The asset is locked before the record exists so the arena never holds
	// an open record whose asset escrow failed. Nothing is observable by a
	// reentrant call until the index is assigned.
	if err := registry.Transfer(seller, e.address, id); err != nil {
		return nil, errExternal(err)
	}
	index, err := e.state.SaleAppend(rec)
	if err != nil {
		// Undo the escrow lock; the record was never created.
		_ = registry.Transfer(e.address, seller, id)
		return nil, err
	}
	rec.Index = index
	e.assets[collection] = registry
	if ledger != nil {
		e.payments[payment] = ledger
	}
	e.emit(NewSaleOpenedEvent(rec))
	return rec.Clone(), nil
}

// --- settlement --------------------------------------------------------

// Buy settles a fixed-price sale in favour of the buyer. Token sales pull the
// exact price from the buyer into engine custody, release the asset, then pay
// the seller; native sales require value of at least price times
// NativeUnitScale, forward exactly that amount to the seller and return any
// excess to the buyer.
func (e *Engine) Buy(index uint64, buyer [20]byte, value *big.Int) error {
	return e.mutate(index, func(rec *SaleRecord) error {
		if rec.Kind != KindFixedPrice {
			return errState(ReasonNotBuyNow)
		}
		if rec.Status != SaleOpen {
			return errState(ReasonSaleNotOpen)
		}
		registry, err := e.assetRegistryFor(rec)
		if err != nil {
			return err
		}
		var ledger PaymentLedger
		if !rec.NativeSettled() {
			if ledger, err = e.paymentLedgerFor(rec); err != nil {
				return err
			}
		} else {
			due := nativeDue(rec.Price)
			if cloneBigInt(value).Cmp(due) < 0 {
				return errValidation(ReasonInsufficientPayment)
			}
		}

		snapshot := rec.Clone()
		rec.Status = SaleSettled
		if err := e.state.SalePut(rec); err != nil {
			return err
		}
		var t txn
		restore := func() { _ = e.state.SalePut(snapshot) }
		if rec.NativeSettled() {
			due := nativeDue(rec.Price)
			attached := cloneBigInt(value)
			excess := new(big.Int).Sub(attached, due)
			if err := t.step(func() error { return e.transferNative(buyer, e.address, attached) },
				func() { _ = e.transferNative(e.address, buyer, attached) }); err != nil {
				restore()
				return errExternal(err)
			}
			if err := t.step(func() error { return e.transferNative(e.address, rec.Seller, due) },
				func() { _ = e.transferNative(rec.Seller, e.address, due) }); err != nil {
				restore()
				return errExternal(err)
			}
			if err := t.step(func() error { return e.transferNative(e.address, buyer, excess) },
				func() { _ = e.transferNative(buyer, e.address, excess) }); err != nil {
				restore()
				return errExternal(err)
			}
		} else {
			// The price routes through engine custody: every step before
			// the asset release can be unwound from funds the engine holds.
			if err := t.step(func() error { return ledger.TransferFrom(buyer, e.address, rec.Price) },
				func() { _ = ledger.Transfer(buyer, rec.Price) }); err != nil {
				restore()
				return errExternal(err)
			}
		}
		if err := registry.Transfer(e.address, buyer, rec.AssetID); err != nil {
			t.rollback()
			restore()
			return errExternal(err)
		}
		if !rec.NativeSettled() {
			// Payout comes after the release; the engine holds no claw-back
			// right on the ledger once the seller is paid. A failure here
			// keeps the price in engine custody.
			if err := ledger.Transfer(rec.Seller, rec.Price); err != nil {
				return errExternal(err)
			}
		}
		e.emit(NewAssetPurchasedEvent(rec, buyer, rec.Price))
		return nil
	})
}

// PlaceBid records a new highest bid on an ascending auction. The bid amount
// is escrowed by the engine and the previous bidder, if any, is refunded
// exactly what they had escrowed. The asset moves only at claim time.
func (e *Engine) PlaceBid(index uint64, bidder [20]byte, amount, value *big.Int) error {
	return e.mutate(index, func(rec *SaleRecord) error {
		if rec.Kind != KindAscendingAuction {
			return errState(ReasonNotAuction)
		}
		if rec.Status != SaleOpen {
			return errState(ReasonSaleNotOpen)
		}
		if e.now() >= rec.EndTime {
			return errState(ReasonAuctionExpired)
		}
		if bidder == rec.Seller {
			return errAuthorization(ReasonSelfBid)
		}
		bid := cloneBigInt(amount)
		if bid.Cmp(rec.BidPrice) <= 0 {
			return errState(ReasonLowBid)
		}
		var ledger PaymentLedger
		var err error
		if !rec.NativeSettled() {
			if ledger, err = e.paymentLedgerFor(rec); err != nil {
				return err
			}
		} else {
			due := nativeDue(bid)
			if cloneBigInt(value).Cmp(due) < 0 {
				return errValidation(ReasonInsufficientPayment)
			}
		}

		snapshot := rec.Clone()
		prevBidder := rec.Bidder
		prevPrice := cloneBigInt(snapshot.BidPrice)
		rec.BidPrice = bid
		rec.Bidder = &bidder
		rec.BidCount++
		if err := e.state.SalePut(rec); err != nil {
			return err
		}
		restore := func() { _ = e.state.SalePut(snapshot) }
		var t txn
		if rec.NativeSettled() {
			due := nativeDue(bid)
			attached := cloneBigInt(value)
			excess := new(big.Int).Sub(attached, due)
			if err := t.step(func() error { return e.transferNative(bidder, e.address, attached) },
				func() { _ = e.transferNative(e.address, bidder, attached) }); err != nil {
				restore()
				return errExternal(err)
			}
			if err := t.step(func() error { return e.transferNative(e.address, bidder, excess) },
				func() { _ = e.transferNative(bidder, e.address, excess) }); err != nil {
				restore()
				return errExternal(err)
			}
			if prevBidder != nil {
				if err := t.step(func() error { return e.transferNative(e.address, *prevBidder, nativeDue(prevPrice)) }, nil); err != nil {
					restore()
					return errExternal(err)
				}
			}
		} else {
			if err := t.step(func() error { return ledger.TransferFrom(bidder, e.address, bid) },
				func() { _ = ledger.Transfer(bidder, bid) }); err != nil {
				restore()
				return errExternal(err)
			}
			if prevBidder != nil {
				if err := t.step(func() error { return ledger.Transfer(*prevBidder, prevPrice) }, nil); err != nil {
					restore()
					return errExternal(err)
				}
			}
		}
		e.emit(NewBidPlacedEvent(rec, bidder, bid))
		return nil
	})
}

// AcceptPrice settles a Dutch auction at its live price. The amount charged
// is the computed current price, never the buyer's offer: token sales pull
// exactly the price so the excess never leaves the buyer, native sales refund
// any attached excess. The price clamps at the end price once the period
// elapses and the sale remains acceptable until the seller ends it.
func (e *Engine) AcceptPrice(index uint64, buyer [20]byte, offered, value *big.Int) error {
	return e.mutate(index, func(rec *SaleRecord) error {
		if rec.Kind != KindDutchAuction {
			return errState(ReasonNotBuyNow)
		}
		if rec.Status != SaleOpen {
			return errState(ReasonSaleNotOpen)
		}
		registry, err := e.assetRegistryFor(rec)
		if err != nil {
			return err
		}
		price := CurrentPrice(rec, e.now())
		offer := cloneBigInt(offered)
		var ledger PaymentLedger
		if !rec.NativeSettled() {
			if offer.Cmp(price) < 0 {
				return errValidation(ReasonInsufficientPayment)
			}
			if ledger, err = e.paymentLedgerFor(rec); err != nil {
				return err
			}
		} else if cloneBigInt(value).Cmp(nativeDue(price)) < 0 {
			return errValidation(ReasonInsufficientPayment)
		}

		snapshot := rec.Clone()
		rec.Status = SaleSettled
		if err := e.state.SalePut(rec); err != nil {
			return err
		}
		restore := func() { _ = e.state.SalePut(snapshot) }
		var t txn
		if rec.NativeSettled() {
			due := nativeDue(price)
			attached := cloneBigInt(value)
			excess := new(big.Int).Sub(attached, due)
			if err := t.step(func() error { return e.transferNative(buyer, e.address, attached) },
				func() { _ = e.transferNative(e.address, buyer, attached) }); err != nil {
				restore()
				return errExternal(err)
			}
			if err := t.step(func() error { return e.transferNative(e.address, rec.Seller, due) },
				func() { _ = e.transferNative(rec.Seller, e.address, due) }); err != nil {
				restore()
				return errExternal(err)
			}
			if err := t.step(func() error { return e.transferNative(e.address, buyer, excess) },
				func() { _ = e.transferNative(buyer, e.address, excess) }); err != nil {
				restore()
				return errExternal(err)
			}
		} else {
			if err := t.step(func() error { return ledger.TransferFrom(buyer, e.address, price) },
				func() { _ = ledger.Transfer(buyer, price) }); err != nil {
				restore()
				return errExternal(err)
			}
		}
		if err := registry.Transfer(e.address, buyer, rec.AssetID); err != nil {
			t.rollback()
			restore()
			return errExternal(err)
		}
		if !rec.NativeSettled() {
			if err := ledger.Transfer(rec.Seller, price); err != nil {
				return errExternal(err)
			}
		}
		e.emit(NewAssetPurchasedEvent(rec, buyer, price))
		return nil
	})
}

// Claim finalises an expired ascending auction: the escrowed asset goes to
// the winning bidder and the escrowed winning bid to the seller. Either party
// may invoke it; the first invocation performs both transfers and any replay
// fails with "already liquidated".
func (e *Engine) Claim(index uint64, caller [20]byte) error {
	return e.mutate(index, func(rec *SaleRecord) error {
		if rec.Kind != KindAscendingAuction {
			return errState(ReasonNotAuction)
		}
		if rec.Status == SaleSettled {
			return errState(ReasonAlreadyLiquidated)
		}
		if rec.Status != SaleOpen {
			return errState(ReasonSaleNotOpen)
		}
		if e.now() < rec.EndTime {
			return errState(ReasonAuctionInProgress)
		}
		if rec.Bidder == nil {
			return errState(ReasonNoBids)
		}
		winner := *rec.Bidder
		if caller != winner && caller != rec.Seller {
			return errAuthorization(ReasonNotParticipant)
		}
		registry, err := e.assetRegistryFor(rec)
		if err != nil {
			return err
		}
		var ledger PaymentLedger
		if !rec.NativeSettled() {
			if ledger, err = e.paymentLedgerFor(rec); err != nil {
				return err
			}
		}

		snapshot := rec.Clone()
		rec.Status = SaleSettled
		if err := e.state.SalePut(rec); err != nil {
			return err
		}
		restore := func() { _ = e.state.SalePut(snapshot) }
		if rec.NativeSettled() {
			var t txn
			if err := t.step(func() error { return e.transferNative(e.address, rec.Seller, nativeDue(rec.BidPrice)) },
				func() { _ = e.transferNative(rec.Seller, e.address, nativeDue(rec.BidPrice)) }); err != nil {
				restore()
				return errExternal(err)
			}
			if err := registry.Transfer(e.address, winner, rec.AssetID); err != nil {
				t.rollback()
				restore()
				return errExternal(err)
			}
		} else {
			// The asset leaves custody first: a failed release keeps the
			// escrowed bid and the record intact so the claim can retry.
			if err := registry.Transfer(e.address, winner, rec.AssetID); err != nil {
				restore()
				return errExternal(err)
			}
			if err := ledger.Transfer(rec.Seller, rec.BidPrice); err != nil {
				return errExternal(err)
			}
		}
		e.emit(NewAuctionSettledEvent(rec, winner, rec.BidPrice))
		return nil
	})
}

// Cancel returns the escrowed asset of an expired, bid-less ascending auction
// to its seller. Auctions that attracted a bid must settle through Claim.
func (e *Engine) Cancel(index uint64, caller [20]byte) error {
	return e.mutate(index, func(rec *SaleRecord) error {
		if rec.Kind != KindAscendingAuction {
			return errState(ReasonNotAuction)
		}
		if rec.Status != SaleOpen {
			return errState(ReasonSaleNotOpen)
		}
		if e.now() < rec.EndTime {
			return errState(ReasonAuctionInProgress)
		}
		if rec.BidCount > 0 {
			return errState(ReasonAuctionHasBids)
		}
		if caller != rec.Seller {
			return errAuthorization(ReasonNotSeller)
		}
		return e.returnAsset(rec)
	})
}

// EndSale lets the seller withdraw an unsold fixed-price or Dutch sale at any
// time while it is still open, returning the escrowed asset.
func (e *Engine) EndSale(index uint64, caller [20]byte) error {
	return e.mutate(index, func(rec *SaleRecord) error {
		if rec.Kind == KindAscendingAuction {
			return errState(ReasonAuctionNotEndable)
		}
		if rec.Status != SaleOpen {
			return errState(ReasonSaleNotOpen)
		}
		if caller != rec.Seller {
			return errAuthorization(ReasonNotSeller)
		}
		return e.returnAsset(rec)
	})
}

func (e *Engine) returnAsset(rec *SaleRecord) error {
	registry, err := e.assetRegistryFor(rec)
	if err != nil {
		return err
	}
	snapshot := rec.Clone()
	rec.Status = SaleCanceled
	if err := e.state.SalePut(rec); err != nil {
		return err
	}
	if err := registry.Transfer(e.address, rec.Seller, rec.AssetID); err != nil {
		_ = e.state.SalePut(snapshot)
		return errExternal(err)
	}
	e.emit(NewSaleCanceledEvent(rec))
	return nil
}

// mutate runs fn against the record at index inside the engine's critical
// section. fn receives the stored record and is responsible for committing
// its own mutation through SalePut.
func (e *Engine) mutate(index uint64, fn func(*SaleRecord) error) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.guard.Enter(); err != nil {
		return errState(err.Error())
	}
	defer e.guard.Exit()
	if err := nativecommon.Guard(e.pauses, marketModuleName); err != nil {
		return err
	}
	rec, ok := e.state.SaleGet(index)
	if !ok {
		return errValidation(ReasonInvalidIndex)
	}
	return fn(rec)
}

// --- reads -------------------------------------------------------------

// GetSale returns a copy of the record at index, failing with the invalid
// index reason when the index was never assigned.
func (e *Engine) GetSale(index uint64) (*SaleRecord, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	rec, ok := e.state.SaleGet(index)
	if !ok {
		return nil, errValidation(ReasonInvalidIndex)
	}
	return rec.Clone(), nil
}

// SaleCount returns the number of records ever created.
func (e *Engine) SaleCount() uint64 {
	if e == nil || e.state == nil {
		return 0
	}
	return e.state.SaleCount()
}

// QuotedPrice returns the payment currently required by the record at index.
func (e *Engine) QuotedPrice(index uint64) (*big.Int, error) {
	rec, err := e.GetSale(index)
	if err != nil {
		return nil, err
	}
	return CurrentPrice(rec, e.now()), nil
}
