package market

import (
	"fmt"
	"math/big"
)

// SaleKind distinguishes the three supported sale shapes.
type SaleKind uint8

const (
	KindFixedPrice SaleKind = iota
	KindAscendingAuction
	KindDutchAuction
)

// String returns the canonical lowercase name of the sale kind.
func (k SaleKind) String() string {
	switch k {
	case KindFixedPrice:
		return "fixed"
	case KindAscendingAuction:
		return "ascending"
	case KindDutchAuction:
		return "dutch"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Valid reports whether the kind is within the supported range.
func (k SaleKind) Valid() bool {
	switch k {
	case KindFixedPrice, KindAscendingAuction, KindDutchAuction:
		return true
	default:
		return false
	}
}

// SaleStatus represents the lifecycle states of a sale record. Transitions are
// one-directional: Open moves to exactly one of Settled or Canceled and the
// record is immutable afterwards.
type SaleStatus uint8

const (
	SaleOpen SaleStatus = iota
	SaleSettled
	SaleCanceled
)

// String returns the canonical lowercase name of the status.
func (s SaleStatus) String() string {
	switch s {
	case SaleOpen:
		return "open"
	case SaleSettled:
		return "settled"
	case SaleCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Valid reports whether the status value is within the supported range.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleOpen, SaleSettled, SaleCanceled:
		return true
	default:
		return false
	}
}

// NativePayment is the sentinel payment-asset address meaning the sale settles
// in native value attached to the call rather than through a payment ledger.
var NativePayment = [20]byte{}

// NativeUnitScale converts caller-specified price units into native base
// units: one unit equals 10^18 base units. Attached native value is compared
// against price multiplied by this constant.
var NativeUnitScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// SaleRecord is the per-sale entry tracked by the sale registry. Fields beyond
// the common set are meaningful only for the record's kind.
type SaleRecord struct {
	Index        uint64
	Kind         SaleKind
	Collection   [20]byte
	PaymentAsset [20]byte
	AssetID      *big.Int
	Seller       [20]byte
	Status       SaleStatus
	CreatedAt    int64

	// Fixed price.
	Price *big.Int

	// Ascending auction. BidPrice starts at the floor the first bid must
	// exceed; Bidder is nil until the first bid lands.
	BidPrice *big.Int
	Bidder   *[20]byte
	BidCount uint32
	EndTime  int64

	// Dutch auction.
	StartPrice *big.Int
	EndPrice   *big.Int
	StartTime  int64
	Period     int64
}

// NativeSettled reports whether the sale settles in attached native value.
func (r *SaleRecord) NativeSettled() bool {
	return r != nil && r.PaymentAsset == NativePayment
}

// Clone returns a deep copy of the record so callers can safely mutate the
// copy without affecting the stored instance.
func (r *SaleRecord) Clone() *SaleRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.AssetID = cloneBigInt(r.AssetID)
	clone.Price = cloneBigInt(r.Price)
	clone.BidPrice = cloneBigInt(r.BidPrice)
	clone.StartPrice = cloneBigInt(r.StartPrice)
	clone.EndPrice = cloneBigInt(r.EndPrice)
	if r.Bidder != nil {
		bidder := *r.Bidder
		clone.Bidder = &bidder
	}
	return &clone
}

// SanitizeSale validates and normalises the supplied record, returning a
// cloned instance with non-nil amount fields. The original is not mutated.
func SanitizeSale(r *SaleRecord) (*SaleRecord, error) {
	if r == nil {
		return nil, fmt.Errorf("nil sale record")
	}
	if !r.Kind.Valid() {
		return nil, fmt.Errorf("invalid sale kind: %d", r.Kind)
	}
	if !r.Status.Valid() {
		return nil, fmt.Errorf("invalid sale status: %d", r.Status)
	}
	clone := r.Clone()
	if clone.AssetID.Sign() < 0 {
		return nil, fmt.Errorf("asset id must be non-negative")
	}
	switch clone.Kind {
	case KindFixedPrice:
		if clone.Price.Sign() <= 0 {
			return nil, fmt.Errorf("fixed price must be positive")
		}
	case KindAscendingAuction:
		if clone.BidPrice.Sign() <= 0 {
			return nil, fmt.Errorf("bid floor must be positive")
		}
		if clone.BidCount > 0 && clone.Bidder == nil {
			return nil, fmt.Errorf("auction with bids is missing its bidder")
		}
	case KindDutchAuction:
		if clone.Period <= 0 {
			return nil, fmt.Errorf("dutch period must be positive")
		}
		if clone.StartPrice.Sign() <= 0 || clone.EndPrice.Sign() <= 0 {
			return nil, fmt.Errorf("dutch prices must be positive")
		}
	}
	return clone, nil
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
