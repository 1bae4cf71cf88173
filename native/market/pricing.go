package market

import "math/big"

// CurrentPrice computes the payment a sale requires at the supplied time.
//
// Fixed-price sales return their constant price for the whole open lifetime.
// Ascending auctions return the current floor a new bid must strictly exceed.
// Dutch auctions interpolate linearly between start and end price over the
// configured period, clamped at the end price once the period elapses. All
// arithmetic is integer; the interpolation multiplies before dividing so the
// only truncation happens on the final division.
func CurrentPrice(r *SaleRecord, now int64) *big.Int {
	if r == nil {
		return big.NewInt(0)
	}
	switch r.Kind {
	case KindFixedPrice:
		return cloneBigInt(r.Price)
	case KindAscendingAuction:
		return cloneBigInt(r.BidPrice)
	case KindDutchAuction:
		return dutchPrice(r, now)
	default:
		return big.NewInt(0)
	}
}

func dutchPrice(r *SaleRecord, now int64) *big.Int {
	start := cloneBigInt(r.StartPrice)
	end := cloneBigInt(r.EndPrice)
	if r.Period <= 0 {
		return start
	}
	elapsed := now - r.StartTime
	if elapsed <= 0 {
		return start
	}
	if elapsed >= r.Period {
		return end
	}
	span := new(big.Int).Sub(start, end)
	// span carries the direction: negative for an increasing auction, so the
	// subtraction below moves the price toward the end value either way.
	delta := new(big.Int).Mul(span, big.NewInt(elapsed))
	delta.Quo(delta, big.NewInt(r.Period))
	price := new(big.Int).Sub(start, delta)
	if end.Cmp(start) < 0 && price.Cmp(end) < 0 {
		return end
	}
	if end.Cmp(start) > 0 && price.Cmp(end) > 0 {
		return end
	}
	return price
}
