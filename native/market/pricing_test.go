package market

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func dutchRecord(start, end int64, startTime, period int64) *SaleRecord {
	return &SaleRecord{
		Kind:       KindDutchAuction,
		StartPrice: big.NewInt(start),
		EndPrice:   big.NewInt(end),
		StartTime:  startTime,
		Period:     period,
	}
}

func TestCurrentPriceFixed(t *testing.T) {
	rec := &SaleRecord{Kind: KindFixedPrice, Price: big.NewInt(50)}
	require.Equal(t, int64(50), CurrentPrice(rec, 0).Int64())
	require.Equal(t, int64(50), CurrentPrice(rec, 1<<40).Int64())
}

func TestCurrentPriceAscendingReturnsFloor(t *testing.T) {
	rec := &SaleRecord{Kind: KindAscendingAuction, BidPrice: big.NewInt(500)}
	require.Equal(t, int64(500), CurrentPrice(rec, 123).Int64())
}

func TestDutchPriceDecreasing(t *testing.T) {
	rec := dutchRecord(100, 50, 1000, 1000)
	require.Equal(t, int64(100), CurrentPrice(rec, 900).Int64(), "before start")
	require.Equal(t, int64(100), CurrentPrice(rec, 1000).Int64())
	require.Equal(t, int64(75), CurrentPrice(rec, 1500).Int64(), "midpoint")
	require.Equal(t, int64(50), CurrentPrice(rec, 2000).Int64())
	require.Equal(t, int64(50), CurrentPrice(rec, 5000).Int64(), "clamped past period")
}

func TestDutchPriceIncreasing(t *testing.T) {
	rec := dutchRecord(50, 100, 0, 1000)
	require.Equal(t, int64(50), CurrentPrice(rec, 0).Int64())
	require.Equal(t, int64(75), CurrentPrice(rec, 500).Int64())
	require.Equal(t, int64(100), CurrentPrice(rec, 1000).Int64())
	require.Equal(t, int64(100), CurrentPrice(rec, 9999).Int64())
}

func TestDutchPriceMultipliesBeforeDividing(t *testing.T) {
	// span=9 over period=3: naive divide-first (9/3 per step applied to a
	// pre-divided elapsed fraction) would truncate to zero for elapsed=1 if
	// the division happened before the multiplication.
	rec := dutchRecord(10, 1, 0, 3)
	require.Equal(t, int64(7), CurrentPrice(rec, 1).Int64())
	require.Equal(t, int64(4), CurrentPrice(rec, 2).Int64())
	require.Equal(t, int64(1), CurrentPrice(rec, 3).Int64())
}

func TestDutchPriceLargeValuesNoOverflow(t *testing.T) {
	start, ok := new(big.Int).SetString("100000000000000000000", 10)
	require.True(t, ok)
	end := big.NewInt(1)
	rec := &SaleRecord{
		Kind:       KindDutchAuction,
		StartPrice: start,
		EndPrice:   end,
		StartTime:  0,
		Period:     1_000_000,
	}
	half := CurrentPrice(rec, 500_000)
	require.Equal(t, 1, half.Cmp(end))
	require.Equal(t, -1, half.Cmp(start))
}
