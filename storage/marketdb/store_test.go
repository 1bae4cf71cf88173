package marketdb

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nftmarket/native/market"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func addr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func sampleSale() *market.SaleRecord {
	bidder := addr(0x04)
	return &market.SaleRecord{
		Kind:         market.KindAscendingAuction,
		Collection:   addr(0xA1),
		PaymentAsset: addr(0xB1),
		AssetID:      big.NewInt(7),
		Seller:       addr(0x02),
		Status:       market.SaleOpen,
		CreatedAt:    1000,
		BidPrice:     big.NewInt(500),
		Bidder:       &bidder,
		BidCount:     1,
		EndTime:      4600,
	}
}

func TestSaleAppendAssignsDenseIndices(t *testing.T) {
	store := openTestStore(t)

	first, err := store.SaleAppend(sampleSale())
	require.NoError(t, err)
	require.Equal(t, uint64(0), first)

	second, err := store.SaleAppend(sampleSale())
	require.NoError(t, err)
	require.Equal(t, uint64(1), second)
	require.Equal(t, uint64(2), store.SaleCount())
}

func TestSaleRoundTrip(t *testing.T) {
	store := openTestStore(t)
	rec := sampleSale()
	index, err := store.SaleAppend(rec)
	require.NoError(t, err)

	got, ok := store.SaleGet(index)
	require.True(t, ok)
	require.Equal(t, rec.Kind, got.Kind)
	require.Equal(t, rec.Seller, got.Seller)
	require.Equal(t, 0, rec.AssetID.Cmp(got.AssetID))
	require.Equal(t, 0, rec.BidPrice.Cmp(got.BidPrice))
	require.NotNil(t, got.Bidder)
	require.Equal(t, *rec.Bidder, *got.Bidder)

	got.Status = market.SaleSettled
	require.NoError(t, store.SalePut(got))
	reread, ok := store.SaleGet(index)
	require.True(t, ok)
	require.Equal(t, market.SaleSettled, reread.Status)

	_, ok = store.SaleGet(99)
	require.False(t, ok)
}

func TestSalePutRejectsUnknownIndex(t *testing.T) {
	store := openTestStore(t)
	rec := sampleSale()
	rec.Index = 5
	require.Error(t, store.SalePut(rec))
}

func TestNativeBalances(t *testing.T) {
	store := openTestStore(t)
	account := addr(0x09)

	balance, err := store.NativeBalance(account)
	require.NoError(t, err)
	require.Equal(t, int64(0), balance.Int64())

	require.NoError(t, store.SetNativeBalance(account, big.NewInt(42)))
	balance, err = store.NativeBalance(account)
	require.NoError(t, err)
	require.Equal(t, int64(42), balance.Int64())

	require.Error(t, store.SetNativeBalance(account, big.NewInt(-1)))
}

func TestAllowlistPersistence(t *testing.T) {
	store := openTestStore(t)
	asset := addr(0xA1)
	payment := addr(0xB1)

	require.NoError(t, store.AllowlistPut(market.ContractAsset, asset))
	require.NoError(t, store.AllowlistPut(market.ContractPayment, payment))

	assetsList, err := store.AllowlistAddresses(market.ContractAsset)
	require.NoError(t, err)
	require.Equal(t, [][20]byte{asset}, assetsList)

	require.NoError(t, store.AllowlistDelete(market.ContractAsset, asset))
	require.NoError(t, store.AllowlistDelete(market.ContractAsset, asset))
	assetsList, err = store.AllowlistAddresses(market.ContractAsset)
	require.NoError(t, err)
	require.Empty(t, assetsList)
}

func TestOwnerRoundTrip(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.OwnerGet()
	require.NoError(t, err)
	require.False(t, found)

	admin := addr(0x01)
	require.NoError(t, store.OwnerPut(admin))
	got, found, err := store.OwnerGet()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, admin, got)
}
