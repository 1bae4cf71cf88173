package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"nftmarket/core/events"
	"nftmarket/native/assets"
	"nftmarket/native/market"
	"nftmarket/native/token"
	"nftmarket/rpc/modules"
)

func addr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func newTestServer(t *testing.T) (*httptest.Server, *market.Engine) {
	t.Helper()
	admin := addr(0x01)
	seller := addr(0x02)
	colAddr := addr(0xA1)
	tokAddr := addr(0xB1)

	allow := market.NewAllowlist(admin)
	engine := market.NewEngine(allow)
	engine.SetState(market.NewMemoryState())
	recorder := events.NewRecorder()
	engine.SetEmitter(recorder)

	col := assets.NewCollection("ART")
	ledger := token.NewLedger("PAY")
	require.NoError(t, allow.RegisterAsset(admin, colAddr, col.Bind(engine.Address())))
	require.NoError(t, allow.RegisterPayment(admin, tokAddr, ledger.Bind(engine.Address())))

	id := big.NewInt(1)
	require.NoError(t, col.Mint(seller, id))
	require.NoError(t, col.Approve(seller, engine.Address(), id))
	_, err := engine.OpenFixedPriceSale(seller, colAddr, tokAddr, id, big.NewInt(50))
	require.NoError(t, err)

	server := NewServer(modules.NewMarketModule(engine, recorder), modules.NewAdminModule(allow, testHost{engine.Address()}), nil)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts, engine
}

// testHost hands out fresh reference contracts for any address.
type testHost struct {
	custody [20]byte
}

func (h testHost) AssetRegistry(addr [20]byte) (market.AssetRegistry, error) {
	return assets.NewCollection("ART").Bind(h.custody), nil
}

func (h testHost) PaymentLedger(addr [20]byte) (market.PaymentLedger, error) {
	return token.NewLedger("PAY").Bind(h.custody), nil
}

func call(t *testing.T, ts *httptest.Server, method string, params interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	body := map[string]interface{}{"id": 1, "method": method}
	if params != nil {
		body["params"] = params
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestGetSaleOverRPC(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, decoded := call(t, ts, "market_getSale", map[string]interface{}{"index": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := decoded["result"].(map[string]interface{})
	require.Equal(t, "fixed", result["kind"])
	require.Equal(t, "open", result["status"])
	require.Equal(t, "50", result["currentPrice"])
}

func TestGetSaleUnknownIndex(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, decoded := call(t, ts, "market_getSale", map[string]interface{}{"index": 42})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	rerr := decoded["error"].(map[string]interface{})
	require.Equal(t, market.ReasonInvalidIndex, rerr["message"])
}

func TestListSalesAndEvents(t *testing.T) {
	ts, _ := newTestServer(t)

	_, decoded := call(t, ts, "market_listSales", nil)
	sales := decoded["result"].([]interface{})
	require.Len(t, sales, 1)

	_, decoded = call(t, ts, "market_listEvents", nil)
	eventsList := decoded["result"].([]interface{})
	require.Len(t, eventsList, 1)
	first := eventsList[0].(map[string]interface{})
	require.Equal(t, market.EventTypeSaleOpened, first["type"])
}

func TestIsTrusted(t *testing.T) {
	ts, _ := newTestServer(t)
	_, decoded := call(t, ts, "market_isTrusted", map[string]interface{}{
		"address": "a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1a1",
		"kind":    "asset",
	})
	require.Equal(t, true, decoded["result"])

	_, decoded = call(t, ts, "market_isTrusted", map[string]interface{}{
		"address": "ffffffffffffffffffffffffffffffffffffffff",
		"kind":    "payment",
	})
	require.Equal(t, false, decoded["result"])
}

func TestAdminRegisterAndRevokeOverRPC(t *testing.T) {
	ts, _ := newTestServer(t)
	target := "cccccccccccccccccccccccccccccccccccccccc"

	_, decoded := call(t, ts, "market_registerContract", map[string]interface{}{
		"caller":  "0101010101010101010101010101010101010101",
		"address": target,
		"kind":    "payment",
	})
	require.Equal(t, true, decoded["result"])

	_, decoded = call(t, ts, "market_isTrusted", map[string]interface{}{"address": target, "kind": "payment"})
	require.Equal(t, true, decoded["result"])

	_, decoded = call(t, ts, "market_revokeContract", map[string]interface{}{
		"caller":  "0101010101010101010101010101010101010101",
		"address": target,
		"kind":    "payment",
	})
	require.Equal(t, true, decoded["result"])

	_, decoded = call(t, ts, "market_isTrusted", map[string]interface{}{"address": target, "kind": "payment"})
	require.Equal(t, false, decoded["result"])
}

func TestAdminMethodsRejectNonOwner(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, decoded := call(t, ts, "market_registerContract", map[string]interface{}{
		"caller":  "0202020202020202020202020202020202020202",
		"address": "cccccccccccccccccccccccccccccccccccccccc",
		"kind":    "asset",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	rerr := decoded["error"].(map[string]interface{})
	require.Equal(t, market.ReasonNotAdmin, rerr["message"])
}

func TestAdminTransferOwnershipOverRPC(t *testing.T) {
	ts, _ := newTestServer(t)
	next := "0303030303030303030303030303030303030303"

	_, decoded := call(t, ts, "market_transferOwnership", map[string]interface{}{
		"caller": "0101010101010101010101010101010101010101",
		"next":   next,
	})
	require.Equal(t, next, decoded["result"])

	_, decoded = call(t, ts, "market_owner", nil)
	require.Equal(t, next, decoded["result"])

	// The old owner lost the role.
	resp, _ := call(t, ts, "market_registerContract", map[string]interface{}{
		"caller":  "0101010101010101010101010101010101010101",
		"address": "dddddddddddddddddddddddddddddddddddddddd",
		"kind":    "asset",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUnknownMethod(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, decoded := call(t, ts, "market_doesNotExist", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, decoded["error"])
}
