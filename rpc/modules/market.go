package modules

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/native/market"
)

// MarketModule exposes read helpers over the marketplace engine and its
// recorded event history.
type MarketModule struct {
	engine   *market.Engine
	recorder *events.Recorder
}

// NewMarketModule constructs a market RPC helper module.
func NewMarketModule(engine *market.Engine, recorder *events.Recorder) *MarketModule {
	return &MarketModule{engine: engine, recorder: recorder}
}

type getSaleParams struct {
	Index uint64 `json:"index"`
}

type listSalesParams struct {
	Status string `json:"status,omitempty"`
	Limit  *int   `json:"limit,omitempty"`
}

type listEventsParams struct {
	Limit *int `json:"limit,omitempty"`
}

type trustedParams struct {
	Address string `json:"address"`
	Kind    string `json:"kind"`
}

// SaleResult is the RPC representation of a sale record.
type SaleResult struct {
	Index        uint64  `json:"index"`
	Kind         string  `json:"kind"`
	Status       string  `json:"status"`
	Collection   string  `json:"collection"`
	PaymentAsset *string `json:"paymentAsset,omitempty"`
	AssetID      string  `json:"assetId"`
	Seller       string  `json:"seller"`
	CreatedAt    int64   `json:"createdAt"`
	Price        *string `json:"price,omitempty"`
	BidPrice     *string `json:"bidPrice,omitempty"`
	Bidder       *string `json:"bidder,omitempty"`
	BidCount     uint32  `json:"bidCount,omitempty"`
	EndTime      int64   `json:"endTime,omitempty"`
	StartPrice   *string `json:"startPrice,omitempty"`
	EndPrice     *string `json:"endPrice,omitempty"`
	StartTime    int64   `json:"startTime,omitempty"`
	Period       int64   `json:"period,omitempty"`
	CurrentPrice string  `json:"currentPrice"`
}

// EventResult represents a recorded marketplace event.
type EventResult struct {
	Sequence   uint64            `json:"sequence"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

var errMarketOffline = &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: "market module not initialised"}

func invalidParams(message string, data interface{}) *ModuleError {
	return &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeInvalidParams, Message: message, Data: data}
}

func (m *MarketModule) saleResult(rec *market.SaleRecord) *SaleResult {
	result := &SaleResult{
		Index:        rec.Index,
		Kind:         rec.Kind.String(),
		Status:       rec.Status.String(),
		Collection:   hex.EncodeToString(rec.Collection[:]),
		AssetID:      rec.AssetID.String(),
		Seller:       hex.EncodeToString(rec.Seller[:]),
		CreatedAt:    rec.CreatedAt,
		BidCount:     rec.BidCount,
		EndTime:      rec.EndTime,
		StartTime:    rec.StartTime,
		Period:       rec.Period,
		CurrentPrice: "0",
	}
	if !rec.NativeSettled() {
		payment := hex.EncodeToString(rec.PaymentAsset[:])
		result.PaymentAsset = &payment
	}
	if rec.Price != nil && rec.Price.Sign() > 0 {
		price := rec.Price.String()
		result.Price = &price
	}
	if rec.BidPrice != nil && rec.BidPrice.Sign() > 0 {
		bid := rec.BidPrice.String()
		result.BidPrice = &bid
	}
	if rec.Bidder != nil {
		bidder := hex.EncodeToString(rec.Bidder[:])
		result.Bidder = &bidder
	}
	if rec.StartPrice != nil && rec.StartPrice.Sign() > 0 {
		start := rec.StartPrice.String()
		result.StartPrice = &start
	}
	if rec.EndPrice != nil && rec.EndPrice.Sign() > 0 {
		end := rec.EndPrice.String()
		result.EndPrice = &end
	}
	if quoted, err := m.engine.QuotedPrice(rec.Index); err == nil {
		result.CurrentPrice = quoted.String()
	}
	return result
}

// GetSale resolves a single sale record by index.
func (m *MarketModule) GetSale(raw json.RawMessage) (*SaleResult, *ModuleError) {
	if m == nil || m.engine == nil {
		return nil, errMarketOffline
	}
	var params getSaleParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, invalidParams("invalid parameter object", err.Error())
	}
	rec, err := m.engine.GetSale(params.Index)
	if err != nil {
		return nil, &ModuleError{HTTPStatus: http.StatusNotFound, Code: codeNotFound, Message: err.Error()}
	}
	return m.saleResult(rec), nil
}

// ListSales returns records, newest first, optionally filtered by status.
func (m *MarketModule) ListSales(raw json.RawMessage) ([]*SaleResult, *ModuleError) {
	if m == nil || m.engine == nil {
		return nil, errMarketOffline
	}
	var params listSalesParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, invalidParams("invalid parameter object", err.Error())
		}
	}
	limit := 100
	if params.Limit != nil {
		if *params.Limit <= 0 {
			return nil, invalidParams("limit must be positive", nil)
		}
		limit = *params.Limit
	}
	statusFilter := strings.ToLower(strings.TrimSpace(params.Status))
	out := make([]*SaleResult, 0, limit)
	count := m.engine.SaleCount()
	for i := count; i > 0 && len(out) < limit; i-- {
		rec, err := m.engine.GetSale(i - 1)
		if err != nil {
			continue
		}
		if statusFilter != "" && rec.Status.String() != statusFilter {
			continue
		}
		out = append(out, m.saleResult(rec))
	}
	return out, nil
}

// CurrentPrice quotes the live price of a sale.
func (m *MarketModule) CurrentPrice(raw json.RawMessage) (string, *ModuleError) {
	if m == nil || m.engine == nil {
		return "", errMarketOffline
	}
	var params getSaleParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return "", invalidParams("invalid parameter object", err.Error())
	}
	price, err := m.engine.QuotedPrice(params.Index)
	if err != nil {
		return "", &ModuleError{HTTPStatus: http.StatusNotFound, Code: codeNotFound, Message: err.Error()}
	}
	return price.String(), nil
}

// ListEvents returns the recorded event log, oldest first.
func (m *MarketModule) ListEvents(raw json.RawMessage) ([]EventResult, *ModuleError) {
	if m == nil || m.recorder == nil {
		return nil, errMarketOffline
	}
	var params listEventsParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, invalidParams("invalid parameter object", err.Error())
		}
	}
	limit := 0
	if params.Limit != nil {
		if *params.Limit <= 0 {
			return nil, invalidParams("limit must be positive", nil)
		}
		limit = *params.Limit
	}
	recorded := m.recorder.Events(limit)
	out := make([]EventResult, 0, len(recorded))
	for _, entry := range recorded {
		result := EventResult{Sequence: entry.Sequence, Type: entry.Event.EventType()}
		if typed, ok := entry.Event.(interface{ Event() *types.Event }); ok {
			if payload := typed.Event(); payload != nil {
				result.Attributes = payload.Attributes
			}
		}
		out = append(out, result)
	}
	return out, nil
}

// IsTrusted reports allow-list membership for an address.
func (m *MarketModule) IsTrusted(raw json.RawMessage) (bool, *ModuleError) {
	if m == nil || m.engine == nil {
		return false, errMarketOffline
	}
	var params trustedParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return false, invalidParams("invalid parameter object", err.Error())
	}
	addr, ok := parseAddress(params.Address)
	if !ok {
		return false, invalidParams("address must be a 20-byte hex string", nil)
	}
	kind, ok := parseKind(params.Kind)
	if !ok {
		return false, invalidParams("kind must be asset or payment", nil)
	}
	allow := m.engine.Allowlist()
	if kind == market.ContractAsset {
		return allow.IsTrustedAsset(addr), nil
	}
	return allow.IsTrustedPayment(addr), nil
}
