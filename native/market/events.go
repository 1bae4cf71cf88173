package market

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"nftmarket/core/types"
)

const (
	EventTypeSaleOpened     = "market.sale.opened"
	EventTypeBidPlaced      = "market.auction.bid"
	EventTypeAuctionSettled = "market.auction.settled"
	EventTypeSaleCanceled   = "market.sale.canceled"
	EventTypeAssetPurchased = "market.asset.purchased"
)

// NewSaleOpenedEvent returns the canonical payload emitted when a sale record
// is created and the asset enters escrow.
func NewSaleOpenedEvent(r *SaleRecord) *types.Event {
	return newSaleEvent(EventTypeSaleOpened, r, nil)
}

// NewBidPlacedEvent returns the payload emitted when an ascending-auction bid
// is accepted, carrying the bid amount and bidder.
func NewBidPlacedEvent(r *SaleRecord, bidder [20]byte, amount *big.Int) *types.Event {
	extra := map[string]string{
		"bidder": hex.EncodeToString(bidder[:]),
		"amount": cloneBigInt(amount).String(),
	}
	return newSaleEvent(EventTypeBidPlaced, r, extra)
}

// NewAuctionSettledEvent returns the payload emitted when an expired auction
// is claimed, carrying the winning bidder and amount.
func NewAuctionSettledEvent(r *SaleRecord, winner [20]byte, amount *big.Int) *types.Event {
	extra := map[string]string{
		"winner": hex.EncodeToString(winner[:]),
		"amount": cloneBigInt(amount).String(),
	}
	return newSaleEvent(EventTypeAuctionSettled, r, extra)
}

// NewSaleCanceledEvent returns the payload emitted when an unsold sale is
// canceled or ended early and the asset returns to the seller.
func NewSaleCanceledEvent(r *SaleRecord) *types.Event {
	return newSaleEvent(EventTypeSaleCanceled, r, nil)
}

// NewAssetPurchasedEvent returns the payload emitted on fixed-price or Dutch
// settlement, carrying the buyer and the amount actually paid.
func NewAssetPurchasedEvent(r *SaleRecord, buyer [20]byte, paid *big.Int) *types.Event {
	extra := map[string]string{
		"buyer": hex.EncodeToString(buyer[:]),
		"paid":  cloneBigInt(paid).String(),
	}
	return newSaleEvent(EventTypeAssetPurchased, r, extra)
}

func newSaleEvent(eventType string, r *SaleRecord, extra map[string]string) *types.Event {
	attrs := make(map[string]string)
	if r == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	sanitized, err := SanitizeSale(r)
	if err != nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["index"] = strconv.FormatUint(sanitized.Index, 10)
	attrs["kind"] = sanitized.Kind.String()
	attrs["status"] = sanitized.Status.String()
	attrs["collection"] = hex.EncodeToString(sanitized.Collection[:])
	attrs["assetId"] = sanitized.AssetID.String()
	attrs["seller"] = hex.EncodeToString(sanitized.Seller[:])
	if !sanitized.NativeSettled() {
		attrs["paymentAsset"] = hex.EncodeToString(sanitized.PaymentAsset[:])
	}
	for k, v := range extra {
		attrs[k] = v
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}
