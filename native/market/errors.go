package market

import "errors"

// ErrorKind classifies the failure modes surfaced by the engine. Every
// rejection carries a stable human-readable reason; the kind lets callers
// distinguish bad input from bad timing from a failing collaborator.
type ErrorKind uint8

const (
	// KindValidation marks malformed or out-of-range input.
	KindValidation ErrorKind = iota
	// KindAuthorization marks a caller lacking the required role.
	KindAuthorization
	// KindState marks an operation invalid for the record's current
	// status or timing.
	KindState
	// KindExternal marks a failure propagated verbatim from the asset
	// registry or payment ledger.
	KindExternal
)

// Error is the engine's rejection type. Reason strings are part of the
// observable contract and must stay stable.
type Error struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason != "" {
		return e.Reason
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "market: unknown error"
}

// Unwrap exposes the propagated collaborator error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Stable reason strings. These surface verbatim to callers.
const (
	ReasonInvalidIndex        = "Invalid index"
	ReasonSaleNotOpen         = "Sale is no longer open"
	ReasonAlreadyLiquidated   = "already liquidated"
	ReasonZeroPrice           = "Price must be greater than zero"
	ReasonZeroPeriod          = "Period must be greater than zero"
	ReasonFlatDutchPrice      = "Start and end price must differ"
	ReasonUntrustedAsset      = "Asset contract is not trusted"
	ReasonUntrustedPayment    = "Payment contract is not trusted"
	ReasonNotAssetOwner       = "Caller is not the asset owner"
	ReasonMissingApproval     = "Marketplace is not approved to transfer the asset"
	ReasonAuctionExpired      = "Auction has ended"
	ReasonAuctionInProgress   = "Auction is still in progress"
	ReasonLowBid              = "New bid price must be higher than the current price"
	ReasonSelfBid             = "Bidder cannot be the sale creator"
	ReasonInsufficientPayment = "Insufficient payment for the current price"
	ReasonNotSeller           = "Only the seller can end the sale"
	ReasonNotParticipant      = "Only the seller or winning bidder can claim"
	ReasonAuctionHasBids      = "Auction with bids cannot be canceled"
	ReasonNoBids              = "Auction received no bids"
	ReasonAuctionNotEndable   = "Ascending auctions settle through claim or cancel"
	ReasonNotAuction          = "Sale is not an ascending auction"
	ReasonNotBuyNow           = "Sale does not support direct purchase"
	ReasonNotAdmin            = "Caller is not the marketplace owner"
)

func errValidation(reason string) error {
	return &Error{Kind: KindValidation, Reason: reason}
}

func errAuthorization(reason string) error {
	return &Error{Kind: KindAuthorization, Reason: reason}
}

func errState(reason string) error {
	return &Error{Kind: KindState, Reason: reason}
}

func errExternal(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindExternal, Reason: err.Error(), Err: err}
}

// KindOf reports the classification of an engine error. The second return is
// false when the error did not originate from this package.
func KindOf(err error) (ErrorKind, bool) {
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Kind, true
	}
	return 0, false
}
