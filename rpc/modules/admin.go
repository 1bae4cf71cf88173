package modules

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"nftmarket/native/market"
)

// ContractHost resolves the live collaborator serving a contract address so
// the admin surface can hand the allow-list something it can probe and bind.
type ContractHost interface {
	AssetRegistry(addr [20]byte) (market.AssetRegistry, error)
	PaymentLedger(addr [20]byte) (market.PaymentLedger, error)
}

// AdminModule exposes the allow-list mutation surface: contract registration,
// revocation and ownership transfer. Authorization is enforced by the
// allow-list against the caller address carried in the request.
type AdminModule struct {
	allow *market.Allowlist
	host  ContractHost
}

// NewAdminModule constructs the admin RPC helper module.
func NewAdminModule(allow *market.Allowlist, host ContractHost) *AdminModule {
	return &AdminModule{allow: allow, host: host}
}

type contractParams struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
	Kind    string `json:"kind"`
}

type ownershipParams struct {
	Caller string `json:"caller"`
	Next   string `json:"next"`
}

var errAdminOffline = &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: "admin module not initialised"}

func parseAddress(value string) ([20]byte, bool) {
	var addr [20]byte
	decoded, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(value), "0x"))
	if err != nil || len(decoded) != 20 {
		return addr, false
	}
	copy(addr[:], decoded)
	return addr, true
}

func parseKind(value string) (market.ContractKind, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "asset":
		return market.ContractAsset, true
	case "payment":
		return market.ContractPayment, true
	default:
		return 0, false
	}
}

func adminError(err error) *ModuleError {
	if kind, ok := market.KindOf(err); ok && kind == market.KindAuthorization {
		return &ModuleError{HTTPStatus: http.StatusForbidden, Code: codeNotFound, Message: err.Error()}
	}
	return &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: err.Error()}
}

// RegisterContract adds a contract to the allow-list. Returns whether the
// address is trusted afterwards: a failed capability probe leaves it out
// without surfacing an error.
func (m *AdminModule) RegisterContract(raw json.RawMessage) (bool, *ModuleError) {
	if m == nil || m.allow == nil || m.host == nil {
		return false, errAdminOffline
	}
	var params contractParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return false, invalidParams("invalid parameter object", err.Error())
	}
	caller, ok := parseAddress(params.Caller)
	if !ok {
		return false, invalidParams("caller must be a 20-byte hex string", nil)
	}
	addr, ok := parseAddress(params.Address)
	if !ok {
		return false, invalidParams("address must be a 20-byte hex string", nil)
	}
	kind, ok := parseKind(params.Kind)
	if !ok {
		return false, invalidParams("kind must be asset or payment", nil)
	}
	switch kind {
	case market.ContractAsset:
		registry, err := m.host.AssetRegistry(addr)
		if err != nil {
			return false, adminError(err)
		}
		if err := m.allow.RegisterAsset(caller, addr, registry); err != nil {
			return false, adminError(err)
		}
		return m.allow.IsTrustedAsset(addr), nil
	default:
		ledger, err := m.host.PaymentLedger(addr)
		if err != nil {
			return false, adminError(err)
		}
		if err := m.allow.RegisterPayment(caller, addr, ledger); err != nil {
			return false, adminError(err)
		}
		return m.allow.IsTrustedPayment(addr), nil
	}
}

// RevokeContract removes a contract from the allow-list. Revoking an unknown
// address succeeds.
func (m *AdminModule) RevokeContract(raw json.RawMessage) (bool, *ModuleError) {
	if m == nil || m.allow == nil {
		return false, errAdminOffline
	}
	var params contractParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return false, invalidParams("invalid parameter object", err.Error())
	}
	caller, ok := parseAddress(params.Caller)
	if !ok {
		return false, invalidParams("caller must be a 20-byte hex string", nil)
	}
	addr, ok := parseAddress(params.Address)
	if !ok {
		return false, invalidParams("address must be a 20-byte hex string", nil)
	}
	kind, ok := parseKind(params.Kind)
	if !ok {
		return false, invalidParams("kind must be asset or payment", nil)
	}
	if err := m.allow.Revoke(caller, addr, kind); err != nil {
		return false, adminError(err)
	}
	return true, nil
}

// TransferOwnership hands the admin role to a new principal.
func (m *AdminModule) TransferOwnership(raw json.RawMessage) (string, *ModuleError) {
	if m == nil || m.allow == nil {
		return "", errAdminOffline
	}
	var params ownershipParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return "", invalidParams("invalid parameter object", err.Error())
	}
	caller, ok := parseAddress(params.Caller)
	if !ok {
		return "", invalidParams("caller must be a 20-byte hex string", nil)
	}
	next, ok := parseAddress(params.Next)
	if !ok {
		return "", invalidParams("next must be a 20-byte hex string", nil)
	}
	if err := m.allow.TransferOwnership(caller, next); err != nil {
		return "", adminError(err)
	}
	return hex.EncodeToString(next[:]), nil
}

// Owner reports the current admin principal.
func (m *AdminModule) Owner() (string, *ModuleError) {
	if m == nil || m.allow == nil {
		return "", errAdminOffline
	}
	owner := m.allow.Owner()
	return hex.EncodeToString(owner[:]), nil
}
