package market

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

type probeRegistry struct {
	fail bool
}

func (p *probeRegistry) Symbol() (string, error) {
	if p.fail {
		return "", errors.New("no symbol")
	}
	return "TEST", nil
}
func (p *probeRegistry) OwnerOf(*big.Int) ([20]byte, error)     { return [20]byte{}, nil }
func (p *probeRegistry) GetApproved(*big.Int) ([20]byte, error) { return [20]byte{}, nil }
func (p *probeRegistry) Transfer(_, _ [20]byte, _ *big.Int) error {
	return nil
}

type probeLedger struct {
	fail bool
}

func (p *probeLedger) TotalSupply() (*big.Int, error) {
	if p.fail {
		return nil, errors.New("no supply")
	}
	return big.NewInt(0), nil
}
func (p *probeLedger) TransferFrom(_, _ [20]byte, _ *big.Int) error { return nil }
func (p *probeLedger) Transfer(_ [20]byte, _ *big.Int) error        { return nil }

func testAddr(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func TestAllowlistOwnerGate(t *testing.T) {
	admin := testAddr(0x01)
	stranger := testAddr(0x02)
	target := testAddr(0x10)
	allow := NewAllowlist(admin)

	err := allow.RegisterAsset(stranger, target, &probeRegistry{})
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindAuthorization, kind)
	require.False(t, allow.IsTrustedAsset(target))

	require.NoError(t, allow.RegisterAsset(admin, target, &probeRegistry{}))
	require.True(t, allow.IsTrustedAsset(target))
}

func TestAllowlistFailedProbeIsSilentNoop(t *testing.T) {
	admin := testAddr(0x01)
	target := testAddr(0x10)
	allow := NewAllowlist(admin)

	require.NoError(t, allow.RegisterAsset(admin, target, &probeRegistry{fail: true}))
	require.False(t, allow.IsTrustedAsset(target))

	require.NoError(t, allow.RegisterPayment(admin, target, &probeLedger{fail: true}))
	require.False(t, allow.IsTrustedPayment(target))
}

func TestAllowlistRevokeIdempotent(t *testing.T) {
	admin := testAddr(0x01)
	target := testAddr(0x10)
	allow := NewAllowlist(admin)
	require.NoError(t, allow.RegisterPayment(admin, target, &probeLedger{}))
	require.True(t, allow.IsTrustedPayment(target))

	require.NoError(t, allow.Revoke(admin, target, ContractPayment))
	require.False(t, allow.IsTrustedPayment(target))
	require.NoError(t, allow.Revoke(admin, target, ContractPayment))
	require.NoError(t, allow.Revoke(admin, testAddr(0x77), ContractAsset))
}

type recordingAllowlistStore struct {
	puts int
}

func (r *recordingAllowlistStore) AllowlistPut(ContractKind, [20]byte) error {
	r.puts++
	return nil
}
func (r *recordingAllowlistStore) AllowlistDelete(ContractKind, [20]byte) error { return nil }
func (r *recordingAllowlistStore) OwnerPut([20]byte) error                      { return nil }

func TestAllowlistRestoreBindsWithoutProbeOrStore(t *testing.T) {
	admin := testAddr(0x01)
	assetAddr := testAddr(0x10)
	payAddr := testAddr(0x11)
	allow := NewAllowlist(admin)
	store := &recordingAllowlistStore{}
	allow.SetStore(store)

	// Restore rebinds persisted entries as-is: no owner check, no probe,
	// no write-back.
	allow.RestoreAsset(assetAddr, &probeRegistry{fail: true})
	allow.RestorePayment(payAddr, &probeLedger{fail: true})
	require.True(t, allow.IsTrustedAsset(assetAddr))
	require.True(t, allow.IsTrustedPayment(payAddr))
	require.Zero(t, store.puts)
}

func TestAllowlistTransferOwnership(t *testing.T) {
	admin := testAddr(0x01)
	next := testAddr(0x02)
	target := testAddr(0x10)
	allow := NewAllowlist(admin)

	require.Error(t, allow.TransferOwnership(next, next))
	require.NoError(t, allow.TransferOwnership(admin, next))
	require.Equal(t, next, allow.Owner())

	require.Error(t, allow.RegisterAsset(admin, target, &probeRegistry{}))
	require.NoError(t, allow.RegisterAsset(next, target, &probeRegistry{}))
	require.True(t, allow.IsTrustedAsset(target))
}
