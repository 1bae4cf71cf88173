package assets

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func addr(fill byte) [20]byte {
	var a [20]byte
	copy(a[:], bytes.Repeat([]byte{fill}, 20))
	return a
}

func TestMintAndOwnership(t *testing.T) {
	col := NewCollection("ART")
	owner := addr(0x01)
	id := big.NewInt(1)

	require.NoError(t, col.Mint(owner, id))
	require.ErrorIs(t, col.Mint(owner, id), ErrAlreadyMinted)

	got, err := col.OwnerOf(id)
	require.NoError(t, err)
	require.Equal(t, owner, got)

	_, err = col.OwnerOf(big.NewInt(99))
	require.ErrorIs(t, err, ErrUnknownAsset)
}

func TestApproveRequiresHolder(t *testing.T) {
	col := NewCollection("ART")
	owner := addr(0x01)
	stranger := addr(0x02)
	spender := addr(0x03)
	id := big.NewInt(1)
	require.NoError(t, col.Mint(owner, id))

	require.ErrorIs(t, col.Approve(stranger, spender, id), ErrNotAuthorized)
	require.NoError(t, col.Approve(owner, spender, id))

	approved, err := col.GetApproved(id)
	require.NoError(t, err)
	require.Equal(t, spender, approved)
}

func TestBoundTransferAuthority(t *testing.T) {
	col := NewCollection("ART")
	owner := addr(0x01)
	spender := addr(0x03)
	recipient := addr(0x04)
	id := big.NewInt(1)
	require.NoError(t, col.Mint(owner, id))

	// Unapproved third party cannot move the asset.
	require.ErrorIs(t, col.Bind(spender).Transfer(owner, recipient, id), ErrNotAuthorized)

	require.NoError(t, col.Approve(owner, spender, id))
	require.ErrorIs(t, col.Bind(spender).Transfer(recipient, owner, id), ErrNotHolder)
	require.NoError(t, col.Bind(spender).Transfer(owner, recipient, id))

	got, err := col.OwnerOf(id)
	require.NoError(t, err)
	require.Equal(t, recipient, got)

	// Approval is consumed by the transfer.
	approved, err := col.GetApproved(id)
	require.NoError(t, err)
	require.Equal(t, [20]byte{}, approved)
}
