package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"donorchain/storage"
)

var (
	alice = addr(0x01)
	bob   = addr(0x02)
)

func addr(b byte) [20]byte {
	var a [20]byte
	a[0] = b
	return a
}

func TestMintAndTransfer(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB(), "DON", nil)

	require.NoError(t, ledger.Mint(alice, big.NewInt(100)))

	bal, err := ledger.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, int64(100), bal.Int64())

	require.NoError(t, ledger.Transfer(alice, bob, big.NewInt(40)))

	bal, err = ledger.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, int64(60), bal.Int64())

	bal, err = ledger.BalanceOf(bob)
	require.NoError(t, err)
	require.Equal(t, int64(40), bal.Int64())

	supply, err := ledger.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, int64(100), supply.Int64())
}

func TestTransferInsufficientFunds(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB(), "DON", nil)
	require.NoError(t, ledger.Mint(alice, big.NewInt(10)))

	err := ledger.Transfer(alice, bob, big.NewInt(11))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	bal, err := ledger.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, int64(10), bal.Int64())
}

func TestMintSupplyCap(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB(), "DON", big.NewInt(100))
	require.NoError(t, ledger.Mint(alice, big.NewInt(100)))

	err := ledger.Mint(alice, big.NewInt(1))
	require.ErrorIs(t, err, ErrSupplyCapReached)

	supply, err := ledger.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, int64(100), supply.Int64())
}

func TestZeroAndSelfTransfersAreNoops(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB(), "DON", nil)
	require.NoError(t, ledger.Mint(alice, big.NewInt(5)))

	require.NoError(t, ledger.Transfer(alice, bob, big.NewInt(0)))
	require.NoError(t, ledger.Transfer(alice, alice, big.NewInt(3)))

	bal, err := ledger.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, int64(5), bal.Int64())
}
