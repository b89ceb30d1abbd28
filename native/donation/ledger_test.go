package donation

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"donorchain/storage"
)

func TestLedgerDonorRoundTrip(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB())
	addr := testAddr(0x11)

	_, ok, err := ledger.Donor(addr)
	require.NoError(t, err)
	require.False(t, ok)

	rec := &DonorRecord{
		LifetimeAmount:     big.NewInt(42),
		DonationCount:      3,
		LastDonationHeight: 99,
		RewardClaimed:      true,
		Streak:             2,
	}
	receipt := &Receipt{Donor: addr, Amount: big.NewInt(42), Height: 99, Sequence: 0}
	global := (&GlobalState{NextSequence: 1}).Normalize()
	require.NoError(t, ledger.CommitDonation(addr, rec, receipt, global))

	got, ok, err := ledger.Donor(addr)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec, got)
}

func TestLedgerReceiptRoundTrip(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB())
	addr := testAddr(0x22)

	receipt := &Receipt{
		Donor:    addr,
		Amount:   big.NewInt(1_000_000),
		Height:   120,
		Sequence: 7,
		Category: "relief",
	}
	rec := (&DonorRecord{DonationCount: 1, Streak: 1, LastDonationHeight: 120}).Normalize()
	global := (&GlobalState{NextSequence: 8}).Normalize()
	require.NoError(t, ledger.CommitDonation(addr, rec, receipt, global))

	got, ok, err := ledger.Receipt(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, receipt, got)

	_, ok, err = ledger.Receipt(8)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLedgerGlobalDefaults(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB())

	global, err := ledger.Global()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(0), global.CumulativeAmount)
	require.Equal(t, DefaultMinimumDonation, global.MinimumDonation)
	require.False(t, global.Paused)
	require.Equal(t, uint64(0), global.NextSequence)
}

func TestLedgerGlobalRoundTrip(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB())

	global := &GlobalState{
		CumulativeAmount: big.NewInt(123),
		UniqueDonors:     4,
		MinimumDonation:  big.NewInt(55),
		Paused:           true,
		NextSequence:     9,
	}
	require.NoError(t, ledger.CommitGlobal(global))

	got, err := ledger.Global()
	require.NoError(t, err)
	require.Equal(t, global, got)
}

func TestLedgerDonorIndexOrderingAndPaging(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB())
	addr := testAddr(0x33)

	for seq := uint64(0); seq < 5; seq++ {
		receipt := &Receipt{Donor: addr, Amount: big.NewInt(int64(seq + 1)), Height: seq * 10, Sequence: seq}
		rec := (&DonorRecord{DonationCount: seq + 1, Streak: 1, LastDonationHeight: seq * 10}).Normalize()
		global := (&GlobalState{NextSequence: seq + 1}).Normalize()
		require.NoError(t, ledger.CommitDonation(addr, rec, receipt, global))
	}

	receipts, err := ledger.ReceiptsByDonor(addr, 0, 3)
	require.NoError(t, err)
	require.Len(t, receipts, 3)
	require.Equal(t, uint64(0), receipts[0].Sequence)
	require.Equal(t, uint64(2), receipts[2].Sequence)

	receipts, err = ledger.ReceiptsByDonor(addr, 3, 10)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	require.Equal(t, uint64(4), receipts[1].Sequence)

	receipts, err = ledger.ReceiptsByDonor(addr, 10, 10)
	require.NoError(t, err)
	require.Empty(t, receipts)

	receipts, err = ledger.ReceiptsByDonor(testAddr(0x44), 0, 10)
	require.NoError(t, err)
	require.Empty(t, receipts)
}

func TestLedgerCommitClaimOnlyTouchesDonor(t *testing.T) {
	ledger := NewLedger(storage.NewMemDB())
	addr := testAddr(0x55)

	rec := (&DonorRecord{DonationCount: 1, Streak: 1, LifetimeAmount: big.NewInt(10)}).Normalize()
	receipt := &Receipt{Donor: addr, Amount: big.NewInt(10), Sequence: 0}
	global := (&GlobalState{NextSequence: 1, CumulativeAmount: big.NewInt(10)}).Normalize()
	require.NoError(t, ledger.CommitDonation(addr, rec, receipt, global))

	claimed := rec.Clone()
	claimed.RewardClaimed = true
	require.NoError(t, ledger.CommitClaim(addr, claimed))

	got, ok, err := ledger.Donor(addr)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, got.RewardClaimed)

	after, err := ledger.Global()
	require.NoError(t, err)
	require.Equal(t, global, after)
}
