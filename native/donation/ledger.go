package donation

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"donorchain/storage"
)

const (
	globalKey            = "donation/global"
	donorKeyFormat       = "donation/donor/%s"
	donorIndexKeyFormat  = "donation/donor/%s/receipts"
	receiptKeyFormat     = "donation/receipt/%020d"
	defaultListPageLimit = 100
)

// Ledger persists donor records, receipts and the global aggregate in a
// key-value store. It is the single source of truth for the donation engine.
type Ledger struct {
	db storage.Database
	mu sync.RWMutex
}

// NewLedger constructs a donation ledger backed by the supplied key-value
// store.
func NewLedger(db storage.Database) *Ledger {
	return &Ledger{db: db}
}

type storedDonorRecord struct {
	LifetimeAmount []byte
	DonationCount  uint64
	LastHeight     uint64
	RewardClaimed  bool
	Streak         uint64
}

type storedReceipt struct {
	Donor    []byte
	Amount   []byte
	Height   uint64
	Sequence uint64
	Category string
}

type storedGlobal struct {
	CumulativeAmount []byte
	UniqueDonors     uint64
	MinimumDonation  []byte
	Paused           bool
	NextSequence     uint64
}

func donorKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf(donorKeyFormat, hex.EncodeToString(addr[:])))
}

func donorIndexKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf(donorIndexKeyFormat, hex.EncodeToString(addr[:])))
}

func receiptKey(seq uint64) []byte {
	return []byte(fmt.Sprintf(receiptKeyFormat, seq))
}

func bigFromBytes(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	return new(big.Int).SetBytes(b)
}

func bigToBytes(v *big.Int) []byte {
	if v == nil {
		return nil
	}
	return v.Bytes()
}

func encodeDonor(rec *DonorRecord) ([]byte, error) {
	return rlp.EncodeToBytes(storedDonorRecord{
		LifetimeAmount: bigToBytes(rec.LifetimeAmount),
		DonationCount:  rec.DonationCount,
		LastHeight:     rec.LastDonationHeight,
		RewardClaimed:  rec.RewardClaimed,
		Streak:         rec.Streak,
	})
}

func encodeReceipt(receipt *Receipt) ([]byte, error) {
	return rlp.EncodeToBytes(storedReceipt{
		Donor:    append([]byte(nil), receipt.Donor[:]...),
		Amount:   bigToBytes(receipt.Amount),
		Height:   receipt.Height,
		Sequence: receipt.Sequence,
		Category: receipt.Category,
	})
}

func encodeGlobal(global *GlobalState) ([]byte, error) {
	return rlp.EncodeToBytes(storedGlobal{
		CumulativeAmount: bigToBytes(global.CumulativeAmount),
		UniqueDonors:     global.UniqueDonors,
		MinimumDonation:  bigToBytes(global.MinimumDonation),
		Paused:           global.Paused,
		NextSequence:     global.NextSequence,
	})
}

func (l *Ledger) donorLocked(addr [20]byte) (*DonorRecord, bool, error) {
	data, err := l.db.Get(donorKey(addr))
	if err != nil {
		return nil, false, nil
	}
	var stored storedDonorRecord
	if err := rlp.DecodeBytes(data, &stored); err != nil {
		return nil, false, err
	}
	return &DonorRecord{
		LifetimeAmount:     bigFromBytes(stored.LifetimeAmount),
		DonationCount:      stored.DonationCount,
		LastDonationHeight: stored.LastHeight,
		RewardClaimed:      stored.RewardClaimed,
		Streak:             stored.Streak,
	}, true, nil
}

// Donor returns the stored record for the address.
func (l *Ledger) Donor(addr [20]byte) (*DonorRecord, bool, error) {
	if l == nil || l.db == nil {
		return nil, false, errors.New("donation: ledger not initialised")
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.donorLocked(addr)
}

func (l *Ledger) receiptLocked(seq uint64) (*Receipt, bool, error) {
	data, err := l.db.Get(receiptKey(seq))
	if err != nil {
		return nil, false, nil
	}
	var stored storedReceipt
	if err := rlp.DecodeBytes(data, &stored); err != nil {
		return nil, false, err
	}
	receipt := &Receipt{
		Amount:   bigFromBytes(stored.Amount),
		Height:   stored.Height,
		Sequence: stored.Sequence,
		Category: stored.Category,
	}
	copy(receipt.Donor[:], stored.Donor)
	return receipt, true, nil
}

// Receipt returns the receipt stored under the sequence id.
func (l *Ledger) Receipt(seq uint64) (*Receipt, bool, error) {
	if l == nil || l.db == nil {
		return nil, false, errors.New("donation: ledger not initialised")
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.receiptLocked(seq)
}

func (l *Ledger) donorIndexLocked(addr [20]byte) ([]uint64, error) {
	data, err := l.db.Get(donorIndexKey(addr))
	if err != nil {
		return nil, nil
	}
	var seqs []uint64
	if err := rlp.DecodeBytes(data, &seqs); err != nil {
		return nil, err
	}
	return seqs, nil
}

// ReceiptsByDonor lists receipts for a donor in submission order.
func (l *Ledger) ReceiptsByDonor(addr [20]byte, offset uint64, limit int) ([]*Receipt, error) {
	if l == nil || l.db == nil {
		return nil, errors.New("donation: ledger not initialised")
	}
	if limit <= 0 || limit > defaultListPageLimit {
		limit = defaultListPageLimit
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	seqs, err := l.donorIndexLocked(addr)
	if err != nil {
		return nil, err
	}
	if offset >= uint64(len(seqs)) {
		return []*Receipt{}, nil
	}
	seqs = seqs[offset:]
	if len(seqs) > limit {
		seqs = seqs[:limit]
	}
	receipts := make([]*Receipt, 0, len(seqs))
	for _, seq := range seqs {
		receipt, ok, err := l.receiptLocked(seq)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("donation: receipt %d missing from log", seq)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

func (l *Ledger) globalLocked() (*GlobalState, error) {
	data, err := l.db.Get([]byte(globalKey))
	if err != nil {
		return (&GlobalState{}).Normalize(), nil
	}
	var stored storedGlobal
	if err := rlp.DecodeBytes(data, &stored); err != nil {
		return nil, err
	}
	global := &GlobalState{
		CumulativeAmount: bigFromBytes(stored.CumulativeAmount),
		UniqueDonors:     stored.UniqueDonors,
		MinimumDonation:  bigFromBytes(stored.MinimumDonation),
		Paused:           stored.Paused,
		NextSequence:     stored.NextSequence,
	}
	return global.Normalize(), nil
}

// Global returns the singleton aggregate state, normalized.
func (l *Ledger) Global() (*GlobalState, error) {
	if l == nil || l.db == nil {
		return nil, errors.New("donation: ledger not initialised")
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.globalLocked()
}

// CommitDonation persists the donor record, the receipt, the donor's receipt
// index and the global state through one batched write.
func (l *Ledger) CommitDonation(addr [20]byte, rec *DonorRecord, receipt *Receipt, global *GlobalState) error {
	if l == nil || l.db == nil {
		return errors.New("donation: ledger not initialised")
	}
	if rec == nil || receipt == nil || global == nil {
		return errors.New("donation: nil commit payload")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	donorBytes, err := encodeDonor(rec)
	if err != nil {
		return err
	}
	receiptBytes, err := encodeReceipt(receipt)
	if err != nil {
		return err
	}
	globalBytes, err := encodeGlobal(global)
	if err != nil {
		return err
	}
	seqs, err := l.donorIndexLocked(addr)
	if err != nil {
		return err
	}
	indexBytes, err := rlp.EncodeToBytes(append(seqs, receipt.Sequence))
	if err != nil {
		return err
	}
	return l.db.WriteBatch([]storage.KV{
		{Key: donorKey(addr), Value: donorBytes},
		{Key: receiptKey(receipt.Sequence), Value: receiptBytes},
		{Key: donorIndexKey(addr), Value: indexBytes},
		{Key: []byte(globalKey), Value: globalBytes},
	})
}

// CommitClaim persists the donor record with the claimed latch set.
func (l *Ledger) CommitClaim(addr [20]byte, rec *DonorRecord) error {
	if l == nil || l.db == nil {
		return errors.New("donation: ledger not initialised")
	}
	if rec == nil {
		return errors.New("donation: nil commit payload")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	donorBytes, err := encodeDonor(rec)
	if err != nil {
		return err
	}
	return l.db.WriteBatch([]storage.KV{
		{Key: donorKey(addr), Value: donorBytes},
	})
}

// CommitGlobal persists the global state alone.
func (l *Ledger) CommitGlobal(global *GlobalState) error {
	if l == nil || l.db == nil {
		return errors.New("donation: ledger not initialised")
	}
	if global == nil {
		return errors.New("donation: nil commit payload")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	globalBytes, err := encodeGlobal(global)
	if err != nil {
		return err
	}
	return l.db.WriteBatch([]storage.KV{
		{Key: []byte(globalKey), Value: globalBytes},
	})
}
