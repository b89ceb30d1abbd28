package token

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"donorchain/storage"
)

var (
	ErrInsufficientFunds = errors.New("token: insufficient balance")
	ErrSupplyCapReached  = errors.New("token: supply cap reached")
)

const (
	balanceKeyFormat = "token/%s/balance/%s"
	supplyKeyFormat  = "token/%s/supply"
)

// Ledger tracks fungible balances for a single token symbol in a key-value
// store. It backs both the value-transfer service (escrowed donations) and
// the credit-issuance service (reward credits) of the donation engine.
type Ledger struct {
	db     storage.Database
	symbol string
	cap    *big.Int
	mu     sync.Mutex
}

// NewLedger constructs a token ledger for the given symbol. A nil or zero
// supply cap disables issuance limits.
func NewLedger(db storage.Database, symbol string, supplyCap *big.Int) *Ledger {
	l := &Ledger{db: db, symbol: symbol}
	if supplyCap != nil && supplyCap.Sign() > 0 {
		l.cap = new(big.Int).Set(supplyCap)
	}
	return l
}

func (l *Ledger) balanceKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf(balanceKeyFormat, l.symbol, hex.EncodeToString(addr[:])))
}

func (l *Ledger) supplyKey() []byte {
	return []byte(fmt.Sprintf(supplyKeyFormat, l.symbol))
}

func (l *Ledger) readBig(key []byte) (*big.Int, error) {
	data, err := l.db.Get(key)
	if err != nil {
		return big.NewInt(0), nil
	}
	var raw []byte
	if err := rlp.DecodeBytes(data, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return big.NewInt(0), nil
	}
	return new(big.Int).SetBytes(raw), nil
}

func encodeBig(v *big.Int) ([]byte, error) {
	return rlp.EncodeToBytes(v.Bytes())
}

// BalanceOf returns the balance held by the address.
func (l *Ledger) BalanceOf(addr [20]byte) (*big.Int, error) {
	if l == nil || l.db == nil {
		return nil, errors.New("token: ledger not initialised")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readBig(l.balanceKey(addr))
}

// TotalSupply returns the cumulative minted amount.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	if l == nil || l.db == nil {
		return nil, errors.New("token: ledger not initialised")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readBig(l.supplyKey())
}

// Transfer moves amount from one account to another. Both balance updates are
// committed through a single batched write.
func (l *Ledger) Transfer(from, to [20]byte, amount *big.Int) error {
	if l == nil || l.db == nil {
		return errors.New("token: ledger not initialised")
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("token: negative transfer amount")
	}
	if amount.Sign() == 0 {
		return nil
	}
	if from == to {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fromBal, err := l.readBig(l.balanceKey(from))
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	toBal, err := l.readBig(l.balanceKey(to))
	if err != nil {
		return err
	}
	fromBytes, err := encodeBig(new(big.Int).Sub(fromBal, amount))
	if err != nil {
		return err
	}
	toBytes, err := encodeBig(new(big.Int).Add(toBal, amount))
	if err != nil {
		return err
	}
	return l.db.WriteBatch([]storage.KV{
		{Key: l.balanceKey(from), Value: fromBytes},
		{Key: l.balanceKey(to), Value: toBytes},
	})
}

// Mint issues new units to the recipient, rejecting issuance that would push
// the total supply past the configured cap.
func (l *Ledger) Mint(to [20]byte, amount *big.Int) error {
	if l == nil || l.db == nil {
		return errors.New("token: ledger not initialised")
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("token: negative mint amount")
	}
	if amount.Sign() == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	supply, err := l.readBig(l.supplyKey())
	if err != nil {
		return err
	}
	newSupply := new(big.Int).Add(supply, amount)
	if l.cap != nil && newSupply.Cmp(l.cap) > 0 {
		return ErrSupplyCapReached
	}
	bal, err := l.readBig(l.balanceKey(to))
	if err != nil {
		return err
	}
	balBytes, err := encodeBig(new(big.Int).Add(bal, amount))
	if err != nil {
		return err
	}
	supplyBytes, err := encodeBig(newSupply)
	if err != nil {
		return err
	}
	return l.db.WriteBatch([]storage.KV{
		{Key: l.balanceKey(to), Value: balBytes},
		{Key: l.supplyKey(), Value: supplyBytes},
	})
}
