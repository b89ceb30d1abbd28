package donation

import (
	"fmt"
	"math/big"
	"sync"

	"donorchain/core/events"
)

// TransferService moves funds between accounts. It is used for escrow-in
// (donor to custody) and withdrawal (custody to administrator).
type TransferService interface {
	Transfer(from, to [20]byte, amount *big.Int) error
}

// MintService issues reward credits to a recipient. The engine never inspects
// balances, it only requests mints.
type MintService interface {
	Mint(to [20]byte, amount *big.Int) error
}

// Engine implements the donation ledger and reward accounting rules. Every
// public operation runs under one exclusive lock and commits its state
// mutations through a single batched ledger write, so an operation either
// fully succeeds or leaves no trace.
type Engine struct {
	mu sync.Mutex

	state     State
	transfers TransferService
	minter    MintService
	admin     [20]byte
	custody   [20]byte
	emitter   events.Emitter

	thresholdMultiplier uint64
	bonusDivisor        uint64
}

// NewEngine constructs a donation engine. The administrator and custody
// addresses are fixed for the engine's lifetime.
func NewEngine(state State, transfers TransferService, minter MintService, admin, custody [20]byte) *Engine {
	return &Engine{
		state:               state,
		transfers:           transfers,
		minter:              minter,
		admin:               admin,
		custody:             custody,
		emitter:             events.NoopEmitter{},
		thresholdMultiplier: DefaultRewardThresholdMultiplier,
		bonusDivisor:        DefaultBonusDivisor,
	}
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetRewardThresholdMultiplier overrides the claim threshold multiplier.
// Values below 1 are ignored.
func (e *Engine) SetRewardThresholdMultiplier(m uint64) {
	if m >= 1 {
		e.thresholdMultiplier = m
	}
}

// SetBonusDivisor overrides the bonus payout divisor. Values below 1 are
// ignored.
func (e *Engine) SetBonusDivisor(d uint64) {
	if d >= 1 {
		e.bonusDivisor = d
	}
}

// Admin returns the fixed administrator address.
func (e *Engine) Admin() [20]byte { return e.admin }

// Custody returns the custody account holding escrowed donations.
func (e *Engine) Custody() [20]byte { return e.custody }

// IsAdministrator reports whether the caller is the designated administrator.
func (e *Engine) IsAdministrator(caller [20]byte) bool {
	return caller == e.admin
}

func (e *Engine) emit(evt events.Typed) {
	if e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// applyDonation computes the updated donor record for an accepted donation.
// The streak continues when the gap to the previous donation is below the
// window, otherwise it restarts at 1. A first-ever donation compares against
// the zero-valued sentinel record, so the gap is the donation height itself;
// with the default streak of 0 the result is 1 either way, which keeps the
// behaviour of comparing against the sentinel observable without producing an
// inflated streak.
func applyDonation(rec *DonorRecord, amount *big.Int, height uint64) *DonorRecord {
	prev := rec.Clone().Normalize()
	if prev == nil {
		prev = (&DonorRecord{}).Normalize()
	}
	next := &DonorRecord{
		LifetimeAmount:     new(big.Int).Add(prev.LifetimeAmount, amount),
		DonationCount:      prev.DonationCount + 1,
		LastDonationHeight: height,
		RewardClaimed:      prev.RewardClaimed,
	}
	if height >= prev.LastDonationHeight && height-prev.LastDonationHeight < StreakWindow {
		next.Streak = prev.Streak + 1
	} else {
		next.Streak = 1
	}
	return next
}

// SubmitDonation records a donation from the caller at the given height. On
// success it returns the receipt, whose sequence number doubles as the
// donation token id.
//
// The escrow transfer is the only externally visible effect taken before the
// ledger commit; if any later step fails the transfer is compensated by
// moving the funds back from custody to the caller.
func (e *Engine) SubmitDonation(caller [20]byte, amount *big.Int, height uint64, category string) (*Receipt, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("donation: engine not configured")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	global, err := e.state.Global()
	if err != nil {
		return nil, err
	}
	if global.Paused {
		return nil, ErrContractPaused
	}
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil, ErrZeroAmount
	}
	if amt.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if amt.Cmp(global.MinimumDonation) < 0 {
		return nil, ErrInvalidAmount
	}

	if err := e.transfers.Transfer(caller, e.custody, amt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	prev, _, err := e.state.Donor(caller)
	if err != nil {
		return nil, e.refundAndWrap(caller, amt, err)
	}
	rec := applyDonation(prev, amt, height)

	if err := e.minter.Mint(caller, amt); err != nil {
		return nil, e.refundAndWrap(caller, amt, fmt.Errorf("%w: %v", ErrMintFailed, err))
	}

	receipt := &Receipt{
		Donor:    caller,
		Amount:   new(big.Int).Set(amt),
		Height:   height,
		Sequence: global.NextSequence,
		Category: category,
	}
	global.CumulativeAmount = new(big.Int).Add(global.CumulativeAmount, amt)
	global.NextSequence++
	if rec.DonationCount == 1 {
		global.UniqueDonors++
	}

	if err := e.state.CommitDonation(caller, rec, receipt, global); err != nil {
		return nil, e.refundAndWrap(caller, amt, err)
	}

	e.emit(events.DonationRecorded{
		Donor:    caller,
		Amount:   new(big.Int).Set(amt),
		Height:   height,
		Sequence: receipt.Sequence,
		Streak:   rec.Streak,
		Category: category,
	})
	return receipt.Clone(), nil
}

// refundAndWrap compensates the escrow transfer after a post-transfer failure
// so the submission leaves no partial state.
func (e *Engine) refundAndWrap(caller [20]byte, amount *big.Int, cause error) error {
	if refundErr := e.transfers.Transfer(e.custody, caller, amount); refundErr != nil {
		return fmt.Errorf("donation: refund after failed submission: %v (original: %w)", refundErr, cause)
	}
	return cause
}

// ClaimBonus issues the one-time proportional bonus to a qualifying donor.
// The claimed latch is committed before the call returns, and the exclusive
// engine lock prevents a concurrent retry from observing the pre-latch state.
func (e *Engine) ClaimBonus(caller [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("donation: engine not configured")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, ok, err := e.state.Donor(caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	global, err := e.state.Global()
	if err != nil {
		return nil, err
	}
	if global.Paused {
		return nil, ErrContractPaused
	}
	threshold := new(big.Int).Mul(global.MinimumDonation, new(big.Int).SetUint64(e.thresholdMultiplier))
	rec.Normalize()
	if rec.LifetimeAmount.Cmp(threshold) < 0 {
		return nil, ErrInsufficientBalance
	}
	if rec.RewardClaimed {
		return nil, ErrAlreadyClaimed
	}

	bonus := new(big.Int).Quo(rec.LifetimeAmount, new(big.Int).SetUint64(e.bonusDivisor))
	if err := e.minter.Mint(caller, bonus); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMintFailed, err)
	}

	claimed := rec.Clone()
	claimed.RewardClaimed = true
	if err := e.state.CommitClaim(caller, claimed); err != nil {
		return nil, err
	}

	e.emit(events.DonationBonusClaimed{
		Donor:    caller,
		Lifetime: new(big.Int).Set(rec.LifetimeAmount),
		Bonus:    new(big.Int).Set(bonus),
	})
	return bonus, nil
}

// SetMinimumDonation replaces the minimum donation amount. Administrator
// only; zero is rejected.
func (e *Engine) SetMinimumDonation(caller [20]byte, minimum *big.Int) error {
	if e == nil || e.state == nil {
		return fmt.Errorf("donation: engine not configured")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.IsAdministrator(caller) {
		return ErrOwnerOnly
	}
	min := cloneBigInt(minimum)
	if min.Sign() == 0 {
		return ErrZeroAmount
	}
	if min.Sign() < 0 {
		return ErrInvalidAmount
	}
	global, err := e.state.Global()
	if err != nil {
		return err
	}
	global.MinimumDonation = min
	if err := e.state.CommitGlobal(global); err != nil {
		return err
	}
	e.emit(events.DonationMinimumUpdated{Caller: caller, Minimum: new(big.Int).Set(min)})
	return nil
}

// TogglePause flips the global pause switch and returns the new state.
// Administrator only; remains available while paused.
func (e *Engine) TogglePause(caller [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, fmt.Errorf("donation: engine not configured")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.IsAdministrator(caller) {
		return false, ErrOwnerOnly
	}
	global, err := e.state.Global()
	if err != nil {
		return false, err
	}
	global.Paused = !global.Paused
	if err := e.state.CommitGlobal(global); err != nil {
		return false, err
	}
	e.emit(events.DonationPauseChanged{Caller: caller, Paused: global.Paused})
	return global.Paused, nil
}

// Withdraw moves escrowed funds from custody to the administrator.
// Administrator only; zero is rejected; remains available while paused.
func (e *Engine) Withdraw(caller [20]byte, amount *big.Int) error {
	if e == nil || e.state == nil {
		return fmt.Errorf("donation: engine not configured")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.IsAdministrator(caller) {
		return ErrOwnerOnly
	}
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return ErrZeroAmount
	}
	if amt.Sign() < 0 {
		return ErrInvalidAmount
	}
	if err := e.transfers.Transfer(e.custody, e.admin, amt); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	e.emit(events.DonationWithdrawn{Caller: caller, Amount: new(big.Int).Set(amt)})
	return nil
}

// DonorInfo returns the stored record for a donor.
func (e *Engine) DonorInfo(donor [20]byte) (*DonorRecord, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("donation: engine not configured")
	}
	rec, ok, err := e.state.Donor(donor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Normalize(), nil
}

// Donation returns the receipt stored under the sequence id.
func (e *Engine) Donation(seq uint64) (*Receipt, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("donation: engine not configured")
	}
	receipt, ok, err := e.state.Receipt(seq)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return receipt, nil
}

// DonationsByDonor lists a donor's receipts in submission order.
func (e *Engine) DonationsByDonor(donor [20]byte, offset uint64, limit int) ([]*Receipt, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("donation: engine not configured")
	}
	return e.state.ReceiptsByDonor(donor, offset, limit)
}

// Statistics returns the global counters projection.
func (e *Engine) Statistics() (*Stats, error) {
	if e == nil || e.state == nil {
		return nil, fmt.Errorf("donation: engine not configured")
	}
	global, err := e.state.Global()
	if err != nil {
		return nil, err
	}
	return &Stats{
		CumulativeAmount: new(big.Int).Set(global.CumulativeAmount),
		UniqueDonors:     global.UniqueDonors,
		MinimumDonation:  new(big.Int).Set(global.MinimumDonation),
		Paused:           global.Paused,
		NextSequence:     global.NextSequence,
	}, nil
}
