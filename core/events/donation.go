package events

import (
	"encoding/hex"
	"math/big"
	"strconv"
)

const (
	// TypeDonationRecorded is emitted when a donation has been accepted and
	// its receipt written to the log.
	TypeDonationRecorded = "donation.recorded"
	// TypeDonationBonusClaimed is emitted when a donor claims the one-time
	// threshold bonus.
	TypeDonationBonusClaimed = "donation.bonus.claimed"
	// TypeDonationPaused is emitted when the administrator halts
	// state-mutating operations.
	TypeDonationPaused = "donation.paused"
	// TypeDonationResumed is emitted when the administrator lifts the pause.
	TypeDonationResumed = "donation.resumed"
	// TypeDonationMinimumUpdated is emitted when the administrator replaces
	// the minimum donation amount.
	TypeDonationMinimumUpdated = "donation.minimum.updated"
	// TypeDonationWithdrawn is emitted when custody funds are paid out to the
	// administrator.
	TypeDonationWithdrawn = "donation.withdrawn"
)

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// DonationRecorded captures an accepted donation and its assigned receipt.
type DonationRecorded struct {
	Donor    [20]byte
	Amount   *big.Int
	Height   uint64
	Sequence uint64
	Streak   uint64
	Category string
}

// EventType implements the Typed interface.
func (DonationRecorded) EventType() string { return TypeDonationRecorded }

// Event converts the donation to the generic event payload.
func (e DonationRecorded) Event() *Event {
	attrs := map[string]string{
		"donor":    hex.EncodeToString(e.Donor[:]),
		"amount":   bigString(e.Amount),
		"height":   strconv.FormatUint(e.Height, 10),
		"sequence": strconv.FormatUint(e.Sequence, 10),
		"streak":   strconv.FormatUint(e.Streak, 10),
	}
	if e.Category != "" {
		attrs["category"] = e.Category
	}
	return &Event{Type: TypeDonationRecorded, Attributes: attrs}
}

// DonationBonusClaimed captures a successful one-time bonus claim.
type DonationBonusClaimed struct {
	Donor    [20]byte
	Lifetime *big.Int
	Bonus    *big.Int
}

// EventType implements the Typed interface.
func (DonationBonusClaimed) EventType() string { return TypeDonationBonusClaimed }

// Event converts the claim to the generic event payload.
func (e DonationBonusClaimed) Event() *Event {
	return &Event{
		Type: TypeDonationBonusClaimed,
		Attributes: map[string]string{
			"donor":    hex.EncodeToString(e.Donor[:]),
			"lifetime": bigString(e.Lifetime),
			"bonus":    bigString(e.Bonus),
		},
	}
}

// DonationPauseChanged captures a pause toggle by the administrator.
type DonationPauseChanged struct {
	Caller [20]byte
	Paused bool
}

// EventType implements the Typed interface.
func (e DonationPauseChanged) EventType() string {
	if e.Paused {
		return TypeDonationPaused
	}
	return TypeDonationResumed
}

// Event converts the toggle to the generic event payload.
func (e DonationPauseChanged) Event() *Event {
	return &Event{
		Type: e.EventType(),
		Attributes: map[string]string{
			"caller": hex.EncodeToString(e.Caller[:]),
		},
	}
}

// DonationMinimumUpdated captures a change of the minimum donation amount.
type DonationMinimumUpdated struct {
	Caller  [20]byte
	Minimum *big.Int
}

// EventType implements the Typed interface.
func (DonationMinimumUpdated) EventType() string { return TypeDonationMinimumUpdated }

// Event converts the update to the generic event payload.
func (e DonationMinimumUpdated) Event() *Event {
	return &Event{
		Type: TypeDonationMinimumUpdated,
		Attributes: map[string]string{
			"caller":  hex.EncodeToString(e.Caller[:]),
			"minimum": bigString(e.Minimum),
		},
	}
}

// DonationWithdrawn captures a custody withdrawal to the administrator.
type DonationWithdrawn struct {
	Caller [20]byte
	Amount *big.Int
}

// EventType implements the Typed interface.
func (DonationWithdrawn) EventType() string { return TypeDonationWithdrawn }

// Event converts the withdrawal to the generic event payload.
func (e DonationWithdrawn) Event() *Event {
	return &Event{
		Type: TypeDonationWithdrawn,
		Attributes: map[string]string{
			"caller": hex.EncodeToString(e.Caller[:]),
			"amount": bigString(e.Amount),
		},
	}
}
