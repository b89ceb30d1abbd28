package donation

import "math/big"

const (
	// StreakWindow is the maximum gap, in block heights, between two
	// donations that still counts as a continued streak.
	StreakWindow = 144
	// DefaultRewardThresholdMultiplier gates the one-time bonus claim: a
	// donor qualifies once their lifetime amount reaches
	// minimum_donation * multiplier.
	DefaultRewardThresholdMultiplier = 10
	// DefaultBonusDivisor scales the one-time bonus payout: the bonus equals
	// lifetime_amount / divisor, rounded down.
	DefaultBonusDivisor = 10
)

// DefaultMinimumDonation is the floor applied before the administrator
// configures one explicitly.
var DefaultMinimumDonation = big.NewInt(1_000_000)

// DonorRecord aggregates the lifetime statistics for a single donor. A record
// is created lazily on the donor's first accepted donation.
type DonorRecord struct {
	LifetimeAmount     *big.Int
	DonationCount      uint64
	LastDonationHeight uint64
	RewardClaimed      bool
	Streak             uint64
}

// Clone produces a deep copy of the record.
func (r *DonorRecord) Clone() *DonorRecord {
	if r == nil {
		return nil
	}
	clone := &DonorRecord{
		DonationCount:      r.DonationCount,
		LastDonationHeight: r.LastDonationHeight,
		RewardClaimed:      r.RewardClaimed,
		Streak:             r.Streak,
	}
	if r.LifetimeAmount != nil {
		clone.LifetimeAmount = new(big.Int).Set(r.LifetimeAmount)
	}
	return clone
}

// Normalize ensures pointer fields are non-nil. The method returns the
// receiver to allow chaining.
func (r *DonorRecord) Normalize() *DonorRecord {
	if r == nil {
		return nil
	}
	if r.LifetimeAmount == nil {
		r.LifetimeAmount = big.NewInt(0)
	}
	return r
}

// Receipt is the immutable record of a single accepted donation. The sequence
// number doubles as the donation token id.
type Receipt struct {
	Donor    [20]byte
	Amount   *big.Int
	Height   uint64
	Sequence uint64
	Category string
}

// Clone produces a deep copy of the receipt.
func (r *Receipt) Clone() *Receipt {
	if r == nil {
		return nil
	}
	clone := &Receipt{
		Donor:    r.Donor,
		Height:   r.Height,
		Sequence: r.Sequence,
		Category: r.Category,
	}
	if r.Amount != nil {
		clone.Amount = new(big.Int).Set(r.Amount)
	}
	return clone
}

// GlobalState is the singleton aggregate maintained alongside the per-donor
// records. CumulativeAmount equals the sum over all receipts; NextSequence is
// the key the next receipt will be written under.
type GlobalState struct {
	CumulativeAmount *big.Int
	UniqueDonors     uint64
	MinimumDonation  *big.Int
	Paused           bool
	NextSequence     uint64
}

// Clone produces a deep copy of the global state.
func (g *GlobalState) Clone() *GlobalState {
	if g == nil {
		return nil
	}
	clone := &GlobalState{
		UniqueDonors: g.UniqueDonors,
		Paused:       g.Paused,
		NextSequence: g.NextSequence,
	}
	if g.CumulativeAmount != nil {
		clone.CumulativeAmount = new(big.Int).Set(g.CumulativeAmount)
	}
	if g.MinimumDonation != nil {
		clone.MinimumDonation = new(big.Int).Set(g.MinimumDonation)
	}
	return clone
}

// Normalize ensures pointer fields are non-nil and the minimum donation floor
// stays positive.
func (g *GlobalState) Normalize() *GlobalState {
	if g == nil {
		return nil
	}
	if g.CumulativeAmount == nil {
		g.CumulativeAmount = big.NewInt(0)
	}
	if g.MinimumDonation == nil || g.MinimumDonation.Sign() <= 0 {
		g.MinimumDonation = new(big.Int).Set(DefaultMinimumDonation)
	}
	return g
}

// Stats is the read-only projection returned by the statistics query.
type Stats struct {
	CumulativeAmount *big.Int
	UniqueDonors     uint64
	MinimumDonation  *big.Int
	Paused           bool
	NextSequence     uint64
}
