package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type DonationMetrics struct {
	submitted    *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	bonusClaims  prometheus.Counter
	amountTotal  prometheus.Counter
	uniqueDonors prometheus.Gauge
}

var (
	donationOnce     sync.Once
	donationRegistry *DonationMetrics
)

// Donation returns the metrics registry tracking donation ledger activity.
func Donation() *DonationMetrics {
	donationOnce.Do(func() {
		donationRegistry = &DonationMetrics{
			submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "donation_submitted_total",
				Help: "Count of accepted donations segmented by category.",
			}, []string{"category"}),
			rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "donation_rejected_total",
				Help: "Count of rejected operations segmented by reason.",
			}, []string{"reason"}),
			bonusClaims: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "donation_bonus_claims_total",
				Help: "Count of successful one-time bonus claims.",
			}),
			amountTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "donation_amount_total",
				Help: "Cumulative donated amount in base units.",
			}),
			uniqueDonors: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "donation_unique_donors",
				Help: "Number of distinct donor identities.",
			}),
		}
		prometheus.MustRegister(
			donationRegistry.submitted,
			donationRegistry.rejected,
			donationRegistry.bonusClaims,
			donationRegistry.amountTotal,
			donationRegistry.uniqueDonors,
		)
	})
	return donationRegistry
}

// ObserveSubmitted increments the accepted donation counter and adds the
// donated amount. amount is the base-unit value as a float; precision loss
// only affects the metric, never the ledger.
func (m *DonationMetrics) ObserveSubmitted(category string, amount float64) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(strings.ToLower(category))
	if normalized == "" {
		normalized = "uncategorized"
	}
	m.submitted.WithLabelValues(normalized).Inc()
	if amount > 0 {
		m.amountTotal.Add(amount)
	}
}

// ObserveRejected increments the rejection counter for the supplied reason.
func (m *DonationMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// ObserveBonusClaimed increments the bonus claim counter.
func (m *DonationMetrics) ObserveBonusClaimed() {
	if m == nil {
		return
	}
	m.bonusClaims.Inc()
}

// SetUniqueDonors records the current distinct donor count.
func (m *DonationMetrics) SetUniqueDonors(count uint64) {
	if m == nil {
		return
	}
	m.uniqueDonors.Set(float64(count))
}
