// Package metrics provides prometheus counters for the registration flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts outcomes across the OTP, upsert and check-in paths.
// All methods are nil-safe so wiring metrics stays optional in tests.
type Metrics struct {
	OTPIssued   *prometheus.CounterVec
	OTPVerified *prometheus.CounterVec
	Upserts     *prometheus.CounterVec
	Redemptions *prometheus.CounterVec
}

// New registers and returns the metric set.
func New() *Metrics {
	return &Metrics{
		OTPIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_otp_issued_total",
			Help: "OTP issuance attempts by result",
		}, []string{"result"}), // result: "sent", "delivery_failed"

		OTPVerified: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_otp_verified_total",
			Help: "OTP verification attempts by result",
		}, []string{"result"}), // result: "ok", "invalid"

		Upserts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_upserts_total",
			Help: "Registration saves by outcome",
		}, []string{"outcome"}), // outcome: "created", "updated"

		Redemptions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "registration_checkins_total",
			Help: "Check-in redemptions by outcome",
		}, []string{"outcome"}), // outcome: "redeemed", "already_redeemed", "not_found", "invalid_token", "unauthorized"
	}
}

func (m *Metrics) CountOTPIssued(result string) {
	if m != nil {
		m.OTPIssued.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) CountOTPVerified(result string) {
	if m != nil {
		m.OTPVerified.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) CountUpsert(outcome string) {
	if m != nil {
		m.Upserts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) CountRedemption(outcome string) {
	if m != nil {
		m.Redemptions.WithLabelValues(outcome).Inc()
	}
}
