package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	applyOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_apply_operations_total",
			Help: "Apply/cancel operations by outcome",
		},
		[]string{"operation", "status"},
	)

	capacityRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_capacity_rejections_total",
			Help: "Applies rejected because the part was full",
		},
		[]string{"activity_id"},
	)

	saveConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_save_conflicts_total",
			Help: "Optimistic activity saves that lost the revision race",
		},
		[]string{"outcome"},
	)

	partApplicants = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "part_applicants",
			Help: "Current applicant count per part",
		},
		[]string{"activity_id", "part_id"},
	)

	confirmationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_confirmation_duration_seconds",
			Help:    "Duration of confirmation runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"status"},
	)
)

// TrackApply records one apply or cancel operation outcome.
func TrackApply(operation, status string) {
	applyOperations.WithLabelValues(operation, status).Inc()
}

// TrackCapacityRejection records an apply that hit the capacity ceiling.
func TrackCapacityRejection(activityID string) {
	capacityRejections.WithLabelValues(activityID).Inc()
}

// TrackSaveConflict records a lost revision race; outcome is "retried" while
// the loop keeps going and "exhausted" when the conflict is surfaced.
func TrackSaveConflict(outcome string) {
	saveConflicts.WithLabelValues(outcome).Inc()
}

// TrackPartApplicants updates the applicant gauge after a successful save.
func TrackPartApplicants(activityID, partID string, count int) {
	partApplicants.WithLabelValues(activityID, partID).Set(float64(count))
}

// TrackConfirmation records one confirmation run.
func TrackConfirmation(status string, duration time.Duration) {
	confirmationDuration.WithLabelValues(status).Observe(duration.Seconds())
}
