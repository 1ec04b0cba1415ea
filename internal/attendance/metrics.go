package attendance

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"qrattend/internal/apierr"
)

var (
	scansAccepted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qrattend_scans_accepted_total",
		Help: "Accepted attendance scans by action.",
	}, []string{"action"})

	scansRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qrattend_scans_rejected_total",
		Help: "Rejected attendance scans by error code.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(scansAccepted, scansRejected)
}

func recordRejection(err error) {
	reason := string(apierr.CodeInternal)
	var api *apierr.Error
	if errors.As(err, &api) {
		reason = string(api.Code)
	}
	scansRejected.WithLabelValues(reason).Inc()
}
