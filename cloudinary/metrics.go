package cloudinary

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cloudinary_requests_total",
	Help: "Calls made to the Cloudinary API by operation and outcome.",
}, []string{"operation", "outcome"})

func observeRequest(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestsTotal.WithLabelValues(op, outcome).Inc()
}
