package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fieldcalc"

var (
	calculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calculations_total",
		Help:      "Number of calculations by calculator and validity",
	}, []string{"calculator", "result"})

	adjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "adjustments_total",
		Help:      "Number of successful transformer reading adjustments by directive",
	}, []string{"adjustment"})

	auditFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_failures_total",
		Help:      "Number of audit entries that could not be recorded",
	})
)

func observe(calculator string, valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	calculationsTotal.WithLabelValues(calculator, result).Inc()
}
