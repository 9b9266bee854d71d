package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(loginsTotal, sessionChecksTotal, throttleSuppressed) }

var loginsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "logins_total",
		Help: "Code redemption attempts by outcome (success/format/not_found/already_used/expired/error).",
	},
	[]string{"outcome"},
)

var sessionChecksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "session_checks_total",
		Help: "Session validations by result (active/expired/invalid/error).",
	},
	[]string{"result"},
)

var throttleSuppressed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "gate_throttle_suppressed_total",
		Help: "Session re-checks skipped by the per-identity cooldown.",
	},
)

func IncLogin(outcome string)    { loginsTotal.WithLabelValues(outcome).Inc() }
func IncSessionCheck(res string) { sessionChecksTotal.WithLabelValues(res).Inc() }
func IncThrottleSuppressed()     { throttleSuppressed.Inc() }
