package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	actionsReceivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "admin_agent_actions_received_total",
		Help: "Total number of admin actions read from the source",
	})
	actionsIgnoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "admin_agent_actions_ignored_total",
		Help: "Total number of admin actions dropped as invalid or targeting another resource",
	})
	actionsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "admin_agent_actions_expired_total",
		Help: "Total number of admin actions found expired when handled",
	})
	actionsHandledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admin_agent_actions_handled_total",
		Help: "Total number of admin actions executed",
	}, []string{"mode"})
	actionsDismissedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "admin_agent_actions_dismissed_total",
		Help: "Total number of pending admin actions dismissed by an operator",
	})
	actionsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "admin_agent_actions_failed_total",
		Help: "Total number of admin actions whose execution failed",
	})
)

const (
	ModeAuto   = "auto"
	ModeManual = "manual"
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(actionsReceivedTotal, actionsIgnoredTotal, actionsExpiredTotal,
		actionsHandledTotal, actionsDismissedTotal, actionsFailedTotal)
}

// IncReceived increments the received actions counter.
func IncReceived() { actionsReceivedTotal.Inc() }

// IncIgnored increments the ignored actions counter.
func IncIgnored() { actionsIgnoredTotal.Inc() }

// IncExpired increments the expired actions counter.
func IncExpired() { actionsExpiredTotal.Inc() }

// IncHandled increments the handled actions counter for the given mode.
func IncHandled(mode string) { actionsHandledTotal.WithLabelValues(mode).Inc() }

// IncDismissed increments the dismissed actions counter.
func IncDismissed() { actionsDismissedTotal.Inc() }

// IncFailed increments the failed actions counter.
func IncFailed() { actionsFailedTotal.Inc() }
