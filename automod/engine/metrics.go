package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "automod_event_duration_sec",
	Help: "Total duration of moderation event processing",
}, []string{"type"})

var eventProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_event_processed",
	Help: "Number of events processed",
}, []string{"type"})

var eventErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_event_errors",
	Help: "Number of events which failed processing",
}, []string{"type"})

var throttledCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_throttled",
	Help: "Number of events rejected by the flood gate",
}, []string{"type"})

var verdictCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_verdicts",
	Help: "Number of recorded violations, by resulting tier",
}, []string{"tier"})

var sanctionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_sanctions",
	Help: "Number of sanctions attempted, by operation and outcome",
}, []string{"op", "outcome"})

var transportErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_transport_errors",
	Help: "Number of failed chat transport calls, by operation and error kind",
}, []string{"op", "kind"})

var commandMisuseCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_command_misuse",
	Help: "Number of moderation commands invoked by non-admins",
}, []string{"command"})

var adminLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_admin_lookups",
	Help: "Number of admin status lookups, by source (cache or API calls)",
}, []string{"source"})
