package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var SessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "flowgate_sessions_started_total",
	Help: "Flow sessions started, by flow name.",
}, []string{"flow"})

var SessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "flowgate_sessions_completed_total",
	Help: "Flow sessions reaching a terminal stage, by flow name.",
}, []string{"flow"})

var SessionsDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "flowgate_sessions_discarded_total",
	Help: "Flow sessions cancelled, aborted or expired, by flow name.",
}, []string{"flow"})

var StageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "flowgate_stage_failures_total",
	Help: "Stage submissions ending in an error, by flow name and error kind.",
}, []string{"flow", "kind"})
