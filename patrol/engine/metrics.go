package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "patrol_events_processed",
	Help: "Number of activity events processed",
}, []string{"kind"})

var eventErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "patrol_event_errors",
	Help: "Number of activity events which failed processing",
}, []string{"kind"})

var oracleLookupCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "patrol_oracle_lookups",
	Help: "Number of flag status resolutions, by result",
}, []string{"result"})

var oracleTierErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "patrol_oracle_tier_errors",
	Help: "Number of failed oracle lookup tiers",
}, []string{"tier"})

var banCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "patrol_bans",
	Help: "Number of new ban records created",
})

var unbanCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "patrol_unbans",
	Help: "Number of ban records removed during appeal sweeps",
})

var removalCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "patrol_removals",
	Help: "Number of content removals",
})

var reportCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "patrol_reports",
	Help: "Number of content reports filed where removal was not permitted",
})

var registryPromotionCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "patrol_registry_promotions",
	Help: "Number of accounts added to the marked registry",
})

var registryDemotionCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "patrol_registry_demotions",
	Help: "Number of accounts removed from the marked registry",
})
