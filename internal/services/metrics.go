package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// reactionToggles counts committed toggles by outcome and reaction kind.
	reactionToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_reaction_toggles_total",
			Help: "Committed like/dislike toggles by action and kind.",
		},
		[]string{"action", "kind"},
	)

	// recommendationsServed counts recommendation responses by tier.
	recommendationsServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Recommendation responses by source (personalized or trending).",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(reactionToggles, recommendationsServed)
}
