package challenge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var challengesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bnb_challenges_issued_total",
	Help: "Challenges issued to players, by kind.",
}, []string{"kind"})
