package genai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bnb_generation_retries_total",
	Help: "Generation backend failures that triggered fail-over to the next backend.",
}, []string{"backend"})
