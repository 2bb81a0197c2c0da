package evaluate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var answersEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bnb_answers_evaluated_total",
	Help: "Answers evaluated, by outcome.",
}, []string{"outcome"})
