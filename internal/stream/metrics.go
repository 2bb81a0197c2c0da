package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	openSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bnb_transcription_sessions_open",
		Help: "Currently open transcription sessions.",
	})

	transcriptsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bnb_transcripts_relayed_total",
		Help: "Final transcript results relayed to clients.",
	})
)
