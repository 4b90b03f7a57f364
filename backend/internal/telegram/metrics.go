package telegram

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escutasegura_telegram_calls_total",
			Help: "Total de chamadas à Bot API por método e status.",
		},
		[]string{"method", "status"},
	)
	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "escutasegura_telegram_call_duration_seconds",
			Help:    "Duração das requisições HTTP à Bot API.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method"},
	)
)
