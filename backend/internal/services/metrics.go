package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelineTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escutasegura_submissions_total",
			Help: "Total de denúncias por estado final do pipeline.",
		},
		[]string{"state"},
	)
	storeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "escutasegura_store_failures_total",
			Help: "Resumos de denúncia que não puderam ser salvos.",
		},
	)
	mirrorFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "escutasegura_mirror_failures_total",
			Help: "Cópias por e-mail que não puderam ser enviadas.",
		},
	)
	statsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escutasegura_stats_requests_total",
			Help: "Relatórios de estatísticas por status.",
		},
		[]string{"status"},
	)
)
