package models

import "time"

// Stats agrega os resumos persistidos para o comando administrativo /stats.
type Stats struct {
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
	Total       int       `json:"total" yaml:"total"`
	Last24h     int       `json:"last24h" yaml:"last24h"`
	Last7d      int       `json:"last7d" yaml:"last7d"`
	Last30d     int       `json:"last30d" yaml:"last30d"`

	ByTipo     map[TipoDenuncia]int `json:"byTipo" yaml:"byTipo"`
	ByUrgencia map[Urgencia]int     `json:"byUrgencia" yaml:"byUrgencia"`

	// PeakHourUTC e PeakWeekday valem -1 quando não há dados.
	PeakHourUTC int `json:"peakHourUTC" yaml:"peakHourUTC"`
	PeakWeekday int `json:"peakWeekday" yaml:"peakWeekday"`
}
