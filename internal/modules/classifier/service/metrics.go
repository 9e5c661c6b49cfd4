package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classifierAPIDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "moderation_classifier_api_duration_sec",
	Help: "Duration of text classification API calls",
})

var classifierAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_classifier_api_count",
	Help: "Number of text classification API calls, by HTTP status code",
}, []string{"status"})

var classifierVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_classifier_verdicts_total",
	Help: "Classification results, by outcome",
}, []string{"outcome"})
