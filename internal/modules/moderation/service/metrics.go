package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messagesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_messages_total",
	Help: "Messages seen by the moderation pipeline, by outcome",
}, []string{"outcome"})

var enforcementEffects = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_enforcement_effects_total",
	Help: "Enforcement side effects attempted, by effect and result",
}, []string{"effect", "result"})
