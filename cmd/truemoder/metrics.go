package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var throttleKeys = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "truemoder_throttle_keys",
	Help: "Number of flood gate keys currently tracked",
})

var throttleKeysSwept = promauto.NewCounter(prometheus.CounterOpts{
	Name: "truemoder_throttle_keys_swept",
	Help: "Number of idle flood gate keys dropped",
})

var jailedUsers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "truemoder_jailed_users",
	Help: "Number of users with a non-zero violation count",
})
