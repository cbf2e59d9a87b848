package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var workItemsAdded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "truemoder_scheduler_work_items_added_total",
	Help: "Total number of work items added to the consumer pool",
}, []string{"pool"})

var workItemsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "truemoder_scheduler_work_items_processed_total",
	Help: "Total number of work items processed by the consumer pool",
}, []string{"pool"})

var workItemsActive = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "truemoder_scheduler_work_items_active_total",
	Help: "Total number of work items passed into a worker",
}, []string{"pool"})

var workersActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "truemoder_scheduler_workers_active",
	Help: "Number of workers currently active",
}, []string{"pool"})

var updatesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "truemoder_updates_received_total",
	Help: "Number of chat updates received, by intake",
}, []string{"intake"})

var updateErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "truemoder_update_errors_total",
	Help: "Number of updates whose handling failed, by error kind",
}, []string{"kind"})
