package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publish outcomes recorded by the producer.
const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: TopicPrefix,
			Name:      "events_published_total",
			Help:      "Domain events handed to Kafka, by event type and outcome.",
		},
		[]string{"event_type", "outcome"},
	)

	// Domain events are single small messages; anything beyond a few hundred
	// milliseconds means a broker is struggling.
	publishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: TopicPrefix,
			Name:      "event_publish_duration_seconds",
			Help:      "WriteMessages latency per topic.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		},
		[]string{"topic"},
	)
)

func observePublish(topic, eventType string, start time.Time, err error) {
	publishDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	eventsPublished.WithLabelValues(eventType, outcome).Inc()
}
