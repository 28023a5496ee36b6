// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes poll activity as Prometheus metrics.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/danielhkuo/secret-ballot/models"
)

const namespace = "secret_ballot"

// Metrics counts engine events. It is registered as an engine listener, so
// it only ever sees committed changes. Counters carry no poll or voter
// labels.
type Metrics struct {
	PollsPublished prometheus.Counter
	PollOptions    prometheus.Histogram
	VotesCast      prometheus.Counter
	VotesRejected  *prometheus.CounterVec
	Resets         prometheus.Counter
}

// NewMetrics registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PollsPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_published_total",
			Help:      "Total number of polls published",
		}),
		PollOptions: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_options",
			Help:      "Number of options on published polls",
			Buckets:   prometheus.LinearBuckets(1, 5, 6), // 1 to 26
		}),
		VotesCast: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Total number of votes recorded",
		}),
		VotesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_rejected_total",
				Help:      "Total number of refused votes by reason",
			},
			[]string{"reason"},
		),
		Resets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_reset_total",
			Help:      "Total number of times all poll data was flushed",
		}),
	}
}

func (m *Metrics) OnEvent(_ context.Context, ev models.Event) {
	switch ev.Type {
	case models.EventPollPublished:
		m.PollsPublished.Inc()
		if ev.Poll != nil {
			m.PollOptions.Observe(float64(len(ev.Poll.Options)))
		}
	case models.EventVoteCast:
		m.VotesCast.Inc()
	case models.EventPollsReset:
		m.Resets.Inc()
	}
}

func (m *Metrics) OnVoteRejected(reason string) {
	m.VotesRejected.WithLabelValues(reason).Inc()
}
