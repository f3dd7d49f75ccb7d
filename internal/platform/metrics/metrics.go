package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scoreboard"

const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "circuit_open"
)

// Recorder is the operator-facing channel for upstream and pipeline health. All methods
// are safe on a nil receiver so components can run without metrics in tests.
type Recorder struct {
	registry *prometheus.Registry

	fetchTotal     *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	cycleTotal     *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	publishedItems *prometheus.GaugeVec
	droppedGames   *prometheus.CounterVec
	skippedTicks   prometheus.Counter
	cacheHits      *prometheus.CounterVec

	health *FeedHealth
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_total",
			Help:      "Upstream feed requests by feed, league and outcome.",
		}, []string{"feed", "league", "outcome"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Upstream feed request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"feed"}),
		cycleTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_cycles_total",
			Help:      "Aggregation cycles by outcome.",
		}, []string{"outcome"}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_cycle_duration_seconds",
			Help:      "Wall time of one aggregation cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		publishedItems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_items",
			Help:      "Items in the published snapshot by kind.",
		}, []string{"kind"}),
		droppedGames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_dropped_total",
			Help:      "Games excluded from a snapshot by reason.",
		}, []string{"reason"}),
		skippedTicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publisher_skipped_ticks_total",
			Help:      "Timer ticks skipped because a refresh was still in flight.",
		}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aux_cache_lookups_total",
			Help:      "Auxiliary cache lookups by result.",
		}, []string{"result"}),
		health: NewFeedHealth(),
	}
}

// Handler exposes the recorder's registry in Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordFetch counts one upstream call and updates the per-feed health entry.
func (r *Recorder) RecordFetch(feed, league string, duration time.Duration, outcome string, err error) {
	if r == nil {
		return
	}
	r.fetchTotal.WithLabelValues(feed, league, outcome).Inc()
	r.fetchDuration.WithLabelValues(feed).Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		r.health.RecordSuccess(feed, league)
		return
	}
	r.health.RecordFailure(feed, league, err)
}

func (r *Recorder) RecordCycle(duration time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	r.cycleTotal.WithLabelValues(outcome).Inc()
	r.cycleDuration.Observe(duration.Seconds())
}

func (r *Recorder) RecordPublished(games, news, transactions, injuries int) {
	if r == nil {
		return
	}
	r.publishedItems.WithLabelValues("games").Set(float64(games))
	r.publishedItems.WithLabelValues("news").Set(float64(news))
	r.publishedItems.WithLabelValues("transactions").Set(float64(transactions))
	r.publishedItems.WithLabelValues("injuries").Set(float64(injuries))
}

func (r *Recorder) RecordDroppedGame(reason string) {
	if r == nil {
		return
	}
	r.droppedGames.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordSkippedTick() {
	if r == nil {
		return
	}
	r.skippedTicks.Inc()
}

func (r *Recorder) RecordCacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheHits.WithLabelValues(result).Inc()
}

// FeedHealth returns the health tracker, or nil when the recorder is nil.
func (r *Recorder) FeedHealth() *FeedHealth {
	if r == nil {
		return nil
	}
	return r.health
}
