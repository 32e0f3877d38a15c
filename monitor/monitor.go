// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	ActiveGames         prometheus.Gauge
	LiveViewers         prometheus.Gauge
	GuessesChecked      prometheus.Counter
	WordsGuessed        prometheus.Counter
	CanvasUpdateLatency prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ActiveGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_games",
			Help:      "Number of unfinished games",
		}),
		LiveViewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_viewers",
			Help:      "Number of connected live-view sessions",
		}),
		GuessesChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_checked_total",
			Help:      "Total number of chat messages matched against a word",
		}),
		WordsGuessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "words_guessed_total",
			Help:      "Total number of correctly guessed words",
		}),
		CanvasUpdateLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "canvas_update_seconds",
			Help:      "Canvas update round-trip latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.ActiveGames,
		m.LiveViewers,
		m.GuessesChecked,
		m.WordsGuessed,
		m.CanvasUpdateLatency,
	)

	return m
}

type Monitor struct {
	metrics      *Metrics
	startTime    time.Time
	requestCount int64
	mutex        sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("requests", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.requestCount
	}))

	go http.ListenAndServe(addr, nil)
}

func (m *Monitor) SetActiveGames(count int64) {
	m.metrics.ActiveGames.Set(float64(count))
}

func (m *Monitor) IncLiveViewers() {
	m.metrics.LiveViewers.Inc()
}

func (m *Monitor) DecLiveViewers() {
	m.metrics.LiveViewers.Dec()
}

func (m *Monitor) IncGuessesChecked() {
	m.metrics.GuessesChecked.Inc()
	m.mutex.Lock()
	m.requestCount++
	m.mutex.Unlock()
}

func (m *Monitor) IncWordsGuessed() {
	m.metrics.WordsGuessed.Inc()
}

func (m *Monitor) ObserveCanvasUpdate(duration time.Duration) {
	m.metrics.CanvasUpdateLatency.Observe(duration.Seconds())
}
