package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tictactoe"

// Metrics - game counters plus HTTP request metrics on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	playersRegistered prometheus.Counter
	gamesCreated      prometheus.Counter
	movesTotal        prometheus.Counter
	gamesFinished     *prometheus.CounterVec
	gamesCancelled    prometheus.Counter

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge
}

func New() *Metrics {
	that := &Metrics{
		Registry: prometheus.NewRegistry(),

		playersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "players_registered_total", Help: "Registered players",
		}),
		gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "games_created_total", Help: "Created games",
		}),
		movesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "moves_total", Help: "Accepted moves",
		}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "games_finished_total", Help: "Finished games by result",
		}, []string{"result"}),
		gamesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "games_cancelled_total", Help: "Cancelled games",
		}),

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total", Help: "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"method", "route"}),
		httpRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight", Help: "Current in-flight requests",
		}),
	}

	that.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		that.playersRegistered,
		that.gamesCreated,
		that.movesTotal,
		that.gamesFinished,
		that.gamesCancelled,
		that.httpRequestsTotal,
		that.httpRequestDuration,
		that.httpRequestsInFlight,
	)

	return that
}

func (that *Metrics) PlayerRegistered() {
	that.playersRegistered.Inc()
}

func (that *Metrics) GameCreated() {
	that.gamesCreated.Inc()
}

func (that *Metrics) MoveApplied() {
	that.movesTotal.Inc()
}

func (that *Metrics) GameFinished(result string) {
	that.gamesFinished.WithLabelValues(result).Inc()
}

func (that *Metrics) GameCancelled() {
	that.gamesCancelled.Inc()
}

// Middleware - counts and times every request by its route template.
func (that *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		that.httpRequestsInFlight.Inc()
		defer that.httpRequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		that.httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		that.httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.Registry, promhttp.HandlerOpts{})
}
