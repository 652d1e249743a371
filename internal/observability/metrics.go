package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	httpDurationHistogram *prometheus.HistogramVec
	accrualCounter        *prometheus.CounterVec
	releaseCounter        *prometheus.CounterVec
	requestTransitions    *prometheus.CounterVec
	payoutTransitions     *prometheus.CounterVec
	structuralErrors      *prometheus.CounterVec
	mismatchCounter       *prometheus.CounterVec
	workerRunCounter      *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		accrualCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_accruals_total",
			Help: "Purchase accrual outcomes",
		}, []string{"result"})

		releaseCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_hold_releases_total",
			Help: "Per-purchase hold release outcomes",
		}, []string{"result"})

		requestTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_payout_request_transitions_total",
			Help: "Payout request status changes",
		}, []string{"status"})

		payoutTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_payout_transitions_total",
			Help: "Payout status changes",
		}, []string{"status"})

		structuralErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_structural_errors_total",
			Help: "Data integrity errors that aborted an operation",
		}, []string{"operation"})

		mismatchCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_reconciliation_mismatches_total",
			Help: "Reconciliation mismatches by kind",
		}, []string{"kind"})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			accrualCounter,
			releaseCounter,
			requestTransitions,
			payoutTransitions,
			structuralErrors,
			mismatchCounter,
			workerRunCounter,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementAccrual(result string) {
	if accrualCounter == nil {
		return
	}
	accrualCounter.WithLabelValues(result).Inc()
}

func IncrementRelease(result string) {
	if releaseCounter == nil {
		return
	}
	releaseCounter.WithLabelValues(result).Inc()
}

func IncrementRequestTransition(status string) {
	if requestTransitions == nil {
		return
	}
	requestTransitions.WithLabelValues(status).Inc()
}

func IncrementPayoutTransition(status string) {
	if payoutTransitions == nil {
		return
	}
	payoutTransitions.WithLabelValues(status).Inc()
}

func IncrementStructuralError(operation string) {
	if structuralErrors == nil {
		return
	}
	structuralErrors.WithLabelValues(operation).Inc()
}

func IncrementMismatch(kind string) {
	if mismatchCounter == nil {
		return
	}
	mismatchCounter.WithLabelValues(kind).Inc()
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}

// Middleware records request durations labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		ObserveHTTP(r.Method, routePattern(r), rw.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
