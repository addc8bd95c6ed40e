// Package metrics exposes operation and history counters in Prometheus
// format.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"image-workbench/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "image_workbench"

// Recorder owns a private registry so several instances can coexist in
// one process.
type Recorder struct {
	registry *prometheus.Registry

	applied      *prometheus.CounterVec
	failed       *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	navigations  *prometheus.CounterVec
	historyDepth prometheus.Gauge
	historyIndex prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		applied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_applied_total",
			Help:      "Operations applied and recorded in history",
		}, []string{"operation"}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_failed_total",
			Help:      "Operations that failed and left history untouched",
		}, []string{"operation"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Wall time spent applying an operation",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),
		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_navigations_total",
			Help:      "Undo, redo and reset requests that moved the cursor",
		}, []string{"direction"}),
		historyDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_depth",
			Help:      "Number of states held in the edit history",
		}),
		historyIndex: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_cursor",
			Help:      "Index of the current state, -1 when empty",
		}),
	}
}

func (r *Recorder) OperationApplied(operation string, elapsed time.Duration) {
	r.applied.WithLabelValues(operation).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (r *Recorder) OperationFailed(operation string) {
	r.failed.WithLabelValues(operation).Inc()
}

// HistoryMoved counts a cursor move; direction is "undo", "redo" or "reset".
func (r *Recorder) HistoryMoved(direction string) {
	r.navigations.WithLabelValues(direction).Inc()
}

func (r *Recorder) HistoryChanged(depth, cursor int) {
	r.historyDepth.Set(float64(depth))
	r.historyIndex.Set(float64(cursor))
}

// Shared wraps r for many sessions running at once, as in batch mode.
// Counters and durations are summed across sessions. The history gauges
// describe a single history, so the wrapper leaves them alone.
func (r *Recorder) Shared() *SharedRecorder {
	return &SharedRecorder{recorder: r}
}

type SharedRecorder struct {
	recorder *Recorder
}

func (s *SharedRecorder) OperationApplied(operation string, elapsed time.Duration) {
	s.recorder.OperationApplied(operation, elapsed)
}

func (s *SharedRecorder) OperationFailed(operation string) {
	s.recorder.OperationFailed(operation)
}

func (s *SharedRecorder) HistoryMoved(direction string) {
	s.recorder.HistoryMoved(direction)
}

func (s *SharedRecorder) HistoryChanged(depth, cursor int) {}

// TrackActiveMats exports the live OpenCV Mat count read from count.
func (r *Recorder) TrackActiveMats(count func() int64) {
	promauto.With(r.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "opencv_active_mats",
		Help:      "OpenCV Mats allocated and not yet closed",
	}, func() float64 { return float64(count()) })
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Server serves /metrics until Shutdown.
type Server struct {
	http   *http.Server
	addr   string
	logger logger.Logger
}

// Serve starts listening on addr in the background. The bound address is
// available from Addr, which matters when addr has port 0.
func (r *Recorder) Serve(addr string, log logger.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	s := &Server{
		http: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr:   ln.Addr().String(),
		logger: log,
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics", err, map[string]interface{}{"addr": s.addr})
		}
	}()

	log.Info("Metrics", "serving Prometheus metrics", map[string]interface{}{"addr": s.addr})
	return s, nil
}

func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
