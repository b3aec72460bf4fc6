// Package observability wires logging, metrics and tracing for the engine
// binaries.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
)

type Metrics struct {
	GamesStarted     prometheus.Counter
	GamesFinished    *prometheus.CounterVec
	ActionsApplied   *prometheus.CounterVec
	ActionRejects    *prometheus.CounterVec
	ActionLatency    prometheus.Observer
	ConnectedClients prometheus.Gauge
	SpectatorClients prometheus.Gauge
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer.(*prometheus.Registry)
	}
	return &Metrics{
		GamesStarted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "games_started_total",
			Help: "Games initialized",
		}),
		GamesFinished: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "games_finished_total",
			Help: "Games finished by winner",
		}, []string{"winner"}),
		ActionsApplied: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "actions_applied_total",
			Help: "Accepted actions by phase",
		}, []string{"phase"}),
		ActionRejects: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "action_reject_total",
			Help: "Rejected actions by reason",
		}, []string{"reason"}),
		ActionLatency: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "action_apply_latency_ms",
			Help:    "Latency for applying actions",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		ConnectedClients: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "transport_connected_clients",
			Help: "Clients connected to the framed transport",
		}),
		SpectatorClients: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "spectator_connected_clients",
			Help: "Websocket spectators connected",
		}),
	}
}

func SetupTracerProvider(ctx context.Context, serviceName string, stdout bool, logger *zap.Logger) (*sdktrace.TracerProvider, error) {
	var exporter *stdouttrace.Exporter
	var err error
	if stdout {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
	}

	rs := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(rs),
	)
	if exporter != nil {
		tp.RegisterSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter))
	}
	otel.SetTracerProvider(tp)
	logger.Info("tracer initialized")
	return tp, nil
}

func SetupLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	return cfg.Build()
}
