package metrics

import (
    "sync"
    "time"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    registry = prometheus.NewRegistry()
    initOnce sync.Once

    itemsTotal = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "batchprint",
            Name:      "items_total",
            Help:      "Batch items by kind and terminal state (succeeded, failed, skipped)",
        },
        []string{"kind", "state"},
    )

    itemDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "batchprint",
            Name:      "item_duration_seconds",
            Help:      "Wall time per batch item by kind",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"kind"},
    )

    conversions = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "batchprint",
            Name:      "conversions_total",
            Help:      "Normalizations by kind and result",
        },
        []string{"kind", "result"},
    )

    conversionLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "batchprint",
            Name:      "conversion_duration_seconds",
            Help:      "Duration of normalizations by kind",
            Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 180},
        },
        []string{"kind"},
    )

    pagesDispatched = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "batchprint",
            Name:      "pages_dispatched_total",
            Help:      "Pages handed to a sink, by sink",
        },
        []string{"sink"},
    )

    tempFiles = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "batchprint",
            Name:      "temp_files_total",
            Help:      "Temporary artifacts by action (created, removed)",
        },
        []string{"action"},
    )
)

// Init registers collectors. Safe to call more than once.
func Init() {
    initOnce.Do(func() {
        registry.MustRegister(itemsTotal, itemDuration, conversions, conversionLatency, pagesDispatched, tempFiles)
    })
}

// Registry exposes the private registry, mainly for tests
func Registry() *prometheus.Registry { return registry }

// WriteTextfile dumps all metrics in the node-exporter textfile format
func WriteTextfile(path string) error {
    return prometheus.WriteToTextfile(path, registry)
}

func ObserveItem(kind, state string, dur time.Duration) {
    itemsTotal.WithLabelValues(kind, state).Inc()
    itemDuration.WithLabelValues(kind).Observe(dur.Seconds())
}

func ObserveConversion(kind string, ok bool, dur time.Duration) {
    conversions.WithLabelValues(kind, result(ok)).Inc()
    conversionLatency.WithLabelValues(kind).Observe(dur.Seconds())
}

func AddPages(sink string, n int) { pagesDispatched.WithLabelValues(sink).Add(float64(n)) }
func AddTempFiles(created, removed int) {
    tempFiles.WithLabelValues("created").Add(float64(created))
    tempFiles.WithLabelValues("removed").Add(float64(removed))
}

func result(ok bool) string { if ok { return "success" }; return "error" }
