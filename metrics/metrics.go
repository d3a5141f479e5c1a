// Package metrics counts filesystem and blob store operations of a run.
package metrics

import (
	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "blobsweep"

type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	puts       *prometheus.CounterVec
	bytes      prometheus.Counter
}

func (m *Metrics) Middleware() blobsweep.Middleware {
	return func(next blobsweep.FileSystem) blobsweep.FileSystem {
		return &FileSystem{backend: next, metrics: m}
	}
}

func (m *Metrics) Store(backend blobsweep.BlobStore) blobsweep.BlobStore {
	return &BlobStore{backend: backend, metrics: m}
}

// WriteTextfile writes the current values in the text exposition format, as
// expected by the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "could not write metrics to '%s'", path)
	}

	return nil
}

func (m *Metrics) observeOperation(operation string, err error) {
	m.operations.WithLabelValues(operation, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filesystem",
			Name:      "operations_total",
			Help:      "Filesystem operations by operation and status.",
		}, []string{"operation", "status"}),
		puts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "puts_total",
			Help:      "Blob store writes by status.",
		}, []string{"status"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "bytes_total",
			Help:      "Bytes submitted to the blob store.",
		}),
	}

	m.registry.MustRegister(m.operations, m.puts, m.bytes)

	return m
}
