// Package observability exposes Prometheus metrics for the resolution pipeline
package observability

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

//nolint:gochecknoglobals // one metrics listener per process
var (
	metricsServer *http.Server
	startOnce     sync.Once
)

// StartMetricsServer binds the /metrics endpoint. Every command may call
// it; only the first call starts the listener.
func StartMetricsServer(addr string) {
	startOnce.Do(func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		metricsServer = &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 15 * time.Second,
		}

		go func() {
			logrus.WithField("addr", addr).Info("Serving resolution metrics")

			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.WithError(err).Fatal("Metrics server failed")
			}
		}()
	})
}
