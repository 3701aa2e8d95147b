// Copyright (c) 2024-2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/decred/powdiff/blockchain"
	"github.com/decred/powdiff/difficulty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsNamespace is the namespace of all exported metrics.
const metricsNamespace = "powdiff"

// replayMetrics houses the metrics that track the progress of a header replay.
type replayMetrics struct {
	registry   *prometheus.Registry
	headers    prometheus.Counter
	retargets  prometheus.Counter
	rejected   prometheus.Counter
	height     prometheus.Gauge
	difficulty prometheus.Gauge
	chainWork  prometheus.Gauge
}

// newReplayMetrics returns replay metrics registered with a new registry.
func newReplayMetrics() *replayMetrics {
	m := &replayMetrics{
		registry: prometheus.NewRegistry(),
		headers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "headers_connected_total",
			Help:      "Number of headers connected to the chain.",
		}),
		retargets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "retargets_total",
			Help:      "Number of connected headers whose difficulty differs from their parent.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "headers_rejected_total",
			Help:      "Number of headers rejected by the difficulty rules.",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "tip_height",
			Help:      "Height of the best header.",
		}),
		difficulty: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "tip_difficulty",
			Help:      "Approximate difficulty of the best header.",
		}),
		chainWork: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "chain_work",
			Help:      "Approximate cumulative work of the chain.",
		}),
	}
	m.registry.MustRegister(m.headers, m.retargets, m.rejected, m.height,
		m.difficulty, m.chainWork)
	return m
}

// observe updates the metrics for a newly connected node.
func (m *replayMetrics) observe(node *blockchain.BlockNode, scheme difficulty.Scheme, retarget bool) {
	m.headers.Inc()
	if retarget {
		m.retargets.Inc()
	}
	m.height.Set(float64(node.Height))
	m.difficulty.Set(scheme.Float64(node.Bits))
	m.chainWork.Set(difficulty.RawToFloat64(&node.ChainWork))
}

// serveMetrics serves the metrics of the passed registry over HTTP on the
// passed listener until the context is canceled.  The returned channel
// receives the result of the server once it stops.
func serveMetrics(ctx context.Context, listener net.Listener, registry *prometheus.Registry) <-chan error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	pdifLog.Infof("Serving metrics on %s", listener.Addr())

	done := make(chan error, 1)
	go func() {
		err := server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
	return done
}
