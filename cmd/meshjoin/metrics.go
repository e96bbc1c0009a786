package main

import (
	"log"
	"os"

	"meshjoin/internal/metrics"
	"meshjoin/internal/metrics/datadog"
	"meshjoin/internal/metrics/prompush"
)

const (
	defaultPushgatewayURL = "http://localhost:9091"
	defaultDatadogAddr    = "127.0.0.1:8125"
)

// setupMetrics installs the selected backend (flag, then env, then none) and
// returns a func that flushes it at the end of the run. A backend that fails
// to initialize is logged and metrics stay disabled.
func setupMetrics(opts runOptions, job string, verbose bool) (flush func()) {
	noop := func() {}

	name := firstNonEmpty(opts.metricsBackend, os.Getenv("METRICS_BACKEND"))
	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "pushgateway":
		url := firstNonEmpty(opts.pushgatewayURL, os.Getenv("PUSHGATEWAY_URL"), defaultPushgatewayURL)
		b, err = prompush.NewBackend(job, url)
		if err == nil {
			log.Printf("metrics: backend=pushgateway url=%s job=%s", url, job)
		}
	case "datadog":
		addr := firstNonEmpty(opts.datadogAddr, os.Getenv("DATADOG_ADDR"), defaultDatadogAddr)
		b, err = datadog.NewBackend(datadog.Config{Addr: addr, GlobalTags: []string{"job:" + job}})
		if err == nil {
			log.Printf("metrics: backend=datadog addr=%s job=%s", addr, job)
		}
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled")
		}
		return noop
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", name)
		return noop
	}
	if err != nil {
		log.Printf("metrics: init %s backend: %v; metrics disabled", name, err)
		return noop
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
