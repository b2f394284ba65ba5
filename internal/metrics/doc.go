// Package metrics records build counters and timings.
//
// Producers depend on the Recorder interface. NoopRecorder is the default so
// callers never nil-check; PrometheusRecorder backs it with a registry when
// the build is asked to emit metrics:
//
//	rec := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
//	gen := site.NewGenerator(cfg, paths).WithRecorder(rec)
//
// A build exits when it is done, so nothing scrapes it over HTTP.
// WriteTextfile dumps the registry in the node exporter textfile format
// instead.
package metrics
