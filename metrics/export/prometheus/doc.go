// Package prometheus provides Prometheus collectors for mpinauth metrics.
//
// [NewPrometheusExporter] accepts an [mpinauth.Engine] and exposes an [http.Handler]
// that renders all mpinauth counters and histograms in Prometheus text exposition format.
// Counter names are prefixed mpinauth_*_total; the single histogram is
// mpinauth_decide_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus
