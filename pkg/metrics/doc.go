// Package metrics exposes Prometheus collectors for the login lifecycle and
// the local status API.
//
// Metrics implements bootstrap.Observer, so it can be attached with
// bootstrap.WithObserver. Collectors live on a private registry which is
// served by Handler.
//
//	m := metrics.New()
//	b := bootstrap.New(api, sdk, state, bootstrap.WithObserver(m))
//	router.Handle("/metrics", m.Handler())
package metrics
