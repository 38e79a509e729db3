// Package statusapi serves the shared session context on a local HTTP
// listener, so that other processes on the machine can read who is signed
// in and trigger the login lifecycle.
//
// Routes:
//
//	GET  /session               current snapshot
//	POST /session/login         mount: restore the session or sign in interactively
//	POST /session/logout        sign out and forget the stored token
//	POST /session/reload        re-validate the session, refresh notifications
//	GET  /session/notifications uncleared notifications (?limit=N)
//	GET  /healthz               liveness, or readiness when checks are configured
//	GET  /metrics               Prometheus metrics
//
// A login or reload while another sequence runs answers 409. A 401 or 403
// from the backend answers 401, exhausted retries 502 and an unavailable
// Pi SDK 503.
package statusapi
