// Package httpapi serves the query gateway over HTTP.
//
// Routes:
//
//	GET /modes    supported query modes
//	GET /query    ?question=...&mode=naive|local|global|hybrid[&sources=true]
//	GET /health   liveness, always {"status":"healthy"}
//	GET /metrics  Prometheus exposition
//
// Every response carries an X-Request-ID header. Cross-origin requests are
// allowed for the configured origins.
package httpapi
