// Package api hosts the HTTP server, middleware, and handlers. Notable routes:
//   - GET /api/scrape?keyword= runs one marketplace search scrape.
//   - GET /healthz / readyz for Kubernetes liveness and readiness checks.
//   - GET /metrics for Prometheus scraping.
package api
