// Package observability provides structured logging and metrics for the
// authorization server.
//
// This package implements:
//   - zap logger construction from LOG_LEVEL / LOG_FORMAT
//   - a context-aware Logger that tags entries with request_id and login
//   - Prometheus counters for login outcomes and authorization decisions
package observability
