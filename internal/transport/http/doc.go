// Package http implements the HTTP handlers of the report service.
// Handlers stay thin: they read query parameters, call a service and turn
// the result into a response. Failures go through the shared RFC 7807
// error handler in internal/errors so every endpoint reports problems the
// same way.
//
// Routes:
//
//	GET /api/reports/export?entityKind=&outputFormat=&from=&to=
//	GET /api/reports/summary?entityKind=&from=&to=
//	GET /api/health, /api/health/ready, /api/health/live, /api/version
package http
