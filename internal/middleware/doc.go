// Package middleware holds the HTTP middleware chain of the web server:
// request IDs, access logging, panic recovery, rate limiting, CORS,
// security headers, Basic authentication and OpenTelemetry
// instrumentation. Failures are rendered as RFC 7807 problems through the
// errors package.
package middleware
