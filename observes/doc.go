// Package observes wires error reporting and tracing: Sentry for partial erasures and
// an OTLP/gRPC OpenTelemetry provider for deletion and delivery spans.
package observes
