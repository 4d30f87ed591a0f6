// Package middlewares provides the HTTP middleware the platform mounts in
// front of its expensive routes: request-quota gating backed by pkg/quota,
// client IP extraction for guest identities, and request ids for tracing.
//
// Middleware uses the standard func(http.Handler) http.Handler shape and
// composes with chi routers and plain net/http alike.
package middlewares
