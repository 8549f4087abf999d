// Package middleware contains HTTP middleware for the status server.
//
// It provides cross-cutting concerns that sit between the request and the handler.
//
// # Components
//
//   - Auth: Implements API key validation to protect the status endpoints.
//     Paths listed as exempt, such as /healthz, stay open for probes.
//   - RayID: Generates a unique Request ID (RayID) for every incoming request,
//     injecting it into the context and response headers for tracing.
//
// The watch command registers both globally before the feature routes,
// so every status request is traced and authenticated.
package middleware
