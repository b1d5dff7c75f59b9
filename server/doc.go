// Package server exposes pipeline validation over HTTP using Gin, with
// HTTP/2 cleartext support on the same port.
//
// # Middleware
//
// Applied around every route (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation and propagation
//   - CORS: cross-origin access for browser-based editors
//   - BodySizeLimit: request body size limit
//   - RateLimit: per-client sliding-window limit
//   - RequestLogger: request logging and metric observers
//
// # Routes
//
//   - GET /health, GET /info
//   - GET /v1/node-types
//   - POST /v1/pipelines/validate
//   - POST /v1/pipelines/migrate
//   - POST /v1/pipelines/open
package server
