// Package api implements the HTTP REST API and WebSocket server for Chroma Core.
//
// This package provides:
//   - REST endpoints for light and palette CRUD, colour applies, and
//     animation control
//   - WebSocket hub for real-time light state and animation broadcasts
//   - JWT authentication with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between user interfaces and the light registry + MQTT
// bus. Colour commands flow from the API to lights via MQTT, and state changes
// flow back via MQTT subscriptions which are broadcast to WebSocket clients.
//
// # Security
//
// Authentication uses short-lived HS256 JWT access tokens backed by the user
// database. WebSocket connections use single-use tickets to prevent token
// leakage in URLs. Mutating endpoints require the admin role.
//
// # Graceful Degradation
//
// The server operates without MQTT — reads and WebSocket connections work,
// only colour commands fail.
package api
