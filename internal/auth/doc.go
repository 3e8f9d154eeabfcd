// Package auth provides authentication and authorisation for Chroma Core.
//
// It implements a 2-tier role model (user → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Short-lived HS256 JWT access tokens
//   - First-run admin seeding with a generated one-time password
//
// Users can read lights and palettes and apply colours; admin is
// additionally required for anything that mutates configuration
// (light and palette CRUD, settings, user management).
package auth
