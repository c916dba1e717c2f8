// Package local provides a database-backed identity provider for
// deployments that keep credentials in their own storage instead of a
// hosted service.
//
// Accounts live in a bun-managed table with bcrypt password hashes. The
// provider mints short-lived identity tokens that the session issuer
// exchanges for session credentials, the same handshake a hosted provider
// performs.
package local
