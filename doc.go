// Package session implements the server side of an authenticated session
// protocol: exchanging a provider-issued identity token for a signed,
// time-bounded session credential, validating that credential on every
// protected request, and revoking it ahead of its natural expiry.
//
// Identity providers:
//   - Credential verification is a black-box capability behind the
//     IdentityProvider interface. The library ships a password-backed
//     implementation in provider/local and a JWKS verifier for hosted
//     providers. Provider failures are normalized into a closed taxonomy
//     before they reach the issuer; no provider detail crosses the boundary.
//
// Session lifecycle:
//   - SessionIssuer verifies the identity token itself, provisions the user
//     profile idempotently, and mints an HS256 credential carrying the user
//     id and a unique session id (jti).
//   - SessionValidator checks signature, expiry, then revocation, in that
//     order. It is a read path: safe for concurrent use and free of side
//     effects.
//   - SessionTerminator revokes a single session id until the credential
//     would have expired on its own. Terminating an already-invalid
//     credential is an idempotent success.
package session
