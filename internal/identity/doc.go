// Package identity is the authentication boundary.
//
// A [Directory] stores accounts and session tokens in sqlite: bcrypt password hashes, HS256
// tokens whose jti names a session row, and Google accounts linked through the OAuth2
// authorization code flow. A [Client] is the per-visitor [Provider] over a directory, and a
// [Session] is the auth context pages and commands read from: the normalized [models.User],
// loading and authenticated flags, and actions that report outcomes as notices.
package identity
