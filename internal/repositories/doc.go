// Package repositories implements SQLite persistence for the identity directory.
//
// Key Implementations:
//   - [UserRepository] : local and federated accounts with case-insensitive email lookups
//   - [SessionRepository] : issued session tokens, revocation and expiry cleanup
//
// Emails are unique; a duplicate surfaces as [shared.ErrEmailTaken]. Missing rows surface as
// [shared.ErrUserNotFound] or [shared.ErrNotAuthenticated] so callers can match with errors.Is.
package repositories
