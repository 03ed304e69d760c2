// Package server provides HTTP routing, middleware, and the OAuth callback used by the web app and the CLI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on an [http.ServeMux],
// so one path can carry a page (GET) and a form action (POST) while other methods receive 405.
//
// # Middleware
//
// [Logging] writes one charmbracelet/log line per request, [Recover] converts panics into 500 responses,
// and [RateLimiter] keeps a token bucket per client address for the sign-in forms.
//
// # OAuth Callback Handler
//
// [OAuthHandler] receives the federated sign-in redirect at [CallbackPath] for the terminal flow.
// It checks the state parameter, exchanges the code through an [Exchanger], and sends the result through a channel.
// Only the first callback is processed.
//
// # Server
//
// [Server] wraps [http.Server] and shuts it down when its context is cancelled.
package server
