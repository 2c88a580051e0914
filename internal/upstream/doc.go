// Package upstream is the shared HTTP plumbing behind the TMDB, OpenLibrary
// and backend clients.
//
// Every call passes through a token-bucket rate limiter and a circuit breaker
// owned by the Client. Responses are classified into the services error
// markers: 404 becomes ErrNotFound, 401/403 ErrUnauthorized, 409 ErrConflict,
// 400/422 ErrValidation, and everything else (network failures, 429, 5xx,
// undecodable bodies, an open circuit) ErrUnavailable. Only ErrUnavailable
// counts as a breaker failure.
package upstream
