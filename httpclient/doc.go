// Package httpclient provides a small HTTP client with base-URL joining,
// default headers, pluggable authentication, and a retry mechanism with
// linear backoff.
//
// Retries
//   - Controlled via Builder.WithRetries(maxRetries, backoff); a request
//     makes at most maxRetries+1 attempts.
//   - Retries occur on:
//   - Transport errors (network failures)
//   - Timeouts (context deadline exceeded or net.Error timeout)
//   - HTTP 429, 500, 502, 503, 504 responses
//   - Any other status is returned after the first attempt.
//
// Backoff Strategy
//   - Linear backoff: the wait before retry N is backoff * N.
//   - The delay function is injectable (Builder.WithSleepFunc) so tests
//     can drive the retry loop without real sleeps.
//
// Authentication
//   - Exactly one scheme is active at a time: none, bearer, api_key, or
//     basic. SetAuth replaces the previous scheme entirely.
//   - Auth headers are computed at request time and sit between default
//     headers and per-call headers in merge precedence.
//
// Notes
//   - Request bodies are re-sent by rebuilding the http.Request on each
//     attempt.
//   - Retry exhaustion is not a distinct error: the last response or
//     transport error is surfaced as-is, and Response.Stats.Attempts
//     records how many attempts were made.
//   - Header and auth mutation is not synchronized with in-flight
//     requests; configure the client before sharing it across goroutines.
package httpclient
