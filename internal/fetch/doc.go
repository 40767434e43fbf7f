// Package fetch implements the pull side of the realtime layer: a plain
// HTTP GET client used by polling subscriptions.
//
// The client:
//   - Issues GETs against a base URL with query values derived from a
//     subscription's query keys
//   - Retries 5xx and 429 responses with jittered exponential backoff
//   - Tags every request with an X-Request-ID for log correlation
//
// Response bodies are returned verbatim; interpreting the payload is the
// subscriber's business.
package fetch
