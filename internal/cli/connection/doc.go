// Package connection provides the HTTP transport of the NoteGuard client.
//
// This package talks to the backend under /api/v1:
//
//   - http.go: HTTPClient with bearer credentials, request IDs, timeouts
//     and an optional client-side rate limit
//   - interceptor.go: response interceptors, including the one that turns
//     any 401 on an authenticated request into a session teardown
//   - response.go: decoding of success bodies and API errors
//
// Credentials are pulled from a TokenSource at send time, so the transport
// never caches a token that the session has already discarded.
package connection
