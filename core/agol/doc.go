// Package agol provides an authenticated client for ArcGIS Online style
// feature services.
//
// The client owns the token lifecycle (lazy acquisition, transparent refresh
// inside a 60 second expiry margin) and a generic GET/POST transport that
// appends the f=json response flag and the cached token to every call. On top
// of the transport it exposes the typed feature-service operations: Query,
// AddFeatures, UpdateFeatures, DeleteFeatures and the bundled ApplyEdits.
//
// # Error Semantics
//
// This class of API reports application failures inside a 2xx body, so every
// response is inspected for a top-level "error" member before it is treated
// as a success. The client distinguishes three failure kinds:
//   - AuthenticationError: the credential exchange yielded no token
//   - TransportError: network, timeout, non-2xx or non-JSON response
//   - ServiceError: embedded error payload despite HTTP success
//
// None of the operations retry; edits are non-idempotent network mutations
// and the caller decides how to recover.
//
// # Concurrency
//
// The cached token is the only mutable state. Refresh is guarded by a mutex
// and collapsed through singleflight, so concurrent callers trigger at most
// one credential exchange.
package agol
