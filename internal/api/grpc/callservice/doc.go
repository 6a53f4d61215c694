// Package callservice carries the call-service wire surface over gRPC: a
// JSON codec (no generated stubs are checked in), a hand-maintained service
// descriptor for peers, a Client implementing the proxy's Handle interface,
// and the Binder that owns the connection lifecycle and reports bound-state
// transitions to the proxy.
package callservice
