// Package callservice wraps a handle to a remote call service behind a
// bound-state gate. Commands issued while unbound are reported and abandoned;
// commands issued while bound are forwarded in order as fire-and-forget
// messages whose failures are contained locally. One proxy serves one peer;
// the connection lifecycle collaborator installs and clears the handle.
package callservice
