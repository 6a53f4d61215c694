// Package peer implements the callpeerd process: a reference remote call
// service that hosts can bind to.
//
// It serves the gRPC call service, acknowledges every one-way command, and
// keeps an in-memory table of the calls it was asked to place so operators
// can see what a real peer would be doing.
package peer
