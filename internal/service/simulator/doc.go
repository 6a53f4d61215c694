// Package simulator implements the ringsim process: a host device simulation
// driving the ringing arbiter against console or real audio actuators.
//
// It runs either a scripted walkthrough of the arbitration behaviors or an
// interactive command loop, and optionally binds a proxy to a remote call
// service peer so outgoing calls exercise the transport.
package simulator
