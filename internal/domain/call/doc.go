// Package call defines the call entity shared by the calls manager, the
// ringer and the remote call-service proxy, together with its direction and
// lifecycle state enumerations and the wire payload sent to remote peers.
package call
