// Package console provides log-only implementations of the audio actuator
// interfaces for the simulator and for environments without sound hardware.
package console
