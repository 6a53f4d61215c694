// Package ringer arbitrates ringtone, vibration and call-waiting output for
// the set of incoming calls currently demanding attention. It keeps ringing
// calls strictly in arrival order, drives the audio actuators idempotently,
// and recomputes the single correct output action on every lifecycle event.
package ringer
