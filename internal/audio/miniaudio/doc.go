// Package miniaudio implements ringtone and in-call tone playback on real
// sound hardware via the miniaudio bindings. Tones are synthesised in the
// device data callback, so there is nothing to stream or buffer.
package miniaudio
