package audio

import "time"

// RingerMode mirrors the device-wide ringer mode setting.
type RingerMode int

const (
	// RingerModeNormal rings out loud.
	RingerModeNormal RingerMode = iota
	// RingerModeVibrate suppresses sound but keeps haptics.
	RingerModeVibrate
	// RingerModeSilent suppresses both sound and haptics.
	RingerModeSilent
)

// String returns the readable mode name.
func (m RingerMode) String() string {
	switch m {
	case RingerModeVibrate:
		return "vibrate"
	case RingerModeSilent:
		return "silent"
	default:
		return "normal"
	}
}

// ParseRingerMode converts a string setting to a RingerMode.
func ParseRingerMode(s string) (RingerMode, bool) {
	switch s {
	case "normal", "":
		return RingerModeNormal, true
	case "vibrate":
		return RingerModeVibrate, true
	case "silent":
		return RingerModeSilent, true
	default:
		return RingerModeNormal, false
	}
}

// RingtonePlayer plays a call's ringtone. Play and Stop are asynchronous and
// idempotent: starting an already playing ringtone or stopping a silent one is
// a safe no-op.
type RingtonePlayer interface {
	// Play starts ringtone playback for the provided notification profile.
	Play(ringtone string)
	// Stop ends ringtone playback.
	Stop()
}

// Vibrator drives the vibration motor.
type Vibrator interface {
	// HasVibrator reports whether the hardware can vibrate at all.
	HasVibrator() bool
	// Vibrate starts an asynchronous pattern that repeats from the step at
	// repeatAt until cancelled.
	Vibrate(pattern []time.Duration, repeatAt int)
	// Cancel stops any in-progress vibration.
	Cancel()
}

// Tone identifies an in-call tone.
type Tone int

// ToneCallWaiting is played when ringing calls are all in the background.
const ToneCallWaiting Tone = iota

// TonePlayer is a single in-call tone session.
type TonePlayer interface {
	// StartTone begins the tone asynchronously.
	StartTone()
	// StopTone ends the tone and releases the session.
	StopTone()
}

// ToneFactory creates in-call tone sessions. Each session is single-use:
// stopped sessions are discarded and a fresh one is created when needed again.
type ToneFactory interface {
	NewTonePlayer(tone Tone) TonePlayer
}

// Router exposes the audio routing state the ringer consults and drives.
type Router interface {
	// RingVolume reports the current volume of the ring stream.
	RingVolume() int
	// IsExternalDeviceActive reports whether a paired external output device
	// announces incoming calls itself, making local ringtone playback redundant.
	IsExternalDeviceActive() bool
	// SetIsRinging requests or releases the ringing audio mode.
	SetIsRinging(ringing bool)
}

// Settings supplies the device ringer mode and the user vibrate preference.
type Settings interface {
	// RingerMode reports the device-wide ringer mode.
	RingerMode() RingerMode
	// VibrateWhenRinging reports the user "vibrate when ringing" setting.
	VibrateWhenRinging() bool
}
