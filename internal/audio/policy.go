package audio

import "time"

// VibrationPattern is the ring vibration cadence: no lead-in delay, one second
// on, one second off.
//
//nolint:gochecknoglobals // Shared constant pattern, never mutated.
var VibrationPattern = []time.Duration{0, time.Second, time.Second}

// VibrationRepeat makes the pattern repeat from the vibrate-on step.
const VibrationRepeat = 1

// ShouldVibrate decides whether a ringing call should vibrate, from hardware
// capability, the device ringer mode and the user preference. With the
// vibrate-when-ringing preference set, everything except silent mode vibrates;
// without it, only vibrate mode does.
func ShouldVibrate(hasVibrator bool, mode RingerMode, vibrateWhenRinging bool) bool {
	if !hasVibrator {
		return false
	}

	if vibrateWhenRinging {
		return mode != RingerModeSilent
	}

	return mode == RingerModeVibrate
}
