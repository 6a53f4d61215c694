// Package audio declares the actuator and routing interfaces the ringer
// drives (ringtone player, vibrator, in-call tone sessions, audio router)
// and the vibration policy derived from hardware capability, ringer mode and
// user settings. Concrete actuators live in the console and miniaudio
// subpackages.
package audio
