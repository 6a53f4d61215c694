// Package config defines the settings shared by the telecore binaries and
// provides helpers to load, validate and save them in YAML format: the remote
// call-service peer address, logging options, and the simulated device audio
// state (ring volume, ringer mode, vibrate preference, audio backend).
package config
