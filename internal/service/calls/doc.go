// Package calls hosts the calls manager: the owner of the live call table and
// the foreground call, broadcasting typed lifecycle events to registered
// listeners. The ringer registers as one such listener.
package calls
