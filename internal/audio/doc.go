// Package audio provides sound playback for cliv.
// It uses the beep library to decode WAV, OGG and MP3 files: short effects
// are played per toast kind by the Manager, and a single background track is
// controlled by Music.
package audio
