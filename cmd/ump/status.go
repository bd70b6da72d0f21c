package main

import (
	"time"

	"github.com/pes18fan/ump/metadata"
	"github.com/pes18fan/ump/termimg"
)

type PlayState int

const (
	playing PlayState = iota
	paused
	stopped
)

func (s PlayState) String() string {
	switch s {
	case playing:
		return "Playing"
	case paused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// A status change observed on the player and applied to the UI model.
// Status structs, alongside acting as a notifier for changes, also provide
// information about the change.
type Status interface {
	isStatus()
}

// Status update sent to signify a change in playing position of the track.
// Sent out every second by default.
type PositionUpdate struct {
	Position time.Duration
	Length   time.Duration
}

func (PositionUpdate) isStatus() {}

// Status update sent out when a track is paused, unpaused or runs out.
type PlayStateUpdate struct {
	PlayState PlayState
}

func (PlayStateUpdate) isStatus() {}

// Status update sent when the current track changes.
type AudioInfoUpdate struct {
	Info  metadata.Info
	Index int
	Art   termimg.Image
}

func (AudioInfoUpdate) isStatus() {}

type ErrorUpdate struct {
	Err error
}

func (ErrorUpdate) isStatus() {}
