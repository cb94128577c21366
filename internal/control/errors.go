package control

import "errors"

var (
	// ErrTrackNotSet is returned by Update before SetTrack was called.
	ErrTrackNotSet = errors.New("control: track must be set before update")

	// ErrNoRoute indicates a track whose route has no target nodes.
	ErrNoRoute = errors.New("control: route has no target nodes")
)
