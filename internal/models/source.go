package models

type SourceKind string

const (
	SourceNone   SourceKind = "None"
	SourceImage  SourceKind = "Image"
	SourceVideo  SourceKind = "Video"
	SourceCamera SourceKind = "Camera"
)

type State int

const (
	StateIdle State = iota
	StateImageShown
	StateVideoPlaying
	StateCameraActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateImageShown:
		return "ImageShown"
	case StateVideoPlaying:
		return "VideoPlaying"
	case StateCameraActive:
		return "CameraActive"
	default:
		return "Unknown"
	}
}

// Playing reports whether the state is driven by the frame timer.
func (s State) Playing() bool {
	return s == StateVideoPlaying || s == StateCameraActive
}
