package videos

import "errors"

var (
	// ErrProberUnavailable indicates no probe binary is configured.
	ErrProberUnavailable = errors.New("video prober unavailable")
	// ErrNoDuration indicates the probe output carried no usable duration.
	ErrNoDuration = errors.New("video duration unavailable")
)
