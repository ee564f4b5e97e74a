package video

import "errors"

var (
	// ErrSubmitFailed is returned when the upload to the video service fails.
	ErrSubmitFailed = errors.New("video submit failed")

	// ErrJobFailed is returned when the service reports the job as failed.
	ErrJobFailed = errors.New("video processing failed")

	// ErrJobTimeout is returned when no terminal state is reached in time.
	ErrJobTimeout = errors.New("video processing timed out")

	// ErrTransport is returned when a job status query fails.
	ErrTransport = errors.New("video status query failed")

	// ErrProbeFailed is returned when the video dimensions cannot be read.
	ErrProbeFailed = errors.New("video probe failed")
)
