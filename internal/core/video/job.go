package video

import "Skywrite/internal/core/blobs"

// State is the lifecycle position of a transcoding job.
type State string

const (
	StateSubmitted  State = "SUBMITTED"
	StateProcessing State = "PROCESSING"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

// Remote job states reported by app.bsky.video.getJobStatus.
const (
	remoteStateCreated   = "JOB_STATE_CREATED"
	remoteStateCompleted = "JOB_STATE_COMPLETED"
	remoteStateFailed    = "JOB_STATE_FAILED"
)

// ParseState maps a remote job state onto State. Unknown states are treated
// as still processing.
func ParseState(remote string) State {
	switch remote {
	case remoteStateCompleted:
		return StateCompleted
	case remoteStateFailed:
		return StateFailed
	case remoteStateCreated:
		return StateSubmitted
	default:
		return StateProcessing
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job is a snapshot of a remote transcoding job. Blob is set only once the
// job is COMPLETED.
type Job struct {
	ID       string
	State    State
	Blob     *blobs.BlobRef
	Error    string
	Message  string
	Progress int
}

// failureReason picks the most useful remote explanation for a failed job.
func (j *Job) failureReason() string {
	switch {
	case j.Error != "" && j.Message != "":
		return j.Error + ": " + j.Message
	case j.Error != "":
		return j.Error
	case j.Message != "":
		return j.Message
	default:
		return "no reason given"
	}
}
