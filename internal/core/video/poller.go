// Package video drives asynchronous video transcoding jobs from submission
// to a terminal state and probes local files for their dimensions.
package video

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"Skywrite/internal/core/blobs"
)

const (
	// DefaultPollInterval is the wait between job status queries.
	DefaultPollInterval = 5 * time.Second

	// DefaultTimeout bounds the time from submission to a terminal state.
	DefaultTimeout = 300 * time.Second
)

// JobClient talks to the remote video service.
type JobClient interface {
	// Submit uploads the raw video and returns the job id.
	Submit(ctx context.Context, data []byte, contentType string) (jobID string, err error)

	// Status returns the current state of a job.
	Status(ctx context.Context, jobID string) (*Job, error)
}

// Poller submits a video and waits for its job to finish.
type Poller struct {
	client       JobClient
	pollInterval time.Duration
	timeout      time.Duration
	clock        Clock
}

// Option customises a Poller.
type Option func(*Poller)

// WithPollInterval sets the wait between status queries.
func WithPollInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithTimeout sets the deadline measured from submission.
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(p *Poller) {
		if c != nil {
			p.clock = c
		}
	}
}

// NewPoller creates a Poller over client.
func NewPoller(client JobClient, opts ...Option) *Poller {
	p := &Poller{
		client:       client,
		pollInterval: DefaultPollInterval,
		timeout:      DefaultTimeout,
		clock:        realClock{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process submits data and polls until the job completes, fails or the
// timeout elapses. Only a COMPLETED job yields a blob; every other outcome is
// an error: ErrSubmitFailed, ErrJobFailed, ErrJobTimeout, ErrTransport, or
// ctx.Err() when the context ends first.
func (p *Poller) Process(ctx context.Context, data []byte, contentType string) (*blobs.BlobRef, error) {
	jobID, err := p.client.Submit(ctx, data, contentType)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	deadline := p.clock.Now().Add(p.timeout)
	slog.Info("[VIDEO] job submitted", "job_id", jobID, "size", len(data))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		job, err := p.client.Status(ctx, jobID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: job %s: %w", ErrTransport, jobID, err)
		}

		slog.Debug("[VIDEO] job status", "job_id", jobID, "state", job.State, "progress", job.Progress)

		switch job.State {
		case StateCompleted:
			if job.Blob == nil {
				return nil, fmt.Errorf("%w: job %s completed without a blob", ErrJobFailed, jobID)
			}
			slog.Info("[VIDEO] job completed", "job_id", jobID, "cid", job.Blob.CID())
			return job.Blob, nil
		case StateFailed:
			return nil, fmt.Errorf("%w: job %s: %s", ErrJobFailed, jobID, job.failureReason())
		}

		if !p.clock.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: job %s still %s after %s", ErrJobTimeout, jobID, job.State, p.timeout)
		}

		if err := p.clock.Sleep(ctx, p.pollInterval); err != nil {
			return nil, err
		}
	}
}
