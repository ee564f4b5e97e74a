package video

import (
	"context"
	"errors"
	"testing"
	"time"

	"Skywrite/internal/core/blobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCID = "bafkreibme22gw2h7y2h7tg2fhqotaqjucnbc24deqo72b6mkl2egezxhvy"

// fakeClock advances only when Sleep is called.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps++
	c.now = c.now.Add(d)
	return nil
}

// scriptedClient returns queued status snapshots in order, repeating the last.
type scriptedClient struct {
	submitErr error
	jobID     string
	statuses  []*Job
	statusErr error
	polls     int
	onPoll    func(n int)
}

func (c *scriptedClient) Submit(ctx context.Context, data []byte, contentType string) (string, error) {
	if c.submitErr != nil {
		return "", c.submitErr
	}
	return c.jobID, nil
}

func (c *scriptedClient) Status(ctx context.Context, jobID string) (*Job, error) {
	c.polls++
	if c.onPoll != nil {
		c.onPoll(c.polls)
	}
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	i := c.polls - 1
	if i >= len(c.statuses) {
		i = len(c.statuses) - 1
	}
	return c.statuses[i], nil
}

func TestPoller_CompletesAfterProcessing(t *testing.T) {
	blob := blobs.NewBlobRef(testCID, "video/mp4", 2048)
	client := &scriptedClient{
		jobID: "job-1",
		statuses: []*Job{
			{ID: "job-1", State: StateSubmitted},
			{ID: "job-1", State: StateProcessing, Progress: 50},
			{ID: "job-1", State: StateCompleted, Blob: blob},
		},
	}
	clock := newFakeClock()

	got, err := NewPoller(client, WithClock(clock)).Process(context.Background(), []byte("mp4"), "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, blob, got)
	assert.Equal(t, 3, client.polls)
	assert.Equal(t, 2, clock.sleeps)
}

func TestPoller_FailedBeforeCompleted(t *testing.T) {
	client := &scriptedClient{
		jobID: "job-2",
		statuses: []*Job{
			{State: StateProcessing},
			{State: StateFailed, Error: "InvalidVideo", Message: "unsupported codec"},
			{State: StateCompleted, Blob: blobs.NewBlobRef(testCID, "video/mp4", 1)},
		},
	}

	got, err := NewPoller(client, WithClock(newFakeClock())).Process(context.Background(), []byte("x"), "video/mp4")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrJobFailed))
	assert.False(t, errors.Is(err, ErrJobTimeout))
	assert.Contains(t, err.Error(), "unsupported codec")
}

func TestPoller_TimesOut(t *testing.T) {
	client := &scriptedClient{jobID: "job-3", statuses: []*Job{{State: StateProcessing}}}
	clock := newFakeClock()

	poller := NewPoller(client, WithClock(clock), WithPollInterval(5*time.Second), WithTimeout(30*time.Second))
	got, err := poller.Process(context.Background(), []byte("x"), "video/mp4")

	assert.Nil(t, got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrJobTimeout))
	assert.False(t, errors.Is(err, ErrJobFailed))
	assert.Equal(t, 7, client.polls, "polls at 0s through 30s inclusive")
	assert.Equal(t, 6, clock.sleeps)
}

func TestPoller_CompletedWithoutBlob(t *testing.T) {
	client := &scriptedClient{jobID: "job-4", statuses: []*Job{{State: StateCompleted}}}

	_, err := NewPoller(client, WithClock(newFakeClock())).Process(context.Background(), []byte("x"), "video/mp4")
	assert.True(t, errors.Is(err, ErrJobFailed))
}

func TestPoller_SubmitFailure(t *testing.T) {
	client := &scriptedClient{submitErr: errors.New("413 payload too large")}

	_, err := NewPoller(client, WithClock(newFakeClock())).Process(context.Background(), []byte("x"), "video/mp4")
	assert.True(t, errors.Is(err, ErrSubmitFailed))
	assert.Equal(t, 0, client.polls, "no polling after a failed submit")
}

func TestPoller_TransportFailure(t *testing.T) {
	client := &scriptedClient{jobID: "job-5", statusErr: errors.New("connection reset")}

	_, err := NewPoller(client, WithClock(newFakeClock())).Process(context.Background(), []byte("x"), "video/mp4")
	assert.True(t, errors.Is(err, ErrTransport))
	assert.False(t, errors.Is(err, ErrJobTimeout))
	assert.False(t, errors.Is(err, ErrJobFailed))
}

func TestPoller_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &scriptedClient{
		jobID:    "job-6",
		statuses: []*Job{{State: StateProcessing}},
		onPoll: func(n int) {
			if n == 2 {
				cancel()
			}
		},
	}

	_, err := NewPoller(client, WithClock(newFakeClock())).Process(ctx, []byte("x"), "video/mp4")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 2, client.polls)
}

func TestPoller_RealClockSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := &scriptedClient{jobID: "job-7", statuses: []*Job{{State: StateProcessing}}}
	start := time.Now()
	_, err := NewPoller(client, WithPollInterval(time.Hour)).Process(ctx, []byte("x"), "video/mp4")

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestNewPoller_Defaults(t *testing.T) {
	p := NewPoller(&scriptedClient{}, WithPollInterval(0), WithTimeout(-1), WithClock(nil))
	assert.Equal(t, DefaultPollInterval, p.pollInterval)
	assert.Equal(t, DefaultTimeout, p.timeout)
	assert.IsType(t, realClock{}, p.clock)
}

func TestParseState(t *testing.T) {
	tests := map[string]State{
		"JOB_STATE_CREATED":   StateSubmitted,
		"JOB_STATE_ENCODING":  StateProcessing,
		"JOB_STATE_SCANNING":  StateProcessing,
		"JOB_STATE_COMPLETED": StateCompleted,
		"JOB_STATE_FAILED":    StateFailed,
		"":                    StateProcessing,
	}
	for remote, want := range tests {
		assert.Equal(t, want, ParseState(remote), remote)
	}

	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateProcessing.Terminal())
	assert.False(t, StateSubmitted.Terminal())
}
