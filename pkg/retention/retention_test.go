package retention

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dukex/n8ngen/pkg/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_Validation(t *testing.T) {
	archive := &mocks.MockArchive{}

	tests := []struct {
		name     string
		schedule string
		maxAge   time.Duration
		wantErr  error
	}{
		{name: "valid descriptor", schedule: "@hourly", maxAge: time.Hour},
		{name: "valid expression", schedule: "*/5 * * * *", maxAge: 24 * time.Hour},
		{name: "missing schedule", schedule: "", maxAge: time.Hour, wantErr: ErrScheduleRequired},
		{name: "zero max age", schedule: "@daily", maxAge: 0, wantErr: ErrInvalidMaxAge},
		{name: "invalid expression", schedule: "every minute", maxAge: time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := New(archive, tt.schedule, tt.maxAge, discardLogger())

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.name == "invalid expression":
				require.ErrorContains(t, err, "invalid cron expression")
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.schedule, job.Schedule)
			}
		})
	}
}

func TestRunOnce(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	archive := &mocks.MockArchive{}
	archive.On("Prune", mock.Anything, now.Add(-48*time.Hour)).Return(3, nil).Once()

	job, err := New(archive, DefaultSchedule, 48*time.Hour, discardLogger())
	require.NoError(t, err)

	job.now = func() time.Time { return now }

	removed, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	archive.AssertExpectations(t)
}

func TestRunOnce_Error(t *testing.T) {
	archive := &mocks.MockArchive{}
	archive.On("Prune", mock.Anything, mock.Anything).Return(0, errors.New("connection refused"))

	job, err := New(archive, DefaultSchedule, time.Hour, discardLogger())
	require.NoError(t, err)

	_, err = job.RunOnce(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestStartStop(t *testing.T) {
	archive := &mocks.MockArchive{}

	job, err := New(archive, DefaultSchedule, time.Hour, discardLogger())
	require.NoError(t, err)

	require.NoError(t, job.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, job.Stop(ctx))
	archive.AssertNotCalled(t, "Prune", mock.Anything, mock.Anything)
}

func TestStop_NotStarted(t *testing.T) {
	job, err := New(&mocks.MockArchive{}, DefaultSchedule, time.Hour, discardLogger())
	require.NoError(t, err)

	assert.NoError(t, job.Stop(context.Background()))
}
