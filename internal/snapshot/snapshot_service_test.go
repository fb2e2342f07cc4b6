package snapshot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(ttl time.Duration, capture captureFunc) *Service {
	s := NewService(time.Second, ttl)
	s.capture = capture
	return s
}

func TestCapture(t *testing.T) {
	var calls int32
	s := newTestService(time.Minute, func(ctx context.Context, url string) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return []byte("\x89PNG"), nil
	})

	png, err := s.Capture(context.Background(), "http://localhost:3000/embed/map")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png)

	_, err = s.Capture(context.Background(), "http://localhost:3000/embed/map")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second capture served from cache")
}

func TestCapture_SurvivesCallerCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := newTestService(time.Minute, func(ctx context.Context, url string) ([]byte, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte("png"), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Capture(ctx, "http://localhost/embed/map")
		done <- err
	}()

	<-started
	cancel()
	close(release)
	require.NoError(t, <-done, "shared capture keeps running after its first caller leaves")

	png, err := s.Capture(context.Background(), "http://localhost/embed/map")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)
}

func TestCapture_NoCache(t *testing.T) {
	var calls int32
	s := newTestService(0, func(ctx context.Context, url string) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("png"), nil
	})
	for i := 0; i < 2; i++ {
		_, err := s.Capture(context.Background(), "https://example.com/embed/map")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCapture_Errors(t *testing.T) {
	t.Run("InvalidURL", func(t *testing.T) {
		s := newTestService(0, func(ctx context.Context, url string) ([]byte, error) {
			t.Fatal("capture must not run")
			return nil, nil
		})
		for _, raw := range []string{"file:///etc/passwd", "localhost:3000", "http://"} {
			_, err := s.Capture(context.Background(), raw)
			assert.ErrorIs(t, err, ErrInvalidURL, raw)
		}
	})

	t.Run("CaptureFails", func(t *testing.T) {
		s := newTestService(time.Minute, func(ctx context.Context, url string) ([]byte, error) {
			return nil, errors.New("chrome not found")
		})
		_, err := s.Capture(context.Background(), "http://localhost/embed/map")
		assert.ErrorContains(t, err, "chrome not found")
	})

	t.Run("EmptyImage", func(t *testing.T) {
		s := newTestService(time.Minute, func(ctx context.Context, url string) ([]byte, error) {
			return nil, nil
		})
		_, err := s.Capture(context.Background(), "http://localhost/embed/map")
		assert.Error(t, err)
	})
}
