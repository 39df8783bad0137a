package screen

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScope_ApplyAfterCloseIsDiscarded(t *testing.T) {
	s := NewScope(context.Background())
	started := make(chan struct{})
	applied := make(chan bool, 1)

	s.Go(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		applied <- s.Apply(func() { t.Error("late completion must not be applied") })
	})

	<-started
	s.Close()
	require.False(t, <-applied)
	assert.True(t, s.Closed())
	assert.ErrorIs(t, s.Context().Err(), context.Canceled)
}

func TestScope_ApplyWhileOpen(t *testing.T) {
	s := NewScope(context.Background())
	defer s.Close()

	var got int
	s.Go(func(context.Context) {
		s.Apply(func() { got = 42 })
	})
	s.Wait()
	assert.Equal(t, 42, got)
}

func TestScope_GoAfterCloseDoesNotRun(t *testing.T) {
	s := NewScope(context.Background())
	s.Close()
	s.Close()

	ran := make(chan struct{}, 1)
	require.False(t, s.Go(func(context.Context) { ran <- struct{}{} }))
	select {
	case <-ran:
		t.Fatal("task must not run after close")
	case <-time.After(20 * time.Millisecond):
	}
}
