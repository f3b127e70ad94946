package framework

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Aggregate())
	errs.Add(nil, io.EOF)
	require.Equal(t, io.EOF.Error(), errs.Error())
	errs.Add(io.ErrUnexpectedEOF)
	err := errs.Aggregate()
	require.Error(t, err)
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	require.Equal(t, "multiple errors:\nEOF\nunexpected EOF", err.Error())
}

func TestRunnerStopsAllOnFirstExit(t *testing.T) {
	failure := errors.New("failure")
	r := NewRunner()
	r.Go(
		NamedRun("waiter", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
		RunFunc(func(context.Context) error { return failure }),
	)
	err := r.Wait()
	require.True(t, errors.Is(err, failure))
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunWithContextCloser(t *testing.T) {
	closed := 0
	closer := closerFunc(func() error { closed++; return nil })
	err := RunWithContextCloser(context.Background(), closer, func() error { return io.EOF })
	require.Equal(t, io.EOF, err)
	require.Equal(t, 1, closed)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	cancel()
	err = RunWithContextCloser(ctx, closerFunc(func() error {
		closed++
		close(done)
		return nil
	}), func() error {
		<-done
		return nil
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 2, closed)
}
