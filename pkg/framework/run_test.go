package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupWaitAggregates(t *testing.T) {
	g := NewGroup(context.Background())
	boom := errors.New("boom")
	g.Go("ok", RunFunc(func(context.Context) error { return nil }))
	g.Go("bad", RunFunc(func(context.Context) error { return boom }))
	err := g.Wait()
	require.Error(t, err)
	agg := &AggregatedError{}
	require.ErrorAs(t, err, &agg)
	require.Equal(t, []error{boom}, agg.Errors)
}

func TestGroupIgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGroup(ctx)
	g.Go("waiter", RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, g.Wait())
}

func TestAggregatedErrorEmpty(t *testing.T) {
	var errs AggregatedError
	errs.Add(nil, nil)
	require.NoError(t, errs.Aggregate())
}
