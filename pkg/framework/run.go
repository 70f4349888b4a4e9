// Package framework provides the process-level plumbing shared by the
// daemon binaries: background runners, signal handling, and error
// aggregation.
package framework

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/golang/glog"
)

// Runnable is a background task driven until its context is canceled.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Group runs Runnables concurrently and aggregates their results.
type Group struct {
	ctx    context.Context
	count  int
	errCh  chan error
	exitCh chan struct{}
}

// NewGroup creates a Group with the given base context.
func NewGroup(ctx context.Context) *Group {
	return &Group{
		ctx:    ctx,
		errCh:  make(chan error, 1),
		exitCh: make(chan struct{}),
	}
}

// HandleSignals cancels the group on the first interrupt/terminate and
// force-exits Wait on the second.
func (g *Group) HandleSignals() *Group {
	ctx, cancel := context.WithCancel(g.ctx)
	g.ctx = ctx
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(g.exitCh)
	}()
	return g
}

// Go spawns a named Runnable.
func (g *Group) Go(name string, r Runnable) *Group {
	g.count++
	glog.V(4).Infof("start runner[%s]", name)
	go func() {
		g.errCh <- r.Run(g.ctx)
		glog.V(4).Infof("runner[%s] stopped", name)
	}()
	return g
}

// Wait blocks until every spawned Runnable stops and returns their
// aggregated errors, ignoring plain cancellation.
func (g *Group) Wait() error {
	var errs AggregatedError
	for i := 0; i < g.count; i++ {
		select {
		case <-g.exitCh:
			return errors.New("forced exit")
		case err := <-g.errCh:
			if !errors.Is(err, context.Canceled) {
				errs.Add(err)
			}
		}
	}
	return errs.Aggregate()
}

// AggregatedError collects multiple errors into one.
type AggregatedError struct {
	Errors []error
}

// Error implements error.
func (e *AggregatedError) Error() string {
	msgs := make([]string, len(e.Errors)+1)
	msgs[0] = "multiple errors:"
	for i, err := range e.Errors {
		msgs[i+1] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Add appends non-nil errors.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns nil when nothing was added.
func (e *AggregatedError) Aggregate() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
