package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	lazo "github.com/KajizukaTaichi/lazo/core"
)

// ErrClosed is returned by Actor methods after Close.
var ErrClosed = errors.New("session actor is closed")

// Actor owns a Session on a single goroutine. Requests from any number of
// goroutines are applied one at a time, in arrival order.
type Actor struct {
	s         *Session
	requests  chan actorRequest
	closed    chan struct{}
	closeOnce sync.Once
}

type actorRequest struct {
	fn   func(*Session)
	done chan struct{}
}

func NewActor(s *Session) *Actor {
	a := &Actor{
		s:        s,
		requests: make(chan actorRequest),
		closed:   make(chan struct{}),
	}
	go a.actorLoop()
	return a
}

// actorLoop is the single goroutine that owns session state.
func (a *Actor) actorLoop() {
	for {
		select {
		case req := <-a.requests:
			req.fn(a.s)
			close(req.done)
		case <-a.closed:
			return
		}
	}
}

// sendToActor runs fn on the actor goroutine and waits for it. A cancelled
// ctx stops the wait; a request already picked up still runs to completion.
func (a *Actor) sendToActor(ctx context.Context, fn func(*Session)) error {
	select {
	case <-a.closed:
		return ErrClosed
	default:
	}
	req := actorRequest{fn: fn, done: make(chan struct{})}
	select {
	case a.requests <- req:
	case <-a.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn with exclusive access to the session.
func (a *Actor) Do(ctx context.Context, fn func(*Session)) error {
	return a.sendToActor(ctx, fn)
}

func (a *Actor) Eval(ctx context.Context, src string) ([]Result, error) {
	var results []Result
	var evalErr error
	if err := a.sendToActor(ctx, func(s *Session) { results, evalErr = s.Eval(src) }); err != nil {
		return nil, err
	}
	return results, evalErr
}

func (a *Actor) Define(ctx context.Context, name, expr string) (lazo.Value, error) {
	var val lazo.Value
	var defErr error
	if err := a.sendToActor(ctx, func(s *Session) { val, defErr = s.Define(name, expr) }); err != nil {
		return lazo.Value{}, err
	}
	return val, defErr
}

func (a *Actor) Reset(ctx context.Context) error {
	return a.sendToActor(ctx, func(s *Session) { s.Reset() })
}

func (a *Actor) Symbols(ctx context.Context) ([]string, error) {
	var names []string
	if err := a.sendToActor(ctx, func(s *Session) { names = s.Symbols() }); err != nil {
		return nil, err
	}
	return names, nil
}

func (a *Actor) Traces(ctx context.Context, n int) ([]Trace, error) {
	var traces []Trace
	if err := a.sendToActor(ctx, func(s *Session) { traces = s.Traces(n) }); err != nil {
		return nil, err
	}
	return traces, nil
}

// Close stops the actor goroutine. It is safe to call more than once.
func (a *Actor) Close() {
	a.closeOnce.Do(func() { close(a.closed) })
}
