package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorSerializesEvaluations(t *testing.T) {
	s, _ := testSession(t)
	a := NewActor(s)
	defer a.Close()

	ctx := context.Background()
	_, err := a.Eval(ctx, "(define counter 0)")
	require.NoError(t, err)

	const workers = 8
	const perWorker = 25
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				// Define forces the value; a lazy (define counter (+ counter 1))
				// would refer to itself.
				_, err := a.Define(ctx, "counter", "(+ counter 1)")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	results, err := a.Eval(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(workers*perWorker), results[0].Value.String())
}

func TestActorOperations(t *testing.T) {
	s, _ := testSession(t)
	a := NewActor(s)
	defer a.Close()
	ctx := context.Background()

	v, err := a.Define(ctx, "x", "(* 6 7)")
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())

	names, err := a.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, names)

	traces, err := a.Traces(ctx, 10)
	require.NoError(t, err)
	require.Len(t, traces, 1)
	assert.Equal(t, "(define x (* 6 7))", traces[0].Entry)

	require.NoError(t, a.Reset(ctx))
	names, err = a.Symbols(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestActorCancelledContext(t *testing.T) {
	s, _ := testSession(t)
	a := NewActor(s)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Symbols(ctx)
	// Either the request raced through before the cancellation was seen, or
	// the wait was abandoned.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestActorClosed(t *testing.T) {
	s, _ := testSession(t)
	a := NewActor(s)
	a.Close()
	a.Close()

	_, err := a.Eval(context.Background(), "1")
	assert.ErrorIs(t, err, ErrClosed)
}
