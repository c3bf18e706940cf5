package state_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popmovies/pkg/state"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestCell_Value(t *testing.T) {
	c := state.NewCell("")
	assert.Equal(t, "", c.Value())

	c.Set("An exception occurred: timeout")
	assert.Equal(t, "An exception occurred: timeout", c.Value())
}

func TestCell_Watch(t *testing.T) {
	c := state.NewCell(1)

	v, changed := c.Watch()
	assert.Equal(t, 1, v)

	select {
	case <-changed:
		t.Fatal("changed closed before Set")
	default:
	}

	c.Set(2)

	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("changed was not closed by Set")
	}
	v, _ = c.Watch()
	assert.Equal(t, 2, v)
}

func TestCell_Subscribe(t *testing.T) {
	t.Run("emits current value first", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		c := state.NewCell([]int{})

		sub := c.Subscribe(ctx)

		assert.Equal(t, []int{}, receive(t, sub))
	})

	t.Run("emits subsequent changes", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		c := state.NewCell("a")

		sub := c.Subscribe(ctx)
		assert.Equal(t, "a", receive(t, sub))

		c.Set("b")
		assert.Equal(t, "b", receive(t, sub))
	})

	t.Run("slow readers only see the latest value", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		c := state.NewCell(0)

		sub := c.Subscribe(ctx)
		assert.Equal(t, 0, receive(t, sub))

		for i := 1; i <= 5; i++ {
			c.Set(i)
		}

		var got []int
		for v := receive(t, sub); ; v = receive(t, sub) {
			got = append(got, v)
			if v == 5 {
				break
			}
		}
		assert.LessOrEqual(t, len(got), 5)
		assert.IsIncreasing(t, got)
	})

	t.Run("closes when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		c := state.NewCell(0)

		sub := c.Subscribe(ctx)
		cancel()

		assert.Eventually(t, func() bool {
			select {
			case _, ok := <-sub:
				return !ok
			default:
				return false
			}
		}, time.Second, time.Millisecond)
	})
}

func TestCell_ConcurrentAccess(t *testing.T) {
	c := state.NewCell(0)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set(n)
		}(i)
		go func() {
			defer wg.Done()
			_ = c.Value()
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, c.Value(), 0)
}
