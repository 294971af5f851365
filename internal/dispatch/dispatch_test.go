package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatchSuppressesWithinWindow(t *testing.T) {
	t.Parallel()

	d := New(time.Second)
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.Equal(t, Accept, d.Dispatch("sepatu", t0))
	require.Equal(t, Suppress, d.Dispatch("sepatu", t0.Add(999*time.Millisecond)))
	require.Equal(t, Accept, d.Dispatch("sepatu", t0.Add(time.Second)))
}

func TestSuppressedDispatchDoesNotExtendWindow(t *testing.T) {
	t.Parallel()

	d := New(time.Second)
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.Equal(t, Accept, d.Dispatch("sepatu", t0))
	require.Equal(t, Suppress, d.Dispatch("sepatu", t0.Add(600*time.Millisecond)))
	require.Equal(t, Accept, d.Dispatch("sepatu", t0.Add(1200*time.Millisecond)))
}

func TestDispatchAcceptsDifferentKeyword(t *testing.T) {
	t.Parallel()

	d := New(time.Second)
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.Equal(t, Accept, d.Dispatch("sepatu", t0))
	require.Equal(t, Accept, d.Dispatch("tas hitam", t0.Add(10*time.Millisecond)))
	require.Equal(t, Accept, d.Dispatch("sepatu", t0.Add(20*time.Millisecond)), "last pair now holds tas hitam")
}

func TestResetClearsState(t *testing.T) {
	t.Parallel()

	d := New(time.Second)
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.Equal(t, Accept, d.Dispatch("sepatu", t0))
	d.Reset()
	require.Equal(t, Accept, d.Dispatch("sepatu", t0.Add(time.Millisecond)))
}

func TestNewDefaultsWindow(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultWindow, New(0).Window())
	require.Equal(t, DefaultWindow, New(-time.Second).Window())
	require.Equal(t, 250*time.Millisecond, New(250*time.Millisecond).Window())
}

func TestDecisionString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "accept", Accept.String())
	require.Equal(t, "suppress", Suppress.String())
	require.Equal(t, "unknown", Decision(9).String())
}

func TestConcurrentDispatchAcceptsOnce(t *testing.T) {
	t.Parallel()

	d := New(time.Minute)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Dispatch("sepatu", now) == Accept {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, accepted)
}
