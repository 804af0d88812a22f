package utils

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Circuit Breaker Tests

func TestCircuitBreaker_NewCircuitBreaker(t *testing.T) {
	cb := NewCircuitBreaker("test")

	assert.Equal(t, "test", cb.name)
	assert.Equal(t, uint32(100), cb.maxRequests)
	assert.Equal(t, 60*time.Second, cb.interval)
	assert.Equal(t, 60*time.Second, cb.timeout)
	assert.Equal(t, 0.6, cb.failureRatio)
	assert.Equal(t, StateClosed, cb.state)
}

func TestCircuitBreaker_DoSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test")

	err := cb.Do(func() error {
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.state)
	assert.Equal(t, uint32(1), cb.counts.Requests)
	assert.Equal(t, uint32(1), cb.counts.TotalSuccesses)
	assert.Equal(t, uint32(0), cb.counts.TotalFailures)
}

func TestCircuitBreaker_DoFailure(t *testing.T) {
	cb := NewCircuitBreaker("test")

	expectedError := errors.New("test error")
	err := cb.Do(func() error {
		return expectedError
	})

	assert.Error(t, err)
	assert.Equal(t, expectedError, err)
	assert.Equal(t, uint32(1), cb.counts.Requests)
	assert.Equal(t, uint32(0), cb.counts.TotalSuccesses)
	assert.Equal(t, uint32(1), cb.counts.TotalFailures)
}

func TestCircuitBreaker_StateTransition_ClosedToOpen(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.maxRequests = 5 // Lower threshold for testing
	cb.failureRatio = 0.6

	// Execute some successful requests first
	for i := 0; i < 2; i++ {
		err := cb.Do(func() error {
			return nil
		})
		assert.NoError(t, err)
	}

	// Execute failing requests to trigger circuit opening
	for i := 0; i < 4; i++ {
		err := cb.Do(func() error {
			return errors.New("failure")
		})
		assert.Error(t, err)
	}

	// Circuit should now be open
	assert.Equal(t, StateOpen, cb.state)

	// Next request should be rejected without executing
	err := cb.Do(func() error {
		t.Fatal("This should not be executed when circuit is open")
		return nil
	})

	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestCircuitBreaker_StateTransition_OpenToHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.maxRequests = 5
	cb.failureRatio = 0.6
	cb.timeout = 100 * time.Millisecond // Short timeout for testing

	// Force circuit to open
	for i := 0; i < 5; i++ {
		cb.Do(func() error {
			return errors.New("failure")
		})
	}

	assert.Equal(t, StateOpen, cb.state)

	// Wait for timeout
	time.Sleep(150 * time.Millisecond)

	// Next request should transition to half-open
	err := cb.Do(func() error {
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.state) // Should transition to closed on success
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	cb := NewCircuitBreaker("concurrent-test")

	var wg sync.WaitGroup
	numGoroutines := 100
	successCount := 0
	mu := sync.Mutex{}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			err := cb.Do(func() error {
				// Simulate some work
				time.Sleep(time.Millisecond)
				if id%10 == 0 { // 10% failure rate
					return errors.New("simulated failure")
				}
				return nil
			})

			if err == nil {
				mu.Lock()
				successCount++
				mu.Unlock()
			}
		}(i)
	}

	wg.Wait()

	// Should have mostly successful requests
	assert.Greater(t, successCount, 50)
	assert.Equal(t, uint32(numGoroutines), cb.counts.Requests)
}
