package sequencer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDoSerializesSameKey(t *testing.T) {
	s := New()

	var (
		wg       sync.WaitGroup
		inFlight int
		maxSeen  int
		mu       sync.Mutex
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do("crop-1", func() error {
				mu.Lock()
				inFlight++
				if inFlight > maxSeen {
					maxSeen = inFlight
				}
				mu.Unlock()

				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, s.Len())
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	s := New()

	unlockA := s.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := s.Lock("b")
		unlockB()
		close(done)
	}()

	<-done
	unlockA()
	assert.Equal(t, 0, s.Len())
}
