package lock

import (
	"context"
	"sync"
	"testing"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	const workers = 16
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := km.Acquire(ctx, "ABC12345")
			if err != nil {
				t.Error(err)
				return
			}
			defer release()
			// Unsynchronized increment; the race detector flags any overlap.
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	releaseA, err := km.Acquire(ctx, "AAAA1111")
	if err != nil {
		t.Fatal(err)
	}
	defer releaseA()

	// A different key must not block while the first is held.
	done := make(chan struct{})
	go func() {
		releaseB, err := km.Acquire(ctx, "BBBB2222")
		if err != nil {
			t.Error(err)
		} else {
			releaseB()
		}
		close(done)
	}()
	<-done
}

func TestKeyedMutexReleaseIsIdempotent(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	release, err := km.Acquire(ctx, "CODE0001")
	if err != nil {
		t.Fatal(err)
	}
	release()
	release() // second call must be a no-op

	again, err := km.Acquire(ctx, "CODE0001")
	if err != nil {
		t.Fatal(err)
	}
	again()
}
