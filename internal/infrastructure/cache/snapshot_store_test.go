package cache

import (
	"sync"
	"testing"

	"github.com/eurofx/rate-service/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotStore(t *testing.T) {
	store := NewSnapshotStore()

	// Test initial state
	assert.Nil(t, store.Get())
	assert.Equal(t, 0, store.Size())
	assert.False(t, store.Stale())

	// Test publish and read back
	dataset := entity.Dataset{
		"USD": {"2023-01-02": 1.0545},
		"GBP": {"2023-01-02": 0.8836},
	}
	store.Publish(dataset)

	assert.Equal(t, dataset, store.Get())
	assert.Equal(t, 2, store.Size())

	// Eviction keeps serving the stale snapshot
	store.Evict()
	assert.True(t, store.Stale())
	assert.Equal(t, dataset, store.Get())

	// Publish clears the stale mark
	replacement := entity.Dataset{
		"USD": {"2023-01-03": 1.0601},
	}
	store.Publish(replacement)
	assert.False(t, store.Stale())
	assert.Equal(t, replacement, store.Get())

	// Rate lookup through the snapshot
	rate, ok := store.Get().Rate("USD", "2023-01-03")
	assert.True(t, ok)
	assert.Equal(t, 1.0601, rate)

	_, ok = store.Get().Rate("USD", "2023-01-02")
	assert.False(t, ok)
}

// TestSnapshotStoreAtomicity verifies that readers racing a publisher only
// ever observe a complete generation, never a mix of old and new tables.
func TestSnapshotStoreAtomicity(t *testing.T) {
	store := NewSnapshotStore()

	makeDataset := func(gen float64) entity.Dataset {
		return entity.Dataset{
			"USD": {"2023-01-02": gen},
			"GBP": {"2023-01-02": gen},
			"CHF": {"2023-01-02": gen},
		}
	}

	store.Publish(makeDataset(0))

	done := make(chan struct{})
	var wg sync.WaitGroup

	// One writer republishing generations
	wg.Add(1)
	go func() {
		defer wg.Done()
		for gen := 1; gen <= 1000; gen++ {
			store.Evict()
			store.Publish(makeDataset(float64(gen)))
		}
		close(done)
	}()

	// Concurrent readers asserting generation consistency
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}

				snapshot := store.Get()
				usd := snapshot["USD"]["2023-01-02"]
				gbp := snapshot["GBP"]["2023-01-02"]
				chf := snapshot["CHF"]["2023-01-02"]

				if usd != gbp || gbp != chf {
					t.Errorf("torn snapshot observed: USD=%v GBP=%v CHF=%v", usd, gbp, chf)
					return
				}
			}
		}()
	}

	wg.Wait()
}
