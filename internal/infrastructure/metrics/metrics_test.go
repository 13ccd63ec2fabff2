package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRegistry_RegisterAndIncrement(t *testing.T) {
	r := newTestRegistry(t)

	r.Register("getAllCoffees.invocations", "Counts the number of times getAllCoffees is invoked", "1")
	assert.Equal(t, int64(0), r.Value("getAllCoffees.invocations"))

	r.Increment("getAllCoffees.invocations")
	r.Increment("getAllCoffees.invocations")

	assert.Equal(t, int64(2), r.Value("getAllCoffees.invocations"))
	assert.Equal(t, []CounterValue{{
		Name:        "getAllCoffees.invocations",
		Description: "Counts the number of times getAllCoffees is invoked",
		Unit:        "1",
		Value:       2,
	}}, r.Snapshot())
}

func TestRegistry_ReRegisterKeepsValue(t *testing.T) {
	r := newTestRegistry(t)

	r.Register("orders", "old", "1")
	r.Increment("orders")
	r.Register("orders", "new", "{order}")

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, int64(1), snapshot[0].Value)
	assert.Equal(t, "new", snapshot[0].Description)
	assert.Equal(t, "{order}", snapshot[0].Unit)
}

func TestRegistry_IncrementUnknownRegisters(t *testing.T) {
	r := newTestRegistry(t)

	r.Increment("zeta")
	r.Increment("alpha")

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "alpha", snapshot[0].Name)
	assert.Equal(t, "zeta", snapshot[1].Name)
	assert.Equal(t, int64(0), r.Value("missing"))
}

func TestRegistry_ConcurrentIncrement(t *testing.T) {
	r := newTestRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Increment("hits")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), r.Value("hits"))
}

func TestRegistry_Samples(t *testing.T) {
	r := newTestRegistry(t)
	start := time.Now().Add(-time.Minute)

	r.Increment("hits")
	r.Increment("hits")
	r.Increment("hits")

	points, err := r.Samples("hits", start, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, points, 3)

	var max float64
	for _, p := range points {
		if p.Value > max {
			max = p.Value
		}
	}
	assert.Equal(t, float64(3), max)

	points, err = r.Samples("unknown", start, time.Now().Add(time.Minute))
	assert.NoError(t, err)
	assert.Nil(t, points)
}

func TestRegistry_SamplesOfConcurrentIncrements(t *testing.T) {
	r := newTestRegistry(t)
	start := time.Now().Add(-time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Increment("hits")
		}()
	}
	wg.Wait()

	points, err := r.Samples("hits", start, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, points, 20)
	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].Timestamp, points[i-1].Timestamp)
		assert.Equal(t, points[i-1].Value+1, points[i].Value)
	}
}

func TestNewRegistry_WithDataPath(t *testing.T) {
	r, err := NewRegistry(t.TempDir(), nil)
	require.NoError(t, err)

	r.Increment("hits")

	assert.NoError(t, r.Close())
}
