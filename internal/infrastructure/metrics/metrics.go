package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Sink receives counter increments from the HTTP layer
type Sink interface {
	Register(name, description, unit string)
	Increment(name string)
}

// CounterValue is a point-in-time read of a counter
type CounterValue struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Value       int64  `json:"value"`
}

type counter struct {
	description string
	unit        string
	value       atomic.Int64

	// sampleMu orders sample inserts; lastSample is the last timestamp written
	sampleMu   sync.Mutex
	lastSample int64
}

// Registry keeps counters in memory and records every new value as a sample in tstorage.
type Registry struct {
	storage tstorage.Storage
	logger  *zap.Logger

	mu       sync.RWMutex
	counters map[string]*counter
}

var _ Sink = (*Registry)(nil)

// NewRegistry opens the sample storage. An empty dataPath keeps samples in memory only.
func NewRegistry(dataPath string, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []tstorage.Option{
		tstorage.WithTimestampPrecision(tstorage.Milliseconds),
	}
	if dataPath != "" {
		opts = append(opts, tstorage.WithDataPath(dataPath))
	}

	storage, err := tstorage.NewStorage(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open metrics storage")
	}

	return &Registry{
		storage:  storage,
		logger:   logger,
		counters: make(map[string]*counter),
	}, nil
}

// Register declares a counter. Registering an existing name keeps its value.
func (r *Registry) Register(name, description, unit string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.counters[name]; ok {
		c.description = description
		c.unit = unit
		return
	}
	r.counters[name] = &counter{description: description, unit: unit}
}

// Increment adds one to the counter, registering it on first use.
// Samples of one counter get strictly increasing timestamps: tstorage does not
// return points that are not newer than the last one inserted.
func (r *Registry) Increment(name string) {
	c := r.lookup(name)

	c.sampleMu.Lock()
	defer c.sampleMu.Unlock()

	v := c.value.Add(1)
	ts := time.Now().UnixMilli()
	if ts <= c.lastSample {
		ts = c.lastSample + 1
	}
	c.lastSample = ts

	err := r.storage.InsertRows([]tstorage.Row{{
		Metric: name,
		DataPoint: tstorage.DataPoint{
			Timestamp: ts,
			Value:     float64(v),
		},
	}})
	if err != nil {
		r.logger.Warn("failed to record metric sample", zap.String("metric", name), zap.Error(err))
	}
}

// Value returns the current value of the counter, zero when unknown.
func (r *Registry) Value(name string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.counters[name]; ok {
		return c.value.Load()
	}
	return 0
}

// Snapshot returns a copy of every counter sorted by name
func (r *Registry) Snapshot() []CounterValue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CounterValue, 0, len(r.counters))
	for name, c := range r.counters {
		out = append(out, CounterValue{
			Name:        name,
			Description: c.description,
			Unit:        c.unit,
			Value:       c.value.Load(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Samples returns the recorded values of a counter in [start, end).
func (r *Registry) Samples(name string, start, end time.Time) ([]*tstorage.DataPoint, error) {
	points, err := r.storage.Select(name, nil, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		if errors.Is(err, tstorage.ErrNoDataPoints) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to select samples of %s", name)
	}
	return points, nil
}

// Close flushes samples to disk when a data path is configured
func (r *Registry) Close() error {
	return r.storage.Close()
}

func (r *Registry) lookup(name string) *counter {
	r.mu.RLock()
	c, ok := r.counters[name]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c = &counter{}
	r.counters[name] = c
	return c
}
