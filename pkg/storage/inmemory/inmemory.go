package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/papercomputeco/dispatch/pkg/storage"
)

// Driver implements storage.Driver using an in-memory slice.
type Driver struct {
	// mu guards records and nextID
	mu sync.RWMutex

	records []storage.LogRecord
	nextID  int64
}

// NewDriver creates a new in-memory log store.
func NewDriver() *Driver {
	return &Driver{nextID: 1}
}

func (d *Driver) Append(_ context.Context, r *storage.LogRecord) error {
	if r == nil {
		return storage.ErrNilRecord
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	r.ID = d.nextID
	d.nextID++
	d.records = append(d.records, *r)
	return nil
}

func (d *Driver) Recent(_ context.Context, limit int) ([]*storage.LogRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := min(limit, len(d.records))
	if n <= 0 {
		return nil, nil
	}

	out := make([]*storage.LogRecord, 0, n)
	for i := len(d.records) - 1; i >= len(d.records)-n; i-- {
		r := d.records[i]
		out = append(out, &r)
	}
	return out, nil
}

func (d *Driver) Close() error {
	return nil
}
