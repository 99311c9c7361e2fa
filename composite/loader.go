package composite

import (
	"context"
	"sync"
	"time"

	"github.com/atlasdatatech/sublayer/provider"
	"github.com/atlasdatatech/sublayer/sublayer"
	"github.com/atlasdatatech/sublayer/symbology"
)

// memoLoader shares one LayerData fetch per sublayer between all callers.
// Failed fetches are forgotten so the next caller tries again. Symbology is
// not memoized.
type memoLoader struct {
	src provider.Provider
	// timeout bounds each fetch
	timeout time.Duration

	mu    sync.Mutex
	calls map[int]*dataCall
}

type dataCall struct {
	done chan struct{}
	data sublayer.LayerData
	err  error
}

var _ sublayer.Loader = (*memoLoader)(nil)

func newMemoLoader(src provider.Provider, timeout time.Duration) *memoLoader {
	return &memoLoader{
		src:     src,
		timeout: timeout,
		calls:   make(map[int]*dataCall),
	}
}

func (m *memoLoader) LayerData(ctx context.Context, idx int) (sublayer.LayerData, error) {
	m.mu.Lock()
	c, ok := m.calls[idx]
	if !ok {
		c = &dataCall{done: make(chan struct{})}
		m.calls[idx] = c
		// the fetch outlives the first caller's context; others may be waiting on it
		go m.fetch(idx, c)
	}
	m.mu.Unlock()

	select {
	case <-c.done:
		return c.data, c.err
	case <-ctx.Done():
		return sublayer.LayerData{}, ctx.Err()
	}
}

func (m *memoLoader) fetch(idx int, c *dataCall) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	c.data, c.err = m.src.LayerData(ctx, idx)
	if c.err != nil {
		m.mu.Lock()
		if m.calls[idx] == c {
			delete(m.calls, idx)
		}
		m.mu.Unlock()
	}
	close(c.done)
}

func (m *memoLoader) Symbology(ctx context.Context, idx int) ([]symbology.Entry, error) {
	return m.src.Symbology(ctx, idx)
}
