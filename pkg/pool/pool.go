package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool bounds the number of goroutines used for expensive searches, such as prime generation,
// and for evaluating independent functions in parallel.
//
// Functions needing a *Pool will work with a nil receiver, doing the equivalent
// work on the current goroutine instead.
type Pool struct {
	// tokens holds one entry per worker that may run at the same time.
	tokens chan struct{}
	// workerCount is the capacity of tokens
	workerCount int
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		tokens:      make(chan struct{}, count),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		p.tokens <- struct{}{}
	}
	return p
}

// TearDown releases the pool. Calling it while a search is running is an error.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	close(p.tokens)
}

// Workers returns the number of workers in the pool, or 1 for a nil pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workerCount
}

// Search queries the function f, until count successes are found.
//
// f is supposed to try a single candidate, returning nil if that candidate isn't
// successful.
//
// The result will be an array containing the first count successes.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			for results[i] == nil {
				results[i] = f()
			}
		}
		return results
	}

	// remaining is decremented once per success, and the slot written is the new value
	remaining := int64(count)
	var wg sync.WaitGroup
	for w := 0; w < p.workerCount; w++ {
		<-p.tokens
		wg.Add(1)
		go func() {
			defer func() {
				p.tokens <- struct{}{}
				wg.Done()
			}()
			for atomic.LoadInt64(&remaining) > 0 {
				res := f()
				if res == nil {
					continue
				}
				i := atomic.AddInt64(&remaining, -1)
				if i < 0 {
					return
				}
				results[i] = res
			}
		}()
	}
	wg.Wait()
	return results
}

// Parallelize calls a function count times, passing in indices from 0..count-1.
//
// The result will be a slice containing [f(0), f(1), ..., f(count - 1)].
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			results[i] = f(i)
		}
		return results
	}

	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		<-p.tokens
		wg.Add(1)
		go func(i int) {
			defer func() {
				p.tokens <- struct{}{}
				wg.Done()
			}()
			results[i] = f(i)
		}(i)
	}
	wg.Wait()
	return results
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
//
// What value each reader ends up getting is raced, but no two callers
// read the same bytes.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
