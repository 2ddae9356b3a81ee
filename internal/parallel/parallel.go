// Package parallel runs independent per-party checks concurrently.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForEach calls f(i) for every i in [0, n) on an errgroup.Group.
//
// Every call runs to completion, and the error returned is the one of the smallest i,
// so that the result does not depend on scheduling.
func ForEach(n int, f func(i int) error) error {
	errs := make([]error, n)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			errs[i] = f(i)
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
