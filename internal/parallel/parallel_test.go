package parallel

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestForEach(t *testing.T) {
	var calls int64
	err := ForEach(20, func(i int) error {
		atomic.AddInt64(&calls, 1)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(20), calls)
}

func TestForEach_LowestError(t *testing.T) {
	for run := 0; run < 10; run++ {
		err := ForEach(8, func(i int) error {
			if i == 2 || i == 6 {
				// the higher index finishes first
				if i == 2 {
					time.Sleep(time.Millisecond)
				}
				return fmt.Errorf("index %d", i)
			}
			return nil
		})
		assert.EqualError(t, err, "index 2")
	}
}

func TestForEach_Empty(t *testing.T) {
	assert.NoError(t, ForEach(0, func(int) error { return errors.New("never") }))
}
