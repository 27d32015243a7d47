package application

import (
	"fmt"
	"sync"
)

// settleGroup runs independent tasks concurrently and waits for all of them.
// A failing task never cancels its siblings.
type settleGroup struct {
	wg sync.WaitGroup
}

// settled holds the outcome of one task. It may only be read after wait returns.
type settled[T any] struct {
	value T
	err   error
}

// settle starts fn in g. A panic in fn is recovered and reported as the task's error.
func settle[T any](g *settleGroup, name string, fn func() (T, error)) *settled[T] {
	result := &settled[T]{}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		result.value, result.err = fn()
	}()
	return result
}

func (g *settleGroup) wait() {
	g.wg.Wait()
}
